package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/shoplens/seoaudit/pkg/checks"
	"github.com/shoplens/seoaudit/pkg/model"
)

// DisplayIssues formats and displays an audit result
func DisplayIssues(issues []model.Issue, score int, format string) error {
	switch format {
	case "json":
		return displayJSON(map[string]interface{}{"score": score, "issues": issues})
	case "yaml":
		return displayYAML(map[string]interface{}{"score": score, "issues": issues})
	case "human":
		fallthrough
	default:
		displayIssuesHuman(issues, score)
	}
	return nil
}

// DisplayFix formats and displays a proposed fix
func DisplayFix(fix *model.Fix, format string) error {
	switch format {
	case "json":
		return displayJSON(fix)
	case "yaml":
		return displayYAML(fix)
	case "human":
		fallthrough
	default:
		displayFixHuman(fix)
	}
	return nil
}

// DisplayAnalysis formats and displays an API-backed analysis
func DisplayAnalysis(analysis *checks.Analysis, format string) error {
	switch format {
	case "json":
		return displayJSON(analysis)
	case "yaml":
		return displayYAML(analysis)
	case "human":
		fallthrough
	default:
		displayAnalysisHuman(analysis)
	}
	return nil
}

// DisplayDuplicates formats and displays a duplicate-content report
func DisplayDuplicates(report *checks.DuplicateReport, format string) error {
	switch format {
	case "json":
		return displayJSON(report)
	case "yaml":
		return displayYAML(report)
	case "human":
		fallthrough
	default:
		displayDuplicatesHuman(report)
	}
	return nil
}

// DisplaySchema formats and displays a schema completeness report
func DisplaySchema(report *checks.SchemaReport, format string) error {
	switch format {
	case "json":
		return displayJSON(report)
	case "yaml":
		return displayYAML(report)
	case "human":
		fallthrough
	default:
		displaySchemaHuman(report)
	}
	return nil
}

// DisplayLinks formats and displays internal-link suggestions
func DisplayLinks(suggestions []checks.LinkSuggestion, format string) error {
	switch format {
	case "json":
		return displayJSON(suggestions)
	case "yaml":
		return displayYAML(suggestions)
	case "human":
		fallthrough
	default:
		displayLinksHuman(suggestions)
	}
	return nil
}

func displayJSON(v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayYAML(v interface{}) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayIssuesHuman(issues []model.Issue, score int) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Println()

	scoreColor := getScoreColor(score)
	scoreColor.Printf("📊 SEO SCORE: %d/100\n\n", score)

	if len(issues) == 0 {
		green.Println("✅ No issues found.")
		fmt.Println()
		return
	}

	yellow.Println("⚠️  ISSUES FOUND:")
	for i, issue := range issues {
		severityIcon := getSeverityIcon(issue.Severity)
		fmt.Printf("   %d. %s %s\n", i+1, severityIcon, issue.Title)
		fmt.Printf("      %s\n", issue.Description)
		if issue.CurrentValue != "" {
			fmt.Printf("      Current: %s\n", color.YellowString(truncateLine(issue.CurrentValue, 70)))
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("─", 80))
	fmt.Printf("💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func displayFixHuman(fix *model.Fix) {
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Println()

	green.Println("🚀 SUGGESTED FIX:")
	fmt.Printf("   Field: %s\n", fix.Field)
	if fix.CurrentValue != "" {
		fmt.Printf("   Current:   %s\n", color.YellowString(truncateLine(fix.CurrentValue, 70)))
	}
	fmt.Printf("   Suggested: %s\n", color.GreenString(fix.SuggestedValue))
	fmt.Println()

	if fix.Explanation != "" {
		cyan.Println("💡 WHY:")
		fmt.Println(wrapText(fix.Explanation, 80, "   "))
		fmt.Println()
	}

	if fix.TokensUsed > 0 {
		fmt.Printf("%s\n", color.HiBlackString(fmt.Sprintf("Tokens used: %d", fix.TokensUsed)))
	}
}

func displayAnalysisHuman(analysis *checks.Analysis) {
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Println()
	cyan.Println("📄 ANALYSIS:")
	if raw, ok := analysis.Analysis["raw_response"].(string); ok {
		fmt.Println(wrapText(raw, 80, "   "))
	} else {
		for key, value := range analysis.Analysis {
			fmt.Printf("   %s: %v\n", key, value)
		}
	}
	fmt.Println()
	fmt.Printf("%s\n", color.HiBlackString(fmt.Sprintf("Tokens used: %d", analysis.TokensUsed)))
}

func displayDuplicatesHuman(report *checks.DuplicateReport) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Println()
	if !report.HasDuplicates {
		green.Println("✅ No duplicate content found.")
		fmt.Println()
		return
	}

	yellow.Println("⚠️  DUPLICATE CONTENT:")
	for i, dup := range report.Duplicates {
		fmt.Printf("   %d. %s (%.1f%% similar)\n", i+1, dup.Title, dup.Similarity)
		fmt.Printf("      Edit: %s\n", color.CyanString(dup.EditLink))
		fmt.Println()
	}
}

func displaySchemaHuman(report *checks.SchemaReport) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	fmt.Println()
	scoreColor := getScoreColor(report.Score)
	scoreColor.Printf("📊 SCHEMA SCORE: %d/100\n\n", report.Score)

	if len(report.Issues) == 0 {
		green.Println("✅ All structural fields present.")
		fmt.Println()
		return
	}

	yellow.Println("⚠️  MISSING FIELDS:")
	for i, issue := range report.Issues {
		fmt.Printf("   %d. %s\n", i+1, issue)
	}
	fmt.Println()
}

func displayLinksHuman(suggestions []checks.LinkSuggestion) {
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Println()
	if len(suggestions) == 0 {
		fmt.Println("No link suggestions for this item.")
		return
	}

	cyan.Println("🔗 LINK SUGGESTIONS:")
	for i, sg := range suggestions {
		fmt.Printf("   %d. %s %s\n", i+1, getReasonIcon(sg.Reason), sg.Title)
		fmt.Printf("      URL: %s\n", color.CyanString(sg.URL))
		fmt.Println()
	}
}

func getScoreColor(score int) *color.Color {
	switch {
	case score >= 80:
		return color.New(color.FgGreen, color.Bold)
	case score >= 50:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func getSeverityIcon(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityWarning:
		return "🟡"
	default:
		return "⚪"
	}
}

func getReasonIcon(reason string) string {
	switch reason {
	case "related_product":
		return "🛒"
	case "category":
		return "📁"
	case "upsell":
		return "⬆️"
	default:
		return "•"
	}
}

func truncateLine(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
