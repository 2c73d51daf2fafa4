package checks

import (
	"fmt"
	"unicode/utf8"

	"github.com/shoplens/seoaudit/pkg/htmltext"
	"github.com/shoplens/seoaudit/pkg/model"
)

const (
	PageTitleMin = 30
	PageMinWords = 100

	contentHeadingLen = 1000
	contentLinkLen    = 500
)

// DefaultCategoryName is the platform's catch-all category; a post filed
// only there counts as uncategorized.
const DefaultCategoryName = "Uncategorized"

// CheckPage evaluates the page rule list in its fixed order.
func CheckPage(p *model.Post, metaDescription, siteURL string) []model.Issue {
	var issues []model.Issue

	if titleLen := utf8.RuneCountInString(p.Title); titleLen < PageTitleMin {
		issues = append(issues, model.Issue{
			Check:        model.CheckTitleLength,
			Severity:     model.SeverityWarning,
			Title:        "Title too short",
			Description:  fmt.Sprintf("The title is %d characters; titles under %d characters are too short for search results.", titleLen, PageTitleMin),
			CurrentValue: p.Title,
		})
	}

	if metaDescription == "" {
		issues = append(issues, model.Issue{
			Check:       model.CheckMetaDescriptionMissing,
			Severity:    model.SeverityCritical,
			Title:       "Meta description missing",
			Description: "No meta description is set; search engines will improvise a snippet.",
		})
	}

	if words := htmltext.WordCount(p.Content); words < PageMinWords {
		issues = append(issues, model.Issue{
			Check:        model.CheckContentThin,
			Severity:     model.SeverityCritical,
			Title:        "Content too thin",
			Description:  fmt.Sprintf("Only %d words of content; aim for at least %d.", words, PageMinWords),
			CurrentValue: p.Content,
		})
	}

	if p.FeaturedImage == "" {
		issues = append(issues, model.Issue{
			Check:       model.CheckFeaturedImageMissing,
			Severity:    model.SeverityWarning,
			Title:       "Featured image missing",
			Description: "No featured image is set; shared links and listings will have no visual.",
		})
	}

	if utf8.RuneCountInString(p.Content) > contentHeadingLen && !htmltext.HasSubheading(p.Content) {
		issues = append(issues, model.Issue{
			Check:       model.CheckNoHeadings,
			Severity:    model.SeverityWarning,
			Title:       "No subheadings",
			Description: "Long content with no H2-H6 subheadings is hard to scan.",
		})
	}

	if utf8.RuneCountInString(p.Content) > contentLinkLen && !htmltext.HasInternalLink(p.Content, siteURL) {
		issues = append(issues, model.Issue{
			Check:       model.CheckNoInternalLinks,
			Severity:    model.SeverityWarning,
			Title:       "No internal links",
			Description: "The content does not link to any other page on this site.",
		})
	}

	if n := htmltext.ImagesMissingAlt(p.Content); n > 0 {
		issues = append(issues, model.Issue{
			Check:       model.CheckImagesAltMissing,
			Severity:    model.SeverityWarning,
			Title:       "Images without alt text",
			Description: fmt.Sprintf("%d image(s) in the content have no alt attribute.", n),
		})
	}

	return issues
}

// CheckPost runs all page rules plus the category assignment rule.
// categories are the post's assigned categories.
func CheckPost(p *model.Post, metaDescription, siteURL string, categories []*model.Term) []model.Issue {
	issues := CheckPage(p, metaDescription, siteURL)

	if !hasRealCategory(categories) {
		issues = append(issues, model.Issue{
			Check:       model.CheckUncategorized,
			Severity:    model.SeverityWarning,
			Title:       "Post not categorized",
			Description: "The post is not filed under a real category; category archives are a ranking surface.",
		})
	}

	return issues
}

func hasRealCategory(categories []*model.Term) bool {
	for _, c := range categories {
		if c.Name != DefaultCategoryName {
			return true
		}
	}
	return false
}
