// Package fixer turns a detected issue into a proposed field update via
// the generative API, and commits accepted fixes back to the content store.
package fixer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shoplens/seoaudit/pkg/llm"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/parser"
	"github.com/shoplens/seoaudit/pkg/prompts"
	"github.com/shoplens/seoaudit/pkg/snapshot"
)

const (
	// TitleMax / MetaDescriptionMax bound the suggestion after generation.
	// Over-long suggestions are cut three characters short of the bound and
	// get an ellipsis, so the result never exceeds the bound.
	TitleMax           = 60
	titleKeep          = 57
	MetaDescriptionMax = 160
	metaKeep           = 157

	// DefaultFixTokens is charged when neither the reply document nor the
	// provider reports usage.
	DefaultFixTokens = 100
)

var fixTypes = map[model.Check]model.FixType{
	model.CheckTitleLength:            model.FixTitle,
	model.CheckMetaDescriptionMissing: model.FixMetaDescription,
	model.CheckMetaDescriptionLength:  model.FixMetaDescription,
	model.CheckContentThin:            model.FixContent,
	model.CheckFocusKeyword:           model.FixKeyword,
}

// FixTypeFor maps an issue check to its fix type. ok is false for checks
// with no mapping; those issues are not fixable.
func FixTypeFor(check model.Check) (model.FixType, bool) {
	ft, ok := fixTypes[check]
	return ft, ok
}

func requirementsFor(fixType model.FixType) model.Requirements {
	switch fixType {
	case model.FixTitle:
		return model.Requirements{
			MinLength:       30,
			MaxLength:       60,
			IncludeKeywords: true,
			Compelling:      true,
			Unique:          true,
		}
	case model.FixMetaDescription:
		return model.Requirements{
			MinLength:       120,
			MaxLength:       160,
			IncludeKeywords: true,
			Compelling:      true,
			CallToAction:    true,
		}
	case model.FixContent:
		return model.Requirements{
			IncludeKeywords: true,
			Unique:          true,
		}
	default:
		return model.Requirements{}
	}
}

// Generator runs the fix pipeline: resolve the fix type, build context,
// invoke the generative API, normalize the reply, enforce constraints, map
// the target field.
type Generator struct {
	llm     llm.LLM
	builder *snapshot.Builder
}

func NewGenerator(generator llm.LLM, builder *snapshot.Builder) *Generator {
	return &Generator{llm: generator, builder: builder}
}

// GenerateFix produces a proposed fix for one issue. The issue must carry
// item identity (stamped by the auditor or the caller). Generative API
// failures are propagated unchanged.
func (g *Generator) GenerateFix(ctx context.Context, issue model.Issue) (*model.Fix, error) {
	if issue.ItemType == "" || issue.ItemID == 0 {
		return nil, fmt.Errorf("%w: issue carries no item identity", model.ErrInvalidInput)
	}

	fixType, ok := FixTypeFor(issue.Check)
	if !ok {
		return nil, fmt.Errorf("%w: check %q has no fix type", model.ErrUnsupportedFix, issue.Check)
	}

	item, err := g.builder.BuildItemContext(ctx, issue.ItemType, issue.ItemID)
	if err != nil {
		return nil, err
	}
	storeCtx, err := g.builder.BuildStoreContext(ctx)
	if err != nil {
		return nil, err
	}

	req := model.FixRequest{
		FixType: fixType,
		Item:    item,
		Issue: model.IssueSummary{
			Check:        issue.Check,
			Severity:     issue.Severity,
			CurrentValue: issue.CurrentValue,
			Description:  issue.Description,
		},
		Store:        storeCtx,
		Requirements: requirementsFor(fixType),
	}

	prompt, err := prompts.BuildFixPrompt(req)
	if err != nil {
		return nil, err
	}

	result, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	suggestion, explanation, doc := extractSuggestion(result.Text)
	if suggestion == "" {
		return nil, fmt.Errorf("generative API returned no usable suggestion")
	}
	suggestion = enforceConstraints(fixType, suggestion)

	tokenFallback := result.TokensUsed
	if tokenFallback == 0 {
		tokenFallback = DefaultFixTokens
	}

	return &model.Fix{
		Field:          FieldFor(fixType, issue.ItemType),
		CurrentValue:   issue.CurrentValue,
		SuggestedValue: suggestion,
		Explanation:    explanation,
		TokensUsed:     parser.Tokens(doc, tokenFallback),
	}, nil
}

// extractSuggestion normalizes the reply: decode the first JSON block if
// any, walk the known suggestion keys in priority order, and fall back to
// the raw text when the reply is not the shape we hoped for.
func extractSuggestion(text string) (suggestion, explanation string, doc map[string]interface{}) {
	doc, ok := parser.ExtractJSONBlock(text)
	if !ok {
		return strings.TrimSpace(text), "", nil
	}
	suggestion, ok = parser.FirstString(doc,
		"result.suggested_value", "suggested_value", "suggestion", "content", "text", "generated")
	if !ok {
		suggestion = strings.TrimSpace(text)
	}
	explanation, _ = parser.FirstString(doc, "result.explanation", "explanation")
	return suggestion, explanation, doc
}

func enforceConstraints(fixType model.FixType, suggestion string) string {
	switch fixType {
	case model.FixTitle:
		return truncate(suggestion, TitleMax, titleKeep)
	case model.FixMetaDescription:
		return truncate(suggestion, MetaDescriptionMax, metaKeep)
	default:
		return suggestion
	}
}

func truncate(s string, max, keep int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:keep]) + "..."
}

// FieldFor maps a fix type to the store field it lands in. Content fixes
// land in the description for products and in the body for everything else.
func FieldFor(fixType model.FixType, itemType model.ItemType) string {
	if fixType == model.FixContent {
		if itemType == model.ItemProduct {
			return "description"
		}
		return "content"
	}
	return string(fixType)
}
