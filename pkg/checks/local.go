// Package checks is the issue detector: stateless local rules over catalog
// items plus balance-gated checks that delegate scoring to the generative
// API. Local checks never fail on malformed input; an absent field is a
// detected issue, not an error.
package checks

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/shoplens/seoaudit/pkg/htmltext"
	"github.com/shoplens/seoaudit/pkg/model"
)

// Fixed rule thresholds. These are constants of the rule set, not runtime
// configuration.
const (
	ProductTitleMin = 30
	ProductTitleMax = 60
	MetaDescMin     = 120
	MetaDescMax     = 160
	ProductMinWords = 100

	descHeadingLen = 500
	descLinkLen    = 300

	CategoryNameMin  = 3
	CategoryMinWords = 30
)

var letterRe = regexp.MustCompile(`[a-zA-Z]`)

// CheckProduct evaluates the product rule list in its fixed order. The
// meta description is resolved by the caller (plugin chain or fallback);
// siteURL anchors the internal-link rule. The returned issues carry no
// item type/id; the caller stamps those before fixing.
func CheckProduct(p *model.Product, metaDescription, siteURL string) []model.Issue {
	var issues []model.Issue

	titleLen := utf8.RuneCountInString(p.Title)
	if titleLen < ProductTitleMin {
		issues = append(issues, model.Issue{
			Check:        model.CheckTitleLength,
			Severity:     model.SeverityWarning,
			Title:        "Product title too short",
			Description:  fmt.Sprintf("The title is %d characters; titles under %d characters are too short for search results.", titleLen, ProductTitleMin),
			CurrentValue: p.Title,
		})
	} else if titleLen > ProductTitleMax {
		issues = append(issues, model.Issue{
			Check:        model.CheckTitleLength,
			Severity:     model.SeverityWarning,
			Title:        "Product title too long",
			Description:  fmt.Sprintf("The title is %d characters; titles over %d characters are too long and get cut off in search results.", titleLen, ProductTitleMax),
			CurrentValue: p.Title,
		})
	}

	issues = append(issues, metaDescriptionIssues(metaDescription)...)

	if p.ImageURL == "" {
		issues = append(issues, model.Issue{
			Check:       model.CheckImageMissing,
			Severity:    model.SeverityCritical,
			Title:       "Product image missing",
			Description: "The product has no image. Products without images rank and convert poorly.",
		})
	} else if p.ImageAlt == "" {
		issues = append(issues, model.Issue{
			Check:        model.CheckImageAltMissing,
			Severity:     model.SeverityWarning,
			Title:        "Image alt text missing",
			Description:  "The product image has no alt text.",
			CurrentValue: p.ImageURL,
		})
	}

	combined := p.Description + " " + p.ShortDescription
	words := htmltext.WordCount(combined)
	if words < ProductMinWords {
		issues = append(issues, model.Issue{
			Check:        model.CheckContentThin,
			Severity:     model.SeverityCritical,
			Title:        "Description too thin",
			Description:  fmt.Sprintf("Only %d words of description; aim for at least %d.", words, ProductMinWords),
			CurrentValue: p.Description,
		})
	}

	if utf8.RuneCountInString(p.Description) > descHeadingLen && !htmltext.HasHeading(p.Description) {
		issues = append(issues, model.Issue{
			Check:       model.CheckNoHeadings,
			Severity:    model.SeverityWarning,
			Title:       "No headings in description",
			Description: "A long description with no heading tags is hard to scan for both shoppers and crawlers.",
		})
	}

	if utf8.RuneCountInString(p.Description) > descLinkLen && !htmltext.HasInternalLink(p.Description, siteURL) {
		issues = append(issues, model.Issue{
			Check:       model.CheckNoInternalLinks,
			Severity:    model.SeverityWarning,
			Title:       "No internal links in description",
			Description: "The description does not link to any other page on this store.",
		})
	}

	if p.Price == "" && !p.IsVariable {
		issues = append(issues, model.Issue{
			Check:       model.CheckPriceMissing,
			Severity:    model.SeverityWarning,
			Title:       "Price missing",
			Description: "The product has no price set.",
		})
	}

	if p.SKU == "" {
		issues = append(issues, model.Issue{
			Check:       model.CheckSKUMissing,
			Severity:    model.SeverityWarning,
			Title:       "SKU missing",
			Description: "The product has no SKU; product schema and feeds need one.",
		})
	}

	return issues
}

func metaDescriptionIssues(meta string) []model.Issue {
	if meta == "" {
		return []model.Issue{{
			Check:       model.CheckMetaDescriptionMissing,
			Severity:    model.SeverityCritical,
			Title:       "Meta description missing",
			Description: "No meta description is set; search engines will improvise a snippet.",
		}}
	}
	metaLen := utf8.RuneCountInString(meta)
	if metaLen < MetaDescMin {
		return []model.Issue{{
			Check:        model.CheckMetaDescriptionLength,
			Severity:     model.SeverityWarning,
			Title:        "Meta description too short",
			Description:  fmt.Sprintf("The meta description is %d characters; %d-%d is the usable snippet range.", metaLen, MetaDescMin, MetaDescMax),
			CurrentValue: meta,
		}}
	}
	if metaLen > MetaDescMax {
		return []model.Issue{{
			Check:        model.CheckMetaDescriptionLength,
			Severity:     model.SeverityWarning,
			Title:        "Meta description too long",
			Description:  fmt.Sprintf("The meta description is %d characters; %d-%d is the usable snippet range.", metaLen, MetaDescMin, MetaDescMax),
			CurrentValue: meta,
		}}
	}
	return nil
}

// CheckCategory evaluates the category rule list. productCount is how many
// products are assigned to the category.
func CheckCategory(t *model.Term, productCount int) []model.Issue {
	var issues []model.Issue

	if utf8.RuneCountInString(t.Name) < CategoryNameMin {
		issues = append(issues, model.Issue{
			Check:        model.CheckNameTooShort,
			Severity:     model.SeverityWarning,
			Title:        "Category name too short",
			Description:  fmt.Sprintf("The category name is under %d characters and tells shoppers nothing.", CategoryNameMin),
			CurrentValue: t.Name,
		})
	}

	if t.Description == "" {
		issues = append(issues, model.Issue{
			Check:       model.CheckDescriptionMissing,
			Severity:    model.SeverityCritical,
			Title:       "Category description missing",
			Description: "The category page has no description text at all.",
		})
	} else if words := htmltext.WordCount(t.Description); words < CategoryMinWords {
		issues = append(issues, model.Issue{
			Check:        model.CheckDescriptionShort,
			Severity:     model.SeverityWarning,
			Title:        "Category description too short",
			Description:  fmt.Sprintf("Only %d words of description; aim for at least %d.", words, CategoryMinWords),
			CurrentValue: t.Description,
		})
	}

	if t.ThumbnailURL == "" {
		issues = append(issues, model.Issue{
			Check:       model.CheckThumbnailMissing,
			Severity:    model.SeverityWarning,
			Title:       "Category thumbnail missing",
			Description: "The category has no thumbnail image.",
		})
	}

	if productCount == 0 {
		issues = append(issues, model.Issue{
			Check:       model.CheckNoProducts,
			Severity:    model.SeverityWarning,
			Title:       "Empty category",
			Description: "No products are assigned to this category; empty listing pages are crawl waste.",
		})
	}

	if t.Slug != "" && !letterRe.MatchString(t.Slug) {
		issues = append(issues, model.Issue{
			Check:        model.CheckNonDescriptiveSlug,
			Severity:     model.SeverityWarning,
			Title:        "Non-descriptive slug",
			Description:  "The slug is purely numeric; a slug should describe the category.",
			CurrentValue: t.Slug,
		})
	}

	return issues
}
