package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/shoplens/seoaudit/pkg/htmltext"
	"github.com/shoplens/seoaudit/pkg/llm"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/parser"
	"github.com/shoplens/seoaudit/pkg/prompts"
	"github.com/shoplens/seoaudit/pkg/similarity"
)

const (
	// MinBalance is the credit floor below which no API request is sent.
	MinBalance = 100

	// MaxKeywordWords bounds how much content goes into a keyword prompt.
	MaxKeywordWords = 500

	// Token defaults when neither the reply document nor the provider
	// reports usage.
	DefaultKeywordTokens = 100
	DefaultQualityTokens = 150

	// Duplicate detection scans up to this many other published products
	// and reports anything above the threshold.
	DuplicateCandidates = 50
	DuplicateThreshold  = 70.0

	schemaIssuePenalty = 15
)

// BalanceReader reads the remaining credit balance.
type BalanceReader interface {
	Balance(ctx context.Context) (int, error)
}

// APICatalog is the slice of the content store the API checks read.
type APICatalog interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListPublishedProducts(ctx context.Context, excludeID int64, limit int) ([]*model.Product, error)
	TermsFor(ctx context.Context, itemType model.ItemType, itemID int64, taxonomy string) ([]*model.Term, error)
	LinkedProducts(ctx context.Context, productID int64, kind string, limit int) ([]*model.Product, error)
}

// APIChecks are the checks that delegate scoring to the generative API,
// plus the local-only helpers that share their surface (duplicates, schema,
// link suggestions).
type APIChecks struct {
	llm     llm.LLM
	balance BalanceReader
	catalog APICatalog
	siteURL string
}

func NewAPIChecks(generator llm.LLM, balance BalanceReader, catalog APICatalog, siteURL string) *APIChecks {
	return &APIChecks{llm: generator, balance: balance, catalog: catalog, siteURL: siteURL}
}

// Analysis is a normalized reply from an API-backed check. When the model
// reply contained no decodable JSON block, Analysis carries the raw text
// under "raw_response" instead of failing the call.
type Analysis struct {
	Analysis   map[string]interface{} `json:"analysis"`
	TokensUsed int                    `json:"tokens_used"`
}

func (a *APIChecks) ensureBalance(ctx context.Context) error {
	balance, err := a.balance.Balance(ctx)
	if err != nil {
		return err
	}
	if balance < MinBalance {
		return fmt.Errorf("%w: %d credits left, %d required", model.ErrInsufficientBalance, balance, MinBalance)
	}
	return nil
}

// AnalyzeKeywordDensity scores keyword usage in content. The content is
// truncated to MaxKeywordWords words before prompting.
func (a *APIChecks) AnalyzeKeywordDensity(ctx context.Context, content, focusKeyword string) (*Analysis, error) {
	if err := a.ensureBalance(ctx); err != nil {
		return nil, err
	}

	truncated := htmltext.TrimWords(htmltext.StripTags(content), MaxKeywordWords, "...")
	result, err := a.llm.Generate(ctx, prompts.BuildKeywordDensityPrompt(truncated, focusKeyword))
	if err != nil {
		return nil, fmt.Errorf("keyword analysis: %w", err)
	}
	return normalizeAnalysis(result, DefaultKeywordTokens), nil
}

// CheckContentQuality asks for the four-way quality breakdown of content.
func (a *APIChecks) CheckContentQuality(ctx context.Context, content, contentType string) (*Analysis, error) {
	if err := a.ensureBalance(ctx); err != nil {
		return nil, err
	}

	result, err := a.llm.Generate(ctx, prompts.BuildContentQualityPrompt(content, contentType))
	if err != nil {
		return nil, fmt.Errorf("quality check: %w", err)
	}
	return normalizeAnalysis(result, DefaultQualityTokens), nil
}

func normalizeAnalysis(result *llm.Result, defaultTokens int) *Analysis {
	fallbackTokens := result.TokensUsed
	if fallbackTokens == 0 {
		fallbackTokens = defaultTokens
	}

	doc, ok := parser.ExtractJSONBlock(result.Text)
	if !ok {
		return &Analysis{
			Analysis:   map[string]interface{}{"raw_response": result.Text},
			TokensUsed: fallbackTokens,
		}
	}
	return &Analysis{
		Analysis:   doc,
		TokensUsed: parser.Tokens(doc, fallbackTokens),
	}
}

// Duplicate is one competing item whose copy is too close to the target's.
type Duplicate struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
	EditLink   string  `json:"edit_link"`
}

type DuplicateReport struct {
	HasDuplicates bool        `json:"has_duplicates"`
	Duplicates    []Duplicate `json:"duplicates"`
}

// DetectDuplicates compares content against up to DuplicateCandidates
// other published products. Local-only, no API cost, no balance gate.
//
// Known scope limitation: comparison candidates are always products, even
// when the content under test is a post or page.
func (a *APIChecks) DetectDuplicates(ctx context.Context, content string, excludeID int64, contentType model.ItemType) (*DuplicateReport, error) {
	candidates, err := a.catalog.ListPublishedProducts(ctx, excludeID, DuplicateCandidates)
	if err != nil {
		return nil, err
	}

	report := &DuplicateReport{Duplicates: []Duplicate{}}
	for _, candidate := range candidates {
		score := similarity.Score(content, candidate.Description+" "+candidate.ShortDescription)
		if score > DuplicateThreshold {
			report.Duplicates = append(report.Duplicates, Duplicate{
				ID:         candidate.ID,
				Title:      candidate.Title,
				Similarity: score,
				EditLink:   a.editLink(candidate.ID),
			})
		}
	}
	report.HasDuplicates = len(report.Duplicates) > 0
	return report, nil
}

// SchemaReport is the structural completeness result for one product.
type SchemaReport struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}

// ValidateSchema checks the structural fields product schema markup needs.
// Local-only. Only products carry schema here.
func (a *APIChecks) ValidateSchema(ctx context.Context, itemID int64, itemType model.ItemType) (*SchemaReport, error) {
	if itemType != model.ItemProduct {
		return nil, model.ErrUnsupportedItemType
	}
	p, err := a.catalog.GetProduct(ctx, itemID)
	if err != nil {
		return nil, err
	}

	issues := []string{}
	if p.Title == "" {
		issues = append(issues, "product has no name")
	}
	if p.Price == "" && !p.IsVariable {
		issues = append(issues, "product has no price")
	}
	if p.ImageURL == "" {
		issues = append(issues, "product has no image")
	}
	if p.Description == "" {
		issues = append(issues, "product has no description")
	}
	if p.StockStatus == "" {
		issues = append(issues, "product has no stock status")
	}

	score := 100 - schemaIssuePenalty*len(issues)
	if score < 0 {
		score = 0
	}
	return &SchemaReport{Score: score, Issues: issues}, nil
}

// LinkSuggestion is one internal-link candidate with a reason tag.
type LinkSuggestion struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// SuggestInternalLinks enumerates link candidates for a product: up to 5
// related products, every assigned category, and up to 3 upsells.
// Local-only.
func (a *APIChecks) SuggestInternalLinks(ctx context.Context, itemID int64, itemType model.ItemType) ([]LinkSuggestion, error) {
	if itemType != model.ItemProduct {
		return nil, model.ErrUnsupportedItemType
	}
	if _, err := a.catalog.GetProduct(ctx, itemID); err != nil {
		return nil, err
	}

	var suggestions []LinkSuggestion

	related, err := a.catalog.LinkedProducts(ctx, itemID, "related", 5)
	if err != nil {
		return nil, err
	}
	for _, p := range related {
		suggestions = append(suggestions, LinkSuggestion{Title: p.Title, URL: p.Permalink, Reason: "related_product"})
	}

	categories, err := a.catalog.TermsFor(ctx, model.ItemProduct, itemID, "product_cat")
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		suggestions = append(suggestions, LinkSuggestion{
			Title:  c.Name,
			URL:    strings.TrimRight(a.siteURL, "/") + "/product-category/" + c.Slug,
			Reason: "category",
		})
	}

	upsells, err := a.catalog.LinkedProducts(ctx, itemID, "upsell", 3)
	if err != nil {
		return nil, err
	}
	for _, p := range upsells {
		suggestions = append(suggestions, LinkSuggestion{Title: p.Title, URL: p.Permalink, Reason: "upsell"})
	}

	return suggestions, nil
}

func (a *APIChecks) editLink(id int64) string {
	return fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", strings.TrimRight(a.siteURL, "/"), id)
}
