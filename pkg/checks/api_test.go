package checks

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/shoplens/seoaudit/pkg/llm"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/store"
)

type fakeLLM struct {
	text       string
	tokens     int
	calls      int
	lastPrompt string
	err        error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (*llm.Result, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Result{Text: f.text, TokensUsed: f.tokens}, nil
}

func apiTestStore(t *testing.T, balance int) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.SetSetting(context.Background(), "balance", strconv.Itoa(balance)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}
	return s
}

func TestAnalyzeKeywordDensity_InsufficientBalance(t *testing.T) {
	s := apiTestStore(t, 50)
	generator := &fakeLLM{text: "{}"}
	api := NewAPIChecks(generator, s, s, "https://shop.example.com")

	_, err := api.AnalyzeKeywordDensity(context.Background(), "some content", "shoes")
	if !errors.Is(err, model.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if generator.calls != 0 {
		t.Errorf("generator called %d times before the balance gate", generator.calls)
	}
}

func TestAnalyzeKeywordDensity(t *testing.T) {
	s := apiTestStore(t, 250)
	generator := &fakeLLM{text: "```json\n{\"density\": 2.1, \"rating\": \"good\", \"tokensUsed\": {\"total\": 42}}\n```"}
	api := NewAPIChecks(generator, s, s, "https://shop.example.com")

	analysis, err := api.AnalyzeKeywordDensity(context.Background(), "<p>running shoes for trails</p>", "running shoes")
	if err != nil {
		t.Fatalf("AnalyzeKeywordDensity: %v", err)
	}
	if generator.calls != 1 {
		t.Errorf("generator called %d times", generator.calls)
	}
	if analysis.Analysis["rating"] != "good" {
		t.Errorf("analysis = %+v", analysis.Analysis)
	}
	if analysis.TokensUsed != 42 {
		t.Errorf("tokens = %d, want 42 from the reply", analysis.TokensUsed)
	}
}

func TestAnalyzeKeywordDensity_TruncatesLongContent(t *testing.T) {
	s := apiTestStore(t, 250)
	generator := &fakeLLM{text: "{}"}
	api := NewAPIChecks(generator, s, s, "https://shop.example.com")

	long := strings.Repeat("word ", 800)
	if _, err := api.AnalyzeKeywordDensity(context.Background(), long, "word"); err != nil {
		t.Fatalf("AnalyzeKeywordDensity: %v", err)
	}
	if got := strings.Count(generator.lastPrompt, "word"); got > MaxKeywordWords+10 {
		t.Errorf("prompt carries %d occurrences, content was not truncated", got)
	}
	if !strings.Contains(generator.lastPrompt, "word ...") && !strings.Contains(generator.lastPrompt, "word...") {
		t.Error("truncated content should end with an ellipsis")
	}
}

func TestCheckContentQuality_RawResponseFallback(t *testing.T) {
	s := apiTestStore(t, 250)
	generator := &fakeLLM{text: "I cannot answer in JSON today.", tokens: 0}
	api := NewAPIChecks(generator, s, s, "https://shop.example.com")

	analysis, err := api.CheckContentQuality(context.Background(), "content", "product")
	if err != nil {
		t.Fatalf("CheckContentQuality: %v", err)
	}
	raw, ok := analysis.Analysis["raw_response"].(string)
	if !ok || raw != "I cannot answer in JSON today." {
		t.Errorf("analysis = %+v, want raw_response fallback", analysis.Analysis)
	}
	if analysis.TokensUsed != DefaultQualityTokens {
		t.Errorf("tokens = %d, want default %d", analysis.TokensUsed, DefaultQualityTokens)
	}
}

func TestCheckContentQuality_ProviderTokensWin(t *testing.T) {
	s := apiTestStore(t, 250)
	generator := &fakeLLM{text: "no json here", tokens: 77}
	api := NewAPIChecks(generator, s, s, "https://shop.example.com")

	analysis, err := api.CheckContentQuality(context.Background(), "content", "page")
	if err != nil {
		t.Fatalf("CheckContentQuality: %v", err)
	}
	if analysis.TokensUsed != 77 {
		t.Errorf("tokens = %d, want provider-reported 77", analysis.TokensUsed)
	}
}

func TestCheckContentQuality_GenerateError(t *testing.T) {
	s := apiTestStore(t, 250)
	generator := &fakeLLM{err: errors.New("upstream down")}
	api := NewAPIChecks(generator, s, s, "https://shop.example.com")

	if _, err := api.CheckContentQuality(context.Background(), "content", "post"); err == nil {
		t.Fatal("expected error from the generator")
	}
}

func TestDetectDuplicates(t *testing.T) {
	s := apiTestStore(t, 0) // no balance needed, local-only
	ctx := context.Background()

	copyText := "Waterproof hiking boots with reinforced toe caps and a vibram sole for all-terrain grip."
	target, err := s.InsertProduct(ctx, &model.Product{Title: "Hiking Boots", Description: copyText})
	if err != nil {
		t.Fatalf("seed target: %v", err)
	}
	twin, err := s.InsertProduct(ctx, &model.Product{Title: "Hiking Boots Mk II", Description: copyText})
	if err != nil {
		t.Fatalf("seed twin: %v", err)
	}
	if _, err := s.InsertProduct(ctx, &model.Product{
		Title:       "Camping Stove",
		Description: "A compact gas stove that boils a liter of water in under three minutes.",
	}); err != nil {
		t.Fatalf("seed unrelated: %v", err)
	}

	api := NewAPIChecks(&fakeLLM{}, s, s, "https://shop.example.com")
	report, err := api.DetectDuplicates(ctx, copyText, target, model.ItemProduct)
	if err != nil {
		t.Fatalf("DetectDuplicates: %v", err)
	}
	if !report.HasDuplicates || len(report.Duplicates) != 1 {
		t.Fatalf("report = %+v, want exactly the twin", report)
	}
	dup := report.Duplicates[0]
	if dup.ID != twin || dup.Title != "Hiking Boots Mk II" {
		t.Errorf("duplicate = %+v", dup)
	}
	if dup.Similarity != 100 {
		t.Errorf("similarity = %v, want 100 for identical copy", dup.Similarity)
	}
	wantLink := "https://shop.example.com/wp-admin/post.php?post=" + strconv.FormatInt(twin, 10) + "&action=edit"
	if dup.EditLink != wantLink {
		t.Errorf("edit link = %q, want %q", dup.EditLink, wantLink)
	}
}

func TestDetectDuplicates_NoneFound(t *testing.T) {
	s := apiTestStore(t, 0)
	ctx := context.Background()

	if _, err := s.InsertProduct(ctx, &model.Product{
		Title:       "Camping Stove",
		Description: "A compact gas stove that boils a liter of water in under three minutes.",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	api := NewAPIChecks(&fakeLLM{}, s, s, "https://shop.example.com")
	report, err := api.DetectDuplicates(ctx, "Merino wool socks in three weights.", 0, model.ItemProduct)
	if err != nil {
		t.Fatalf("DetectDuplicates: %v", err)
	}
	if report.HasDuplicates {
		t.Errorf("report = %+v, want no duplicates", report)
	}
	if report.Duplicates == nil {
		t.Error("duplicates slice should be empty, not nil")
	}
}

func TestValidateSchema(t *testing.T) {
	s := apiTestStore(t, 0)
	ctx := context.Background()

	complete, err := s.InsertProduct(ctx, &model.Product{
		Title:       "Hiking Boots",
		Description: "Boots.",
		Price:       "120.00",
		ImageURL:    "https://shop.example.com/boots.jpg",
		StockStatus: "instock",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	report, err := newAPI(t, s).ValidateSchema(ctx, complete, model.ItemProduct)
	if err != nil {
		t.Fatalf("ValidateSchema: %v", err)
	}
	if report.Score != 100 || len(report.Issues) != 0 {
		t.Errorf("report = %+v, want perfect score", report)
	}

	bare, err := s.InsertProduct(ctx, &model.Product{Title: "Bare"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	report, err = newAPI(t, s).ValidateSchema(ctx, bare, model.ItemProduct)
	if err != nil {
		t.Fatalf("ValidateSchema: %v", err)
	}
	// Price, image, description, stock status missing: 100 - 4*15 = 40.
	if report.Score != 40 || len(report.Issues) != 4 {
		t.Errorf("report = %+v, want score 40 with 4 issues", report)
	}

	if _, err := newAPI(t, s).ValidateSchema(ctx, complete, model.ItemPage); err != model.ErrUnsupportedItemType {
		t.Errorf("err = %v, want ErrUnsupportedItemType", err)
	}
	if _, err := newAPI(t, s).ValidateSchema(ctx, 9999, model.ItemProduct); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func newAPI(t *testing.T, s *store.Store) *APIChecks {
	t.Helper()
	return NewAPIChecks(&fakeLLM{}, s, s, "https://shop.example.com")
}

func TestSuggestInternalLinks(t *testing.T) {
	s := apiTestStore(t, 0)
	ctx := context.Background()

	target, err := s.InsertProduct(ctx, &model.Product{Title: "Hiking Boots"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	related, err := s.InsertProduct(ctx, &model.Product{
		Title:     "Wool Socks",
		Permalink: "https://shop.example.com/product/wool-socks",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	upsell, err := s.InsertProduct(ctx, &model.Product{
		Title:     "Boot Care Kit",
		Permalink: "https://shop.example.com/product/boot-care-kit",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.LinkProducts(ctx, target, related, "related"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := s.LinkProducts(ctx, target, upsell, "upsell"); err != nil {
		t.Fatalf("link: %v", err)
	}

	catID, err := s.InsertTerm(ctx, &model.Term{Taxonomy: "product_cat", Name: "Footwear", Slug: "footwear"})
	if err != nil {
		t.Fatalf("seed term: %v", err)
	}
	if err := s.AssignTerm(ctx, model.ItemProduct, target, catID); err != nil {
		t.Fatalf("assign term: %v", err)
	}

	suggestions, err := newAPI(t, s).SuggestInternalLinks(ctx, target, model.ItemProduct)
	if err != nil {
		t.Fatalf("SuggestInternalLinks: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("got %d suggestions, want 3: %+v", len(suggestions), suggestions)
	}

	byReason := map[string]LinkSuggestion{}
	for _, sg := range suggestions {
		byReason[sg.Reason] = sg
	}
	if sg := byReason["related_product"]; sg.Title != "Wool Socks" {
		t.Errorf("related = %+v", sg)
	}
	if sg := byReason["category"]; sg.Title != "Footwear" || sg.URL != "https://shop.example.com/product-category/footwear" {
		t.Errorf("category = %+v", sg)
	}
	if sg := byReason["upsell"]; sg.Title != "Boot Care Kit" {
		t.Errorf("upsell = %+v", sg)
	}

	if _, err := newAPI(t, s).SuggestInternalLinks(ctx, target, model.ItemCategory); err != model.ErrUnsupportedItemType {
		t.Errorf("err = %v, want ErrUnsupportedItemType", err)
	}
}
