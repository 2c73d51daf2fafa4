package fixer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shoplens/seoaudit/pkg/llm"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/snapshot"
	"github.com/shoplens/seoaudit/pkg/store"
)

type stubLLM struct {
	text       string
	tokens     int
	calls      int
	lastPrompt string
	err        error
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (*llm.Result, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Result{Text: s.text, TokensUsed: s.tokens}, nil
}

func fixerTestStore(t *testing.T) (*store.Store, int64) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	if err := s.SetSetting(ctx, "site_url", "https://shop.example.com"); err != nil {
		t.Fatalf("seed setting: %v", err)
	}
	if err := s.SetSetting(ctx, "site_title", "Shoplens Outdoor Gear"); err != nil {
		t.Fatalf("seed setting: %v", err)
	}

	id, err := s.InsertProduct(ctx, &model.Product{
		Title:       "Red Shoes",
		Description: "A pair of red shoes.",
		SKU:         "RS-1",
		Price:       "50.00",
		StockStatus: "instock",
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return s, id
}

func titleIssue(id int64) model.Issue {
	return model.Issue{
		ItemType:     model.ItemProduct,
		ItemID:       id,
		Check:        model.CheckTitleLength,
		Severity:     model.SeverityWarning,
		CurrentValue: "Red Shoes",
	}
}

func TestFixTypeFor(t *testing.T) {
	tests := []struct {
		check model.Check
		want  model.FixType
		ok    bool
	}{
		{model.CheckTitleLength, model.FixTitle, true},
		{model.CheckMetaDescriptionMissing, model.FixMetaDescription, true},
		{model.CheckMetaDescriptionLength, model.FixMetaDescription, true},
		{model.CheckContentThin, model.FixContent, true},
		{model.CheckFocusKeyword, model.FixKeyword, true},
		{model.CheckImageAltMissing, "", false},
		{model.CheckNoHeadings, "", false},
	}
	for _, tt := range tests {
		got, ok := FixTypeFor(tt.check)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FixTypeFor(%s) = %v, %v; want %v, %v", tt.check, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGenerateFix(t *testing.T) {
	s, id := fixerTestStore(t)
	generator := &stubLLM{text: `{"suggested_value": "Red Canvas Shoes with Cushioned Soles", "explanation": "Adds material and benefit keywords."}`}
	g := NewGenerator(generator, snapshot.New(s))

	fix, err := g.GenerateFix(context.Background(), titleIssue(id))
	if err != nil {
		t.Fatalf("GenerateFix: %v", err)
	}
	if fix.Field != "title" {
		t.Errorf("field = %q", fix.Field)
	}
	if fix.SuggestedValue != "Red Canvas Shoes with Cushioned Soles" {
		t.Errorf("suggestion = %q", fix.SuggestedValue)
	}
	if fix.Explanation != "Adds material and benefit keywords." {
		t.Errorf("explanation = %q", fix.Explanation)
	}
	if fix.CurrentValue != "Red Shoes" {
		t.Errorf("current = %q", fix.CurrentValue)
	}
	if fix.TokensUsed != DefaultFixTokens {
		t.Errorf("tokens = %d, want default %d", fix.TokensUsed, DefaultFixTokens)
	}
	if !strings.Contains(generator.lastPrompt, "Red Shoes") {
		t.Error("prompt does not carry the item context")
	}
}

func TestGenerateFix_TitleTruncation(t *testing.T) {
	s, id := fixerTestStore(t)
	long := strings.Repeat("a", 200)
	generator := &stubLLM{text: `{"suggested_value": "` + long + `"}`}
	g := NewGenerator(generator, snapshot.New(s))

	fix, err := g.GenerateFix(context.Background(), titleIssue(id))
	if err != nil {
		t.Fatalf("GenerateFix: %v", err)
	}
	if got := len([]rune(fix.SuggestedValue)); got != TitleMax {
		t.Errorf("suggestion length = %d, want exactly %d", got, TitleMax)
	}
	if !strings.HasSuffix(fix.SuggestedValue, "...") {
		t.Errorf("suggestion %q should end with an ellipsis", fix.SuggestedValue)
	}
	if fix.SuggestedValue != strings.Repeat("a", 57)+"..." {
		t.Errorf("suggestion = %q", fix.SuggestedValue)
	}
}

func TestGenerateFix_MetaDescriptionTruncation(t *testing.T) {
	s, id := fixerTestStore(t)
	long := strings.Repeat("b", 300)
	generator := &stubLLM{text: `{"suggested_value": "` + long + `"}`}
	g := NewGenerator(generator, snapshot.New(s))

	issue := titleIssue(id)
	issue.Check = model.CheckMetaDescriptionMissing
	fix, err := g.GenerateFix(context.Background(), issue)
	if err != nil {
		t.Fatalf("GenerateFix: %v", err)
	}
	if got := len([]rune(fix.SuggestedValue)); got != MetaDescriptionMax {
		t.Errorf("suggestion length = %d, want exactly %d", got, MetaDescriptionMax)
	}
	if fix.Field != "meta_description" {
		t.Errorf("field = %q", fix.Field)
	}
}

func TestGenerateFix_ExtractionPriority(t *testing.T) {
	s, id := fixerTestStore(t)
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"nested result wins",
			`{"result": {"suggested_value": "Nested Pick"}, "suggestion": "flat"}`,
			"Nested Pick",
		},
		{
			"suggestion key",
			`{"suggestion": "Plain Suggestion Key"}`,
			"Plain Suggestion Key",
		},
		{
			"content key",
			`{"content": "Content Key Value"}`,
			"Content Key Value",
		},
		{
			"fenced block",
			"Here you go:\n```json\n{\"suggested_value\": \"Fenced Value\"}\n```",
			"Fenced Value",
		},
		{
			"raw text fallback",
			"  Durable Red Canvas Shoes  ",
			"Durable Red Canvas Shoes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&stubLLM{text: tt.text}, snapshot.New(s))
			fix, err := g.GenerateFix(context.Background(), titleIssue(id))
			if err != nil {
				t.Fatalf("GenerateFix: %v", err)
			}
			if fix.SuggestedValue != tt.want {
				t.Errorf("suggestion = %q, want %q", fix.SuggestedValue, tt.want)
			}
		})
	}
}

func TestGenerateFix_TokensFromReply(t *testing.T) {
	s, id := fixerTestStore(t)
	generator := &stubLLM{
		text:   `{"suggested_value": "Red Canvas Shoes", "tokensUsed": {"total": 88}}`,
		tokens: 500,
	}
	g := NewGenerator(generator, snapshot.New(s))

	fix, err := g.GenerateFix(context.Background(), titleIssue(id))
	if err != nil {
		t.Fatalf("GenerateFix: %v", err)
	}
	if fix.TokensUsed != 88 {
		t.Errorf("tokens = %d, reply document should win over provider usage", fix.TokensUsed)
	}
}

func TestGenerateFix_ProviderTokensFallback(t *testing.T) {
	s, id := fixerTestStore(t)
	generator := &stubLLM{text: `{"suggested_value": "Red Canvas Shoes"}`, tokens: 31}
	g := NewGenerator(generator, snapshot.New(s))

	fix, err := g.GenerateFix(context.Background(), titleIssue(id))
	if err != nil {
		t.Fatalf("GenerateFix: %v", err)
	}
	if fix.TokensUsed != 31 {
		t.Errorf("tokens = %d, want provider-reported 31", fix.TokensUsed)
	}
}

func TestGenerateFix_Errors(t *testing.T) {
	s, id := fixerTestStore(t)
	builder := snapshot.New(s)

	t.Run("no item identity", func(t *testing.T) {
		g := NewGenerator(&stubLLM{}, builder)
		issue := titleIssue(id)
		issue.ItemID = 0
		if _, err := g.GenerateFix(context.Background(), issue); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("unfixable check", func(t *testing.T) {
		generator := &stubLLM{}
		g := NewGenerator(generator, builder)
		issue := titleIssue(id)
		issue.Check = model.CheckImageAltMissing
		if _, err := g.GenerateFix(context.Background(), issue); !errors.Is(err, model.ErrUnsupportedFix) {
			t.Errorf("err = %v, want ErrUnsupportedFix", err)
		}
		if generator.calls != 0 {
			t.Error("generator reached for an unfixable check")
		}
	})

	t.Run("missing item", func(t *testing.T) {
		g := NewGenerator(&stubLLM{}, builder)
		issue := titleIssue(9999)
		if _, err := g.GenerateFix(context.Background(), issue); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("generator failure propagated", func(t *testing.T) {
		upstream := errors.New("upstream down")
		g := NewGenerator(&stubLLM{err: upstream}, builder)
		if _, err := g.GenerateFix(context.Background(), titleIssue(id)); !errors.Is(err, upstream) {
			t.Errorf("err = %v, want the upstream error unchanged", err)
		}
	})
}

func TestFieldFor(t *testing.T) {
	tests := []struct {
		fixType  model.FixType
		itemType model.ItemType
		want     string
	}{
		{model.FixTitle, model.ItemProduct, "title"},
		{model.FixMetaDescription, model.ItemPage, "meta_description"},
		{model.FixContent, model.ItemProduct, "description"},
		{model.FixContent, model.ItemPost, "content"},
		{model.FixContent, model.ItemPage, "content"},
		{model.FixKeyword, model.ItemProduct, "keyword"},
	}
	for _, tt := range tests {
		if got := FieldFor(tt.fixType, tt.itemType); got != tt.want {
			t.Errorf("FieldFor(%s, %s) = %q, want %q", tt.fixType, tt.itemType, got, tt.want)
		}
	}
}
