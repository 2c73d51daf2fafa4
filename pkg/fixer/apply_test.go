package fixer

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/store"
)

func applyTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestApply_ProductTitle(t *testing.T) {
	s := applyTestStore(t)
	ctx := context.Background()

	id, err := s.InsertProduct(ctx, &model.Product{Title: "Red Shoes"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.SetMeta(ctx, model.ItemProduct, id, model.ScoreMetaKey, "60"); err != nil {
		t.Fatalf("seed score: %v", err)
	}

	issue := model.Issue{ItemType: model.ItemProduct, ItemID: id, Check: model.CheckTitleLength}
	fix := model.Fix{
		Field:          "title",
		CurrentValue:   "Red Shoes",
		SuggestedValue: "Red Canvas Shoes with Cushioned Soles",
	}
	if err := NewApplicator(s).Apply(ctx, issue, fix); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.Title != fix.SuggestedValue {
		t.Errorf("title = %q", p.Title)
	}

	// Cached score is invalidated on a successful apply.
	cached, err := s.GetMeta(ctx, model.ItemProduct, id, model.ScoreMetaKey)
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if cached != "" {
		t.Errorf("cached score survived the apply: %q", cached)
	}

	recs, err := s.ListFixes(ctx, model.ItemProduct, id)
	if err != nil {
		t.Fatalf("ListFixes: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d log rows, want 1", len(recs))
	}
	rec := recs[0]
	if rec.ID == "" {
		t.Error("log row has no id")
	}
	if rec.Field != "title" || rec.PreviousValue != "Red Shoes" || rec.NewValue != fix.SuggestedValue {
		t.Errorf("log row = %+v", rec)
	}
	if rec.AppliedAt.IsZero() {
		t.Error("log row has no timestamp")
	}
}

func TestApply_MetaDescription_NoPlugin(t *testing.T) {
	s := applyTestStore(t)
	ctx := context.Background()

	id, err := s.InsertPost(ctx, &model.Post{Type: "post", Title: "Care guide", Excerpt: "old"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	issue := model.Issue{ItemType: model.ItemPost, ItemID: id, Check: model.CheckMetaDescriptionMissing}
	fix := model.Fix{Field: "meta_description", SuggestedValue: "A practical guide to leather care."}
	if err := NewApplicator(s).Apply(ctx, issue, fix); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// No plugin active: the excerpt is the fallback field.
	p, err := s.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if p.Excerpt != fix.SuggestedValue {
		t.Errorf("excerpt = %q", p.Excerpt)
	}
}

func TestApply_MetaDescription_ActivePlugin(t *testing.T) {
	s := applyTestStore(t)
	ctx := context.Background()

	if err := s.SetSetting(ctx, "active_seo_plugin", "yoast"); err != nil {
		t.Fatalf("seed setting: %v", err)
	}
	id, err := s.InsertProduct(ctx, &model.Product{Title: "Red Shoes", ShortDescription: "old"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	issue := model.Issue{ItemType: model.ItemProduct, ItemID: id, Check: model.CheckMetaDescriptionMissing}
	fix := model.Fix{Field: "meta_description", SuggestedValue: "Red canvas shoes built for daily wear."}
	if err := NewApplicator(s).Apply(ctx, issue, fix); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Plugin active: the value lands under the plugin's key, not the
	// short description.
	v, err := s.GetMeta(ctx, model.ItemProduct, id, "_yoast_wpseo_metadesc")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if v != fix.SuggestedValue {
		t.Errorf("plugin meta = %q", v)
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.ShortDescription != "old" {
		t.Errorf("short description overwritten: %q", p.ShortDescription)
	}
}

func TestApply_PageMetaKeyedToPage(t *testing.T) {
	s := applyTestStore(t)
	ctx := context.Background()

	if err := s.SetSetting(ctx, "active_seo_plugin", "rankmath"); err != nil {
		t.Fatalf("seed setting: %v", err)
	}
	id, err := s.InsertPost(ctx, &model.Post{Type: "page", Title: "About"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	issue := model.Issue{ItemType: model.ItemPage, ItemID: id, Check: model.CheckMetaDescriptionMissing}
	fix := model.Fix{Field: "meta_description", SuggestedValue: "Who we are and why we started."}
	if err := NewApplicator(s).Apply(ctx, issue, fix); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	v, err := s.GetMeta(ctx, model.ItemPage, id, "rank_math_description")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if v != fix.SuggestedValue {
		t.Errorf("page meta = %q", v)
	}
	// Nothing keyed under the post item type.
	v, err = s.GetMeta(ctx, model.ItemPost, id, "rank_math_description")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if v != "" {
		t.Errorf("meta leaked under the post item type: %q", v)
	}
}

func TestApply_CategoryDescription(t *testing.T) {
	s := applyTestStore(t)
	ctx := context.Background()

	id, err := s.InsertTerm(ctx, &model.Term{Taxonomy: "product_cat", Name: "Footwear", Slug: "footwear"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	issue := model.Issue{ItemType: model.ItemCategory, ItemID: id, Check: model.CheckDescriptionMissing}
	fix := model.Fix{Field: "description", SuggestedValue: "Boots, shoes and sandals for every trail."}
	if err := NewApplicator(s).Apply(ctx, issue, fix); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	term, err := s.GetTerm(ctx, id)
	if err != nil {
		t.Fatalf("GetTerm: %v", err)
	}
	if term.Description != fix.SuggestedValue {
		t.Errorf("description = %q", term.Description)
	}
}

func TestApply_Errors(t *testing.T) {
	s := applyTestStore(t)
	ctx := context.Background()

	id, err := s.InsertProduct(ctx, &model.Product{Title: "Red Shoes"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	applicator := NewApplicator(s)
	issue := model.Issue{ItemType: model.ItemProduct, ItemID: id}

	tests := []struct {
		name  string
		issue model.Issue
		fix   model.Fix
		want  error
	}{
		{"no field", issue, model.Fix{SuggestedValue: "x"}, model.ErrInvalidInput},
		{"no value", issue, model.Fix{Field: "title"}, model.ErrInvalidInput},
		{"unsupported field", issue, model.Fix{Field: "price", SuggestedValue: "9.99"}, model.ErrUnsupportedField},
		{
			"unsupported item type",
			model.Issue{ItemType: model.ItemType("menu"), ItemID: 1},
			model.Fix{Field: "title", SuggestedValue: "x"},
			model.ErrUnsupportedItemType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := applicator.Apply(ctx, tt.issue, tt.fix); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("missing item", func(t *testing.T) {
		missing := model.Issue{ItemType: model.ItemProduct, ItemID: 9999}
		err := applicator.Apply(ctx, missing, model.Fix{Field: "title", SuggestedValue: "x"})
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("failed apply leaves no log row", func(t *testing.T) {
		missing := model.Issue{ItemType: model.ItemProduct, ItemID: 9999}
		_ = applicator.Apply(ctx, missing, model.Fix{Field: "title", SuggestedValue: "x"})
		recs, err := s.ListFixes(ctx, model.ItemProduct, 9999)
		if err != nil {
			t.Fatalf("ListFixes: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("got %d log rows for a failed apply", len(recs))
		}
	})
}

func TestApply_SequentialFixesLogged(t *testing.T) {
	s := applyTestStore(t)
	ctx := context.Background()

	id, err := s.InsertProduct(ctx, &model.Product{Title: "Red Shoes"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	applicator := NewApplicator(s)
	issue := model.Issue{ItemType: model.ItemProduct, ItemID: id}

	for i := 0; i < 3; i++ {
		fix := model.Fix{Field: "title", SuggestedValue: "Title revision " + strconv.Itoa(i)}
		if err := applicator.Apply(ctx, issue, fix); err != nil {
			t.Fatalf("Apply %d: %v", i, err)
		}
	}

	recs, err := s.ListFixes(ctx, model.ItemProduct, id)
	if err != nil {
		t.Fatalf("ListFixes: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d log rows, want 3", len(recs))
	}
	seen := map[string]bool{}
	for _, rec := range recs {
		if seen[rec.ID] {
			t.Errorf("duplicate log id %q", rec.ID)
		}
		seen[rec.ID] = true
	}
}
