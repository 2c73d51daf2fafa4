// Package web exposes the audit and fix pipeline over HTTP for admin
// dashboards and automation.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shoplens/seoaudit/pkg/checks"
	"github.com/shoplens/seoaudit/pkg/fixer"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/store"
)

const maxBodySize = 1 << 20 // 1MB

// Deps carries the wired pipeline pieces the handlers dispatch to.
type Deps struct {
	Store      *store.Store
	Auditor    *checks.Auditor
	API        *checks.APIChecks
	Generator  *fixer.Generator
	Applicator *fixer.Applicator
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Get("/site/issues", handleSiteIssues(deps))
	r.Get("/items/{type}/{id}/issues", handleItemIssues(deps))
	r.Get("/items/{type}/{id}/duplicates", handleDuplicates(deps))
	r.Get("/items/{type}/{id}/schema", handleSchema(deps))
	r.Get("/items/{type}/{id}/links", handleLinks(deps))
	r.Get("/items/{type}/{id}/fixes", handleListFixes(deps))
	r.Post("/analyze/keyword-density", handleKeywordDensity(deps))
	r.Post("/analyze/quality", handleContentQuality(deps))
	r.Post("/fixes/generate", handleGenerateFix(deps))
	r.Post("/fixes/apply", handleApplyFix(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleSiteIssues(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issues, err := deps.Auditor.AuditSite(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"score":  checks.Score(issues),
			"issues": issues,
		})
	}
}

func handleItemIssues(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemType, id, err := itemParams(r)
		if err != nil {
			respondError(w, err)
			return
		}
		issues, err := deps.Auditor.AuditItem(r.Context(), itemType, id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"score":  checks.Score(issues),
			"issues": issues,
		})
	}
}

func handleDuplicates(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemType, id, err := itemParams(r)
		if err != nil {
			respondError(w, err)
			return
		}
		content, err := itemContent(r.Context(), deps.Store, itemType, id)
		if err != nil {
			respondError(w, err)
			return
		}
		report, err := deps.API.DetectDuplicates(r.Context(), content, id, itemType)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

func handleSchema(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemType, id, err := itemParams(r)
		if err != nil {
			respondError(w, err)
			return
		}
		report, err := deps.API.ValidateSchema(r.Context(), id, itemType)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

func handleLinks(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemType, id, err := itemParams(r)
		if err != nil {
			respondError(w, err)
			return
		}
		suggestions, err := deps.API.SuggestInternalLinks(r.Context(), id, itemType)
		if err != nil {
			respondError(w, err)
			return
		}
		if suggestions == nil {
			suggestions = []checks.LinkSuggestion{}
		}
		respondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
	}
}

func handleListFixes(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemType, id, err := itemParams(r)
		if err != nil {
			respondError(w, err)
			return
		}
		recs, err := deps.Store.ListFixes(r.Context(), itemType, id)
		if err != nil {
			respondError(w, err)
			return
		}
		if recs == nil {
			recs = []*model.FixRecord{}
		}
		respondJSON(w, http.StatusOK, map[string]any{"fixes": recs})
	}
}

type keywordDensityRequest struct {
	Content      string `json:"content"`
	FocusKeyword string `json:"focus_keyword"`
}

func handleKeywordDensity(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req keywordDensityRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, err)
			return
		}
		if req.Content == "" || req.FocusKeyword == "" {
			respondError(w, fmt.Errorf("%w: content and focus_keyword are required", model.ErrInvalidInput))
			return
		}
		analysis, err := deps.API.AnalyzeKeywordDensity(r.Context(), req.Content, req.FocusKeyword)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, analysis)
	}
}

type contentQualityRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

func handleContentQuality(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contentQualityRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, err)
			return
		}
		if req.Content == "" {
			respondError(w, fmt.Errorf("%w: content is required", model.ErrInvalidInput))
			return
		}
		if req.ContentType == "" {
			req.ContentType = "product"
		}
		analysis, err := deps.API.CheckContentQuality(r.Context(), req.Content, req.ContentType)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, analysis)
	}
}

func handleGenerateFix(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var issue model.Issue
		if err := decodeBody(w, r, &issue); err != nil {
			respondError(w, err)
			return
		}
		fix, err := deps.Generator.GenerateFix(r.Context(), issue)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, fix)
	}
}

type applyFixRequest struct {
	Issue model.Issue `json:"issue"`
	Fix   model.Fix   `json:"fix"`
}

func handleApplyFix(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req applyFixRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := deps.Applicator.Apply(r.Context(), req.Issue, req.Fix); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "applied"})
	}
}

func itemParams(r *http.Request) (model.ItemType, int64, error) {
	itemType := model.ItemType(chi.URLParam(r, "type"))
	switch itemType {
	case model.ItemProduct, model.ItemCategory, model.ItemPage, model.ItemPost:
	default:
		return "", 0, fmt.Errorf("%w: %q", model.ErrUnsupportedItemType, itemType)
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("%w: item id must be a positive integer", model.ErrInvalidInput)
	}
	return itemType, id, nil
}

// itemContent loads the comparable text body of an item for the duplicate
// scan.
func itemContent(ctx context.Context, s *store.Store, itemType model.ItemType, id int64) (string, error) {
	switch itemType {
	case model.ItemProduct:
		p, err := s.GetProduct(ctx, id)
		if err != nil {
			return "", err
		}
		return p.Description + " " + p.ShortDescription, nil
	case model.ItemCategory:
		t, err := s.GetTerm(ctx, id)
		if err != nil {
			return "", err
		}
		return t.Description, nil
	default:
		p, err := s.GetPost(ctx, id)
		if err != nil {
			return "", err
		}
		return p.Content, nil
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", model.ErrInvalidInput, err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	errType := "api_error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
		errType = "not_found"
	case errors.Is(err, model.ErrInsufficientBalance):
		code = http.StatusPaymentRequired
		errType = "insufficient_balance"
	case errors.Is(err, model.ErrInvalidInput):
		code = http.StatusBadRequest
		errType = "invalid_request_error"
	case errors.Is(err, model.ErrUnsupportedFix),
		errors.Is(err, model.ErrUnsupportedItemType),
		errors.Is(err, model.ErrUnsupportedField):
		code = http.StatusUnprocessableEntity
		errType = "unsupported"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": err.Error(),
			"type":    errType,
		},
	})
}
