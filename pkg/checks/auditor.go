package checks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/probe"
	"github.com/shoplens/seoaudit/pkg/seoplugin"
)

// Scoring weights for the cached per-item score. The score is a derived
// convenience value; issues are the source of truth.
const (
	scorePenaltyCritical = 15
	scorePenaltyWarning  = 5
)

// AuditStore is the slice of the content store the auditor reads, plus the
// score-cache write.
type AuditStore interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	GetTerm(ctx context.Context, id int64) (*model.Term, error)
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	TermsFor(ctx context.Context, itemType model.ItemType, itemID int64, taxonomy string) ([]*model.Term, error)
	CountProductsInTerm(ctx context.Context, termID int64) (int, error)
	GetMeta(ctx context.Context, itemType model.ItemType, itemID int64, key string) (string, error)
	SetMeta(ctx context.Context, itemType model.ItemType, itemID int64, key, value string) error
	SiteSettings(ctx context.Context) (*model.SiteSettings, error)
}

// Auditor wires the content store to the pure rule functions and stamps
// item identity onto the issues it returns.
type Auditor struct {
	store  AuditStore
	prober *probe.Prober
}

func NewAuditor(store AuditStore, prober *probe.Prober) *Auditor {
	return &Auditor{store: store, prober: prober}
}

// AuditItem runs the local rule list for one item and refreshes the cached
// score. The cache refresh is best-effort; the issues are returned either way.
func (a *Auditor) AuditItem(ctx context.Context, itemType model.ItemType, itemID int64) ([]model.Issue, error) {
	site, err := a.store.SiteSettings(ctx)
	if err != nil {
		return nil, err
	}

	var issues []model.Issue
	switch itemType {
	case model.ItemProduct:
		p, err := a.store.GetProduct(ctx, itemID)
		if err != nil {
			return nil, err
		}
		meta, err := seoplugin.ResolveMetaDescription(ctx, a.store, itemType, itemID, p.ShortDescription)
		if err != nil {
			return nil, err
		}
		issues = CheckProduct(p, meta, site.URL)

	case model.ItemCategory:
		term, err := a.store.GetTerm(ctx, itemID)
		if err != nil {
			return nil, err
		}
		count, err := a.store.CountProductsInTerm(ctx, itemID)
		if err != nil {
			return nil, err
		}
		issues = CheckCategory(term, count)

	case model.ItemPage:
		post, err := a.store.GetPost(ctx, itemID)
		if err != nil {
			return nil, err
		}
		meta, err := seoplugin.ResolveMetaDescription(ctx, a.store, itemType, itemID, post.Excerpt)
		if err != nil {
			return nil, err
		}
		issues = CheckPage(post, meta, site.URL)

	case model.ItemPost:
		post, err := a.store.GetPost(ctx, itemID)
		if err != nil {
			return nil, err
		}
		meta, err := seoplugin.ResolveMetaDescription(ctx, a.store, itemType, itemID, post.Excerpt)
		if err != nil {
			return nil, err
		}
		categories, err := a.store.TermsFor(ctx, itemType, itemID, "category")
		if err != nil {
			return nil, err
		}
		issues = CheckPost(post, meta, site.URL, categories)

	default:
		return nil, model.ErrUnsupportedItemType
	}

	for i := range issues {
		issues[i].ItemType = itemType
		issues[i].ItemID = itemID
	}

	score := Score(issues)
	if err := a.store.SetMeta(ctx, itemType, itemID, model.ScoreMetaKey, strconv.Itoa(score)); err != nil {
		return issues, fmt.Errorf("caching score: %w", err)
	}

	return issues, nil
}

// AuditSite runs the store-wide settings rules followed by the homepage
// rules. Probes are the only I/O beyond the settings reads.
func (a *Auditor) AuditSite(ctx context.Context) ([]model.Issue, error) {
	site, err := a.store.SiteSettings(ctx)
	if err != nil {
		return nil, err
	}

	issues := CheckSite(ctx, site, a.prober)

	var front *model.Post
	frontMeta := ""
	if site.ShowOnFront == "page" && site.PageOnFront != 0 {
		front, err = a.store.GetPost(ctx, site.PageOnFront)
		if err != nil {
			return nil, err
		}
		frontMeta, err = seoplugin.ResolveMetaDescription(ctx, a.store, model.ItemPage, front.ID, front.Excerpt)
		if err != nil {
			return nil, err
		}
	}
	issues = append(issues, CheckHomepage(site, front, frontMeta)...)

	return issues, nil
}

// Score folds an issue list into a 0-100 score.
func Score(issues []model.Issue) int {
	score := 100
	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityCritical:
			score -= scorePenaltyCritical
		default:
			score -= scorePenaltyWarning
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}
