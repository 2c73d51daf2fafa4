package fixer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/seoplugin"
)

// Mutator is the slice of the content store the applicator writes.
type Mutator interface {
	SetProductTitle(ctx context.Context, id int64, v string) error
	SetProductDescription(ctx context.Context, id int64, v string) error
	SetProductShortDescription(ctx context.Context, id int64, v string) error
	SetTermName(ctx context.Context, id int64, v string) error
	SetTermDescription(ctx context.Context, id int64, v string) error
	SetPostTitle(ctx context.Context, id int64, v string) error
	SetPostContent(ctx context.Context, id int64, v string) error
	SetPostExcerpt(ctx context.Context, id int64, v string) error
	SetMeta(ctx context.Context, itemType model.ItemType, itemID int64, key, value string) error
	DeleteMeta(ctx context.Context, itemType model.ItemType, itemID int64, key string) error
	ActiveSEOPlugin(ctx context.Context) (string, error)
	RecordFix(ctx context.Context, rec *model.FixRecord) error
}

// Applicator commits accepted fixes. A fix applies to exactly one field
// and either lands fully or not at all; on success the item's cached score
// is invalidated and the fix is logged.
type Applicator struct {
	store Mutator
}

func NewApplicator(store Mutator) *Applicator {
	return &Applicator{store: store}
}

func (a *Applicator) Apply(ctx context.Context, issue model.Issue, fix model.Fix) error {
	if fix.Field == "" {
		return fmt.Errorf("%w: fix has no target field", model.ErrInvalidInput)
	}
	if fix.SuggestedValue == "" {
		return fmt.Errorf("%w: fix has no suggested value", model.ErrInvalidInput)
	}

	var err error
	switch issue.ItemType {
	case model.ItemProduct:
		err = a.applyProduct(ctx, issue.ItemID, fix)
	case model.ItemCategory:
		err = a.applyCategory(ctx, issue.ItemID, fix)
	case model.ItemPage, model.ItemPost:
		err = a.applyPost(ctx, issue.ItemType, issue.ItemID, fix)
	default:
		err = fmt.Errorf("%w: %q", model.ErrUnsupportedItemType, issue.ItemType)
	}
	if err != nil {
		return err
	}

	if err := a.store.DeleteMeta(ctx, issue.ItemType, issue.ItemID, model.ScoreMetaKey); err != nil {
		return fmt.Errorf("invalidating score cache: %w", err)
	}

	return a.store.RecordFix(ctx, &model.FixRecord{
		ID:            uuid.NewString(),
		ItemType:      issue.ItemType,
		ItemID:        issue.ItemID,
		Field:         fix.Field,
		PreviousValue: fix.CurrentValue,
		NewValue:      fix.SuggestedValue,
		AppliedAt:     time.Now().UTC(),
	})
}

func (a *Applicator) applyProduct(ctx context.Context, id int64, fix model.Fix) error {
	switch fix.Field {
	case "title":
		return a.store.SetProductTitle(ctx, id, fix.SuggestedValue)
	case "meta_description":
		return a.writeMetaDescription(ctx, model.ItemProduct, id, fix.SuggestedValue, a.store.SetProductShortDescription)
	case "description", "content":
		return a.store.SetProductDescription(ctx, id, fix.SuggestedValue)
	default:
		return fmt.Errorf("%w: %q on product", model.ErrUnsupportedField, fix.Field)
	}
}

func (a *Applicator) applyCategory(ctx context.Context, id int64, fix model.Fix) error {
	switch fix.Field {
	case "title":
		return a.store.SetTermName(ctx, id, fix.SuggestedValue)
	case "meta_description":
		// Categories have no excerpt; without a plugin the description is
		// the value search engines fall back to.
		return a.writeMetaDescription(ctx, model.ItemCategory, id, fix.SuggestedValue, a.store.SetTermDescription)
	case "description", "content":
		return a.store.SetTermDescription(ctx, id, fix.SuggestedValue)
	default:
		return fmt.Errorf("%w: %q on category", model.ErrUnsupportedField, fix.Field)
	}
}

func (a *Applicator) applyPost(ctx context.Context, itemType model.ItemType, id int64, fix model.Fix) error {
	switch fix.Field {
	case "title":
		return a.store.SetPostTitle(ctx, id, fix.SuggestedValue)
	case "meta_description":
		return a.writeMetaDescription(ctx, itemType, id, fix.SuggestedValue, a.store.SetPostExcerpt)
	case "content":
		return a.store.SetPostContent(ctx, id, fix.SuggestedValue)
	default:
		return fmt.Errorf("%w: %q on post", model.ErrUnsupportedField, fix.Field)
	}
}

// writeMetaDescription writes through the plugin priority chain: the
// active plugin's storage key wins, the platform fallback field otherwise.
func (a *Applicator) writeMetaDescription(ctx context.Context, itemType model.ItemType, id int64, value string, fallback func(context.Context, int64, string) error) error {
	active, err := a.store.ActiveSEOPlugin(ctx)
	if err != nil {
		return err
	}
	if key, ok := seoplugin.WriteKey(active); ok {
		return a.store.SetMeta(ctx, itemType, id, key, value)
	}
	return fallback(ctx, id, value)
}
