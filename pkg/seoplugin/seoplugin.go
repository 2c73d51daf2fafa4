// Package seoplugin resolves fields that third-party SEO plugins may own.
// Lookups are an ordered provider list evaluated in sequence: first
// matching provider wins. The same pattern serves any multi-plugin
// compatibility field, not just the meta description.
package seoplugin

import (
	"context"

	"github.com/shoplens/seoaudit/pkg/htmltext"
	"github.com/shoplens/seoaudit/pkg/model"
)

// Provider is one known SEO plugin and the metadata key it stores meta
// descriptions under. Order in Providers is the resolution priority.
type Provider struct {
	Name    string
	MetaKey string
}

var Providers = []Provider{
	{Name: "yoast", MetaKey: "_yoast_wpseo_metadesc"},
	{Name: "rankmath", MetaKey: "rank_math_description"},
	{Name: "aioseo", MetaKey: "_aioseo_description"},
}

// ExcerptWords is how many words of the excerpt/short-description survive
// into the fallback meta description.
const ExcerptWords = 25

// MetaReader reads per-item metadata from the content store.
type MetaReader interface {
	GetMeta(ctx context.Context, itemType model.ItemType, itemID int64, key string) (string, error)
}

// ResolveMetaDescription walks the provider keys in priority order and
// returns the first non-empty value. When no plugin has one, fallback (an
// excerpt or short description) is stripped of markup and trimmed to
// ExcerptWords words with an ellipsis. Returns "" when nothing is set.
func ResolveMetaDescription(ctx context.Context, meta MetaReader, itemType model.ItemType, itemID int64, fallback string) (string, error) {
	for _, p := range Providers {
		v, err := meta.GetMeta(ctx, itemType, itemID, p.MetaKey)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	if fallback == "" {
		return "", nil
	}
	return htmltext.TrimWords(htmltext.StripTags(fallback), ExcerptWords, "..."), nil
}

// WriteKey returns the metadata key the active plugin stores meta
// descriptions under. ok is false when no known plugin is active, in which
// case the caller falls back to the platform field (short description for
// products, excerpt otherwise).
func WriteKey(activePlugin string) (string, bool) {
	for _, p := range Providers {
		if p.Name == activePlugin {
			return p.MetaKey, true
		}
	}
	return "", false
}
