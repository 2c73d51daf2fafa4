// Package snapshot assembles the structured item and store snapshots the
// generative model needs to produce a grounded fix.
package snapshot

import (
	"context"

	"github.com/shoplens/seoaudit/pkg/htmltext"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/seoplugin"
)

// Defaults applied when no brand profile is saved.
const (
	DefaultBrandVoice = "professional"
	DefaultBrandTone  = "friendly"
)

// SampleProducts is how many products of a category are named in its
// context snapshot.
const SampleProducts = 5

// Catalog is the slice of the content store the builder reads.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	GetTerm(ctx context.Context, id int64) (*model.Term, error)
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	TermsFor(ctx context.Context, itemType model.ItemType, itemID int64, taxonomy string) ([]*model.Term, error)
	Attributes(ctx context.Context, productID int64) ([]model.Attribute, error)
	ProductsInTerm(ctx context.Context, termID int64, limit int) ([]*model.Product, error)
	CountProductsInTerm(ctx context.Context, termID int64) (int, error)
	GetMeta(ctx context.Context, itemType model.ItemType, itemID int64, key string) (string, error)
	SiteSettings(ctx context.Context) (*model.SiteSettings, error)
	BrandSettings(ctx context.Context) (*model.BrandSettings, error)
}

type Builder struct {
	catalog Catalog
}

func New(catalog Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// BuildItemContext resolves one item into its context snapshot. A missing
// item surfaces the store's not-found error unchanged.
func (b *Builder) BuildItemContext(ctx context.Context, itemType model.ItemType, itemID int64) (*model.ItemContext, error) {
	switch itemType {
	case model.ItemProduct:
		return b.buildProduct(ctx, itemID)
	case model.ItemCategory:
		return b.buildCategory(ctx, itemID)
	case model.ItemPage, model.ItemPost:
		return b.buildContent(ctx, itemType, itemID)
	default:
		return nil, model.ErrUnsupportedItemType
	}
}

func (b *Builder) buildProduct(ctx context.Context, id int64) (*model.ItemContext, error) {
	p, err := b.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	categories, err := termNames(ctx, b.catalog, model.ItemProduct, id, "product_cat")
	if err != nil {
		return nil, err
	}
	tags, err := termNames(ctx, b.catalog, model.ItemProduct, id, "product_tag")
	if err != nil {
		return nil, err
	}
	attrs, err := b.catalog.Attributes(ctx, id)
	if err != nil {
		return nil, err
	}
	meta, err := seoplugin.ResolveMetaDescription(ctx, b.catalog, model.ItemProduct, id, p.ShortDescription)
	if err != nil {
		return nil, err
	}

	return &model.ItemContext{
		Type:            model.ItemProduct,
		ID:              p.ID,
		Title:           p.Title,
		URL:             p.Permalink,
		MetaDescription: meta,
		WordCount:       htmltext.WordCount(p.Description + " " + p.ShortDescription),
		Product: &model.ProductContext{
			Description:      p.Description,
			ShortDescription: p.ShortDescription,
			Price:            p.Price,
			RegularPrice:     p.RegularPrice,
			IsVariable:       p.IsVariable,
			StockStatus:      p.StockStatus,
			SKU:              p.SKU,
			Rating:           p.Rating,
			ReviewCount:      p.ReviewCount,
			Categories:       categories,
			Tags:             tags,
			Attributes:       attrs,
		},
	}, nil
}

func (b *Builder) buildCategory(ctx context.Context, id int64) (*model.ItemContext, error) {
	term, err := b.catalog.GetTerm(ctx, id)
	if err != nil {
		return nil, err
	}

	parent := ""
	if term.ParentID != 0 {
		if pt, err := b.catalog.GetTerm(ctx, term.ParentID); err == nil {
			parent = pt.Name
		}
	}

	count, err := b.catalog.CountProductsInTerm(ctx, id)
	if err != nil {
		return nil, err
	}
	samples, err := b.catalog.ProductsInTerm(ctx, id, SampleProducts)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(samples))
	for _, p := range samples {
		names = append(names, p.Title)
	}

	return &model.ItemContext{
		Type:      model.ItemCategory,
		ID:        term.ID,
		Title:     term.Name,
		WordCount: htmltext.WordCount(term.Description),
		Category: &model.CategoryContext{
			Description:    term.Description,
			Slug:           term.Slug,
			Parent:         parent,
			ProductCount:   count,
			SampleProducts: names,
		},
	}, nil
}

func (b *Builder) buildContent(ctx context.Context, itemType model.ItemType, id int64) (*model.ItemContext, error) {
	post, err := b.catalog.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	categories, err := termNames(ctx, b.catalog, itemType, id, "category")
	if err != nil {
		return nil, err
	}
	tags, err := termNames(ctx, b.catalog, itemType, id, "post_tag")
	if err != nil {
		return nil, err
	}
	meta, err := seoplugin.ResolveMetaDescription(ctx, b.catalog, itemType, id, post.Excerpt)
	if err != nil {
		return nil, err
	}

	return &model.ItemContext{
		Type:            itemType,
		ID:              post.ID,
		Title:           post.Title,
		URL:             post.Permalink,
		MetaDescription: meta,
		WordCount:       htmltext.WordCount(post.Content),
		Content: &model.ContentContext{
			Body:       post.Content,
			Excerpt:    post.Excerpt,
			Headings:   htmltext.Headings(post.Content),
			Categories: categories,
			Tags:       tags,
		},
	}, nil
}

// BuildStoreContext reads the saved brand profile and fills in the fixed
// defaults where it is silent.
func (b *Builder) BuildStoreContext(ctx context.Context) (model.StoreContext, error) {
	site, err := b.catalog.SiteSettings(ctx)
	if err != nil {
		return model.StoreContext{}, err
	}
	brand, err := b.catalog.BrandSettings(ctx)
	if err != nil {
		return model.StoreContext{}, err
	}

	sc := model.StoreContext{
		StoreName:    site.Title,
		Tagline:      site.Tagline,
		BrandVoice:   brand.Voice,
		BrandTone:    brand.Tone,
		TargetMarket: brand.TargetMarket,
		USPs:         brand.USPs,
		Industry:     brand.Industry,
	}
	if sc.BrandVoice == "" {
		sc.BrandVoice = DefaultBrandVoice
	}
	if sc.BrandTone == "" {
		sc.BrandTone = DefaultBrandTone
	}
	return sc, nil
}

func termNames(ctx context.Context, catalog Catalog, itemType model.ItemType, itemID int64, taxonomy string) ([]string, error) {
	terms, err := catalog.TermsFor(ctx, itemType, itemID, taxonomy)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		names = append(names, t.Name)
	}
	return names, nil
}
