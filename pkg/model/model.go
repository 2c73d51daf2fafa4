package model

import "time"

// ItemType identifies which kind of content entity is under audit.
type ItemType string

const (
	ItemProduct  ItemType = "product"
	ItemCategory ItemType = "category"
	ItemPage     ItemType = "page"
	ItemPost     ItemType = "post"
)

// Severity of a detected issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Check identifies a single rule in the detector. The set is closed: the
// fix-type mapping only knows these values, anything else is not fixable.
type Check string

const (
	CheckTitleLength            Check = "title_length"
	CheckMetaDescriptionMissing Check = "meta_description_missing"
	CheckMetaDescriptionLength  Check = "meta_description_length"
	CheckImageMissing           Check = "image_missing"
	CheckImageAltMissing        Check = "image_alt_missing"
	CheckContentThin            Check = "content_thin"
	CheckNoHeadings             Check = "no_headings"
	CheckNoInternalLinks        Check = "no_internal_links"
	CheckPriceMissing           Check = "price_missing"
	CheckSKUMissing             Check = "sku_missing"
	CheckFocusKeyword           Check = "focus_keyword"

	CheckNameTooShort       Check = "name_too_short"
	CheckDescriptionMissing Check = "description_missing"
	CheckDescriptionShort   Check = "description_short"
	CheckThumbnailMissing   Check = "thumbnail_missing"
	CheckNoProducts         Check = "no_products"
	CheckNonDescriptiveSlug Check = "non_descriptive_slug"

	CheckFeaturedImageMissing Check = "featured_image_missing"
	CheckImagesAltMissing     Check = "images_alt_missing"
	CheckUncategorized        Check = "uncategorized"

	CheckPlainPermalinks     Check = "plain_permalinks"
	CheckSearchEngineBlocked Check = "search_engine_blocked"
	CheckNoHTTPS             Check = "no_https"
	CheckSitemapMissing      Check = "sitemap_missing"
	CheckRobotsMissing       Check = "robots_missing"
	CheckSiteTitleMissing    Check = "site_title_missing"
	CheckDefaultTagline      Check = "default_tagline"

	CheckSiteTitleShort      Check = "site_title_short"
	CheckHomepageMetaMissing Check = "homepage_meta_missing"
	CheckHomepageShowsPosts  Check = "homepage_shows_posts"
	CheckHomepageContentThin Check = "homepage_content_thin"
)

// Issue is a single detected SEO problem. ItemType and ItemID are filled in
// by the caller before the issue is handed to the fixer; the detector itself
// only knows about the item it was given.
type Issue struct {
	Check        Check    `json:"check"`
	Severity     Severity `json:"severity"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	CurrentValue string   `json:"current_value"`
	ItemType     ItemType `json:"item_type,omitempty"`
	ItemID       int64    `json:"item_id,omitempty"`
}

// FixType is the remediation category an issue maps to. It governs the
// prompt shape and the length constraints applied to the suggestion.
type FixType string

const (
	FixTitle           FixType = "title"
	FixMetaDescription FixType = "meta_description"
	FixContent         FixType = "content"
	FixKeyword         FixType = "keyword"
)

// Requirements are the fix-type-specific constraints sent along with a fix
// request so the generative model produces output we can actually use.
type Requirements struct {
	MinLength       int  `json:"min_length,omitempty"`
	MaxLength       int  `json:"max_length,omitempty"`
	IncludeKeywords bool `json:"include_keywords,omitempty"`
	Compelling      bool `json:"compelling,omitempty"`
	Unique          bool `json:"unique,omitempty"`
	CallToAction    bool `json:"call_to_action,omitempty"`
}

// IssueSummary is the trimmed view of an Issue embedded in a fix request.
type IssueSummary struct {
	Check        Check    `json:"check"`
	Severity     Severity `json:"severity"`
	CurrentValue string   `json:"current_value"`
	Description  string   `json:"description"`
}

// FixRequest is the assembled payload for one fix generation call. It is
// ephemeral: built, sent, and discarded.
type FixRequest struct {
	FixType      FixType      `json:"fix_type"`
	Item         *ItemContext `json:"item"`
	Issue        IssueSummary `json:"issue"`
	Store        StoreContext `json:"store_context"`
	Requirements Requirements `json:"requirements"`
}

// Fix is a proposed field-level change addressing one issue.
type Fix struct {
	Field          string `json:"field"`
	CurrentValue   string `json:"current_value"`
	SuggestedValue string `json:"suggested_value"`
	Explanation    string `json:"explanation,omitempty"`
	TokensUsed     int    `json:"tokens_used,omitempty"`
}

// Heading is one extracted heading tag from rendered content.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Attribute is a flattened product attribute name/value pair.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ItemContext is the structured snapshot of an item handed to the
// generative model. Shared fields sit at the top level; exactly one of the
// variant payloads is set, matching Type.
type ItemContext struct {
	Type            ItemType         `json:"type"`
	ID              int64            `json:"id"`
	Title           string           `json:"title"`
	URL             string           `json:"url,omitempty"`
	MetaDescription string           `json:"meta_description,omitempty"`
	WordCount       int              `json:"word_count,omitempty"`
	Product         *ProductContext  `json:"product,omitempty"`
	Category        *CategoryContext `json:"category,omitempty"`
	Content         *ContentContext  `json:"content,omitempty"`
}

type ProductContext struct {
	Description      string      `json:"description"`
	ShortDescription string      `json:"short_description"`
	Price            string      `json:"price"`
	RegularPrice     string      `json:"regular_price,omitempty"`
	IsVariable       bool        `json:"is_variable"`
	StockStatus      string      `json:"stock_status"`
	SKU              string      `json:"sku,omitempty"`
	Rating           float64     `json:"rating"`
	ReviewCount      int         `json:"review_count"`
	Categories       []string    `json:"categories"`
	Tags             []string    `json:"tags"`
	Attributes       []Attribute `json:"attributes"`
}

type CategoryContext struct {
	Description    string   `json:"description"`
	Slug           string   `json:"slug"`
	Parent         string   `json:"parent,omitempty"`
	ProductCount   int      `json:"product_count"`
	SampleProducts []string `json:"sample_products"`
}

type ContentContext struct {
	Body       string    `json:"body"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Headings   []Heading `json:"headings"`
	Categories []string  `json:"categories"`
	Tags       []string  `json:"tags"`
}

// StoreContext is the brand voice/tone/market snapshot included in every
// fix request so suggestions stay on-brand.
type StoreContext struct {
	StoreName    string   `json:"store_name"`
	Tagline      string   `json:"tagline,omitempty"`
	BrandVoice   string   `json:"brand_voice"`
	BrandTone    string   `json:"brand_tone"`
	TargetMarket string   `json:"target_market,omitempty"`
	USPs         []string `json:"usp,omitempty"`
	Industry     string   `json:"industry,omitempty"`
}

// Product is a catalog product as stored.
type Product struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	ShortDescription string  `json:"short_description"`
	SKU              string  `json:"sku"`
	Price            string  `json:"price"`
	RegularPrice     string  `json:"regular_price"`
	IsVariable       bool    `json:"is_variable"`
	StockStatus      string  `json:"stock_status"`
	ImageURL         string  `json:"image_url"`
	ImageAlt         string  `json:"image_alt"`
	Permalink        string  `json:"permalink"`
	Rating           float64 `json:"rating"`
	ReviewCount      int     `json:"review_count"`
	Status           string  `json:"status"`
}

// Term is a taxonomy term (product category, product tag, post category,
// post tag) as stored.
type Term struct {
	ID           int64  `json:"id"`
	Taxonomy     string `json:"taxonomy"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ParentID     int64  `json:"parent_id"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Post is a page or blog post as stored. Type is "post" or "page".
type Post struct {
	ID            int64  `json:"id"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	Permalink     string `json:"permalink"`
	FeaturedImage string `json:"featured_image"`
	Status        string `json:"status"`
}

// BrandSettings is the saved brand profile used to build StoreContext.
type BrandSettings struct {
	Voice        string   `json:"voice,omitempty"`
	Tone         string   `json:"tone,omitempty"`
	TargetMarket string   `json:"target_market,omitempty"`
	USPs         []string `json:"usp,omitempty"`
	Industry     string   `json:"industry,omitempty"`
}

// SiteSettings are the store-wide settings the site-level checks run
// against. They are passed in explicitly so the checks stay pure.
type SiteSettings struct {
	URL                string `json:"url"`
	Title              string `json:"title"`
	Tagline            string `json:"tagline"`
	PermalinkStructure string `json:"permalink_structure"`
	DiscourageIndexing bool   `json:"discourage_indexing"`
	ShowOnFront        string `json:"show_on_front"` // "page" or "posts"
	PageOnFront        int64  `json:"page_on_front"`
}

// ScoreMetaKey is the metadata key the last computed item score is cached
// under. Applying a fix deletes it so the next read recomputes.
const ScoreMetaKey = "_seo_score"

// FixRecord is one row in the applied-fix audit log.
type FixRecord struct {
	ID            string    `json:"id"`
	ItemType      ItemType  `json:"item_type"`
	ItemID        int64     `json:"item_id"`
	Field         string    `json:"field"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
	AppliedAt     time.Time `json:"applied_at"`
}
