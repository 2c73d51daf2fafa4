// Package store is the sqlite-backed content store: catalog reads, field
// mutations, per-item metadata, settings and the applied-fix log. The rest
// of the system consumes it through narrow consumer-side interfaces so any
// other backend can be substituted.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/shoplens/seoaudit/pkg/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps a SQLite database holding the audited catalog.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs pending migrations.
// Pass ":memory:" for an in-memory database (used by tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		var applied int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, name).Scan(&applied); err != nil {
			return err
		}
		if applied > 0 {
			continue
		}
		sqlBytes, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(sqlBytes)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, name); err != nil {
			return err
		}
	}
	return nil
}

const productColumns = `id, title, description, short_description, sku, price, regular_price,
	is_variable, stock_status, image_url, image_alt, permalink, rating, review_count, status`

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ShortDescription, &p.SKU,
		&p.Price, &p.RegularPrice, &p.IsVariable, &p.StockStatus, &p.ImageURL,
		&p.ImageAlt, &p.Permalink, &p.Rating, &p.ReviewCount, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// ListPublishedProducts returns up to limit published products, excluding
// excludeID. Used by duplicate detection.
func (s *Store) ListPublishedProducts(ctx context.Context, excludeID int64, limit int) ([]*model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products
		WHERE status = 'publish' AND id != ? ORDER BY id LIMIT ?`, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetTerm(ctx context.Context, id int64) (*model.Term, error) {
	var t model.Term
	err := s.db.QueryRowContext(ctx, `SELECT id, taxonomy, name, slug, description, parent_id, thumbnail_url
		FROM terms WHERE id = ?`, id).
		Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.ParentID, &t.ThumbnailURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	err := s.db.QueryRowContext(ctx, `SELECT id, type, title, content, excerpt, permalink, featured_image, status
		FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.Type, &p.Title, &p.Content, &p.Excerpt, &p.Permalink, &p.FeaturedImage, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TermsFor returns the terms of one taxonomy assigned to an item.
func (s *Store) TermsFor(ctx context.Context, itemType model.ItemType, itemID int64, taxonomy string) ([]*model.Term, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.taxonomy, t.name, t.slug, t.description, t.parent_id, t.thumbnail_url
		FROM terms t
		JOIN term_relationships r ON r.term_id = t.id
		WHERE r.item_type = ? AND r.item_id = ? AND t.taxonomy = ?
		ORDER BY t.id`, itemType, itemID, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []*model.Term
	for rows.Next() {
		var t model.Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.ParentID, &t.ThumbnailURL); err != nil {
			return nil, err
		}
		terms = append(terms, &t)
	}
	return terms, rows.Err()
}

// ProductsInTerm returns up to limit product titles assigned to a term.
func (s *Store) ProductsInTerm(ctx context.Context, termID int64, limit int) ([]*model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+qualify(productColumns, "p")+` FROM products p
		JOIN term_relationships r ON r.item_id = p.id AND r.item_type = 'product'
		WHERE r.term_id = ? ORDER BY p.id LIMIT ?`, termID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) CountProductsInTerm(ctx context.Context, termID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM term_relationships
		WHERE term_id = ? AND item_type = 'product'`, termID).Scan(&n)
	return n, err
}

func (s *Store) Attributes(ctx context.Context, productID int64) ([]model.Attribute, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM product_attributes
		WHERE product_id = ? ORDER BY name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs []model.Attribute
	for rows.Next() {
		var a model.Attribute
		if err := rows.Scan(&a.Name, &a.Value); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// LinkedProducts returns products linked to productID with the given kind
// ("related" or "upsell"), up to limit.
func (s *Store) LinkedProducts(ctx context.Context, productID int64, kind string, limit int) ([]*model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+qualify(productColumns, "p")+` FROM products p
		JOIN product_links l ON l.linked_id = p.id
		WHERE l.product_id = ? AND l.kind = ? ORDER BY p.id LIMIT ?`, productID, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetProductTitle(ctx context.Context, id int64, v string) error {
	return s.updateOne(ctx, `UPDATE products SET title = ? WHERE id = ?`, v, id)
}

func (s *Store) SetProductDescription(ctx context.Context, id int64, v string) error {
	return s.updateOne(ctx, `UPDATE products SET description = ? WHERE id = ?`, v, id)
}

func (s *Store) SetProductShortDescription(ctx context.Context, id int64, v string) error {
	return s.updateOne(ctx, `UPDATE products SET short_description = ? WHERE id = ?`, v, id)
}

func (s *Store) SetTermName(ctx context.Context, id int64, v string) error {
	return s.updateOne(ctx, `UPDATE terms SET name = ? WHERE id = ?`, v, id)
}

func (s *Store) SetTermDescription(ctx context.Context, id int64, v string) error {
	return s.updateOne(ctx, `UPDATE terms SET description = ? WHERE id = ?`, v, id)
}

func (s *Store) SetPostTitle(ctx context.Context, id int64, v string) error {
	return s.updateOne(ctx, `UPDATE posts SET title = ? WHERE id = ?`, v, id)
}

func (s *Store) SetPostContent(ctx context.Context, id int64, v string) error {
	return s.updateOne(ctx, `UPDATE posts SET content = ? WHERE id = ?`, v, id)
}

func (s *Store) SetPostExcerpt(ctx context.Context, id int64, v string) error {
	return s.updateOne(ctx, `UPDATE posts SET excerpt = ? WHERE id = ?`, v, id)
}

// GetMeta returns the metadata value for (itemType, itemID, key), or ""
// when unset. Absent metadata is not an error.
func (s *Store) GetMeta(ctx context.Context, itemType model.ItemType, itemID int64, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM item_meta
		WHERE item_type = ? AND item_id = ? AND key = ?`, itemType, itemID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Store) SetMeta(ctx context.Context, itemType model.ItemType, itemID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO item_meta (item_type, item_id, key, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (item_type, item_id, key) DO UPDATE SET value = excluded.value`,
		itemType, itemID, key, value)
	return err
}

func (s *Store) DeleteMeta(ctx context.Context, itemType model.ItemType, itemID int64, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM item_meta
		WHERE item_type = ? AND item_id = ? AND key = ?`, itemType, itemID, key)
	return err
}

func (s *Store) getSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// SiteSettings assembles the store-wide settings the site checks run on.
func (s *Store) SiteSettings(ctx context.Context) (*model.SiteSettings, error) {
	settings := &model.SiteSettings{}
	var err error
	if settings.URL, err = s.getSetting(ctx, "site_url"); err != nil {
		return nil, err
	}
	if settings.Title, err = s.getSetting(ctx, "site_title"); err != nil {
		return nil, err
	}
	if settings.Tagline, err = s.getSetting(ctx, "site_tagline"); err != nil {
		return nil, err
	}
	if settings.PermalinkStructure, err = s.getSetting(ctx, "permalink_structure"); err != nil {
		return nil, err
	}
	discourage, err := s.getSetting(ctx, "discourage_indexing")
	if err != nil {
		return nil, err
	}
	settings.DiscourageIndexing = discourage == "1"
	if settings.ShowOnFront, err = s.getSetting(ctx, "show_on_front"); err != nil {
		return nil, err
	}
	front, err := s.getSetting(ctx, "page_on_front")
	if err != nil {
		return nil, err
	}
	if front != "" {
		if settings.PageOnFront, err = strconv.ParseInt(front, 10, 64); err != nil {
			return nil, fmt.Errorf("page_on_front setting: %w", err)
		}
	}
	return settings, nil
}

// BrandSettings reads the saved brand profile. Absent settings return an
// empty struct; defaults are applied by the context builder.
func (s *Store) BrandSettings(ctx context.Context) (*model.BrandSettings, error) {
	raw, err := s.getSetting(ctx, "brand_settings")
	if err != nil {
		return nil, err
	}
	brand := &model.BrandSettings{}
	if raw == "" {
		return brand, nil
	}
	if err := json.Unmarshal([]byte(raw), brand); err != nil {
		return nil, fmt.Errorf("brand_settings setting: %w", err)
	}
	return brand, nil
}

// Balance returns the remaining credit balance for API-backed checks.
func (s *Store) Balance(ctx context.Context) (int, error) {
	raw, err := s.getSetting(ctx, "balance")
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("balance setting: %w", err)
	}
	return n, nil
}

// ActiveSEOPlugin returns the slug of the active third-party SEO plugin
// ("yoast", "rankmath", "aioseo") or "" when none is active.
func (s *Store) ActiveSEOPlugin(ctx context.Context) (string, error) {
	return s.getSetting(ctx, "active_seo_plugin")
}

// RecordFix appends one row to the applied-fix audit log.
func (s *Store) RecordFix(ctx context.Context, rec *model.FixRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO fix_log
		(id, item_type, item_id, field, previous_value, new_value, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ItemType, rec.ItemID, rec.Field, rec.PreviousValue, rec.NewValue, rec.AppliedAt)
	return err
}

// ListFixes returns the audit-log rows for one item, newest first.
func (s *Store) ListFixes(ctx context.Context, itemType model.ItemType, itemID int64) ([]*model.FixRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, item_type, item_id, field, previous_value, new_value, applied_at
		FROM fix_log WHERE item_type = ? AND item_id = ? ORDER BY applied_at DESC`, itemType, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*model.FixRecord
	for rows.Next() {
		var r model.FixRecord
		if err := rows.Scan(&r.ID, &r.ItemType, &r.ItemID, &r.Field, &r.PreviousValue, &r.NewValue, &r.AppliedAt); err != nil {
			return nil, err
		}
		recs = append(recs, &r)
	}
	return recs, rows.Err()
}

// qualify prefixes each column in a comma-separated list with a table
// alias, for joined queries sharing scanProduct.
func qualify(columns, alias string) string {
	out := ""
	for i, c := range splitColumns(columns) {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + c
	}
	return out
}

func splitColumns(columns string) []string {
	var cols []string
	cur := ""
	for _, r := range columns {
		switch r {
		case ',':
			cols = append(cols, cur)
			cur = ""
		case ' ', '\n', '\t':
			// skip whitespace between columns
		default:
			cur += string(r)
		}
	}
	if cur != "" {
		cols = append(cols, cur)
	}
	return cols
}
