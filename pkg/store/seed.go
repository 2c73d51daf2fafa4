package store

import (
	"context"

	"github.com/shoplens/seoaudit/pkg/model"
)

// Insert helpers used by the importer and by tests. A zero ID lets sqlite
// assign one; a non-zero ID is kept, so fixtures can pin ids.

func (s *Store) InsertProduct(ctx context.Context, p *model.Product) (int64, error) {
	if p.Status == "" {
		p.Status = "publish"
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO products
		(id, title, description, short_description, sku, price, regular_price,
		 is_variable, stock_status, image_url, image_alt, permalink, rating, review_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(p.ID), p.Title, p.Description, p.ShortDescription, p.SKU, p.Price, p.RegularPrice,
		p.IsVariable, p.StockStatus, p.ImageURL, p.ImageAlt, p.Permalink, p.Rating, p.ReviewCount, p.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) InsertTerm(ctx context.Context, t *model.Term) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO terms
		(id, taxonomy, name, slug, description, parent_id, thumbnail_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullableID(t.ID), t.Taxonomy, t.Name, t.Slug, t.Description, t.ParentID, t.ThumbnailURL)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) InsertPost(ctx context.Context, p *model.Post) (int64, error) {
	if p.Status == "" {
		p.Status = "publish"
	}
	if p.Type == "" {
		p.Type = "post"
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO posts
		(id, type, title, content, excerpt, permalink, featured_image, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(p.ID), p.Type, p.Title, p.Content, p.Excerpt, p.Permalink, p.FeaturedImage, p.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) AssignTerm(ctx context.Context, itemType model.ItemType, itemID, termID int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO term_relationships
		(item_type, item_id, term_id) VALUES (?, ?, ?)`, itemType, itemID, termID)
	return err
}

func (s *Store) LinkProducts(ctx context.Context, productID, linkedID int64, kind string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO product_links
		(product_id, linked_id, kind) VALUES (?, ?, ?)`, productID, linkedID, kind)
	return err
}

func (s *Store) SetAttribute(ctx context.Context, productID int64, name, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO product_attributes (product_id, name, value)
		VALUES (?, ?, ?)
		ON CONFLICT (product_id, name) DO UPDATE SET value = excluded.value`,
		productID, name, value)
	return err
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
