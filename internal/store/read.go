package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Revision returns the merchant's write counter. Unknown merchants report 0.
func (s *Store) Revision(ctx context.Context, merchantID string) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT revision FROM merchants WHERE id = ?`,
	), merchantID).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}

// GetBrand returns the merchant row, or ErrNotFound.
func (s *Store) GetBrand(ctx context.Context, merchantID string) (Brand, error) {
	var b Brand
	var updated string
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT id, name, category, tone, tagline, updated_at
		FROM merchants
		WHERE id = ?
	`), merchantID).Scan(&b.MerchantID, &b.Name, &b.Category, &b.Tone, &b.Tagline, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Brand{}, fmt.Errorf("get brand %s: %w", merchantID, ErrNotFound)
	}
	if err != nil {
		return Brand{}, fmt.Errorf("get brand: %w", err)
	}
	b.UpdatedAt = parseTime(updated)
	return b, nil
}

// ListProducts returns the merchant's products ordered by (created_at, id).
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListProducts(ctx context.Context, merchantID string) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(`
		SELECT id, merchant_id, title, price, description, category, inventory,
		       images, tags, is_active, created_at, updated_at
		FROM products
		WHERE merchant_id = ?
		ORDER BY created_at ASC, id ASC
	`), merchantID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(rows *sql.Rows) (Product, error) {
	var p Product
	var images, tags, created, updated string
	if err := rows.Scan(
		&p.ID, &p.MerchantID, &p.Title, &p.Price, &p.Description, &p.Category, &p.Inventory,
		&images, &tags, &p.IsActive, &created, &updated,
	); err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}

	var err error
	if p.Images, err = unmarshalImages(images); err != nil {
		return Product{}, fmt.Errorf("product %s: %w", p.ID, err)
	}
	if p.Tags, err = unmarshalTags(tags); err != nil {
		return Product{}, fmt.Errorf("product %s: %w", p.ID, err)
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

// ListSections returns the merchant's sections for page ordered by
// (position, zone, id). Returns an empty slice (not nil) when there are none.
func (s *Store) ListSections(ctx context.Context, merchantID, page string) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(`
		SELECT id, merchant_id, page, kind, zone, position, visible, settings
		FROM sections
		WHERE merchant_id = ? AND page = ?
		ORDER BY position ASC, zone ASC, id ASC
	`), merchantID, page)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	sections := []Section{}
	for rows.Next() {
		var sec Section
		var settings string
		if err := rows.Scan(
			&sec.ID, &sec.MerchantID, &sec.Page, &sec.Kind, &sec.Zone, &sec.Position, &sec.Visible, &settings,
		); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		if sec.Settings, err = unmarshalSettings(settings); err != nil {
			return nil, fmt.Errorf("section %s: %w", sec.ID, err)
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}
	return sections, nil
}
