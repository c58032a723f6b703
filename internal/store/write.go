package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// EnsureMerchant creates the merchant row if it does not exist. An existing
// row is left untouched, including its name.
func (s *Store) EnsureMerchant(ctx context.Context, merchantID, name string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO merchants (id, name, revision, updated_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT(id) DO NOTHING
	`), merchantID, name, s.timestamp())
	if err != nil {
		return fmt.Errorf("ensure merchant: %w", err)
	}
	return nil
}

// UpdateBrand applies patch to the merchant row. An empty patch is a no-op
// and does not bump the revision.
func (s *Store) UpdateBrand(ctx context.Context, merchantID string, patch BrandPatch) error {
	if patch.Empty() {
		return nil
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Tone != nil {
		add("tone", *patch.Tone)
	}
	if patch.Tagline != nil {
		add("tagline", *patch.Tagline)
	}
	sets = append(sets, "revision = revision + 1")
	add("updated_at", s.timestamp())
	args = append(args, merchantID)

	query := "UPDATE merchants SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	if err := expectRow(res); err != nil {
		return fmt.Errorf("update brand %s: %w", merchantID, err)
	}
	return nil
}

// InsertProduct inserts p. CreatedAt and UpdatedAt are set by the store.
func (s *Store) InsertProduct(ctx context.Context, p Product) error {
	images, err := marshalImages(p.Images)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	tags, err := marshalTags(p.Tags)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	now := s.timestamp()
	return s.inTx(ctx, p.MerchantID, "insert product", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.dialect.rebind(`
			INSERT INTO products
			(id, merchant_id, title, price, description, category, inventory, images, tags, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`),
			p.ID,
			p.MerchantID,
			p.Title,
			p.Price,
			p.Description,
			p.Category,
			p.Inventory,
			images,
			tags,
			p.IsActive,
			now,
			now,
		)
		return err
	})
}

// UpdateProduct applies patch to one product.
func (s *Store) UpdateProduct(ctx context.Context, merchantID, productID string, patch ProductPatch) error {
	if patch.Empty() {
		return nil
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Inventory != nil {
		add("inventory", *patch.Inventory)
	}
	if patch.Images != nil {
		images, err := marshalImages(*patch.Images)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		add("images", images)
	}
	if patch.Tags != nil {
		tags, err := marshalTags(*patch.Tags)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		add("tags", tags)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	add("updated_at", s.timestamp())
	args = append(args, merchantID, productID)

	query := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE merchant_id = ? AND id = ?"
	return s.inTx(ctx, merchantID, "update product "+productID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.dialect.rebind(query), args...)
		if err != nil {
			return err
		}
		return expectRow(res)
	})
}

// DeleteProduct removes one product.
func (s *Store) DeleteProduct(ctx context.Context, merchantID, productID string) error {
	return s.inTx(ctx, merchantID, "delete product "+productID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.dialect.rebind(
			`DELETE FROM products WHERE merchant_id = ? AND id = ?`,
		), merchantID, productID)
		if err != nil {
			return err
		}
		return expectRow(res)
	})
}

// InsertSection inserts sec with its full internal settings.
func (s *Store) InsertSection(ctx context.Context, sec Section) error {
	settings, err := marshalSettings(sec.Settings)
	if err != nil {
		return fmt.Errorf("insert section: %w", err)
	}
	page := sec.Page
	if page == "" {
		page = PageHome
	}

	return s.inTx(ctx, sec.MerchantID, "insert section", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.dialect.rebind(`
			INSERT INTO sections
			(id, merchant_id, page, kind, zone, position, visible, settings, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`),
			sec.ID,
			sec.MerchantID,
			page,
			sec.Kind,
			sec.Zone,
			sec.Position,
			sec.Visible,
			settings,
			s.timestamp(),
		)
		return err
	})
}

// UpdateSectionSettings replaces the full settings object of one section.
func (s *Store) UpdateSectionSettings(ctx context.Context, merchantID, sectionID string, settings map[string]any) error {
	data, err := marshalSettings(settings)
	if err != nil {
		return fmt.Errorf("update section settings: %w", err)
	}
	return s.updateSection(ctx, merchantID, sectionID, "settings", data)
}

// UpdateSectionPosition sets the position of one section.
func (s *Store) UpdateSectionPosition(ctx context.Context, merchantID, sectionID string, position int) error {
	return s.updateSection(ctx, merchantID, sectionID, "position", position)
}

// UpdateSectionVisibility sets the visible flag of one section.
func (s *Store) UpdateSectionVisibility(ctx context.Context, merchantID, sectionID string, visible bool) error {
	return s.updateSection(ctx, merchantID, sectionID, "visible", visible)
}

func (s *Store) updateSection(ctx context.Context, merchantID, sectionID, column string, value any) error {
	query := "UPDATE sections SET " + column + " = ?, updated_at = ? WHERE merchant_id = ? AND id = ?"
	return s.inTx(ctx, merchantID, "update section "+column, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.dialect.rebind(query), value, s.timestamp(), merchantID, sectionID)
		if err != nil {
			return err
		}
		return expectRow(res)
	})
}

// DeleteSection removes one section.
func (s *Store) DeleteSection(ctx context.Context, merchantID, sectionID string) error {
	return s.inTx(ctx, merchantID, "delete section "+sectionID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.dialect.rebind(
			`DELETE FROM sections WHERE merchant_id = ? AND id = ?`,
		), merchantID, sectionID)
		if err != nil {
			return err
		}
		return expectRow(res)
	})
}

// inTx runs fn and bumps the merchant revision in one transaction.
func (s *Store) inTx(ctx context.Context, merchantID, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, s.dialect.rebind(
		`UPDATE merchants SET revision = revision + 1, updated_at = ? WHERE id = ?`,
	), s.timestamp(), merchantID); err != nil {
		return fmt.Errorf("%s: bump revision: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
