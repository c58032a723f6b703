package store

import (
	"context"
	"time"
)

// Brand is the merchant identity row.
type Brand struct {
	MerchantID string
	Name       string
	Category   string
	Tone       string
	Tagline    string
	UpdatedAt  time.Time
}

// BrandPatch carries the brand fields to change. Nil fields are untouched.
type BrandPatch struct {
	Name     *string
	Category *string
	Tone     *string
	Tagline  *string
}

// Empty reports whether the patch changes nothing.
func (p BrandPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Tone == nil && p.Tagline == nil
}

// Product is a persisted product row.
//
// Images holds the raw stored values: bare URL strings or objects with
// label, name and url keys.
type Product struct {
	ID          string
	MerchantID  string
	Title       string
	Price       int64
	Description string
	Category    string
	Inventory   int64
	Images      []any
	Tags        []string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductPatch carries the product fields to change. Nil fields are untouched.
type ProductPatch struct {
	Title       *string
	Price       *int64
	Description *string
	Category    *string
	Inventory   *int64
	Images      *[]any
	Tags        *[]string
	IsActive    *bool
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Price == nil && p.Description == nil && p.Category == nil &&
		p.Inventory == nil && p.Images == nil && p.Tags == nil && p.IsActive == nil
}

// Section is a persisted page section row with its full internal settings.
type Section struct {
	ID         string
	MerchantID string
	Page       string
	Kind       string
	Zone       string
	Position   int
	Visible    bool
	Settings   map[string]any
}

// Repository is the per-entity CRUD surface the loader and executor use.
// Every call is scoped by merchant id and individually atomic. Updates and
// deletes that match no row return ErrNotFound.
type Repository interface {
	EnsureMerchant(ctx context.Context, merchantID, name string) error
	Revision(ctx context.Context, merchantID string) (int64, error)

	GetBrand(ctx context.Context, merchantID string) (Brand, error)
	UpdateBrand(ctx context.Context, merchantID string, patch BrandPatch) error

	ListProducts(ctx context.Context, merchantID string) ([]Product, error)
	InsertProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, merchantID, productID string, patch ProductPatch) error
	DeleteProduct(ctx context.Context, merchantID, productID string) error

	ListSections(ctx context.Context, merchantID, page string) ([]Section, error)
	InsertSection(ctx context.Context, s Section) error
	UpdateSectionSettings(ctx context.Context, merchantID, sectionID string, settings map[string]any) error
	UpdateSectionPosition(ctx context.Context, merchantID, sectionID string, position int) error
	UpdateSectionVisibility(ctx context.Context, merchantID, sectionID string, visible bool) error
	DeleteSection(ctx context.Context, merchantID, sectionID string) error
}
