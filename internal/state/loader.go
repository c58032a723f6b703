package state

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/store"
)

// Source loads a merchant's StoreState.
type Source interface {
	Load(ctx context.Context, merchantID string) (StoreState, error)
}

// Loader builds StoreState documents from a store.Repository.
type Loader struct {
	repo    store.Repository
	catalog catalog.Catalog
}

var _ Source = (*Loader)(nil)

// NewLoader returns a loader reading from repo and simplifying section
// settings through cat.
func NewLoader(repo store.Repository, cat catalog.Catalog) *Loader {
	return &Loader{repo: repo, catalog: cat}
}

// Load reads the brand, products and homepage sections of merchantID.
// Any failed read yields a *DataAccessError; a merchant with no brand row
// loads as an empty brand.
func (l *Loader) Load(ctx context.Context, merchantID string) (StoreState, error) {
	st := Empty(merchantID)

	// Revision is read first so a write racing the load leaves the document
	// looking stale rather than fresh.
	rev, err := l.repo.Revision(ctx, merchantID)
	if err != nil {
		return StoreState{}, &DataAccessError{MerchantID: merchantID, Op: "revision", Err: err}
	}
	st.Meta.Revision = rev

	brand, err := l.repo.GetBrand(ctx, merchantID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return StoreState{}, &DataAccessError{MerchantID: merchantID, Op: "brand", Err: err}
	default:
		st.Brand = Brand{
			Name:     brand.Name,
			Category: brand.Category,
			Tone:     brand.Tone,
			Tagline:  brand.Tagline,
		}
		st.Meta.LastUpdated = brand.UpdatedAt
	}

	products, err := l.repo.ListProducts(ctx, merchantID)
	if err != nil {
		return StoreState{}, &DataAccessError{MerchantID: merchantID, Op: "products", Err: err}
	}
	for _, p := range products {
		refs := NormalizeImages(p.Images)
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		st.Products = append(st.Products, Product{
			ID:          p.ID,
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			Category:    p.Category,
			Inventory:   p.Inventory,
			Images:      Labels(refs),
			Tags:        append([]string{}, tags...),
			IsActive:    p.IsActive,
			ImageRefs:   refs,
		})
	}

	sections, err := l.repo.ListSections(ctx, merchantID, store.PageHome)
	if err != nil {
		return StoreState{}, &DataAccessError{MerchantID: merchantID, Op: "sections", Err: err}
	}
	heroSeen := false
	for _, sec := range sections {
		if sec.Kind == catalog.HeroType {
			if heroSeen {
				slog.Warn("ignoring extra hero section", "merchant_id", merchantID, "section_id", sec.ID)
				continue
			}
			heroSeen = true
			st.Homepage.HeroSectionID = sec.ID
			st.Homepage.HeroSettings = cloneSettings(sec.Settings)
			if st.Homepage.HeroSettings == nil {
				st.Homepage.HeroSettings = map[string]any{}
			}
			st.Homepage.Hero = HeroFromSettings(l.catalog, st.Homepage.HeroSettings)
			continue
		}
		zone := sec.Zone
		if zone == "" {
			zone = l.catalog.Zone(sec.Kind)
		}
		st.Homepage.Sections = append(st.Homepage.Sections, Section{
			ID:       sec.ID,
			Type:     sec.Kind,
			Zone:     zone,
			Position: sec.Position,
			Visible:  sec.Visible,
			Settings: l.catalog.Simplify(sec.Kind, sec.Settings),
			Internal: cloneSettings(sec.Settings),
		})
	}
	SortSections(st.Homepage.Sections)

	st.RefreshAssets()
	return st, nil
}

// LoadOrEmpty loads merchantID, substituting Empty on failure.
func (l *Loader) LoadOrEmpty(ctx context.Context, merchantID string) StoreState {
	return OrEmpty(ctx, l, merchantID)
}

// OrEmpty loads from src and falls back to Empty(merchantID) when the load
// fails, logging the failure.
func OrEmpty(ctx context.Context, src Source, merchantID string) StoreState {
	st, err := src.Load(ctx, merchantID)
	if err != nil {
		slog.Warn("state load failed, using empty state",
			"merchant_id", merchantID,
			"error", err,
		)
		return Empty(merchantID)
	}
	return st
}

// HeroFromSettings builds the agent-facing hero from internal hero settings.
// The image is shown by label, never by URL.
func HeroFromSettings(cat catalog.Catalog, internal map[string]any) Hero {
	view := cat.Simplify(catalog.HeroType, internal)
	str := func(key string) string {
		s, _ := view[key].(string)
		return s
	}
	hero := Hero{
		Headline:    str("headline"),
		Subheadline: str("subheadline"),
		CTAText:     str("cta_text"),
		CTALink:     str("cta_link"),
		Image:       LabelFromURL(str("image")),
		Layout:      str("layout"),
	}
	if hero.Layout == "" {
		hero.Layout = DefaultLayout
	}
	return hero
}
