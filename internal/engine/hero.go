package engine

import (
	"context"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/store"
)

// heroSetter returns a handler copying the payload field named key into the
// hero under the same agent-facing key.
func heroSetter(key string) handler {
	return func(ctx context.Context, x *execution) (map[string]any, error) {
		v, _ := x.payload.String(key)
		if err := x.saveHero(ctx, map[string]any{key: v}); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func updateHeroCTA(ctx context.Context, x *execution) (map[string]any, error) {
	patch := map[string]any{}
	if v, ok := x.payload.String("cta_text"); ok {
		patch["cta_text"] = v
	}
	if v, ok := x.payload.String("cta_link"); ok {
		patch["cta_link"] = v
	}
	if err := x.saveHero(ctx, patch); err != nil {
		return nil, err
	}
	return nil, nil
}

// updateHeroImage stores the URL of the referenced asset. An unresolvable
// reference, or an asset without a URL, is stored as given.
func updateHeroImage(ctx context.Context, x *execution) (map[string]any, error) {
	ref, _ := x.payload.String("image")
	value := ref
	result := map[string]any{"resolved": false}
	if asset, ok := x.st.FindAsset(ref); ok && asset.URL != "" {
		value = asset.URL
		result = map[string]any{"resolved": true, "asset_id": asset.ID}
	}
	if err := x.saveHero(ctx, map[string]any{"image": value}); err != nil {
		return nil, err
	}
	return result, nil
}

// saveHero merges agent-keyed changes into the hero settings and persists
// the whole bundle, creating the hero section record on first use.
func (x *execution) saveHero(ctx context.Context, changes map[string]any) error {
	cat := x.catalog()
	settings := ir.CloneMap(x.st.Homepage.HeroSettings)
	id := x.st.Homepage.HeroSectionID
	if id == "" {
		base := cat.Defaults(catalog.HeroType)
		for k, v := range settings {
			base[k] = v
		}
		settings = base
	}
	if settings == nil {
		settings = map[string]any{}
	}
	for k, v := range cat.Translate(catalog.HeroType, changes) {
		settings[k] = v
	}

	if id != "" {
		if err := x.persist("update hero section", func() error {
			return x.repo().UpdateSectionSettings(ctx, x.merchantID, id, settings)
		}); err != nil {
			return err
		}
	} else {
		id = x.newID()
		rec := store.Section{
			ID:         id,
			MerchantID: x.merchantID,
			Page:       store.PageHome,
			Kind:       catalog.HeroType,
			Zone:       state.ZoneHero,
			Position:   0,
			Visible:    true,
			Settings:   settings,
		}
		if err := x.persist("insert hero section", func() error {
			return x.repo().InsertSection(ctx, rec)
		}); err != nil {
			return err
		}
	}

	x.st.Homepage.HeroSectionID = id
	x.st.Homepage.HeroSettings = settings
	x.st.Homepage.Hero = state.HeroFromSettings(cat, settings)
	return nil
}
