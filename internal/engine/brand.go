package engine

import (
	"context"

	"github.com/roach88/storepilot/internal/store"
)

// updateBrandInfo patches the provided brand fields. A payload with none of
// them succeeds without touching the repository.
func updateBrandInfo(ctx context.Context, x *execution) (map[string]any, error) {
	var patch store.BrandPatch
	changed := []string{}
	for _, f := range []struct {
		key string
		dst **string
	}{
		{"name", &patch.Name},
		{"category", &patch.Category},
		{"tone", &patch.Tone},
		{"tagline", &patch.Tagline},
	} {
		if v, ok := x.payload.String(f.key); ok {
			*f.dst = &v
			changed = append(changed, f.key)
		}
	}

	if patch.Empty() {
		return map[string]any{"changed_fields": []any{}}, nil
	}
	if err := x.persist("update brand", func() error {
		return x.repo().UpdateBrand(ctx, x.merchantID, patch)
	}); err != nil {
		return nil, err
	}

	b := &x.st.Brand
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Category != nil {
		b.Category = *patch.Category
	}
	if patch.Tone != nil {
		b.Tone = *patch.Tone
	}
	if patch.Tagline != nil {
		b.Tagline = *patch.Tagline
	}
	return map[string]any{"changed_fields": stringsToAny(changed)}, nil
}
