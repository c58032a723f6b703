package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/storepilot/internal/store"
	"github.com/roach88/storepilot/internal/testutil"
)

// seedRepo returns a repository holding merchant m1 with two products and
// a homepage of hero, newsletter and faq sections.
func seedRepo(t *testing.T) *testutil.MemoryRepository {
	t.Helper()
	ctx := context.Background()
	repo := testutil.NewMemoryRepository()

	require.NoError(t, repo.EnsureMerchant(ctx, "m1", "Acme Goods"))
	require.NoError(t, repo.UpdateBrand(ctx, "m1", store.BrandPatch{
		Category: strPtr("Home & kitchen"),
		Tone:     strPtr("friendly"),
	}))
	require.NoError(t, repo.InsertProduct(ctx, store.Product{
		ID: "p1", MerchantID: "m1", Title: "Mug", Price: 1200, Inventory: 5, IsActive: true,
		Images: []any{
			"https://cdn.example.com/m1/mug-front.jpg",
			map[string]any{"name": "Mug side", "url": "https://cdn.example.com/m1/mug-side.jpg"},
			42,
		},
		Tags: []string{"kitchen"},
	}))
	require.NoError(t, repo.InsertProduct(ctx, store.Product{
		ID: "p2", MerchantID: "m1", Title: "Teapot", Price: 3400, IsActive: false,
	}))
	require.NoError(t, repo.InsertSection(ctx, store.Section{
		ID: "hero-1", MerchantID: "m1", Kind: "hero", Zone: "hero", Position: 0, Visible: true,
		Settings: map[string]any{
			"title":            "Brew better",
			"subtitle":         "Small-batch ceramics",
			"button_text":      "Shop",
			"button_link":      "/products",
			"background_image": "https://cdn.example.com/m1/hero%20banner.png",
			"layout":           "split",
			"overlay_opacity":  0.4,
		},
	}))
	require.NoError(t, repo.InsertSection(ctx, store.Section{
		ID: "s-faq", MerchantID: "m1", Kind: "faq", Zone: "main", Position: 1, Visible: true,
		Settings: map[string]any{"heading": "Questions", "items": []any{}},
	}))
	require.NoError(t, repo.InsertSection(ctx, store.Section{
		ID: "s-news", MerchantID: "m1", Kind: "newsletter", Zone: "main", Position: 0, Visible: false,
		Settings: map[string]any{"heading": "Join", "background_color": "#fff"},
	}))
	return repo
}

func strPtr(s string) *string { return &s }
