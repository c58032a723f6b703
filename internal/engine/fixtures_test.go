package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/store"
	"github.com/roach88/storepilot/internal/testutil"
)

// fixture bundles an executor with the repository it writes to.
type fixture struct {
	repo   *testutil.MemoryRepository
	exec   *Executor
	loader *state.Loader
	clock  *testutil.SteppingClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := testutil.NewMemoryRepository()
	require.NoError(t, repo.EnsureMerchant(context.Background(), "m1", "Acme Goods"))
	clock := testutil.NewClock()
	return &fixture{
		repo:   repo,
		clock:  clock,
		loader: state.NewLoader(repo, catalog.Default()),
		exec: New(repo, catalog.Default(),
			WithClock(clock),
			WithIDGenerator(testutil.NewSequentialIDs("new")),
		),
	}
}

// seed adds two products, a hero and two main-zone sections to m1.
// s-news sits at position 0 and s-faq at position 1.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.repo.InsertProduct(ctx, store.Product{
		ID: "p1", MerchantID: "m1", Title: "Mug", Price: 1200, Inventory: 5, IsActive: true,
		Images: []any{
			"https://cdn.example.com/m1/mug-front.jpg",
			map[string]any{"label": "Mug side", "url": "https://cdn.example.com/m1/mug-side.jpg"},
		},
		Tags: []string{"kitchen"},
	}))
	require.NoError(t, f.repo.InsertProduct(ctx, store.Product{
		ID: "p2", MerchantID: "m1", Title: "Teapot", Price: 3400, IsActive: true,
	}))
	require.NoError(t, f.repo.InsertSection(ctx, store.Section{
		ID: "hero-1", MerchantID: "m1", Kind: "hero", Zone: "hero", Visible: true,
		Settings: map[string]any{
			"title":            "Brew better",
			"button_text":      "Shop",
			"background_image": "https://cdn.example.com/m1/banner.png",
			"overlay_opacity":  0.4,
		},
	}))
	require.NoError(t, f.repo.InsertSection(ctx, store.Section{
		ID: "s-news", MerchantID: "m1", Kind: "newsletter", Zone: "main", Position: 0, Visible: true,
		Settings: map[string]any{"heading": "Join", "background_color": "#fff"},
	}))
	require.NoError(t, f.repo.InsertSection(ctx, store.Section{
		ID: "s-faq", MerchantID: "m1", Kind: "faq", Zone: "main", Position: 1, Visible: true,
		Settings: map[string]any{"heading": "Questions", "items": []any{}},
	}))
	f.repo.ResetCalls()
}

func (f *fixture) load(t *testing.T) state.StoreState {
	t.Helper()
	st, err := f.loader.Load(context.Background(), "m1")
	require.NoError(t, err)
	return st
}

func (f *fixture) repoSection(t *testing.T, id string) store.Section {
	t.Helper()
	sections, err := f.repo.ListSections(context.Background(), "m1", store.PageHome)
	require.NoError(t, err)
	for _, s := range sections {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("section %s not in repository", id)
	return store.Section{}
}

func act(kind ir.Kind, payload ir.Payload) ir.Action {
	return ir.Action{Kind: kind, Payload: payload}
}

func sectionIDs(st state.StoreState) []string {
	ids := make([]string, len(st.Homepage.Sections))
	for i, s := range st.Homepage.Sections {
		ids[i] = s.ID
	}
	return ids
}

func sectionPositions(st state.StoreState) []int {
	pos := make([]int, len(st.Homepage.Sections))
	for i, s := range st.Homepage.Sections {
		pos[i] = s.Position
	}
	return pos
}
