package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/registry"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/testutil"
)

func TestHandledKinds_MatchRegistry(t *testing.T) {
	reg := registry.Default()
	assert.ElementsMatch(t, reg.Kinds(), HandledKinds())
	for _, k := range HandledKinds() {
		assert.True(t, reg.Has(k), "handler without schema: %s", k)
	}
}

func TestExecuteAction_DriftPanics(t *testing.T) {
	f := newFixture(t)
	delete(f.exec.handlers, ir.KindAddSection)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		var drift *registry.DriftError
		require.True(t, errors.As(r.(error), &drift))
		assert.Equal(t, ir.KindAddSection, drift.Kind)
		assert.Equal(t, "executor", drift.Component)
	}()
	f.exec.ExecuteAction(context.Background(), state.Empty("m1"),
		act(ir.KindAddSection, ir.Payload{"section_type": "faq"}))
}

func TestExecuteAction_AddSectionToEmptyHomepage(t *testing.T) {
	f := newFixture(t)
	st := state.Empty("m1")

	next, m := f.exec.ExecuteAction(context.Background(), st,
		act(ir.KindAddSection, ir.Payload{"section_type": "newsletter"}))

	require.True(t, m.Success, m.Error)
	assert.Equal(t, "new-1", m.Result["section_id"])
	require.Len(t, next.Homepage.Sections, 1)
	sec := next.Homepage.Sections[0]
	assert.Equal(t, "newsletter", sec.Type)
	assert.Equal(t, 0, sec.Position)
	assert.True(t, sec.Visible)
	assert.Equal(t, "main", sec.Zone)

	cat := catalog.Default()
	assert.Equal(t, cat.Defaults("newsletter"), sec.Internal)
	assert.Equal(t, cat.Simplify("newsletter", cat.Defaults("newsletter")), sec.Settings)
	assert.Equal(t, "Join our newsletter", sec.Settings["title"])

	assert.Empty(t, st.Homepage.Sections, "input state must not change")
}

func TestExecuteAction_UpdateMissingProduct(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	st := f.load(t)
	before, err := st.JSON()
	require.NoError(t, err)

	next, m := f.exec.ExecuteAction(context.Background(), st,
		act(ir.KindUpdateProduct, ir.Payload{"product_id": "does-not-exist", "title": "x"}))

	assert.False(t, m.Success)
	assert.Contains(t, m.Error, "not found")
	after, err := next.JSON()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Empty(t, f.repo.Writes())
}

func TestExecuteAction_ReorderDropsUnknownID(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	st := f.load(t)
	require.Equal(t, []string{"s-news", "s-faq"}, sectionIDs(st))

	next, m := f.exec.ExecuteAction(context.Background(), st,
		act(ir.KindReorderSections, ir.Payload{"section_ids": []any{"s-faq", "unknown", "s-news"}}))

	require.True(t, m.Success, m.Error)
	assert.Equal(t, []string{"s-faq", "s-news"}, sectionIDs(next))
	assert.Equal(t, []int{0, 1}, sectionPositions(next))
	assert.Equal(t, []any{"unknown"}, m.Result["dropped"])
	assert.Equal(t, 2, m.Result["updated"])
	assert.Equal(t, 0, f.repoSection(t, "s-faq").Position)
	assert.Equal(t, 1, f.repoSection(t, "s-news").Position)
}

func TestExecuteAction_ReorderAppendsUnlistedSections(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	st := f.load(t)
	st, m := f.exec.ExecuteAction(context.Background(), st,
		act(ir.KindAddSection, ir.Payload{"section_type": "gallery"}))
	require.True(t, m.Success, m.Error)

	next, m := f.exec.ExecuteAction(context.Background(), st,
		act(ir.KindReorderSections, ir.Payload{"section_ids": []any{"new-1", "new-1"}}))

	require.True(t, m.Success, m.Error)
	assert.Equal(t, []string{"new-1", "s-news", "s-faq"}, sectionIDs(next))
	assert.Equal(t, []int{0, 1, 2}, sectionPositions(next))
}

func TestExecuteActions_FailStop(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	st := f.load(t)

	next, mutations := f.exec.ExecuteActions(context.Background(), st, []ir.Action{
		act(ir.KindCreateProduct, ir.Payload{"title": "Kettle"}),
		act(ir.KindDeleteProduct, ir.Payload{"product_id": "ghost"}),
		act(ir.KindUpdateBrandInfo, ir.Payload{"name": "Never applied"}),
	})

	require.Len(t, mutations, 2)
	assert.True(t, mutations[0].Success)
	assert.False(t, mutations[1].Success)
	assert.Contains(t, mutations[1].Error, "NOT_FOUND")

	assert.Len(t, next.Products, 3)
	assert.Equal(t, "Kettle", next.Products[2].Title)
	assert.Equal(t, "Acme Goods", next.Brand.Name)
	assert.Equal(t, []string{"InsertProduct new-1"}, f.repo.Writes())
}

func TestExecuteActions_EmptyBatch(t *testing.T) {
	f := newFixture(t)
	st := state.Empty("m1")
	next, mutations := f.exec.ExecuteActions(context.Background(), st, nil)
	assert.Empty(t, mutations)
	assert.NotNil(t, mutations)
	assert.Empty(t, cmp.Diff(st, next))
}

func TestExecuteAction_DoesNotMutateInput(t *testing.T) {
	actions := []ir.Action{
		act(ir.KindCreateProduct, ir.Payload{"title": "Kettle", "images": []any{"Mug side"}, "tags": []any{"new"}}),
		act(ir.KindUpdateProduct, ir.Payload{"product_id": "p1", "title": "Big mug", "tags": []any{"a"}, "images": []any{"mug-front"}}),
		act(ir.KindDeleteProduct, ir.Payload{"product_id": "p2"}),
		act(ir.KindUpdateHeroHeadline, ir.Payload{"headline": "Fresh"}),
		act(ir.KindUpdateHeroSubheadline, ir.Payload{"subheadline": "Hand made"}),
		act(ir.KindUpdateHeroCTA, ir.Payload{"cta_text": "Go", "cta_link": "/sale"}),
		act(ir.KindUpdateHeroImage, ir.Payload{"image": "Mug side"}),
		act(ir.KindUpdateHeroLayout, ir.Payload{"layout": "left"}),
		act(ir.KindAddSection, ir.Payload{"section_type": "faq", "position": int64(0)}),
		act(ir.KindRemoveSection, ir.Payload{"section_id": "s-news"}),
		act(ir.KindUpdateSection, ir.Payload{"section_id": "s-faq", "settings": map[string]any{"title": "FAQ"}, "visible": false}),
		act(ir.KindReorderSections, ir.Payload{"section_ids": []any{"s-faq", "s-news"}}),
		act(ir.KindUpdateBrandInfo, ir.Payload{"name": "Acme", "tone": "bold"}),
		act(ir.KindGenerateProductDescriptions, ir.Payload{"descriptions": map[string]any{"p1": "Holds coffee."}}),
	}
	require.Len(t, actions, len(ir.Kinds()))

	for _, a := range actions {
		t.Run(string(a.Kind), func(t *testing.T) {
			f := newFixture(t)
			f.seed(t)
			st := f.load(t)
			snapshot := state.Clone(st)

			next, m := f.exec.ExecuteAction(context.Background(), st, a)

			require.True(t, m.Success, m.Error)
			assert.Empty(t, cmp.Diff(snapshot, st), "input state changed")
			assert.NotEmpty(t, cmp.Diff(snapshot, next), "result should differ from input")
			assert.True(t, state.DensePositions(next.Homepage.Sections))
		})
	}
}

func TestExecuteAction_MatchesReloadedState(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	st := f.load(t)

	next, mutations := f.exec.ExecuteActions(context.Background(), st, []ir.Action{
		act(ir.KindCreateProduct, ir.Payload{
			"title":  "Kettle",
			"price":  int64(4500),
			"images": []any{"Mug side", "https://cdn.example.com/x/new-shot.jpg", "lifestyle"},
		}),
		act(ir.KindUpdateProduct, ir.Payload{"product_id": "p1", "price": int64(1500), "images": []any{"mug-front"}}),
		act(ir.KindUpdateHeroImage, ir.Payload{"image": "new-shot"}),
		act(ir.KindAddSection, ir.Payload{"section_type": "announcement_bar", "settings": map[string]any{"text": "Free shipping"}}),
		act(ir.KindAddSection, ir.Payload{"section_type": "rich_text", "position": int64(1)}),
		act(ir.KindRemoveSection, ir.Payload{"section_id": "s-news"}),
		act(ir.KindUpdateSection, ir.Payload{"section_id": "s-faq", "settings": map[string]any{"title": "FAQ"}}),
		act(ir.KindUpdateBrandInfo, ir.Payload{"tagline": "Good things"}),
	})
	for _, m := range mutations {
		require.True(t, m.Success, "%s: %s", m.Type, m.Error)
	}

	reloaded := f.load(t)
	assert.Empty(t, cmp.Diff(reloaded, next, cmpopts.IgnoreFields(state.Meta{}, "LastUpdated")))
}

func TestExecuteAction_RevisionTracksRepository(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	st := f.load(t)

	next, _ := f.exec.ExecuteActions(context.Background(), st, []ir.Action{
		act(ir.KindAddSection, ir.Payload{"section_type": "faq", "position": int64(0)}),
		act(ir.KindUpdateBrandInfo, ir.Payload{}),
		act(ir.KindReorderSections, ir.Payload{"section_ids": []any{"s-faq"}}),
	})

	rev, err := f.repo.Revision(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, rev, next.Meta.Revision)
	assert.Greater(t, next.Meta.Revision, st.Meta.Revision)
}

func TestExecuteAction_LastUpdatedPerSuccess(t *testing.T) {
	f := newFixture(t)
	st := state.Empty("m1")

	next, mutations := f.exec.ExecuteActions(context.Background(), st, []ir.Action{
		act(ir.KindUpdateBrandInfo, ir.Payload{"name": "A"}),
		act(ir.KindUpdateBrandInfo, ir.Payload{"name": "B"}),
		act(ir.KindRemoveSection, ir.Payload{"section_id": "missing"}),
	})

	require.Len(t, mutations, 3)
	assert.Equal(t, int64(2), f.clock.Calls())
	assert.Equal(t, testutil.Epoch.Add(time.Second), next.Meta.LastUpdated)
}

func TestExecuteAction_UnknownKind(t *testing.T) {
	f := newFixture(t)
	st := state.Empty("m1")

	next, m := f.exec.ExecuteAction(context.Background(), st, ir.Action{Kind: "EXPLODE"})

	assert.False(t, m.Success)
	assert.Contains(t, m.Error, "UNKNOWN_ACTION")
	assert.Contains(t, m.Error, `unknown action type "EXPLODE"`)
	assert.Empty(t, cmp.Diff(st, next))
}

func TestExecuteAction_ExternalWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	st := f.load(t)
	f.repo.FailOn("UpdateProduct", errors.New("disk full"))

	next, m := f.exec.ExecuteAction(context.Background(), st,
		act(ir.KindUpdateProduct, ir.Payload{"product_id": "p1", "title": "Nope"}))

	assert.False(t, m.Success)
	assert.Contains(t, m.Error, "EXTERNAL_WRITE")
	assert.Contains(t, m.Error, "disk full")
	assert.Equal(t, "Mug", next.Products[0].Title)
	assert.Equal(t, st.Meta.Revision, next.Meta.Revision)
}

func TestExecuteAction_PartialWriteFailureMatchesStore(t *testing.T) {
	ignoreStamp := cmpopts.IgnoreFields(state.Meta{}, "LastUpdated")
	cases := []struct {
		name   string
		fault  string
		action ir.Action
		writes int64
		check  func(t *testing.T, next state.StoreState)
	}{
		{
			name:   "remove section then shift fails",
			fault:  "UpdateSectionPosition",
			action: act(ir.KindRemoveSection, ir.Payload{"section_id": "s-news"}),
			writes: 1,
			check: func(t *testing.T, next state.StoreState) {
				assert.Equal(t, -1, next.FindSection("s-news"))
				i := next.FindSection("s-faq")
				require.GreaterOrEqual(t, i, 0)
				assert.Equal(t, 1, next.Homepage.Sections[i].Position)
			},
		},
		{
			name:   "shifts land then insert fails",
			fault:  "InsertSection",
			action: act(ir.KindAddSection, ir.Payload{"section_type": "newsletter", "position": int64(0)}),
			writes: 2,
			check: func(t *testing.T, next state.StoreState) {
				assert.Len(t, next.Homepage.Sections, 3)
				assert.Equal(t, 1, next.Homepage.Sections[next.FindSection("s-news")].Position)
				assert.Equal(t, 2, next.Homepage.Sections[next.FindSection("s-faq")].Position)
			},
		},
		{
			name:  "second description fails",
			fault: "UpdateProduct p2",
			action: act(ir.KindGenerateProductDescriptions, ir.Payload{
				"descriptions": map[string]any{"p1": "Holds coffee.", "p2": "Pours tea."},
			}),
			writes: 1,
			check: func(t *testing.T, next state.StoreState) {
				assert.Equal(t, "Holds coffee.", next.Products[next.FindProduct("p1")].Description)
				assert.Empty(t, next.Products[next.FindProduct("p2")].Description)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t)
			st := f.load(t)
			f.repo.FailOn(tc.fault, errors.New("boom"))

			next, m := f.exec.ExecuteAction(context.Background(), st, tc.action)

			assert.False(t, m.Success)
			assert.Contains(t, m.Error, "EXTERNAL_WRITE")
			assert.Contains(t, m.Error, "boom")
			tc.check(t, next)

			reloaded := f.load(t)
			assert.Empty(t, cmp.Diff(reloaded, next, ignoreStamp))
			assert.Equal(t, st.Meta.Revision+tc.writes, next.Meta.Revision)
		})
	}
}

func TestExecuteActions_PartialFailureCarriesCommittedWrites(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	st := f.load(t)
	f.repo.FailOn("UpdateSectionPosition", errors.New("boom"))

	next, mutations := f.exec.ExecuteActions(context.Background(), st, []ir.Action{
		act(ir.KindRemoveSection, ir.Payload{"section_id": "s-news"}),
		act(ir.KindUpdateBrandInfo, ir.Payload{"tagline": "Never"}),
	})

	require.Len(t, mutations, 1)
	assert.False(t, mutations[0].Success)
	assert.Equal(t, -1, next.FindSection("s-news"))
	assert.Empty(t, cmp.Diff(f.load(t), next, cmpopts.IgnoreFields(state.Meta{}, "LastUpdated")))
}

func TestDomainErrorHelpers(t *testing.T) {
	nf := notFound(ir.KindDeleteProduct, "product %q not found", "p9")
	assert.Equal(t, `NOT_FOUND: product "p9" not found`, nf.Error())
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsExternalWrite(nf))

	cause := errors.New("timeout")
	wf := writeFailed(ir.KindDeleteProduct, "delete product p9", cause)
	assert.Equal(t, "EXTERNAL_WRITE: delete product p9: timeout", wf.Error())
	assert.True(t, IsExternalWrite(wf))
	assert.ErrorIs(t, wf, cause)

	assert.True(t, IsConflict(conflict(ir.KindAddSection, "no")))
	assert.False(t, IsNotFound(errors.New("plain")))
}
