package engine

import (
	"context"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/state"
)

// sectionOp maps a generated opcode to a section action against st.
// ok is false when the opcode has nothing to act on.
func sectionOp(op int, st state.StoreState) (ir.Action, bool) {
	ids := sectionIDs(st)
	switch {
	case op <= 3:
		return act(ir.KindAddSection, ir.Payload{"section_type": "faq", "position": int64(op)}), true
	case op == 4:
		return act(ir.KindAddSection, ir.Payload{"section_type": "announcement_bar"}), true
	case op == 5:
		return act(ir.KindAddSection, ir.Payload{"section_type": "rich_text", "zone": "footer", "position": int64(0)}), true
	case op == 6 && len(ids) > 0:
		return act(ir.KindRemoveSection, ir.Payload{"section_id": ids[0]}), true
	case op == 7 && len(ids) > 0:
		return act(ir.KindRemoveSection, ir.Payload{"section_id": ids[len(ids)-1]}), true
	case op == 8 && len(ids) > 0:
		rev := slices.Clone(ids)
		slices.Reverse(rev)
		return act(ir.KindReorderSections, ir.Payload{"section_ids": stringsToAny(append(rev, "ghost"))}), true
	case op == 9 && len(ids) > 1:
		rot := append(slices.Clone(ids[1:]), ids[0])
		return act(ir.KindReorderSections, ir.Payload{"section_ids": stringsToAny(rot)}), true
	}
	return ir.Action{}, false
}

func TestSectionPositionsStayDense(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("positions are dense per zone and match the repository", prop.ForAll(
		func(ops []int) bool {
			f := newFixture(t)
			f.seed(t)
			st := f.load(t)
			ctx := context.Background()

			for _, op := range ops {
				a, ok := sectionOp(op, st)
				if !ok {
					continue
				}
				next, m := f.exec.ExecuteAction(ctx, st, a)
				if !m.Success {
					t.Logf("%s failed: %s", a.Kind, m.Error)
					return false
				}
				st = next
				if !state.DensePositions(st.Homepage.Sections) {
					t.Logf("positions not dense after %s: %v", a.Kind, sectionPositions(st))
					return false
				}
			}

			reloaded := f.load(t)
			return slices.Equal(sectionIDs(reloaded), sectionIDs(st)) &&
				slices.Equal(sectionPositions(reloaded), sectionPositions(st)) &&
				reloaded.Meta.Revision == st.Meta.Revision
		},
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	properties.TestingRun(t)
}
