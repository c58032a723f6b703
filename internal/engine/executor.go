package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/registry"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/store"
)

// handler applies one action kind. It performs every repository write
// before changing x.st and returns the mutation result on success.
type handler func(ctx context.Context, x *execution) (map[string]any, error)

// Executor applies actions to StoreState documents, persisting each change
// through a store.Repository.
//
// Thread-safety: an Executor holds no per-call state and is safe for
// concurrent use as long as its Repository and IDGenerator are.
type Executor struct {
	repo     store.Repository
	catalog  catalog.Catalog
	clock    Clock
	ids      IDGenerator
	handlers map[ir.Kind]handler
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock sets the clock used for meta.last_updated.
func WithClock(c Clock) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithIDGenerator sets the generator for new product and section ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Executor) {
		e.ids = g
	}
}

// New creates an Executor writing to repo and resolving section types
// through cat. Ids default to UUIDv7 and timestamps to the system clock.
func New(repo store.Repository, cat catalog.Catalog, opts ...Option) *Executor {
	e := &Executor{
		repo:     repo,
		catalog:  cat,
		clock:    SystemClock{},
		ids:      UUIDv7Generator{},
		handlers: make(map[ir.Kind]handler),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, k := range ir.Kinds() {
		if h := handlerFor(k); h != nil {
			e.handlers[k] = h
		}
	}
	return e
}

// handlerFor is the single dispatch point from kind to handler.
// Keep it exhaustive over ir.Kinds(); parity tests fail otherwise.
func handlerFor(k ir.Kind) handler {
	switch k {
	case ir.KindCreateProduct:
		return createProduct
	case ir.KindUpdateProduct:
		return updateProduct
	case ir.KindDeleteProduct:
		return deleteProduct
	case ir.KindUpdateHeroHeadline:
		return heroSetter("headline")
	case ir.KindUpdateHeroSubheadline:
		return heroSetter("subheadline")
	case ir.KindUpdateHeroCTA:
		return updateHeroCTA
	case ir.KindUpdateHeroImage:
		return updateHeroImage
	case ir.KindUpdateHeroLayout:
		return heroSetter("layout")
	case ir.KindAddSection:
		return addSection
	case ir.KindRemoveSection:
		return removeSection
	case ir.KindUpdateSection:
		return updateSection
	case ir.KindReorderSections:
		return reorderSections
	case ir.KindUpdateBrandInfo:
		return updateBrandInfo
	case ir.KindGenerateProductDescriptions:
		return generateProductDescriptions
	}
	return nil
}

// HandledKinds returns the kinds with a handler, in ir.Kinds() order.
func HandledKinds() []ir.Kind {
	var out []ir.Kind
	for _, k := range ir.Kinds() {
		if handlerFor(k) != nil {
			out = append(out, k)
		}
	}
	return out
}

// ExecuteAction applies action to a deep copy of st.
//
// On success the copy is returned with its sections re-sorted, its assets
// re-derived and meta.last_updated refreshed. A failure before any write
// returns st itself. A failure after some writes committed returns the copy
// with exactly those writes applied, so the document still matches the
// store. Either way the mutation is failed and st is never modified.
//
// Panics with *registry.DriftError when action.Kind is in the vocabulary
// but has no handler.
func (e *Executor) ExecuteAction(ctx context.Context, st state.StoreState, action ir.Action) (state.StoreState, ir.Mutation) {
	merchantID := st.Meta.MerchantID

	if _, ok := ir.ParseKind(string(action.Kind)); !ok {
		err := &DomainError{
			Code:    ErrCodeUnknownAction,
			Kind:    action.Kind,
			Message: fmt.Sprintf("unknown action type %q", action.Kind),
		}
		logFailure(merchantID, action.Kind, err)
		return st, ir.Failed(action, err)
	}

	h, ok := e.handlers[action.Kind]
	if !ok {
		panic(&registry.DriftError{Kind: action.Kind, Component: "executor"})
	}

	payload := action.Payload
	if payload == nil {
		payload = ir.Payload{}
	}
	work := state.Clone(st)
	x := &execution{
		executor:   e,
		kind:       action.Kind,
		merchantID: merchantID,
		payload:    payload,
		st:         &work,
	}

	result, err := h(ctx, x)
	if err != nil {
		logFailure(merchantID, action.Kind, err)
		if x.writes == 0 {
			return st, ir.Failed(action, err)
		}
		slog.Warn("action partially applied",
			"merchant_id", merchantID,
			"action_type", action.Kind,
			"writes", x.writes,
		)
		e.settle(&work, action.Kind)
		return work, ir.Failed(action, err)
	}
	e.settle(&work, action.Kind)

	slog.Info("action applied",
		"merchant_id", merchantID,
		"action_type", action.Kind,
		"writes", x.writes,
	)
	return work, ir.Succeeded(action, result)
}

// settle restores the document invariants after a handler's writes.
func (e *Executor) settle(work *state.StoreState, kind ir.Kind) {
	if kind.TouchesSections() {
		state.SortSections(work.Homepage.Sections)
	}
	work.RefreshAssets()
	work.Meta.LastUpdated = e.clock.Now()
}

// ExecuteActions applies actions in order and stops at the first failure.
// The returned mutations cover every attempted action, the failed one
// included; actions after it are not attempted. Earlier successes are kept.
func (e *Executor) ExecuteActions(ctx context.Context, st state.StoreState, actions []ir.Action) (state.StoreState, []ir.Mutation) {
	mutations := make([]ir.Mutation, 0, len(actions))
	current := st
	for i, action := range actions {
		next, m := e.ExecuteAction(ctx, current, action)
		mutations = append(mutations, m)
		if !m.Success {
			if skipped := len(actions) - i - 1; skipped > 0 {
				slog.Warn("batch stopped",
					"merchant_id", st.Meta.MerchantID,
					"failed_index", i,
					"skipped", skipped,
				)
			}
			return next, mutations
		}
		current = next
	}
	return current, mutations
}

func logFailure(merchantID string, kind ir.Kind, err error) {
	slog.Warn("action failed",
		"merchant_id", merchantID,
		"action_type", kind,
		"error", err,
	)
}

// execution is the per-action context handed to a handler.
type execution struct {
	executor   *Executor
	kind       ir.Kind
	merchantID string
	payload    ir.Payload
	st         *state.StoreState
	writes     int
}

// persist runs one repository write. Each accepted write advances the
// working copy's revision, mirroring the store's per-write bump.
func (x *execution) persist(op string, write func() error) error {
	if err := write(); err != nil {
		return writeFailed(x.kind, op, err)
	}
	x.writes++
	x.st.Meta.Revision++
	return nil
}

func (x *execution) repo() store.Repository {
	return x.executor.repo
}

func (x *execution) catalog() catalog.Catalog {
	return x.executor.catalog
}

func (x *execution) newID() string {
	return x.executor.ids.Generate()
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
