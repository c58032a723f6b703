package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/storepilot/internal/engine"
	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/llm"
	"github.com/roach88/storepilot/internal/prompt"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/turnlock"
	"github.com/roach88/storepilot/internal/validate"
)

const tracerName = "github.com/roach88/storepilot/internal/agent"

// DefaultHistoryLimit is the number of turns a session keeps.
const DefaultHistoryLimit = 20

// RevisionSource reports the store's write counter for a merchant.
type RevisionSource interface {
	Revision(ctx context.Context, merchantID string) (int64, error)
}

// Deps are the collaborators a Session drives. Loader, Executor, Prompt and
// LLM are required. A nil Revisions disables the stale-state check.
type Deps struct {
	Loader    state.Source
	Revisions RevisionSource
	Executor  *engine.Executor
	Validator *validate.Validator
	Prompt    prompt.Builder
	LLM       llm.Completer
	Locker    turnlock.Locker
}

// Report describes one turn.
type Report struct {
	Success          bool          `json:"success"`
	Thinking         string        `json:"thinking,omitempty"`
	Actions          []ir.Action   `json:"actions"`
	Mutations        []ir.Mutation `json:"mutations"`
	Explanation      string        `json:"explanation,omitempty"`
	Error            string        `json:"error,omitempty"`
	ExecutionTimeMs  int64         `json:"execution_time_ms"`
	ValidationErrors []string      `json:"validation_errors,omitempty"`
}

// Turn is one history entry.
type Turn struct {
	Instruction string           `json:"instruction"`
	Selection   prompt.Selection `json:"selection,omitzero"`
	Report      Report           `json:"report"`
	At          time.Time        `json:"at"`
}

// Option configures a Session.
type Option func(*Session)

// WithHistoryLimit caps the number of turns kept. Values below 1 keep one.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.historyLimit = max(n, 1)
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithStrategies replaces the reply parse cascade.
func WithStrategies(strategies ...Strategy) Option {
	return func(s *Session) {
		s.strategies = strategies
	}
}

// WithTracer sets the tracer used for turn spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		s.tracer = t
	}
}

// WithClock sets the clock used for history timestamps and turn timing.
func WithClock(c engine.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// Session is the conversational state for one merchant.
//
// Thread-safety: Process calls are serialised through the session's
// Locker; State and History may be called concurrently with Process.
type Session struct {
	merchantID   string
	deps         Deps
	logger       *slog.Logger
	tracer       trace.Tracer
	clock        engine.Clock
	strategies   []Strategy
	historyLimit int

	mu      sync.Mutex
	st      state.StoreState
	loaded  bool
	history []Turn
}

// NewSession creates a session for merchantID. State is loaded lazily on
// the first turn.
func NewSession(merchantID string, deps Deps, opts ...Option) (*Session, error) {
	if merchantID == "" {
		return nil, errors.New("agent: merchant id is required")
	}
	switch {
	case deps.Loader == nil:
		return nil, errors.New("agent: Deps.Loader is required")
	case deps.Executor == nil:
		return nil, errors.New("agent: Deps.Executor is required")
	case deps.Prompt == nil:
		return nil, errors.New("agent: Deps.Prompt is required")
	case deps.LLM == nil:
		return nil, errors.New("agent: Deps.LLM is required")
	}
	if deps.Validator == nil {
		deps.Validator = validate.Default()
	}
	if deps.Locker == nil {
		deps.Locker = turnlock.NewLocal()
	}

	s := &Session{
		merchantID:   merchantID,
		deps:         deps,
		logger:       slog.Default(),
		tracer:       otel.Tracer(tracerName),
		clock:        engine.SystemClock{},
		strategies:   DefaultStrategies(),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MerchantID returns the merchant this session edits.
func (s *Session) MerchantID() string { return s.merchantID }

// Process runs one turn for instruction. The report is also appended to
// the history.
func (s *Session) Process(ctx context.Context, instruction string, sel prompt.Selection) Report {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, "agent.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("merchant_id", s.merchantID)),
	)
	defer span.End()

	report := s.turn(ctx, instruction, sel)
	end := s.clock.Now()
	report.ExecutionTimeMs = end.Sub(start).Milliseconds()

	span.SetAttributes(
		attribute.Bool("success", report.Success),
		attribute.Int("action_count", len(report.Actions)),
		attribute.Int("mutation_count", len(report.Mutations)),
	)
	if !report.Success {
		span.SetStatus(codes.Error, report.Error)
	}

	s.record(Turn{Instruction: instruction, Selection: sel, Report: report, At: end})
	s.logger.Info("turn finished",
		"merchant_id", s.merchantID,
		"success", report.Success,
		"actions", len(report.Actions),
		"mutations", len(report.Mutations),
		"duration_ms", report.ExecutionTimeMs,
	)
	return report
}

func (s *Session) turn(ctx context.Context, instruction string, sel prompt.Selection) Report {
	report := Report{Actions: []ir.Action{}, Mutations: []ir.Mutation{}}

	release, err := s.deps.Locker.Acquire(ctx, s.merchantID)
	if err != nil {
		report.Error = fmt.Sprintf("acquire turn lock: %v", err)
		return report
	}
	defer release()

	st := s.snapshot(ctx)

	system, err := s.deps.Prompt.System(st)
	if err != nil {
		report.Error = fmt.Sprintf("build prompt: %v", err)
		return report
	}
	text, err := s.deps.LLM.Complete(ctx, system, s.deps.Prompt.User(instruction, sel))
	if err != nil {
		s.logger.Warn("model call failed", "merchant_id", s.merchantID, "error", err)
		report.Error = fmt.Sprintf("model call failed: %v", err)
		return report
	}

	parsed := s.parse(ctx, text)
	report.Thinking = parsed.Thinking
	report.Explanation = parsed.Explanation
	if len(parsed.Actions) == 0 {
		report.Success = true
		return report
	}

	outcome := s.deps.Validator.ParseAndValidateActions(parsed.Actions)
	if len(outcome.Errors) > 0 {
		report.ValidationErrors = outcome.Errors
		s.logger.Warn("actions rejected",
			"merchant_id", s.merchantID,
			"rejected", len(parsed.Actions)-len(outcome.Actions),
			"errors", strings.Join(outcome.Errors, "; "),
		)
	}
	if !outcome.Success {
		report.Error = strings.Join(outcome.Errors, "; ")
		return report
	}
	report.Actions = outcome.Actions

	next, mutations := s.execute(ctx, st, outcome.Actions)
	s.setState(next)
	report.Mutations = mutations
	report.Success = ir.AllSucceeded(mutations)
	if !report.Success {
		last := mutations[len(mutations)-1]
		report.Error = fmt.Sprintf("%s failed: %s", last.Type, last.Error)
	}
	return report
}

// snapshot returns the state the turn starts from, loading it on first use
// and reloading it when the store has moved past the held revision.
func (s *Session) snapshot(ctx context.Context) state.StoreState {
	s.mu.Lock()
	st, loaded := s.st, s.loaded
	s.mu.Unlock()

	if !loaded {
		st = state.OrEmpty(ctx, s.deps.Loader, s.merchantID)
		s.setState(st)
		return st
	}
	if s.deps.Revisions == nil {
		return st
	}

	rev, err := s.deps.Revisions.Revision(ctx, s.merchantID)
	if err != nil {
		s.logger.Warn("revision check failed, keeping held state", "merchant_id", s.merchantID, "error", err)
		return st
	}
	if rev == st.Meta.Revision {
		return st
	}
	s.logger.Info("state is stale, reloading",
		"merchant_id", s.merchantID,
		"held_revision", st.Meta.Revision,
		"store_revision", rev,
	)
	fresh, err := s.deps.Loader.Load(ctx, s.merchantID)
	if err != nil {
		s.logger.Warn("reload failed, keeping held state", "merchant_id", s.merchantID, "error", err)
		return st
	}
	s.setState(fresh)
	return fresh
}

func (s *Session) parse(ctx context.Context, text string) Parsed {
	_, span := s.tracer.Start(ctx, "agent.parse")
	defer span.End()

	parsed := Parse(text, s.strategies)
	span.SetAttributes(
		attribute.String("strategy", parsed.Strategy),
		attribute.Int("candidate_count", len(parsed.Actions)),
	)
	if parsed.Err != nil {
		s.logger.Debug("reply has no actions", "merchant_id", s.merchantID, "reason", parsed.Err)
	}
	return parsed
}

func (s *Session) execute(ctx context.Context, st state.StoreState, actions []ir.Action) (state.StoreState, []ir.Mutation) {
	ctx, span := s.tracer.Start(ctx, "agent.execute",
		trace.WithAttributes(
			attribute.String("merchant_id", s.merchantID),
			attribute.Int("action_count", len(actions)),
		),
	)
	defer span.End()

	next, mutations := s.deps.Executor.ExecuteActions(ctx, st, actions)
	span.SetAttributes(attribute.Int("applied_count", countSucceeded(mutations)))
	if !ir.AllSucceeded(mutations) {
		span.SetStatus(codes.Error, "batch stopped")
	}
	return next, mutations
}

// State returns a copy of the session's current state. Before the first
// turn or Reset it is the empty document.
func (s *Session) State() state.StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return state.Empty(s.merchantID)
	}
	return state.Clone(s.st)
}

// History returns the recorded turns, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Reset discards the history and reloads state from the store.
func (s *Session) Reset(ctx context.Context) error {
	release, err := s.deps.Locker.Acquire(ctx, s.merchantID)
	if err != nil {
		return fmt.Errorf("acquire turn lock: %w", err)
	}
	defer release()

	st, err := s.deps.Loader.Load(ctx, s.merchantID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	if err != nil {
		s.st = state.Empty(s.merchantID)
		s.loaded = true
		return fmt.Errorf("reset %s: %w", s.merchantID, err)
	}
	s.st = st
	s.loaded = true
	return nil
}

func (s *Session) setState(st state.StoreState) {
	s.mu.Lock()
	s.st = st
	s.loaded = true
	s.mu.Unlock()
}

func (s *Session) record(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, t)
	if over := len(s.history) - s.historyLimit; over > 0 {
		s.history = append([]Turn(nil), s.history[over:]...)
	}
}

func countSucceeded(ms []ir.Mutation) int {
	n := 0
	for _, m := range ms {
		if m.Success {
			n++
		}
	}
	return n
}
