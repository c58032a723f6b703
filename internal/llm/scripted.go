package llm

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned once every scripted reply has been used.
var ErrScriptExhausted = errors.New("llm: scripted replies exhausted")

// Reply is one scripted completion outcome.
type Reply struct {
	Text string `yaml:"text"`
	Err  error  `yaml:"-"`
}

// Call records the prompts of one Complete call.
type Call struct {
	System string
	User   string
}

// Scripted is a Completer that returns canned replies in order.
//
// Thread-safety: safe for concurrent use.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

var _ Completer = (*Scripted)(nil)

// NewScripted returns a completer that answers with texts in order.
func NewScripted(texts ...string) *Scripted {
	s := &Scripted{}
	for _, t := range texts {
		s.replies = append(s.replies, Reply{Text: t})
	}
	return s
}

// Then appends a reply and returns s for chaining.
func (s *Scripted) Then(r Reply) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r)
	return s
}

// Complete records the call and returns the next reply.
func (s *Scripted) Complete(ctx context.Context, system, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.calls = append(s.calls, Call{System: system, User: user})
	if len(s.calls) > len(s.replies) {
		return "", ErrScriptExhausted
	}
	r := s.replies[len(s.calls)-1]
	return r.Text, r.Err
}

// Calls returns the recorded calls.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Remaining reports how many replies are still unused.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return max(len(s.replies)-len(s.calls), 0)
}
