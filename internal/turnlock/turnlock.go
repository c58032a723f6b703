// Package turnlock serialises agent turns per merchant.
//
// Two turns for the same merchant never run their execute phase at the
// same time when both go through the same Locker. Local covers a single
// process; Redis covers several processes sharing one Redis.
package turnlock

import (
	"context"
	"sync"
)

// Release ends a held lock. It is safe to call more than once.
type Release func()

// Locker acquires an exclusive per-key lock, waiting until it is free or
// ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Local is an in-process keyed mutex.
//
// Thread-safety: safe for concurrent use.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

var _ Locker = (*Local)(nil)

// NewLocal creates an in-process locker.
func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

// Acquire blocks until key is free or ctx is done.
func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	s := l.ref(key)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key)
		})
	}, nil
}

// Held reports how many keys currently have a holder or waiter.
func (l *Local) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *Local) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Local) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
