package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/rompostbot/core/logger"
)

// Options configures a Store.
type Options struct {
	// IdleTimeout expires sessions without input; <= 0 selects DefaultIdleTimeout.
	IdleTimeout time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Store is an in-memory session registry with idle expiry.
type Store[T any] struct {
	mu       sync.Mutex
	sessions map[Key]*Entry[T]
	locks    map[Key]*keyLock
	idle     time.Duration
	now      func() time.Time
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewStore constructs an empty Store.
func NewStore[T any](opts Options) *Store[T] {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store[T]{
		sessions: make(map[Key]*Entry[T]),
		locks:    make(map[Key]*keyLock),
		idle:     opts.IdleTimeout,
		now:      opts.Now,
	}
}

// IdleTimeout reports the configured expiry window.
func (s *Store[T]) IdleTimeout() time.Duration {
	return s.idle
}

// Begin replaces any session for key with a fresh one in state st.
func (s *Store[T]) Begin(key Key, st State, data T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sessions[key] = &Entry[T]{State: st, Data: data, StartedAt: now, TouchedAt: now}
}

// Get returns the live session for key and refreshes its idle timer.
// Expired sessions are reported as absent and left for Sweep, so every
// expiry reaches the janitor callback.
func (s *Store[T]) Get(key Key) (Entry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(key)
	if !ok {
		return Entry[T]{}, false
	}
	e.TouchedAt = s.now()
	return *e, true
}

// SetState moves an existing session to st. It reports false when no live session exists.
func (s *Store[T]) SetState(key Key, st State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(key)
	if !ok {
		return false
	}
	e.State = st
	e.TouchedAt = s.now()
	return true
}

// State returns the current state or StateIdle.
func (s *Store[T]) State(key Key) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.liveLocked(key); ok {
		return e.State
	}
	return StateIdle
}

// InProgress reports whether key has a live, non-idle session.
func (s *Store[T]) InProgress(key Key) bool {
	return s.State(key) != StateIdle
}

// End removes the session for key and reports whether one existed.
func (s *Store[T]) End(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.liveLocked(key)
	delete(s.sessions, key)
	return ok
}

// Len returns the number of stored sessions, including not yet swept ones.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns their keys.
func (s *Store[T]) Sweep() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var expired []Key
	for key, e := range s.sessions {
		if now.Sub(e.TouchedAt) >= s.idle {
			expired = append(expired, key)
			delete(s.sessions, key)
		}
	}
	return expired
}

// RunJanitor sweeps every interval until ctx is done, calling onExpire for each
// removed key. The call blocks; run it in its own goroutine.
func (s *Store[T]) RunJanitor(ctx context.Context, every time.Duration, onExpire func(Key)) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired := s.Sweep()
			if len(expired) > 0 {
				logger.Debug(ctx, "fsm", "sweep",
					slog.Int("count", len(expired)),
				)
			}
			if onExpire == nil {
				continue
			}
			for _, key := range expired {
				onExpire(key)
			}
		}
	}
}

// Lock serialises work on one key and returns the matching unlock func.
func (s *Store[T]) Lock(key Key) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func (s *Store[T]) liveLocked(key Key) (*Entry[T], bool) {
	e, ok := s.sessions[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.TouchedAt) >= s.idle {
		return nil, false
	}
	return e, true
}
