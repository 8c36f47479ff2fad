package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/pkg/metrics"
)

// Transition computes the next state of a session. Returning an error leaves
// the stored session unchanged.
type Transition func(*draft.Session) (*draft.Session, error)

type sessionEntry struct {
	mu      sync.Mutex
	session *draft.Session
	removed bool
}

// Sessions stores live draft sessions. Transitions on one session are
// serialized; different sessions proceed in parallel.
type Sessions struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

// NewSessions returns an empty session store.
func NewSessions() *Sessions {
	return &Sessions{entries: make(map[string]*sessionEntry)}
}

// Create stores s under its ID.
func (r *Sessions) Create(ctx context.Context, s *draft.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.ID() == "" {
		return fmt.Errorf("session has no id: %w", draft.ErrInvalidConfiguration)
	}

	r.mu.Lock()
	if _, ok := r.entries[s.ID()]; ok {
		r.mu.Unlock()
		return fmt.Errorf("session %q: %w", s.ID(), ErrDuplicate)
	}
	r.entries[s.ID()] = &sessionEntry{session: s}
	n := len(r.entries)
	r.mu.Unlock()

	metrics.UpdateActiveDrafts(n)
	return nil
}

// Get returns the current state of a session.
func (r *Sessions) Get(ctx context.Context, id string) (*draft.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return e.session, nil
}

// Update applies fn to the session while holding its lock and stores the
// result on success.
func (r *Sessions) Update(ctx context.Context, id string, fn Transition) (*draft.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	next, err := fn(e.session)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return e.session, nil
	}
	e.session = next
	return next, nil
}

// Delete removes a session. Deleting an unknown ID returns ErrNotFound.
func (r *Sessions) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	n := len(r.entries)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	metrics.UpdateActiveDrafts(n)
	return nil
}

// Len returns the number of stored sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// IDs returns the stored session IDs in sorted order.
func (r *Sessions) IDs() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *Sessions) entry(id string) (*sessionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return e, nil
}
