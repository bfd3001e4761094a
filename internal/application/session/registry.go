package session

import (
	"sync"
	"time"

	"glycoanalyzer/internal/domain/session"
	"glycoanalyzer/internal/shared/errors"
)

// Registry holds the live session contexts, keyed by session ID. Sessions are
// in-process only; a restart logs everyone out, which matches the quota model
// where remaining-photo counts are session-durable, not persisted back.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	ctx      *session.Context
	lastSeen time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

func (r *Registry) Add(ctx *session.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[ctx.ID()] = &entry{ctx: ctx, lastSeen: r.now()}
}

// Get returns the live session for the given ID. Unknown, expired, and
// explicitly closed sessions all surface the same session-closed error so the
// client re-authenticates.
func (r *Registry) Get(id string) (*session.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, errors.NewSessionClosedError()
	}

	now := r.now()
	if r.ttl > 0 && now.Sub(e.lastSeen) > r.ttl {
		e.ctx.Close()
		delete(r.sessions, id)
		return nil, errors.NewSessionClosedError()
	}

	if e.ctx.State() == session.StateClosed {
		delete(r.sessions, id)
		return nil, errors.NewSessionClosedError()
	}

	e.lastSeen = now
	return e.ctx, nil
}

// Remove closes and drops the session. Removing an unknown ID is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.ctx.Close()
		delete(r.sessions, id)
	}
}

// Sweep drops sessions idle past the TTL. Intended for a background ticker.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	swept := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			e.ctx.Close()
			delete(r.sessions, id)
			swept++
		}
	}
	return swept
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
