package service

import (
	"context"
	"sync"
	"time"

	"dulce-kart/internal/cart"
	"dulce-kart/internal/checkout"
	"dulce-kart/internal/kvstore"

	"github.com/rs/zerolog"
)

// Session is the live state of one browsing session on this instance.
type Session struct {
	Cart     *cart.Store
	Checkout *checkout.Workflow

	lastSeen time.Time
}

// DefaultMaxSessions bounds how many sessions a registry keeps loaded.
const DefaultMaxSessions = 10000

// SessionRegistry opens session carts on first use and keeps them in
// memory. Carts are durable in the key-value store; checkout progress lives
// only in memory and is lost when a session is swept or evicted.
type SessionRegistry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	maxSessions int

	storage kvstore.Store
	deps    checkout.Deps
	now     func() time.Time
	base    zerolog.Logger
	logger  zerolog.Logger
}

// NewSessionRegistry creates an empty registry holding at most
// DefaultMaxSessions sessions.
func NewSessionRegistry(storage kvstore.Store, deps checkout.Deps, logger zerolog.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		storage:     storage,
		deps:        deps,
		now:         time.Now,
		base:        logger,
		logger:      logger.With().Str("component", "sessions").Logger(),
	}
}

// SetMaxSessions changes the number of loaded sessions after which the
// least recently used one is unloaded. Values below 1 are ignored.
func (r *SessionRegistry) SetMaxSessions(n int) {
	if n < 1 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxSessions = n
}

// Get returns the session, opening its cart from storage when it is not
// loaded yet. Storage is read without holding the registry lock; when two
// requests open the same session at once the first one stored wins.
func (r *SessionRegistry) Get(ctx context.Context, sessionID string) (*Session, error) {
	if s, ok := r.loaded(sessionID); ok {
		return s, nil
	}

	store, err := cart.Open(ctx, r.storage, kvstore.CartKey(sessionID), r.base)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.lastSeen = r.now()
		return s, nil
	}
	if len(r.sessions) >= r.maxSessions {
		r.evictOldestLocked()
	}

	s := &Session{
		Cart:     store,
		Checkout: checkout.New(store, r.deps),
		lastSeen: r.now(),
	}
	r.sessions[sessionID] = s
	r.logger.Debug().Str("session_id", sessionID).Msg("session opened")
	return s, nil
}

func (r *SessionRegistry) loaded(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// evictOldestLocked unloads the least recently used session. The cart stays
// in storage and is reopened on the next request. r.mu must be held.
func (r *SessionRegistry) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, s := range r.sessions {
		if oldestID == "" || s.lastSeen.Before(oldest) {
			oldestID, oldest = id, s.lastSeen
		}
	}
	if oldestID == "" {
		return
	}
	delete(r.sessions, oldestID)
	r.logger.Debug().Str("session_id", oldestID).Msg("session evicted at capacity")
}

// Len returns the number of loaded sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep unloads sessions idle for longer than maxIdle and returns how many
// were dropped.
func (r *SessionRegistry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	dropped := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *SessionRegistry) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.logger.Info().Int("dropped", n).Int("remaining", r.Len()).Msg("idle sessions swept")
			}
		}
	}
}
