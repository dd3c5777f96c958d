package shop

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"homiepro-storefront/internal/catalog"
	"homiepro-storefront/internal/chat"
	"homiepro-storefront/internal/logger"
)

// Registry owns the live sessions. Sessions share nothing but the
// read-only catalog and the chat gateway.
type Registry struct {
	catalog *catalog.Store
	gateway chat.Gateway
	ttl     time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. Sessions idle for longer than ttl
// are dropped; a ttl of zero keeps them for the life of the process.
func NewRegistry(store *catalog.Store, gw chat.Gateway, ttl time.Duration) *Registry {
	return &Registry{
		catalog:  store,
		gateway:  gw,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a fresh random id.
func (r *Registry) Create() *Session {
	s := NewSession(uuid.NewString(), r.catalog, r.gateway, r.now)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if r.expired(s, r.now()) {
		r.remove(id)
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return r.ttl > 0 && now.Sub(s.LastSeen()) > r.ttl
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len is the number of sessions held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				logger.Debugf("evicted %d idle sessions, %d live", n, r.Len())
			}
		}
	}
}
