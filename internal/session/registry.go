package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/metrics"
	"github.com/justyntemme/deskshell/internal/registry"
	"github.com/justyntemme/deskshell/internal/vfs"
)

// Registry holds the live sessions by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	mounts   map[registry.Category]vfs.Tree
	opts     Options
}

// NewRegistry creates an empty registry. opts applies to every session.
func NewRegistry(opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		sessions: make(map[string]*Session),
		mounts:   make(map[registry.Category]vfs.Tree),
		opts:     opts,
	}
}

// Login creates a fresh session for user with the current mounts applied.
func (r *Registry) Login(user string) *Session {
	s := newSession(user, r.opts)

	r.mu.Lock()
	for c, t := range r.mounts {
		if err := s.store.Mount(c, t); err != nil {
			debug.Log(debug.SESSION, "login: mount %s: %v", c, err)
		}
	}
	r.sessions[s.id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SetSessionsActive(n)
	debug.Log(debug.SESSION, "login %s as %q (%d active)", s.id, user, n)
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return s, nil
}

// Logout resets and removes a session.
func (r *Registry) Logout(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}

	s.Logout()
	s.close()
	metrics.SetSessionsActive(n)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Mount applies an imported tree to every session, now and at future
// logins.
func (r *Registry) Mount(c registry.Category, t vfs.Tree) error {
	if c == registry.Trash {
		return vfs.ErrInTrash
	}
	r.mu.Lock()
	r.mounts[c] = t.Clone()
	sessions := r.snapshotLocked()
	r.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.Mount(c, t.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ExpireIdle logs out sessions idle for longer than ttl and returns how many
// were removed.
func (r *Registry) ExpireIdle(ttl time.Duration) int {
	cutoff := r.opts.Now().Add(-ttl)
	r.mu.RLock()
	var idle []string
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.RUnlock()

	n := 0
	for _, id := range idle {
		if r.Logout(id) == nil {
			n++
		}
	}
	if n > 0 {
		debug.Log(debug.SESSION, "expired %d idle sessions", n)
	}
	return n
}

// Close tears down every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.snapshotLocked()
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	metrics.SetSessionsActive(0)
}

func (r *Registry) snapshotLocked() []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
