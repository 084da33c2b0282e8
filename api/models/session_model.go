package models

import (
	"slices"
	"sync"
	"time"

	"github.com/muingY/gif-compressor-backend/tool"
)

// SessionRegistry maps live session ids to their creation time.
// The lock is private and only ever held around map operations, never around I/O.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	orphaned map[string]struct{} // evicted ids whose files could not be removed yet
	now      func() time.Time
	newID    func() string
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]time.Time),
		orphaned: make(map[string]struct{}),
		now:      time.Now,
		newID:    tool.GenerateSessionID,
	}
}

// WithClock replaces the time source. Used by tests to age sessions.
func (r *SessionRegistry) WithClock(now func() time.Time) *SessionRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

// Create mints a new id that is not live, records it and returns it.
func (r *SessionRegistry) Create() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for {
		if _, exists := r.sessions[id]; !exists {
			break
		}
		id = r.newID()
	}
	r.sessions[id] = r.now()
	return id
}

func (r *SessionRegistry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

func (r *SessionRegistry) CreatedAt(id string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	createdAt, ok := r.sessions[id]
	return createdAt, ok
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove drops id without touching the filesystem.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// EvictExpired removes every session older than ttl and returns the removed ids, sorted.
// Callers delete the matching directories after this returns.
func (r *SessionRegistry) EvictExpired(ttl time.Duration) []string {
	r.mu.Lock()
	now := r.now()
	var removed []string
	for id, createdAt := range r.sessions {
		if now.Sub(createdAt) > ttl {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	slices.Sort(removed)
	return removed
}

// MarkOrphaned records a removed session whose files are still on disk, so the next
// cleanup tick retries the removal.
func (r *SessionRegistry) MarkOrphaned(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orphaned[id] = struct{}{}
}

// TakeOrphaned returns and forgets every orphaned id, sorted.
func (r *SessionRegistry) TakeOrphaned() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.orphaned))
	for id := range r.orphaned {
		ids = append(ids, id)
	}
	clear(r.orphaned)
	r.mu.Unlock()

	slices.Sort(ids)
	return ids
}
