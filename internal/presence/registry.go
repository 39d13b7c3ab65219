// Package presence tracks which users currently hold an open realtime
// connection. State is process-local and ephemeral: it is rebuilt as sockets
// reconnect and lost on restart, by contract.
package presence

import (
	"sync"
	"time"
)

// Entry describes one connected user.
type Entry struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Registry is the single source of truth for "is user online". Only the
// narrow API below is exposed; the backing map never leaks.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or refreshes the entry for a connected user.
func (r *Registry) Register(userID, name, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = Entry{
		UserID:      userID,
		Name:        name,
		Role:        role,
		ConnectedAt: time.Now(),
	}
}

// Unregister removes the entry for a disconnected user.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// IsOnline reports whether the user has an open connection. Never-connected
// ids simply return false.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[userID]
	return ok
}

// List returns a snapshot of all connected users.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}
