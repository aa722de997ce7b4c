package ws

import (
	"sync"

	"github.com/mcoot/hangmanparty/internal/model"
)

// Registry maps live connection IDs to the authenticated player behind
// them. This is the trust boundary for the realtime layer: game events
// are attributed to the registered identity, never to payload fields.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]model.PlayerID
}

// NewRegistry creates an empty connection registry
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]model.PlayerID),
	}
}

// Bind associates a connection with an authenticated player
func (r *Registry) Bind(connID string, playerID model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = playerID
}

// Release removes a connection binding
func (r *Registry) Release(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
}

// Lookup returns the player bound to a connection, if any
func (r *Registry) Lookup(connID string) (model.PlayerID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	playerID, ok := r.conns[connID]
	return playerID, ok
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
