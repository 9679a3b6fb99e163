// Package realtime implements the notification delivery path: an in-memory
// user→connection registry, a best-effort router and the WebSocket transport
// binding. Bindings are process-local and die with the process; clients must
// re-register after reconnect.
package realtime

import "sync"

// Registry maps an application user id to at most one live connection id.
type Registry struct {
	mu     sync.Mutex
	byUser map[int64]string
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[int64]string)}
}

// Bind binds userID to connID, last writer wins. A connection id belongs to
// at most one user: any other user previously bound to connID is unbound.
func (r *Registry) Bind(userID int64, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, cid := range r.byUser {
		if cid == connID && uid != userID {
			delete(r.byUser, uid)
		}
	}
	r.byUser[userID] = connID
}

// Unbind removes the binding whose connection id equals connID. No-op when
// connID was never bound.
func (r *Registry) Unbind(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, cid := range r.byUser {
		if cid == connID {
			delete(r.byUser, uid)
		}
	}
}

// Resolve returns the connection id bound to userID, if any.
func (r *Registry) Resolve(userID int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	connID, ok := r.byUser[userID]
	return connID, ok
}
