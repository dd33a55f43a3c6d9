package infrastructure

import (
	"log/slog"
	"sync"
)

// Registry tracks every live WebSocket connection keyed by user id. All
// methods are safe for concurrent use by connection lifecycles and the
// dispatcher; lookups return snapshots so callers never iterate shared state.
type Registry struct {
	mu    sync.RWMutex
	users map[string]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]map[*Client]struct{})}
}

// Register adds the connection under its user id. Multiple simultaneous
// connections per user are expected (multi-device) and never rejected.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.users[c.userID]
	if set == nil {
		set = make(map[*Client]struct{})
		r.users[c.userID] = set
	}
	set[c] = struct{}{}
	slog.Info("ws client registered", slog.String("userId", c.userID), slog.String("role", c.role))
}

// Unregister removes the specific connection. Removing an absent connection is
// a no-op; disconnect races with dispatch cleanup are normal.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.users[c.userID]
	if !ok {
		return
	}
	if _, present := set[c]; !present {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.users, c.userID)
	}
	slog.Info("ws client unregistered", slog.String("userId", c.userID))
}

// ConnectionsFor returns a snapshot of the user's current connections; empty
// for unknown users, never an error.
func (r *Registry) ConnectionsFor(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.users[userID]
	if len(set) == 0 {
		return nil
	}
	conns := make([]*Client, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// ConnectionsForRole returns a snapshot of every connection whose user holds
// the given role. Roles are captured at handshake time from the token.
func (r *Registry) ConnectionsForRole(role string) []*Client {
	if role == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var conns []*Client
	for _, set := range r.users {
		for c := range set {
			if c.role == role {
				conns = append(conns, c)
			}
		}
	}
	return conns
}

// Count reports the number of live connections across all users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, set := range r.users {
		n += len(set)
	}
	return n
}
