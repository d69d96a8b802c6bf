package server

import "sync"

// Registry is the process-wide table of live sessions keyed by player id.
// Entries are added on connect and removed on disconnect; no component
// outside a session's own handler ever mutates the session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session under its player id.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.PlayerID()] = s
	r.mu.Unlock()
}

// Remove drops the session with the given player id, if present.
func (r *Registry) Remove(playerID string) {
	r.mu.Lock()
	delete(r.sessions, playerID)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
