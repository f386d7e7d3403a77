package hunt

import "sync"

// Registry holds the active session per player. All access goes
// through it; callers never touch a raw map, and the check-then-insert
// on start is atomic per key.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the active session for a player, if any.
func (r *Registry) Get(playerID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[playerID]
	return s, ok
}

// PutIfAbsent registers the session unless the player already has an
// active one. Returns false when rejected.
func (r *Registry) PutIfAbsent(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.playerID]; exists {
		return false
	}
	r.sessions[s.playerID] = s
	return true
}

// Delete removes a player's session, terminal or not.
func (r *Registry) Delete(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, playerID)
}
