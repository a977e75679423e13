package action

import "sync"

// Scope is the interpreter's working memory for one execution: a
// name-to-value mapping seeded from the invocation context. Each
// ExecuteActions call gets a fresh scope; any cross-call continuity (for
// nested timers) is an explicit snapshot, never implicit persistence.
type Scope struct {
	mu   sync.RWMutex
	vars map[string]any
}

// NewScope creates a scope seeded from the given map. The seed is copied.
func NewScope(seed map[string]any) *Scope {
	vars := make(map[string]any, len(seed))
	for k, v := range seed {
		vars[k] = v
	}
	return &Scope{vars: vars}
}

// Get returns the value bound to name and whether it is set.
func (s *Scope) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Set binds a value to name.
func (s *Scope) Set(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = v
}

// Snapshot returns a copy of the current bindings. Scheduled callbacks are
// seeded from a snapshot taken at scheduling time.
func (s *Scope) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}
