package component

import "sync"

// SchemaRegistry is the per-kind capability directory. A component kind
// publishes its capabilities once; every instance of that kind shares them.
// Auto-wiring and inspection tools read port schemas exclusively from here.
type SchemaRegistry struct {
	mu    sync.RWMutex
	kinds map[string][]Capability
}

// NewSchemaRegistry creates an empty schema registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		kinds: make(map[string][]Capability),
	}
}

// Publish registers the capabilities for a component kind.
// Publishing the same kind again replaces the previous set.
func (r *SchemaRegistry) Publish(kind string, caps ...Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = append([]Capability(nil), caps...)
}

// Capabilities returns the capabilities published for a kind.
func (r *SchemaRegistry) Capabilities(kind string) ([]Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps, ok := r.kinds[kind]
	if !ok {
		return nil, false
	}
	return append([]Capability(nil), caps...), true
}

// Ports returns the flattened port list across all capabilities of a kind.
func (r *SchemaRegistry) Ports(kind string) ([]Port, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps, ok := r.kinds[kind]
	if !ok {
		return nil, false
	}
	var ports []Port
	for _, c := range caps {
		ports = append(ports, c.Ports...)
	}
	return ports, true
}

// Port returns a single port of a kind by port ID.
func (r *SchemaRegistry) Port(kind, portID string) (Port, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.kinds[kind] {
		for _, p := range c.Ports {
			if p.ID == portID {
				return p, true
			}
		}
	}
	return Port{}, false
}

// Kinds returns all kinds with published capabilities.
// The order is not guaranteed.
func (r *SchemaRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	return kinds
}

// Reset removes all published schemas.
func (r *SchemaRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = make(map[string][]Capability)
}
