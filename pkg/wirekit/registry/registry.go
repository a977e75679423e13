// Package registry provides the process-local directory of live component
// instances. It maps identifiers to instances, tracks event-handler
// bindings for bulk cleanup, and supports simple selector queries.
//
// Lookups for unknown components are soft failures: they log and return
// nil/false rather than erroring, because registry calls originate in
// fire-and-forget event handlers.
package registry

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
)

// EventHandler receives event payloads dispatched to a component binding.
type EventHandler func(data any)

// UnregisterHook is invoked after a component is removed from the registry.
// The engine uses it to cascade connection removal; the cascade is a binding
// contract, not optional cleanup.
type UnregisterHook func(componentID string)

// Registry is the directory of live component instances.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*component.Instance
	// handlers maps componentID -> event -> handler name -> handler.
	// Naming handlers makes registration idempotent per (component, event, name).
	handlers map[string]map[string]map[string]EventHandler
	hooks    []UnregisterHook
	logger   *slog.Logger
}

// New creates an empty registry. A nil logger defaults to slog.Default().
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		components: make(map[string]*component.Instance),
		handlers:   make(map[string]map[string]map[string]EventHandler),
		logger:     logger,
	}
}

// OnUnregister appends a hook run after every successful Unregister.
func (r *Registry) OnUnregister(hook UnregisterHook) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Register stores the binding for the instance's ID. Registering an ID that
// already exists overwrites the previous binding; last write wins.
func (r *Registry) Register(inst *component.Instance) {
	if inst == nil || inst.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[inst.ID]; exists {
		r.logger.Debug("component re-registered", slog.String("component_id", inst.ID))
	}
	r.components[inst.ID] = inst
}

// Get returns the instance for a selector, or nil if not registered.
// A leading "#" is stripped, so "#display" and "display" are equivalent.
func (r *Registry) Get(selector string) *component.Instance {
	id := NormalizeSelector(selector)
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.components[id]
	if !ok {
		r.logger.Debug("component lookup failed", slog.String("selector", selector))
		return nil
	}
	return inst
}

// Has returns true if a component is registered under the selector.
func (r *Registry) Has(selector string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.components[NormalizeSelector(selector)]
	return ok
}

// Unregister removes the instance, all tracked event-handler bindings for
// it, and (through the registered hooks) all connections touching it.
// Unregistering an unknown ID is a no-op and returns false.
func (r *Registry) Unregister(id string) bool {
	id = NormalizeSelector(id)

	r.mu.Lock()
	if _, ok := r.components[id]; !ok {
		r.mu.Unlock()
		r.logger.Debug("unregister of unknown component", slog.String("component_id", id))
		return false
	}
	delete(r.components, id)
	delete(r.handlers, id)
	// Snapshot hooks so a hook may register further hooks reentrantly.
	hooks := append([]UnregisterHook(nil), r.hooks...)
	r.mu.Unlock()

	for _, hook := range hooks {
		hook(id)
	}
	return true
}

// RegisterEventHandler binds a named handler to a (component, event) pair.
// A name registers at most once per pair; rebinding an existing name
// replaces the handler and returns false.
func (r *Registry) RegisterEventHandler(componentID, event, name string, handler EventHandler) bool {
	if handler == nil {
		return false
	}
	componentID = NormalizeSelector(componentID)

	r.mu.Lock()
	defer r.mu.Unlock()
	byEvent, ok := r.handlers[componentID]
	if !ok {
		byEvent = make(map[string]map[string]EventHandler)
		r.handlers[componentID] = byEvent
	}
	byName, ok := byEvent[event]
	if !ok {
		byName = make(map[string]EventHandler)
		byEvent[event] = byName
	}
	_, existed := byName[name]
	byName[name] = handler
	return !existed
}

// UnregisterEventHandlers removes all handlers for a component, or only
// those for one event when event is non-empty.
func (r *Registry) UnregisterEventHandlers(componentID, event string) {
	componentID = NormalizeSelector(componentID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if event == "" {
		delete(r.handlers, componentID)
		return
	}
	if byEvent, ok := r.handlers[componentID]; ok {
		delete(byEvent, event)
	}
}

// HandlersFor returns the handlers bound to a (component, event) pair,
// ordered by handler name for deterministic dispatch. The returned slice
// is a snapshot: handlers may mutate the registry while it is iterated.
func (r *Registry) HandlersFor(componentID, event string) []EventHandler {
	componentID = NormalizeSelector(componentID)

	r.mu.RLock()
	defer r.mu.RUnlock()
	byName := r.handlers[componentID][event]
	if len(byName) == 0 {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]EventHandler, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out
}

// Query scans registered components against a selector pattern:
// "#id" matches one component by ID, ".class" matches class markers,
// anything else matches the kind tag. Results are ordered by component ID.
//
// The scan is linear; the expected population is tens to low hundreds of
// live components.
func (r *Registry) Query(pattern string) []*component.Instance {
	r.mu.RLock()
	snapshot := make([]*component.Instance, 0, len(r.components))
	for _, inst := range r.components {
		snapshot = append(snapshot, inst)
	}
	r.mu.RUnlock()

	var out []*component.Instance
	switch {
	case strings.HasPrefix(pattern, "#"):
		id := pattern[1:]
		for _, inst := range snapshot {
			if inst.ID == id {
				out = append(out, inst)
			}
		}
	case strings.HasPrefix(pattern, "."):
		class := pattern[1:]
		for _, inst := range snapshot {
			if inst.HasClass(class) {
				out = append(out, inst)
			}
		}
	default:
		for _, inst := range snapshot {
			if inst.Kind == pattern {
				out = append(out, inst)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the IDs of all registered components, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.components))
	for id := range r.components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}

// Reset removes all components and handler bindings without running hooks.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = make(map[string]*component.Instance)
	r.handlers = make(map[string]map[string]map[string]EventHandler)
}

// NormalizeSelector strips a single leading "#" from a by-id selector.
func NormalizeSelector(selector string) string {
	return strings.TrimPrefix(selector, "#")
}
