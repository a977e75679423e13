// Package behavior provides reusable finite-state fragments that attach to
// component instances. A behavior declares the component kinds it may
// attach to and a fixed port set; the engine routes incoming port data to
// the behavior's transition entry point, and the behavior emits results
// through the connection graph.
package behavior

import (
	"log/slog"
	"sync"

	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
)

// Emitter pushes a value out of a component port into the connection
// graph. The engine implements it over the connection manager.
type Emitter interface {
	Emit(componentID, portID string, value any)
}

// Behavior is a reusable state fragment. Implementations keep per-instance
// state keyed by component ID; OnDataReceived is the only transition entry
// point.
type Behavior interface {
	// Name identifies the behavior.
	Name() string

	// AttachableTo lists the component kinds the behavior may attach to.
	// An empty list means any kind.
	AttachableTo() []string

	// Capability declares the behavior's fixed port set.
	Capability() component.Capability

	// Initialize seeds per-instance state, merging options over defaults.
	Initialize(componentID string, options map[string]any) error

	// OnDataReceived handles a value arriving on one of the behavior's
	// input ports.
	OnDataReceived(componentID, portID string, data any)

	// Detach drops the per-instance state for a component.
	Detach(componentID string)
}

// Manager tracks which behaviors are attached to which components and
// dispatches incoming port data.
type Manager struct {
	mu        sync.RWMutex
	behaviors map[string]Behavior
	attached  map[string][]string // componentID -> behavior names
	logger    *slog.Logger
}

// NewManager creates an empty behavior manager. A nil logger defaults to
// slog.Default().
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		behaviors: make(map[string]Behavior),
		attached:  make(map[string][]string),
		logger:    logger,
	}
}

// Register adds a behavior implementation. Re-registering a name replaces
// the previous implementation.
func (m *Manager) Register(b Behavior) {
	if b == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.behaviors[b.Name()] = b
}

// Behavior returns a registered behavior by name.
func (m *Manager) Behavior(name string) (Behavior, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.behaviors[name]
	return b, ok
}

// Attach initializes a behavior for a component and records the binding.
// Attaching fails when the behavior is unknown or the component kind is
// not attachable.
func (m *Manager) Attach(name string, inst *component.Instance, options map[string]any) error {
	m.mu.RLock()
	b, ok := m.behaviors[name]
	m.mu.RUnlock()
	if !ok {
		return &UnknownBehaviorError{Name: name}
	}

	if kinds := b.AttachableTo(); len(kinds) > 0 {
		attachable := false
		for _, k := range kinds {
			if k == inst.Kind {
				attachable = true
				break
			}
		}
		if !attachable {
			return &NotAttachableError{Behavior: name, Kind: inst.Kind}
		}
	}

	if err := b.Initialize(inst.ID, options); err != nil {
		return err
	}

	m.mu.Lock()
	m.attached[inst.ID] = append(m.attached[inst.ID], name)
	m.mu.Unlock()
	return nil
}

// Dispatch routes a value arriving on a component port to every behavior
// attached to that component. The attachment list is snapshotted first so
// a transition may attach or detach behaviors reentrantly.
func (m *Manager) Dispatch(componentID, portID string, data any) {
	m.mu.RLock()
	names := append([]string(nil), m.attached[componentID]...)
	m.mu.RUnlock()

	for _, name := range names {
		m.mu.RLock()
		b, ok := m.behaviors[name]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		b.OnDataReceived(componentID, portID, data)
	}
}

// Detach removes all behavior bindings for a component and drops their
// per-instance state. The registry's unregister cascade calls this.
func (m *Manager) Detach(componentID string) {
	m.mu.Lock()
	names := m.attached[componentID]
	delete(m.attached, componentID)
	behaviors := make([]Behavior, 0, len(names))
	for _, name := range names {
		if b, ok := m.behaviors[name]; ok {
			behaviors = append(behaviors, b)
		}
	}
	m.mu.Unlock()

	for _, b := range behaviors {
		b.Detach(componentID)
	}
}

// Attached returns the behavior names bound to a component.
func (m *Manager) Attached(componentID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.attached[componentID]...)
}

// Reset drops all attachments, leaving registered behaviors in place.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = make(map[string][]string)
}

// UnknownBehaviorError indicates an Attach against an unregistered name.
type UnknownBehaviorError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownBehaviorError) Error() string {
	return "unknown behavior: " + e.Name
}

// NotAttachableError indicates a behavior/component kind mismatch.
type NotAttachableError struct {
	Behavior string
	Kind     string
}

// Error implements the error interface.
func (e *NotAttachableError) Error() string {
	return "behavior " + e.Behavior + " not attachable to kind " + e.Kind
}
