// Package component defines the component model for the wirekit engine:
// typed ports, per-kind capabilities, and live component instances.
//
// A component kind publishes its connectable surface once, as a set of
// Capabilities in a SchemaRegistry. Instances of that kind are created by
// the engine's factory and carry the mutable runtime state (properties,
// styles, value, children).
package component

import (
	"fmt"
	"sync"
)

// DataType is the coarse value classification used for connection
// compatibility checks.
type DataType string

// Supported data types.
const (
	TypeNumber  DataType = "number"
	TypeText    DataType = "text"
	TypeBoolean DataType = "boolean"
	TypeObject  DataType = "object"
)

// Valid returns true if the data type is one of the supported values.
func (d DataType) Valid() bool {
	switch d {
	case TypeNumber, TypeText, TypeBoolean, TypeObject:
		return true
	}
	return false
}

// Direction constrains which side of a connection a port may occupy.
type Direction string

// Port directions.
const (
	DirInput         Direction = "input"
	DirOutput        Direction = "output"
	DirBidirectional Direction = "bidirectional"
)

// CanSend returns true if a port with this direction may be a connection source.
func (d Direction) CanSend() bool {
	return d == DirOutput || d == DirBidirectional
}

// CanReceive returns true if a port with this direction may be a connection target.
func (d Direction) CanReceive() bool {
	return d == DirInput || d == DirBidirectional
}

// Port is a typed, direction-constrained attachment point through which
// values flow between components.
type Port struct {
	// ID uniquely identifies the port within its component kind.
	ID string `yaml:"id" json:"id"`
	// Name is the human-readable display name.
	Name string `yaml:"name" json:"name"`
	// Description documents the port's purpose. The auto-wiring matcher
	// tokenizes descriptions when scoring semantic matches.
	Description string `yaml:"description" json:"description"`
	// DataType classifies the values carried by the port.
	DataType DataType `yaml:"dataType" json:"dataType"`
	// Direction constrains how the port may be wired.
	Direction Direction `yaml:"direction" json:"direction"`
	// Default is the optional initial value for the port.
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
}

// Capability is a named group of related ports, published once per
// component kind and shared by all instances of that kind.
type Capability struct {
	Name  string `yaml:"name" json:"name"`
	Ports []Port `yaml:"ports" json:"ports"`
}

// LiveUpdate is per-port metadata consumed by an external preview surface
// to reflect property edits without a full re-render. The engine only
// exposes this metadata; it never talks to the surface directly.
type LiveUpdate struct {
	// Attribute names the target attribute on the rendered element.
	Attribute string `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	// Snippet is an optional update snippet the surface may evaluate.
	Snippet string `yaml:"snippet,omitempty" json:"snippet,omitempty"`
}

// Instance is a live, registered component. All mutating accessors are
// safe for concurrent use; the engine's cooperative model is single-writer
// but a multi-threaded host must not corrupt instance state.
type Instance struct {
	// ID is the unique identifier the instance is registered under.
	ID string
	// Kind is the component type tag (e.g. "button", "display").
	Kind string

	mu       sync.RWMutex
	value    any
	props    map[string]any
	styles   map[string]string
	classes  map[string]struct{}
	children []*Instance
	live     map[string]LiveUpdate
}

// NewInstance creates an empty instance of the given kind.
func NewInstance(id, kind string) *Instance {
	return &Instance{
		ID:      id,
		Kind:    kind,
		props:   make(map[string]any),
		styles:  make(map[string]string),
		classes: make(map[string]struct{}),
		live:    make(map[string]LiveUpdate),
	}
}

// Value returns the instance's current value.
func (i *Instance) Value() any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value
}

// SetValue replaces the instance's current value.
func (i *Instance) SetValue(v any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.value = v
}

// Property returns a named property and whether it is set.
func (i *Instance) Property(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.props[name]
	return v, ok
}

// SetProperty sets a named property.
func (i *Instance) SetProperty(name string, v any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.props[name] = v
}

// Style returns a named style property, or "" if unset.
func (i *Instance) Style(property string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.styles[property]
}

// SetStyle sets a named style property. Non-string values are formatted
// with their default representation.
func (i *Instance) SetStyle(property string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if s, ok := value.(string); ok {
		i.styles[property] = s
		return
	}
	i.styles[property] = fmt.Sprintf("%v", value)
}

// AddClass adds a class marker. Adding an existing class is a no-op.
func (i *Instance) AddClass(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.classes[name] = struct{}{}
}

// RemoveClass removes a class marker. Removing an absent class is a no-op.
func (i *Instance) RemoveClass(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.classes, name)
}

// HasClass returns true if the class marker is present.
func (i *Instance) HasClass(name string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.classes[name]
	return ok
}

// Classes returns the class markers in unspecified order.
func (i *Instance) Classes() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]string, 0, len(i.classes))
	for name := range i.classes {
		out = append(out, name)
	}
	return out
}

// Properties returns a copy of the property bag.
func (i *Instance) Properties() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[string]any, len(i.props))
	for k, v := range i.props {
		out[k] = v
	}
	return out
}

// AddChild appends a child instance.
func (i *Instance) AddChild(child *Instance) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.children = append(i.children, child)
}

// Children returns a copy of the child list.
func (i *Instance) Children() []*Instance {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]*Instance, len(i.children))
	copy(out, i.children)
	return out
}

// SetLiveUpdate records live-update metadata for a port.
func (i *Instance) SetLiveUpdate(portID string, lu LiveUpdate) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.live[portID] = lu
}

// LiveUpdateFor returns the live-update metadata for a port, if any.
func (i *Instance) LiveUpdateFor(portID string) (LiveUpdate, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	lu, ok := i.live[portID]
	return lu, ok
}
