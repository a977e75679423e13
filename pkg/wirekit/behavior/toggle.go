package behavior

import (
	"log/slog"
	"sync"

	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
	"github.com/randalmurphal/wirekit/pkg/wirekit/config"
)

// Toggle port IDs.
const (
	PortToggle       = "toggle"
	PortSetState     = "set-state"
	PortStateChanged = "stateChanged"
	PortValue        = "value"
)

// ToggleState is the per-instance state of a Toggle attachment: an ordered
// list of symbolic state names forming a circular finite-state machine
// with no terminal state.
type ToggleState struct {
	States       []string
	CurrentIndex int
	Active       bool
}

// Current returns the current state name.
func (s ToggleState) Current() string {
	if len(s.States) == 0 {
		return ""
	}
	return s.States[s.CurrentIndex]
}

// Toggle is a behavior cycling a component through a list of named states.
// A value on the "toggle" port advances circularly; a value on "set-state"
// jumps to a named state, or maps boolean-like input onto the first two
// states. Every transition emits the new state name on both output ports.
type Toggle struct {
	mu      sync.Mutex
	states  map[string]*ToggleState
	emitter Emitter
	logger  *slog.Logger
	// kinds restricts attachment; empty means any kind.
	kinds []string
}

// NewToggle creates a toggle behavior emitting through emitter.
// A nil logger defaults to slog.Default().
func NewToggle(emitter Emitter, logger *slog.Logger, kinds ...string) *Toggle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toggle{
		states:  make(map[string]*ToggleState),
		emitter: emitter,
		logger:  logger,
		kinds:   kinds,
	}
}

// Name implements Behavior.
func (t *Toggle) Name() string { return "toggle" }

// AttachableTo implements Behavior.
func (t *Toggle) AttachableTo() []string { return t.kinds }

// Capability implements Behavior.
func (t *Toggle) Capability() component.Capability {
	return component.Capability{
		Name: "toggle",
		Ports: []component.Port{
			{
				ID: PortToggle, Name: "Toggle",
				Description: "advance to the next state",
				DataType:    component.TypeBoolean, Direction: component.DirInput,
			},
			{
				ID: PortSetState, Name: "Set State",
				Description: "jump to a named state or boolean-like value",
				DataType:    component.TypeObject, Direction: component.DirInput,
			},
			{
				ID: PortStateChanged, Name: "State Changed",
				Description: "emitted with the new state name on every transition",
				DataType:    component.TypeText, Direction: component.DirOutput,
			},
			{
				ID: PortValue, Name: "Value",
				Description: "current state value",
				DataType:    component.TypeText, Direction: component.DirOutput,
			},
		},
	}
}

// Initialize implements Behavior. Options merge over defaults:
// "states" (string list, default ["off", "on"]), "default" (initial state
// name), "active" (bool).
func (t *Toggle) Initialize(componentID string, options map[string]any) error {
	cfg := config.New(options)

	states := cfg.StringSlice("states", []string{"off", "on"})
	if len(states) == 0 {
		states = []string{"off", "on"}
	}

	idx := 0
	if initial := cfg.String("default", ""); initial != "" {
		for i, s := range states {
			if s == initial {
				idx = i
				break
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[componentID] = &ToggleState{
		States:       states,
		CurrentIndex: idx,
		Active:       cfg.Bool("active", false),
	}
	return nil
}

// OnDataReceived implements Behavior. It is the only transition entry point.
func (t *Toggle) OnDataReceived(componentID, portID string, data any) {
	t.mu.Lock()
	state, ok := t.states[componentID]
	if !ok {
		t.mu.Unlock()
		t.logger.Debug("toggle data for uninitialized component",
			slog.String("component_id", componentID))
		return
	}

	switch portID {
	case PortToggle:
		state.CurrentIndex = (state.CurrentIndex + 1) % len(state.States)
		state.Active = !state.Active

	case PortSetState:
		if idx, found := indexOf(state.States, data); found {
			state.CurrentIndex = idx
		} else {
			// Boolean-like data maps onto index 0/1, clamped to bounds.
			idx := 0
			if truthy(data) {
				idx = 1
			}
			if idx >= len(state.States) {
				idx = len(state.States) - 1
			}
			state.CurrentIndex = idx
		}
		state.Active = state.CurrentIndex != 0

	default:
		t.mu.Unlock()
		t.logger.Debug("toggle ignoring unknown port",
			slog.String("component_id", componentID),
			slog.String("port_id", portID))
		return
	}

	current := state.Current()
	t.mu.Unlock()

	if t.emitter != nil {
		t.emitter.Emit(componentID, PortStateChanged, current)
		t.emitter.Emit(componentID, PortValue, current)
	}
}

// State returns a copy of the per-instance state.
func (t *Toggle) State(componentID string) (ToggleState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.states[componentID]
	if !ok {
		return ToggleState{}, false
	}
	copied := *state
	copied.States = append([]string(nil), state.States...)
	return copied, true
}

// Detach implements Behavior.
func (t *Toggle) Detach(componentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, componentID)
}

func indexOf(states []string, data any) (int, bool) {
	name, ok := data.(string)
	if !ok {
		return 0, false
	}
	for i, s := range states {
		if s == name {
			return i, true
		}
	}
	return 0, false
}

// truthy interprets boolean-like data for set-state.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != "" && val != "false" && val != "0"
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	}
	return true
}
