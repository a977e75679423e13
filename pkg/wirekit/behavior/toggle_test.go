package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitRecord struct {
	componentID string
	portID      string
	value       any
}

type fakeEmitter struct {
	emits []emitRecord
}

func (f *fakeEmitter) Emit(componentID, portID string, value any) {
	f.emits = append(f.emits, emitRecord{componentID, portID, value})
}

func (f *fakeEmitter) last() emitRecord {
	return f.emits[len(f.emits)-1]
}

func newToggleWith(states ...any) (*Toggle, *fakeEmitter) {
	em := &fakeEmitter{}
	tg := NewToggle(em, nil)
	opts := map[string]any{}
	if len(states) > 0 {
		opts["states"] = states
	}
	if err := tg.Initialize("light", opts); err != nil {
		panic(err)
	}
	return tg, em
}

func TestToggle_DefaultStates(t *testing.T) {
	tg, _ := newToggleWith()
	state, ok := tg.State("light")
	require.True(t, ok)
	assert.Equal(t, []string{"off", "on"}, state.States)
	assert.Equal(t, "off", state.Current())
	assert.False(t, state.Active)
}

func TestToggle_TwoTogglesReturnToOrigin(t *testing.T) {
	tg, em := newToggleWith()

	tg.OnDataReceived("light", PortToggle, true)
	state, _ := tg.State("light")
	assert.Equal(t, "on", state.Current())
	assert.True(t, state.Active)

	tg.OnDataReceived("light", PortToggle, true)
	state, _ = tg.State("light")
	assert.Equal(t, "off", state.Current())
	assert.False(t, state.Active)

	// Each transition emits on both output ports.
	require.Len(t, em.emits, 4)
	assert.Equal(t, emitRecord{"light", PortStateChanged, "on"}, em.emits[0])
	assert.Equal(t, emitRecord{"light", PortValue, "on"}, em.emits[1])
	assert.Equal(t, emitRecord{"light", PortStateChanged, "off"}, em.emits[2])
}

func TestToggle_CyclesCircularly(t *testing.T) {
	tg, _ := newToggleWith("red", "yellow", "green")

	want := []string{"yellow", "green", "red", "yellow"}
	for _, expected := range want {
		tg.OnDataReceived("light", PortToggle, nil)
		state, _ := tg.State("light")
		assert.Equal(t, expected, state.Current())
	}
}

func TestToggle_SetStateByName(t *testing.T) {
	tg, em := newToggleWith("red", "yellow", "green")

	tg.OnDataReceived("light", PortSetState, "green")
	state, _ := tg.State("light")
	assert.Equal(t, 2, state.CurrentIndex)
	assert.True(t, state.Active)
	assert.Equal(t, "green", em.last().value)
}

func TestToggle_SetStateBooleanLike(t *testing.T) {
	tg, _ := newToggleWith()

	tg.OnDataReceived("light", PortSetState, true)
	state, _ := tg.State("light")
	assert.Equal(t, "on", state.Current())
	assert.True(t, state.Active)

	tg.OnDataReceived("light", PortSetState, false)
	state, _ = tg.State("light")
	assert.Equal(t, "off", state.Current())
	assert.False(t, state.Active)

	// Truthy non-boolean values map to index 1 as well.
	tg.OnDataReceived("light", PortSetState, 1)
	state, _ = tg.State("light")
	assert.Equal(t, "on", state.Current())
}

func TestToggle_SetStateClampsSingleState(t *testing.T) {
	tg, _ := newToggleWith("only")

	tg.OnDataReceived("light", PortSetState, true)
	state, _ := tg.State("light")
	assert.Equal(t, 0, state.CurrentIndex)
	assert.False(t, state.Active)
}

func TestToggle_DefaultOption(t *testing.T) {
	em := &fakeEmitter{}
	tg := NewToggle(em, nil)
	require.NoError(t, tg.Initialize("sig", map[string]any{
		"states":  []any{"red", "yellow", "green"},
		"default": "yellow",
	}))

	state, ok := tg.State("sig")
	require.True(t, ok)
	assert.Equal(t, "yellow", state.Current())
}

func TestToggle_UnknownPortIgnored(t *testing.T) {
	tg, em := newToggleWith()
	tg.OnDataReceived("light", "bogus", 1)
	assert.Empty(t, em.emits)
}

func TestToggle_UninitializedComponentIgnored(t *testing.T) {
	tg, em := newToggleWith()
	tg.OnDataReceived("stranger", PortToggle, nil)
	assert.Empty(t, em.emits)
}

func TestToggle_Detach(t *testing.T) {
	tg, em := newToggleWith()
	tg.Detach("light")

	_, ok := tg.State("light")
	assert.False(t, ok)
	tg.OnDataReceived("light", PortToggle, nil)
	assert.Empty(t, em.emits)
}

func TestToggle_Capability(t *testing.T) {
	tg, _ := newToggleWith()
	cap := tg.Capability()
	assert.Equal(t, "toggle", cap.Name)

	ids := make([]string, 0, len(cap.Ports))
	for _, p := range cap.Ports {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{PortToggle, PortSetState, PortStateChanged, PortValue}, ids)
}
