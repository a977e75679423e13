package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
)

// recordingBehavior tracks lifecycle calls for manager tests.
type recordingBehavior struct {
	name     string
	kinds    []string
	initErr  error
	inits    []string
	received []emitRecord
	detached []string
}

func (r *recordingBehavior) Name() string           { return r.name }
func (r *recordingBehavior) AttachableTo() []string { return r.kinds }
func (r *recordingBehavior) Capability() component.Capability {
	return component.Capability{Name: r.name}
}
func (r *recordingBehavior) Initialize(componentID string, _ map[string]any) error {
	if r.initErr != nil {
		return r.initErr
	}
	r.inits = append(r.inits, componentID)
	return nil
}
func (r *recordingBehavior) OnDataReceived(componentID, portID string, data any) {
	r.received = append(r.received, emitRecord{componentID, portID, data})
}
func (r *recordingBehavior) Detach(componentID string) {
	r.detached = append(r.detached, componentID)
}

func TestManager_AttachAndDispatch(t *testing.T) {
	m := NewManager(nil)
	rec := &recordingBehavior{name: "rec"}
	m.Register(rec)

	inst := component.NewInstance("btn-1", "button")
	require.NoError(t, m.Attach("rec", inst, nil))
	assert.Equal(t, []string{"rec"}, m.Attached("btn-1"))

	m.Dispatch("btn-1", "click", "payload")
	require.Len(t, rec.received, 1)
	assert.Equal(t, emitRecord{"btn-1", "click", "payload"}, rec.received[0])

	// Data for components without attachments goes nowhere.
	m.Dispatch("other", "click", nil)
	assert.Len(t, rec.received, 1)
}

func TestManager_AttachUnknown(t *testing.T) {
	m := NewManager(nil)
	err := m.Attach("ghost", component.NewInstance("c", "button"), nil)

	var unknown *UnknownBehaviorError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.Name)
}

func TestManager_AttachKindGate(t *testing.T) {
	m := NewManager(nil)
	rec := &recordingBehavior{name: "rec", kinds: []string{"button", "switch"}}
	m.Register(rec)

	require.NoError(t, m.Attach("rec", component.NewInstance("s", "switch"), nil))

	err := m.Attach("rec", component.NewInstance("d", "display"), nil)
	var notAttachable *NotAttachableError
	require.ErrorAs(t, err, &notAttachable)
	assert.Equal(t, "display", notAttachable.Kind)
	assert.Empty(t, m.Attached("d"))
}

func TestManager_AttachInitializeFailure(t *testing.T) {
	m := NewManager(nil)
	rec := &recordingBehavior{name: "rec", initErr: assert.AnError}
	m.Register(rec)

	err := m.Attach("rec", component.NewInstance("c", "button"), nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, m.Attached("c"))
}

func TestManager_MultipleBehaviorsPerComponent(t *testing.T) {
	m := NewManager(nil)
	a := &recordingBehavior{name: "a"}
	b := &recordingBehavior{name: "b"}
	m.Register(a)
	m.Register(b)

	inst := component.NewInstance("c", "button")
	require.NoError(t, m.Attach("a", inst, nil))
	require.NoError(t, m.Attach("b", inst, nil))

	m.Dispatch("c", "in", 1)
	assert.Len(t, a.received, 1)
	assert.Len(t, b.received, 1)
}

func TestManager_Detach(t *testing.T) {
	m := NewManager(nil)
	rec := &recordingBehavior{name: "rec"}
	m.Register(rec)

	inst := component.NewInstance("c", "button")
	require.NoError(t, m.Attach("rec", inst, nil))

	m.Detach("c")
	assert.Empty(t, m.Attached("c"))
	assert.Equal(t, []string{"c"}, rec.detached)

	m.Dispatch("c", "in", 1)
	assert.Empty(t, rec.received)
}

func TestManager_Reset(t *testing.T) {
	m := NewManager(nil)
	rec := &recordingBehavior{name: "rec"}
	m.Register(rec)
	require.NoError(t, m.Attach("rec", component.NewInstance("c", "button"), nil))

	m.Reset()
	assert.Empty(t, m.Attached("c"))

	// Registered behaviors survive a reset.
	_, ok := m.Behavior("rec")
	assert.True(t, ok)
}

func TestManager_ToggleThroughDispatch(t *testing.T) {
	m := NewManager(nil)
	em := &fakeEmitter{}
	m.Register(NewToggle(em, nil))

	inst := component.NewInstance("light", "switch")
	require.NoError(t, m.Attach("toggle", inst, map[string]any{
		"states": []any{"off", "on"},
	}))

	m.Dispatch("light", PortToggle, true)
	require.NotEmpty(t, em.emits)
	assert.Equal(t, "on", em.last().value)
}
