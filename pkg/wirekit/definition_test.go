package wirekit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/wirekit/pkg/wirekit/behavior"
)

const calculatorYAML = `
id: calc
type: panel
styles:
  width: 200px
children:
  - id: result
    type: display
    value: "0"
    classes: [lit]
  - id: digit-7
    type: button
    properties:
      label: "7"
    methods:
      click:
        actions:
          - type: setValue
            target: result
            value: "7"
      hover: "this.highlight()"
`

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(calculatorYAML))
	require.NoError(t, err)

	assert.Equal(t, "calc", def.ID)
	assert.Equal(t, "panel", def.Type)
	require.Len(t, def.Children, 2)

	digit := def.Children[1]
	assert.Equal(t, "7", digit.Properties["label"])

	click := digit.Methods["click"]
	assert.True(t, click.Declarative())

	// Bare string shorthand decodes as a legacy code handler.
	hover := digit.Methods["hover"]
	assert.False(t, hover.Declarative())
	assert.Equal(t, "this.highlight()", hover.Code)
}

func TestParseDefinition_MissingID(t *testing.T) {
	_, err := ParseDefinition([]byte("type: button"))
	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "parse", defErr.Op)
}

func TestParseDefinition_ChildMissingType(t *testing.T) {
	_, err := ParseDefinition([]byte(`
id: root
type: panel
children:
  - id: broken
`))
	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "broken", defErr.ComponentID)
}

func TestParseDefinitionJSON(t *testing.T) {
	def, err := ParseDefinitionJSON([]byte(`{
		"id": "root", "type": "panel",
		"children": [{"id": "b", "type": "button",
			"methods": {"click": "legacy()"}}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "legacy()", def.Children[0].Methods["click"].Code)
}

func TestLoadDefinitionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(calculatorYAML), 0o644))

	def, err := LoadDefinitionFile(path)
	require.NoError(t, err)
	assert.Equal(t, "calc", def.ID)

	_, err = LoadDefinitionFile(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestInstantiate_TreeAndState(t *testing.T) {
	e := New()
	defer e.Close()

	def, err := ParseDefinition([]byte(calculatorYAML))
	require.NoError(t, err)

	root, err := e.Instantiate(def)
	require.NoError(t, err)

	assert.Equal(t, "calc", root.ID)
	assert.Equal(t, "200px", root.Style("width"))
	require.Len(t, root.Children(), 2)

	result := e.Selector()("result")
	require.NotNil(t, result)
	assert.Equal(t, "0", result.Value())
	assert.True(t, result.HasClass("lit"))

	digit := e.Selector()("#digit-7")
	require.NotNil(t, digit)
	label, ok := digit.Property("label")
	require.True(t, ok)
	assert.Equal(t, "7", label)
}

func TestInstantiate_DeclarativeMethodRuns(t *testing.T) {
	e := New()
	defer e.Close()

	def, err := ParseDefinition([]byte(calculatorYAML))
	require.NoError(t, err)
	_, err = e.Instantiate(def)
	require.NoError(t, err)

	fired := e.FireEvent("digit-7", "click", nil)
	assert.Equal(t, 1, fired)
	assert.Equal(t, "7", e.Selector()("result").Value())
}

func TestInstantiate_EventSeedVariable(t *testing.T) {
	e := New()
	defer e.Close()

	def, err := ParseDefinition([]byte(`
id: echo
type: display
methods:
  input:
    actions:
      - type: setValue
        target: echo
        value: "$event"
`))
	require.NoError(t, err)
	_, err = e.Instantiate(def)
	require.NoError(t, err)

	e.FireEvent("echo", "input", "payload")
	assert.Equal(t, "payload", e.Selector()("echo").Value())
}

func TestInstantiate_LegacyRunnerBridged(t *testing.T) {
	type call struct {
		componentID, event, code string
		data                     any
	}
	var calls []call

	e := New(WithLegacyRunner(func(componentID, event, code string, data any) {
		calls = append(calls, call{componentID, event, code, data})
	}))
	defer e.Close()

	def, err := ParseDefinition([]byte(calculatorYAML))
	require.NoError(t, err)
	_, err = e.Instantiate(def)
	require.NoError(t, err)

	e.FireEvent("digit-7", "hover", 42)
	require.Len(t, calls, 1)
	assert.Equal(t, "digit-7", calls[0].componentID)
	assert.Equal(t, "this.highlight()", calls[0].code)
	assert.Equal(t, 42, calls[0].data)
}

func TestInstantiate_LegacyWithoutRunnerIsLoggedNoop(t *testing.T) {
	e := New()
	defer e.Close()

	def, err := ParseDefinition([]byte(calculatorYAML))
	require.NoError(t, err)
	_, err = e.Instantiate(def)
	require.NoError(t, err)

	// The handler is bound (the event counts as handled) but does
	// nothing observable.
	assert.Equal(t, 1, e.FireEvent("digit-7", "hover", nil))
}

func TestInstantiate_AttachesBehaviors(t *testing.T) {
	e := New()
	defer e.Close()
	e.Behaviors().Register(behavior.NewToggle(e.Emitter(), nil))

	def, err := ParseDefinition([]byte(`
id: light
type: switch
behaviors:
  - name: toggle
    options:
      states: ["off", "on"]
      default: "on"
`))
	require.NoError(t, err)
	_, err = e.Instantiate(def)
	require.NoError(t, err)

	assert.Equal(t, []string{"toggle"}, e.Behaviors().Attached("light"))
}

func TestInstantiate_UnknownBehaviorFails(t *testing.T) {
	e := New()
	defer e.Close()

	def, err := ParseDefinition([]byte(`
id: light
type: switch
behaviors:
  - name: nonesuch
`))
	require.NoError(t, err)
	_, err = e.Instantiate(def)

	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "attach", defErr.Op)
	assert.Equal(t, "light", defErr.ComponentID)
}
