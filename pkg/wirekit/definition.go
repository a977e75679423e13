package wirekit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the declarative description of a component subtree:
// identity, initial state, children, event methods, and behaviors.
type Definition struct {
	ID         string            `yaml:"id" json:"id"`
	Type       string            `yaml:"type" json:"type"`
	Value      any               `yaml:"value,omitempty" json:"value,omitempty"`
	Properties map[string]any    `yaml:"properties,omitempty" json:"properties,omitempty"`
	Styles     map[string]any    `yaml:"styles,omitempty" json:"styles,omitempty"`
	Classes    []string          `yaml:"classes,omitempty" json:"classes,omitempty"`
	Children   []Definition      `yaml:"children,omitempty" json:"children,omitempty"`
	Methods    map[string]Method `yaml:"methods,omitempty" json:"methods,omitempty"`
	Behaviors  []BehaviorRef     `yaml:"behaviors,omitempty" json:"behaviors,omitempty"`
}

// Method is one event binding on a definition. Exactly one form applies:
// a declarative action list, or a legacy opaque code string. Presence of
// Actions selects the declarative form.
type Method struct {
	// Code is a legacy code-string handler, bridged via LegacyRunner.
	Code string `yaml:"code,omitempty" json:"code,omitempty"`
	// Actions is a raw declarative action list, decoded on bind.
	Actions any `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// Declarative returns true if the method carries an action list.
func (m Method) Declarative() bool {
	return m.Actions != nil
}

// BehaviorRef names a behavior to attach with options.
type BehaviorRef struct {
	Name    string         `yaml:"name" json:"name"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// UnmarshalYAML accepts both the structured method form and a bare string
// shorthand for legacy code handlers.
func (m *Method) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&m.Code)
	}
	type plain Method
	return node.Decode((*plain)(m))
}

// UnmarshalJSON accepts both the structured method form and a bare string
// shorthand for legacy code handlers.
func (m *Method) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &m.Code)
	}
	type plain Method
	return json.Unmarshal(data, (*plain)(m))
}

// ParseDefinition parses a YAML definition document.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, &DefinitionError{Op: "parse", Err: err}
	}
	if err := validateDefinition(def); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// ParseDefinitionJSON parses a JSON definition document.
func ParseDefinitionJSON(data []byte) (Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return Definition{}, &DefinitionError{Op: "parse", Err: err}
	}
	if err := validateDefinition(def); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// LoadDefinitionFile loads a definition from a YAML or JSON file, chosen
// by extension.
func LoadDefinitionFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, &DefinitionError{Op: "parse", Err: err}
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseDefinitionJSON(data)
	}
	return ParseDefinition(data)
}

// validateDefinition checks the structural invariants of a definition
// tree: every node carries an ID and a type.
func validateDefinition(def Definition) error {
	if def.ID == "" {
		return &DefinitionError{Op: "parse", Err: fmt.Errorf("missing id")}
	}
	if def.Type == "" {
		return &DefinitionError{ComponentID: def.ID, Op: "parse", Err: fmt.Errorf("missing type")}
	}
	for _, child := range def.Children {
		if err := validateDefinition(child); err != nil {
			return err
		}
	}
	return nil
}
