package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromYAML parses YAML bytes into a Config.
func FromYAML(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing yaml config: %w", err)
	}
	return New(normalizeKeys(raw)), nil
}

// FromJSON parses JSON bytes into a Config.
func FromJSON(data []byte) (Config, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing json config: %w", err)
	}
	return New(raw), nil
}

// FromFile loads a Config from a YAML or JSON file, chosen by extension.
// Unknown extensions are treated as YAML, which is a superset of JSON.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FromJSON(data)
	}
	return FromYAML(data)
}

// normalizeKeys rewrites map[any]any nodes (which older yaml decoders and
// nested anchors can produce) into map[string]any so Sub and the typed
// accessors see a uniform shape.
func normalizeKeys(v map[string]any) map[string]any {
	for k, val := range v {
		v[k] = normalizeValue(val)
	}
	return v
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeKeys(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalizeValue(item)
		}
		return val
	}
	return v
}
