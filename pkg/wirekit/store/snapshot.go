package store

import "time"

// Snapshot is the structural form of a wired layout. Stores persist it
// field by field rather than as an encoded payload.
type Snapshot struct {
	SavedAt    time.Time
	Components []ComponentSnapshot
	Edges      []EdgeSnapshot
	Behaviors  []AttachmentSnapshot
}

// ComponentSnapshot captures one component instance.
type ComponentSnapshot struct {
	ID         string
	Kind       string
	Value      any
	Properties map[string]any
	Classes    []string
	Children   []string
}

// EdgeSnapshot captures one connection. Transforms are code, not data,
// so only the transform's registered name survives a round trip.
type EdgeSnapshot struct {
	SourceComponent string
	SourcePort      string
	TargetComponent string
	TargetPort      string
	Transform       string
}

// AttachmentSnapshot captures one behavior attachment and its options.
type AttachmentSnapshot struct {
	ComponentID string
	Behavior    string
	Options     map[string]any
}

// Clone returns a deep copy. Stores clone on save and load so a snapshot
// held by the caller never aliases stored state.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{SavedAt: s.SavedAt}
	for _, cs := range s.Components {
		out.Components = append(out.Components, ComponentSnapshot{
			ID:         cs.ID,
			Kind:       cs.Kind,
			Value:      cloneValue(cs.Value),
			Properties: cloneMap(cs.Properties),
			Classes:    append([]string(nil), cs.Classes...),
			Children:   append([]string(nil), cs.Children...),
		})
	}
	out.Edges = append(out.Edges, s.Edges...)
	for _, att := range s.Behaviors {
		out.Behaviors = append(out.Behaviors, AttachmentSnapshot{
			ComponentID: att.ComponentID,
			Behavior:    att.Behavior,
			Options:     cloneMap(att.Options),
		})
	}
	return out
}

// cloneValue deep-copies the container shapes definition trees produce.
// Other values are shared; snapshot values are treated as immutable.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}
