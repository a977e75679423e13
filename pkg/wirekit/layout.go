package wirekit

import (
	"log/slog"
	"sort"

	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
	"github.com/randalmurphal/wirekit/pkg/wirekit/connection"
	"github.com/randalmurphal/wirekit/pkg/wirekit/observability"
	"github.com/randalmurphal/wirekit/pkg/wirekit/store"
)

// SaveLayout snapshots the current wiring (instances, connections,
// behavior attachments) under a name in the configured store.
func (e *Engine) SaveLayout(name string) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	if e.store == nil {
		return ErrNoStore
	}

	done := observability.TimedOperation()
	snap := e.buildSnapshot()
	if err := e.store.Save(e.id, name, snap); err != nil {
		return &LayoutError{Name: name, Op: "save", Err: err}
	}
	e.logger.Debug("layout saved",
		slog.String("layout", name),
		slog.Int("components", len(snap.Components)),
		slog.Int("edges", len(snap.Edges)),
		slog.Float64("duration_ms", done()))
	return nil
}

// LoadLayout replaces the current wiring with a previously saved
// snapshot. Transforms are restored by registered name; an edge whose
// transform name is no longer registered is restored without a transform
// and logged.
func (e *Engine) LoadLayout(name string) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	if e.store == nil {
		return ErrNoStore
	}

	done := observability.TimedOperation()
	snap, err := e.store.Load(e.id, name)
	if err != nil {
		return &LayoutError{Name: name, Op: "load", Err: err}
	}

	e.Reset()
	e.restoreSnapshot(snap)
	e.logger.Debug("layout loaded",
		slog.String("layout", name),
		slog.Int("components", len(snap.Components)),
		slog.Int("edges", len(snap.Edges)),
		slog.Float64("duration_ms", done()))
	return nil
}

// Layouts lists the snapshots saved for this engine's session.
func (e *Engine) Layouts() ([]store.Info, error) {
	if e.isClosed() {
		return nil, ErrEngineClosed
	}
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.List(e.id)
}

// DeleteLayout removes a saved snapshot.
func (e *Engine) DeleteLayout(name string) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	if e.store == nil {
		return ErrNoStore
	}
	return e.store.Delete(e.id, name)
}

func (e *Engine) buildSnapshot() *store.Snapshot {
	snap := &store.Snapshot{}

	ids := e.registry.IDs()
	sort.Strings(ids)
	for _, id := range ids {
		inst := e.registry.Get(id)
		if inst == nil {
			continue
		}
		cs := store.ComponentSnapshot{
			ID:         inst.ID,
			Kind:       inst.Kind,
			Value:      inst.Value(),
			Properties: inst.Properties(),
			Classes:    inst.Classes(),
		}
		sort.Strings(cs.Classes)
		for _, child := range inst.Children() {
			cs.Children = append(cs.Children, child.ID)
		}
		snap.Components = append(snap.Components, cs)
	}

	e.mu.RLock()
	for _, conn := range e.conns.All() {
		snap.Edges = append(snap.Edges, store.EdgeSnapshot{
			SourceComponent: conn.SourceComponent,
			SourcePort:      conn.SourcePort,
			TargetComponent: conn.TargetComponent,
			TargetPort:      conn.TargetPort,
			Transform:       e.transformNames[conn.ID],
		})
	}
	for componentID, atts := range e.attachments {
		for _, att := range atts {
			snap.Behaviors = append(snap.Behaviors, store.AttachmentSnapshot{
				ComponentID: componentID,
				Behavior:    att.behavior,
				Options:     att.options,
			})
		}
	}
	e.mu.RUnlock()

	sort.Slice(snap.Behaviors, func(i, j int) bool {
		if snap.Behaviors[i].ComponentID != snap.Behaviors[j].ComponentID {
			return snap.Behaviors[i].ComponentID < snap.Behaviors[j].ComponentID
		}
		return snap.Behaviors[i].Behavior < snap.Behaviors[j].Behavior
	})

	return snap
}

func (e *Engine) restoreSnapshot(snap *store.Snapshot) {
	instances := make(map[string]*component.Instance, len(snap.Components))
	for _, cs := range snap.Components {
		inst := component.NewInstance(cs.ID, cs.Kind)
		if cs.Value != nil {
			inst.SetValue(cs.Value)
		}
		for name, v := range cs.Properties {
			inst.SetProperty(name, v)
		}
		for _, class := range cs.Classes {
			inst.AddClass(class)
		}
		instances[cs.ID] = inst
		e.registry.Register(inst)
	}

	// Children link after all instances exist; dangling references are
	// skipped.
	for _, cs := range snap.Components {
		parent := instances[cs.ID]
		for _, childID := range cs.Children {
			if child, ok := instances[childID]; ok {
				parent.AddChild(child)
			}
		}
	}

	for _, att := range snap.Behaviors {
		if err := e.AttachBehavior(att.Behavior, att.ComponentID, att.Options); err != nil {
			e.logger.Warn("skipping behavior attachment on restore",
				slog.String("component_id", att.ComponentID),
				slog.String("behavior", att.Behavior),
				slog.Any("error", err))
		}
	}

	// Edges were validated when first created, so restore uses the
	// trusting primitive.
	for _, edge := range snap.Edges {
		var transform connection.TransformFunc
		if edge.Transform != "" {
			fn, ok := e.Transform(edge.Transform)
			if !ok {
				e.logger.Warn("restoring edge without its transform",
					slog.String("transform", edge.Transform),
					slog.String("source_component", edge.SourceComponent),
					slog.String("target_component", edge.TargetComponent))
			}
			transform = fn
		}
		conn := e.conns.Connect(edge.SourceComponent, edge.SourcePort,
			edge.TargetComponent, edge.TargetPort, transform)
		if edge.Transform != "" && transform != nil {
			e.mu.Lock()
			e.transformNames[conn.ID] = edge.Transform
			e.mu.Unlock()
		}
	}
}
