package wirekit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/wirekit/pkg/wirekit/action"
	"github.com/randalmurphal/wirekit/pkg/wirekit/behavior"
	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
	"github.com/randalmurphal/wirekit/pkg/wirekit/config"
	"github.com/randalmurphal/wirekit/pkg/wirekit/connection"
	"github.com/randalmurphal/wirekit/pkg/wirekit/observability"
	"github.com/randalmurphal/wirekit/pkg/wirekit/registry"
	"github.com/randalmurphal/wirekit/pkg/wirekit/schedule"
	"github.com/randalmurphal/wirekit/pkg/wirekit/store"
)

// Engine is the dependency-injection context owning every wirekit
// subsystem. There are no package-level singletons; tests construct
// isolated engines.
type Engine struct {
	id     string
	logger *slog.Logger

	registry  *registry.Registry
	schemas   *component.SchemaRegistry
	conns     *connection.Manager
	behaviors *behavior.Manager
	interp    *action.Interpreter
	scheduler schedule.Scheduler
	store     store.Store
	ownStore  bool // store opened from config, closed by Close

	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	mu             sync.RWMutex
	transforms     map[string]connection.TransformFunc
	transformNames map[string]string // connection ID -> transform name
	attachments    map[string][]attachment
	closed         bool

	// option staging, consumed by New
	metricsEnabled bool
	tracingEnabled bool
	scorer         connection.Scorer
	maxDepth       int
	legacy         LegacyRunner
	cfg            config.Config
	hasConfig      bool
	idFixed        bool
}

// attachment records a behavior binding for layout snapshots.
type attachment struct {
	behavior string
	options  map[string]any
}

// New creates an engine with all subsystems wired together.
func New(opts ...Option) *Engine {
	e := &Engine{
		id:             uuid.New().String(),
		logger:         slog.Default(),
		transforms:     make(map[string]connection.TransformFunc),
		transformNames: make(map[string]string),
		attachments:    make(map[string][]attachment),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hasConfig {
		e.applyConfig()
	}
	e.logger = observability.EnrichLogger(e.logger, e.id, "")

	e.metrics = observability.NoopMetrics{}
	if e.metricsEnabled {
		e.metrics = observability.NewMetricsRecorder()
	}
	e.spans = observability.NoopSpanManager{}
	if e.tracingEnabled {
		e.spans = observability.NewSpanManager()
	}
	if e.scheduler == nil {
		e.scheduler = schedule.NewTimerScheduler(e.logger)
	}

	e.registry = registry.New(e.logger)
	e.schemas = component.NewSchemaRegistry()
	e.behaviors = behavior.NewManager(e.logger)

	connOpts := []connection.Option{
		connection.WithLogger(e.logger),
		connection.WithMetrics(e.metrics),
	}
	if e.scorer != nil {
		connOpts = append(connOpts, connection.WithScorer(e.scorer))
	}
	e.conns = connection.NewManager(&portSource{e}, connOpts...)
	e.conns.SetDeliver(e.deliver)

	interpOpts := []action.Option{
		action.WithLogger(e.logger),
		action.WithMetrics(e.metrics),
		action.WithSpans(e.spans),
	}
	if e.maxDepth > 0 {
		interpOpts = append(interpOpts, action.WithMaxDepth(e.maxDepth))
	}
	e.interp = action.NewInterpreter(&componentAccess{e}, e.scheduler, interpOpts...)

	// Unregister cascade: dropping a component tears down its edges and
	// behavior state. The hook contract is binding, not best-effort.
	e.registry.OnUnregister(func(componentID string) {
		e.conns.RemoveForComponent(componentID)
		e.behaviors.Detach(componentID)
		e.mu.Lock()
		delete(e.attachments, componentID)
		e.mu.Unlock()
	})

	return e
}

// applyConfig fills settings left open by explicit options from the
// configuration supplied with WithConfig.
func (e *Engine) applyConfig() {
	cfg := e.cfg

	if !e.idFixed {
		if id := cfg.String("session", ""); id != "" {
			e.id = id
		}
	}
	if e.maxDepth == 0 {
		e.maxDepth = cfg.Int("maxDepth", 0)
	}
	if e.scorer == nil && cfg.Has("matcher") {
		matcher := cfg.Sub("matcher")
		pairs := matcher.Pairs("pairs", connection.DefaultKeywordPairs())
		stops := matcher.StringSlice("stopWords", connection.DefaultStopWords())
		e.scorer = connection.NewKeywordScorer(pairs, stops)
	}
	if e.store == nil {
		if path := cfg.String("store", ""); path != "" {
			st, err := store.NewSQLiteStore(path)
			if err != nil {
				e.logger.Error("opening layout store from config failed",
					slog.String("path", path),
					slog.Any("error", err))
			} else {
				e.store = st
				e.ownStore = true
			}
		}
	}
}

// isClosed reports whether Close has run.
func (e *Engine) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// ID returns the engine's session ID.
func (e *Engine) ID() string { return e.id }

// Registry returns the component registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Schemas returns the per-kind capability registry.
func (e *Engine) Schemas() *component.SchemaRegistry { return e.schemas }

// Connections returns the connection manager.
func (e *Engine) Connections() *connection.Manager { return e.conns }

// Behaviors returns the behavior manager.
func (e *Engine) Behaviors() *behavior.Manager { return e.behaviors }

// Interpreter returns the action interpreter.
func (e *Engine) Interpreter() *action.Interpreter { return e.interp }

// Scheduler returns the timer scheduler.
func (e *Engine) Scheduler() schedule.Scheduler { return e.scheduler }

// Selector returns the lookup function handed to legacy code bridges and
// outside event handlers. It is the sole exported instance lookup path.
func (e *Engine) Selector() func(selector string) *component.Instance {
	return e.registry.Get
}

// PublishSchema publishes the capabilities of a component kind.
func (e *Engine) PublishSchema(kind string, caps ...component.Capability) {
	e.schemas.Publish(kind, caps...)
}

// Register adds a component instance to the registry.
func (e *Engine) Register(inst *component.Instance) {
	e.registry.Register(inst)
}

// Unregister removes a component and cascades: every connection touching
// it and every behavior attachment is dropped with it.
func (e *Engine) Unregister(componentID string) bool {
	return e.registry.Unregister(componentID)
}

// RegisterTransform names a transform so connections can reference it and
// layout snapshots can restore it. Re-registering a name replaces it.
func (e *Engine) RegisterTransform(name string, fn connection.TransformFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transforms[name] = fn
}

// Transform returns a registered transform by name.
func (e *Engine) Transform(name string) (connection.TransformFunc, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.transforms[name]
	return fn, ok
}

// Connect creates a validated connection. The transform name may be ""
// for a plain edge; a non-empty name must have been registered with
// RegisterTransform. Returns ErrInvalidConnection when the direction or
// type checks fail.
func (e *Engine) Connect(srcComp, srcPort, dstComp, dstPort, transformName string) (*connection.Connection, error) {
	if e.isClosed() {
		return nil, ErrEngineClosed
	}

	var transform connection.TransformFunc
	if transformName != "" {
		fn, ok := e.Transform(transformName)
		if !ok {
			return nil, ErrUnknownTransform
		}
		transform = fn
	}

	if !e.conns.ValidateConnection(srcComp, srcPort, dstComp, dstPort) {
		return nil, ErrInvalidConnection
	}

	conn := e.conns.Connect(srcComp, srcPort, dstComp, dstPort, transform)
	if transformName != "" {
		e.mu.Lock()
		e.transformNames[conn.ID] = transformName
		e.mu.Unlock()
	}
	return conn, nil
}

// Disconnect removes a connection by ID.
func (e *Engine) Disconnect(connID string) bool {
	e.mu.Lock()
	delete(e.transformNames, connID)
	e.mu.Unlock()
	return e.conns.RemoveConnection(connID)
}

// AttachBehavior attaches a named behavior to a component with options.
func (e *Engine) AttachBehavior(name, componentID string, options map[string]any) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	inst := e.registry.Get(componentID)
	if inst == nil {
		return ErrUnknownComponent
	}
	if err := e.behaviors.Attach(name, inst, options); err != nil {
		return err
	}
	e.mu.Lock()
	e.attachments[inst.ID] = append(e.attachments[inst.ID], attachment{behavior: name, options: options})
	e.mu.Unlock()
	return nil
}

// Emit pushes a value out of a component port and across every outgoing
// connection. It returns the number of edges delivered and never panics
// out: handler panics are recovered and logged.
func (e *Engine) Emit(ctx context.Context, componentID, portID string, value any) (delivered int) {
	ctx, span := e.spans.StartEmitSpan(ctx, componentID, portID)
	defer e.spans.EndSpanWithError(span, nil)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("emit panic recovered",
				slog.String("component_id", componentID),
				slog.String("port_id", portID),
				slog.Any("panic", r))
		}
	}()
	return e.conns.Propagate(ctx, componentID, portID, value)
}

// emitterAdapter implements behavior.Emitter so behavior outputs flow
// back through the connection graph.
type emitterAdapter struct{ e *Engine }

func (a emitterAdapter) Emit(componentID, portID string, value any) {
	a.e.Emit(context.Background(), componentID, portID, value)
}

// Emitter returns the engine's behavior.Emitter adapter.
func (e *Engine) Emitter() behavior.Emitter {
	return emitterAdapter{e}
}

// deliver receives a propagated value at a connection target. Behaviors
// attached to the target get the value first, then registered event
// handlers for the port. A target with neither acts as a value sink: the
// instance's value is set directly.
func (e *Engine) deliver(targetComp, targetPort string, value any) {
	attached := e.behaviors.Attached(targetComp)
	handlers := e.registry.HandlersFor(targetComp, targetPort)

	if len(attached) > 0 {
		e.behaviors.Dispatch(targetComp, targetPort, value)
	}
	for _, h := range handlers {
		e.runHandler(targetComp, targetPort, h, value)
	}

	if len(attached) == 0 && len(handlers) == 0 {
		if inst := e.registry.Get(targetComp); inst != nil {
			inst.SetValue(value)
		}
	}
}

// FireEvent runs every handler registered for (component, event) with the
// given data. Handler panics are recovered and logged; the remaining
// handlers still run. Returns the number of handlers invoked.
func (e *Engine) FireEvent(componentID, event string, data any) int {
	handlers := e.registry.HandlersFor(componentID, event)
	for _, h := range handlers {
		e.runHandler(componentID, event, h, data)
	}
	return len(handlers)
}

func (e *Engine) runHandler(componentID, event string, h registry.EventHandler, data any) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event handler panic recovered",
				slog.String("component_id", componentID),
				slog.String("event", event),
				slog.Any("panic", r))
		}
	}()
	h(data)
}

// AutoWire runs the heuristic matcher over the given components, or over
// every registered component when none are named, and returns the created
// connections.
func (e *Engine) AutoWire(ctx context.Context, componentIDs ...string) []*connection.Connection {
	if len(componentIDs) == 0 {
		componentIDs = e.registry.IDs()
	}
	ctx, span := e.spans.StartAutoWireSpan(ctx, len(componentIDs))
	defer e.spans.EndSpanWithError(span, nil)
	return e.conns.AutoConnect(ctx, componentIDs)
}

// ExecuteActions runs a declarative action list with a fresh scope seeded
// from seed.
func (e *Engine) ExecuteActions(ctx context.Context, actions []action.Action, seed map[string]any) (any, *action.Scope) {
	return e.interp.ExecuteActions(ctx, actions, seed)
}

// Reset drops all instances, connections, behavior attachments, and
// pending timers. Published schemas and registered behaviors survive.
func (e *Engine) Reset() {
	e.scheduler.StopAll()
	e.conns.Reset()
	e.behaviors.Reset()
	e.registry.Reset()
	e.mu.Lock()
	e.transformNames = make(map[string]string)
	e.attachments = make(map[string][]attachment)
	e.mu.Unlock()
}

// Close stops pending timers and marks the engine closed. Subsequent
// mutating operations return ErrEngineClosed. A store passed in with
// WithStore belongs to the caller and stays open; a store the engine
// opened from config is closed here.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.scheduler.StopAll()
	if e.ownStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}

// portSource resolves port schemas for live components by combining the
// instance registry (kind) with the schema registry (per-kind ports) and
// the capabilities of attached behaviors.
type portSource struct{ e *Engine }

func (p *portSource) Port(componentID, portID string) (component.Port, bool) {
	inst := p.e.registry.Get(componentID)
	if inst == nil {
		return component.Port{}, false
	}
	if port, ok := p.e.schemas.Port(inst.Kind, portID); ok {
		return port, true
	}
	for _, name := range p.e.behaviors.Attached(componentID) {
		b, ok := p.e.behaviors.Behavior(name)
		if !ok {
			continue
		}
		for _, port := range b.Capability().Ports {
			if port.ID == portID {
				return port, true
			}
		}
	}
	return component.Port{}, false
}

func (p *portSource) Ports(componentID string) ([]component.Port, bool) {
	inst := p.e.registry.Get(componentID)
	if inst == nil {
		return nil, false
	}
	ports, _ := p.e.schemas.Ports(inst.Kind)
	for _, name := range p.e.behaviors.Attached(componentID) {
		if b, ok := p.e.behaviors.Behavior(name); ok {
			ports = append(ports, b.Capability().Ports...)
		}
	}
	return ports, true
}

// componentAccess adapts the registry to the interpreter's lookup
// interface. component.Instance satisfies action.Target directly.
type componentAccess struct{ e *Engine }

func (c *componentAccess) Lookup(selector string) (action.Target, bool) {
	inst := c.e.registry.Get(selector)
	if inst == nil {
		return nil, false
	}
	return inst, true
}
