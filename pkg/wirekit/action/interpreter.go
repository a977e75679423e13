package action

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/randalmurphal/wirekit/pkg/wirekit/observability"
	"github.com/randalmurphal/wirekit/pkg/wirekit/schedule"
)

// Target is the surface an action manipulates on a component.
// *component.Instance satisfies it; tests may substitute fakes.
type Target interface {
	Value() any
	SetValue(v any)
	SetStyle(property string, value any)
	AddClass(name string)
	RemoveClass(name string)
}

// ComponentAccess resolves a selector to a live component target. The
// engine implements it over the component registry.
type ComponentAccess interface {
	Lookup(selector string) (Target, bool)
}

// Interpreter executes declarative action lists against named components
// and a variable scope.
type Interpreter struct {
	components ComponentAccess
	scheduler  schedule.Scheduler
	logger     *slog.Logger
	metrics    observability.MetricsRecorder
	spans      observability.SpanManager
	maxDepth   int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the interpreter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec observability.MetricsRecorder) Option {
	return func(in *Interpreter) {
		if rec != nil {
			in.metrics = rec
		}
	}
}

// WithSpans sets the trace span manager.
func WithSpans(sm observability.SpanManager) Option {
	return func(in *Interpreter) {
		if sm != nil {
			in.spans = sm
		}
	}
}

// WithMaxDepth bounds expression recursion depth.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxDepth = n
		}
	}
}

// NewInterpreter creates an interpreter resolving components through
// access and scheduling timeouts on scheduler.
func NewInterpreter(access ComponentAccess, scheduler schedule.Scheduler, opts ...Option) *Interpreter {
	in := &Interpreter{
		components: access,
		scheduler:  scheduler,
		logger:     slog.Default(),
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
		maxDepth:   DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// ExecuteActions runs the actions in order against a fresh scope seeded
// from seed. A failing action never stops execution: its error is caught,
// logged, and its step result is nil while the remaining actions run.
// The last action's result and the final scope are returned; the scope is
// the explicit continuity handle for callers that chain executions.
//
// No error ever escapes this entry point.
func (in *Interpreter) ExecuteActions(ctx context.Context, actions []Action, seed map[string]any) (any, *Scope) {
	scope := NewScope(seed)

	ctx, span := in.spans.StartActionsSpan(ctx, len(actions))
	result := in.executeList(ctx, actions, scope)
	in.spans.EndSpanWithError(span, nil)

	return result, scope
}

// ExecuteAction runs a single action; see ExecuteActions.
func (in *Interpreter) ExecuteAction(ctx context.Context, act Action, seed map[string]any) (any, *Scope) {
	return in.ExecuteActions(ctx, []Action{act}, seed)
}

// executeList runs actions against an existing scope. Branches and
// scheduled callbacks share this path.
func (in *Interpreter) executeList(ctx context.Context, actions []Action, scope *Scope) any {
	var result any
	for i, act := range actions {
		stepResult, err := in.executeStep(ctx, act, scope)
		in.metrics.RecordAction(ctx, string(act.Kind), err)
		if err != nil {
			observability.LogActionError(in.logger, string(act.Kind), i, err)
			result = nil
			continue
		}
		result = stepResult
	}
	return result
}

// executeStep runs one action, converting panics from component handlers
// into errors so a bad step cannot take down the host's event loop.
func (in *Interpreter) executeStep(ctx context.Context, act Action, scope *Scope) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("action panic: %v", r)
		}
	}()

	switch act.Kind {
	case KindSetValue:
		target, ok := in.components.Lookup(act.Target)
		if !ok {
			return nil, fmt.Errorf("component not found: %s", act.Target)
		}
		v := in.Resolve(act.Value, scope)
		target.SetValue(v)
		return v, nil

	case KindGetValue:
		target, ok := in.components.Lookup(act.Target)
		if !ok {
			return nil, fmt.Errorf("component not found: %s", act.Target)
		}
		v := target.Value()
		if act.Store != "" {
			scope.Set(act.Store, v)
		}
		return v, nil

	case KindSetStyle:
		target, ok := in.components.Lookup(act.Target)
		if !ok {
			return nil, fmt.Errorf("component not found: %s", act.Target)
		}
		v := in.Resolve(act.Value, scope)
		target.SetStyle(act.Property, v)
		return v, nil

	case KindAddClass:
		target, ok := in.components.Lookup(act.Target)
		if !ok {
			return nil, fmt.Errorf("component not found: %s", act.Target)
		}
		target.AddClass(act.Class)
		return act.Class, nil

	case KindRemoveClass:
		target, ok := in.components.Lookup(act.Target)
		if !ok {
			return nil, fmt.Errorf("component not found: %s", act.Target)
		}
		target.RemoveClass(act.Class)
		return act.Class, nil

	case KindSetTimeout:
		if in.scheduler == nil {
			return nil, fmt.Errorf("no scheduler configured")
		}
		// Callbacks see the scope as persisted at scheduling time, not
		// the live scope of the original call.
		snapshot := scope.Snapshot()
		callback := act.Callback
		handle := in.scheduler.After(act.Delay, func() {
			in.ExecuteActions(context.Background(), callback, snapshot)
		})
		return handle, nil

	case KindIf:
		if in.EvalCondition(act.Cond, scope) {
			return in.executeList(ctx, act.Then, scope), nil
		}
		return in.executeList(ctx, act.Else, scope), nil

	default:
		observability.LogUnknownVariant(in.logger, "action", string(act.Kind))
		return nil, nil
	}
}

// EvalCondition evaluates a condition against the scope. Unknown shapes
// evaluate to false with a logged warning: conditions fail closed.
func (in *Interpreter) EvalCondition(c Condition, scope *Scope) bool {
	switch c.Kind {
	case CondEquals:
		return equalValues(in.Resolve(c.Left, scope), in.Resolve(c.Right, scope))

	case CondNotEquals:
		return !equalValues(in.Resolve(c.Left, scope), in.Resolve(c.Right, scope))

	case CondGreaterThan:
		return toFloat(in.Resolve(c.Left, scope)) > toFloat(in.Resolve(c.Right, scope))

	case CondLessThan:
		return toFloat(in.Resolve(c.Left, scope)) < toFloat(in.Resolve(c.Right, scope))

	case CondContains:
		return contains(in.Resolve(c.Left, scope), in.Resolve(c.Right, scope))

	case CondAnd:
		for _, nested := range c.All {
			if !in.EvalCondition(nested, scope) {
				return false
			}
		}
		return true

	case CondOr:
		for _, nested := range c.All {
			if in.EvalCondition(nested, scope) {
				return true
			}
		}
		return false

	default:
		observability.LogUnknownVariant(in.logger, "condition", string(c.Kind))
		return false
	}
}

// contains checks substring membership for string containers and element
// membership for slice containers. Other container shapes are false.
func contains(container, item any) bool {
	switch c := container.(type) {
	case string:
		return strings.Contains(c, stringify(item))
	case []any:
		for _, elem := range c {
			if equalValues(elem, item) {
				return true
			}
		}
		return false
	}
	rv := reflect.ValueOf(container)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if equalValues(rv.Index(i).Interface(), item) {
				return true
			}
		}
	}
	return false
}
