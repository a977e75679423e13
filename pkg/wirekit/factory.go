package wirekit

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/wirekit/pkg/wirekit/action"
	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
)

// handlerNameActions is the registration name for declarative method
// handlers; registering the same name twice is a no-op, which makes
// re-instantiation idempotent per event.
const (
	handlerNameActions = "actions"
	handlerNameLegacy  = "legacy"
)

// Instantiate builds a component subtree from a definition: instances are
// created and registered depth-first, children linked, methods bound, and
// behaviors attached. It returns the root instance.
//
// Declarative methods run through the action interpreter with the event
// payload seeded as the "event" variable. Legacy code strings are bridged
// through the configured LegacyRunner; without one they log a deprecation
// notice and do nothing.
func (e *Engine) Instantiate(def Definition) (*component.Instance, error) {
	if e.isClosed() {
		return nil, ErrEngineClosed
	}
	if err := validateDefinition(def); err != nil {
		return nil, err
	}
	return e.instantiate(def)
}

func (e *Engine) instantiate(def Definition) (*component.Instance, error) {
	inst := component.NewInstance(def.ID, def.Type)
	if def.Value != nil {
		inst.SetValue(def.Value)
	}
	for name, v := range def.Properties {
		inst.SetProperty(name, v)
	}
	for property, v := range def.Styles {
		inst.SetStyle(property, v)
	}
	for _, class := range def.Classes {
		inst.AddClass(class)
	}

	for _, childDef := range def.Children {
		child, err := e.instantiate(childDef)
		if err != nil {
			return nil, err
		}
		inst.AddChild(child)
	}

	e.registry.Register(inst)

	for event, method := range def.Methods {
		e.bindMethod(inst.ID, event, method)
	}

	for _, ref := range def.Behaviors {
		if err := e.AttachBehavior(ref.Name, inst.ID, ref.Options); err != nil {
			return nil, &DefinitionError{ComponentID: inst.ID, Op: "attach", Err: err}
		}
	}

	return inst, nil
}

// bindMethod registers the event handler for one definition method.
func (e *Engine) bindMethod(componentID, event string, method Method) {
	if method.Declarative() {
		actions := action.DecodeActions(method.Actions)
		e.registry.RegisterEventHandler(componentID, event, handlerNameActions, func(data any) {
			e.interp.ExecuteActions(context.Background(), actions, map[string]any{"event": data})
		})
		return
	}

	code := method.Code
	if runner := e.legacy; runner != nil {
		e.registry.RegisterEventHandler(componentID, event, handlerNameLegacy, func(data any) {
			runner(componentID, event, code, data)
		})
		return
	}

	// No bridge configured: the handler exists so the event still counts
	// as bound, but it only logs.
	e.registry.RegisterEventHandler(componentID, event, handlerNameLegacy, func(any) {
		e.logger.Warn("legacy code-string handler is deprecated and has no runner",
			slog.String("component_id", componentID),
			slog.String("event", event))
	})
}
