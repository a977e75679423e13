package action

import (
	"time"
)

// DecodeExpr converts a raw declarative value into a typed expression.
// Raw values come from parsed JSON/YAML definition trees:
//
//   - nil, booleans and numbers decode as literals
//   - strings decode as literals; a leading "$" still resolves as a
//     variable reference at resolution time
//   - maps decode as tagged variants: {value}, {ref}, {concat}, {add},
//     {subtract}, {multiply}, {divide}, {equals}
//
// Inside {ref}, a "#id" prefix dereferences a component's current value
// and a "$name" prefix dereferences a scope variable.
func DecodeExpr(raw any) Expr {
	switch v := raw.(type) {
	case nil:
		return Lit(nil)
	case Expr:
		return v
	case map[string]any:
		if inner, ok := v["value"]; ok {
			// {value} unwraps recursively.
			return DecodeExpr(inner)
		}
		if ref, ok := v["ref"].(string); ok {
			switch {
			case len(ref) > 0 && ref[0] == '#':
				return Comp(ref[1:])
			case len(ref) > 0 && ref[0] == '$':
				return Var(ref[1:])
			default:
				return Var(ref)
			}
		}
		for _, op := range []DeriveOp{OpConcat, OpAdd, OpSubtract, OpMultiply, OpDivide, OpEquals} {
			if operands, ok := v[string(op)]; ok {
				return Expr{Kind: ExprDerived, Op: op, Operands: decodeOperands(operands)}
			}
		}
		return Lit(v)
	default:
		return Lit(raw)
	}
}

func decodeOperands(raw any) []Expr {
	list, ok := raw.([]any)
	if !ok {
		return []Expr{DecodeExpr(raw)}
	}
	out := make([]Expr, 0, len(list))
	for _, elem := range list {
		out = append(out, DecodeExpr(elem))
	}
	return out
}

// DecodeAction converts one raw action map into a typed Action. The
// variant is selected by the "type" field. Unknown or missing types decode
// into a zero-Kind Action, which the interpreter treats as a logged no-op.
func DecodeAction(raw map[string]any) Action {
	kind, _ := raw["type"].(string)
	act := Action{Kind: Kind(kind)}

	if target, ok := raw["target"].(string); ok {
		act.Target = target
	}
	if store, ok := raw["store"].(string); ok {
		act.Store = store
	}
	if property, ok := raw["property"].(string); ok {
		act.Property = property
	}
	if class, ok := raw["class"].(string); ok {
		act.Class = class
	}
	if value, ok := raw["value"]; ok {
		act.Value = DecodeExpr(value)
	}
	if delay, ok := raw["delay"]; ok {
		// Delays arrive as milliseconds in the declarative form.
		act.Delay = time.Duration(toFloat(delay) * float64(time.Millisecond))
	}
	if callback, ok := raw["callback"]; ok {
		act.Callback = DecodeActions(callback)
	}
	if cond, ok := raw["condition"].(map[string]any); ok {
		act.Cond = DecodeCondition(cond)
	}
	if then, ok := raw["then"]; ok {
		act.Then = DecodeActions(then)
	}
	if els, ok := raw["else"]; ok {
		act.Else = DecodeActions(els)
	}
	return act
}

// DecodeActions converts a raw action or list of actions into a typed
// action list. Non-action values are skipped.
func DecodeActions(raw any) []Action {
	switch v := raw.(type) {
	case map[string]any:
		return []Action{DecodeAction(v)}
	case []any:
		out := make([]Action, 0, len(v))
		for _, elem := range v {
			if m, ok := elem.(map[string]any); ok {
				out = append(out, DecodeAction(m))
			}
		}
		return out
	}
	return nil
}

// DecodeCondition converts a raw condition map into a typed Condition,
// selected by the "type" field. Unknown shapes decode into a zero-Kind
// Condition, which evaluates to false.
func DecodeCondition(raw map[string]any) Condition {
	kind, _ := raw["type"].(string)
	cond := Condition{Kind: CondKind(kind)}

	if left, ok := raw["left"]; ok {
		cond.Left = DecodeExpr(left)
	}
	if right, ok := raw["right"]; ok {
		cond.Right = DecodeExpr(right)
	}
	if nested, ok := raw["conditions"].([]any); ok {
		for _, elem := range nested {
			if m, ok := elem.(map[string]any); ok {
				cond.All = append(cond.All, DecodeCondition(m))
			}
		}
	}
	return cond
}
