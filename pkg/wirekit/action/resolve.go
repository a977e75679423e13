package action

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/randalmurphal/wirekit/pkg/wirekit/observability"
)

// DefaultMaxDepth bounds expression recursion. The declarative form has no
// cycle guard, so resolution tracks depth instead of visited nodes.
const DefaultMaxDepth = 32

// ResolveValue resolves a raw value against the scope: nil, booleans and
// numbers pass through unchanged; strings pass through except a leading
// "$", which denotes a variable reference (nil if unset); maps are decoded
// as tagged expression variants and resolved.
func (in *Interpreter) ResolveValue(v any, scope *Scope) any {
	return in.resolveExpr(DecodeExpr(v), scope, 0)
}

// Resolve resolves a typed expression against the scope.
func (in *Interpreter) Resolve(e Expr, scope *Scope) any {
	return in.resolveExpr(e, scope, 0)
}

func (in *Interpreter) resolveExpr(e Expr, scope *Scope, depth int) any {
	if depth > in.maxDepth {
		in.logger.Warn("expression recursion limit reached",
			slog.Int("max_depth", in.maxDepth))
		return nil
	}

	switch e.Kind {
	case ExprLiteral:
		if s, ok := e.Literal.(string); ok && strings.HasPrefix(s, "$") {
			return in.lookupVar(s[1:], scope)
		}
		return e.Literal

	case ExprVariable:
		return in.lookupVar(e.Name, scope)

	case ExprComponent:
		target, ok := in.components.Lookup(e.Name)
		if !ok {
			in.logger.Debug("component reference not found",
				slog.String("component_id", e.Name))
			return nil
		}
		return target.Value()

	case ExprDerived:
		return in.resolveDerived(e, scope, depth)

	default:
		// The zero Expr resolves to nil.
		return nil
	}
}

func (in *Interpreter) lookupVar(name string, scope *Scope) any {
	if scope == nil {
		return nil
	}
	v, ok := scope.Get(name)
	if !ok {
		return nil
	}
	return v
}

func (in *Interpreter) resolveDerived(e Expr, scope *Scope, depth int) any {
	switch e.Op {
	case OpConcat:
		var sb strings.Builder
		for _, op := range e.Operands {
			sb.WriteString(stringify(in.resolveExpr(op, scope, depth+1)))
		}
		return sb.String()

	case OpAdd:
		sum := 0.0
		for _, op := range e.Operands {
			sum += toFloat(in.resolveExpr(op, scope, depth+1))
		}
		return sum

	case OpMultiply:
		product := 1.0
		for _, op := range e.Operands {
			product *= toFloat(in.resolveExpr(op, scope, depth+1))
		}
		return product

	case OpSubtract:
		if len(e.Operands) != 2 {
			observability.LogUnknownVariant(in.logger, "expression", "subtract with arity != 2")
			return nil
		}
		a := toFloat(in.resolveExpr(e.Operands[0], scope, depth+1))
		b := toFloat(in.resolveExpr(e.Operands[1], scope, depth+1))
		return a - b

	case OpDivide:
		if len(e.Operands) != 2 {
			observability.LogUnknownVariant(in.logger, "expression", "divide with arity != 2")
			return nil
		}
		a := toFloat(in.resolveExpr(e.Operands[0], scope, depth+1))
		b := toFloat(in.resolveExpr(e.Operands[1], scope, depth+1))
		if b == 0 {
			return nil
		}
		return a / b

	case OpEquals:
		if len(e.Operands) != 2 {
			observability.LogUnknownVariant(in.logger, "expression", "equals with arity != 2")
			return nil
		}
		a := in.resolveExpr(e.Operands[0], scope, depth+1)
		b := in.resolveExpr(e.Operands[1], scope, depth+1)
		return equalValues(a, b)

	default:
		observability.LogUnknownVariant(in.logger, "expression", string(e.Op))
		return nil
	}
}

// stringify renders a resolved value for concatenation. nil renders empty.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := asFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// asFloat converts numeric values to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}

// toFloat converts a value to float64 for arithmetic. Numeric strings
// parse; anything else contributes 0.
func toFloat(v any) float64 {
	if f, ok := asFloat(v); ok {
		return f
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	if b, ok := v.(bool); ok && b {
		return 1
	}
	return 0
}

// equalValues compares two resolved values: numerically when both sides
// are numeric, by deep equality otherwise.
func equalValues(a, b any) bool {
	fa, aNum := asFloat(a)
	fb, bNum := asFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}
