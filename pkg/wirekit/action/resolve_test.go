package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInterpreter(access fakeAccess) *Interpreter {
	return NewInterpreter(access, &fakeScheduler{})
}

func TestResolve_Literals(t *testing.T) {
	in := newTestInterpreter(fakeAccess{})
	scope := NewScope(nil)

	assert.Nil(t, in.Resolve(Lit(nil), scope))
	assert.Equal(t, true, in.Resolve(Lit(true), scope))
	assert.Equal(t, 42, in.Resolve(Lit(42), scope))
	assert.Equal(t, "plain", in.Resolve(Lit("plain"), scope))

	// The zero Expr resolves to nil.
	assert.Nil(t, in.Resolve(Expr{}, scope))
}

func TestResolve_Variables(t *testing.T) {
	in := newTestInterpreter(fakeAccess{})
	scope := NewScope(map[string]any{"x": 5})

	assert.Equal(t, 5, in.Resolve(Var("x"), scope))
	assert.Nil(t, in.Resolve(Var("y"), scope))

	// A literal string with the "$" sentinel resolves as a variable.
	assert.Equal(t, 5, in.Resolve(Lit("$x"), scope))
	assert.Nil(t, in.Resolve(Lit("$y"), scope))
}

func TestResolve_ComponentRef(t *testing.T) {
	display := newFakeTarget()
	display.SetValue("hello")
	in := newTestInterpreter(fakeAccess{"display": display})
	scope := NewScope(nil)

	assert.Equal(t, "hello", in.Resolve(Comp("display"), scope))
	assert.Nil(t, in.Resolve(Comp("ghost"), scope))
}

func TestResolve_Arithmetic(t *testing.T) {
	in := newTestInterpreter(fakeAccess{})
	scope := NewScope(nil)

	assert.Equal(t, 6.0, in.Resolve(Add(Lit(1), Lit(2), Lit(3)), scope))
	assert.Equal(t, 24.0, in.Resolve(Multiply(Lit(2), Lit(3), Lit(4)), scope))
	assert.Equal(t, 7.0, in.Resolve(Subtract(Lit(10), Lit(3)), scope))
	assert.Equal(t, 2.5, in.Resolve(Divide(Lit(5), Lit(2)), scope))

	// Division by zero yields nil, not an error.
	assert.Nil(t, in.Resolve(Divide(Lit(10), Lit(0)), scope))

	// Numeric strings participate in arithmetic.
	assert.Equal(t, 3.0, in.Resolve(Add(Lit("1"), Lit("2")), scope))
}

func TestResolve_Concat(t *testing.T) {
	in := newTestInterpreter(fakeAccess{})
	scope := NewScope(map[string]any{"name": "world"})

	assert.Equal(t, "ab", in.Resolve(Concat(Lit("a"), Lit("b")), scope))
	assert.Equal(t, "hello world", in.Resolve(Concat(Lit("hello "), Var("name")), scope))

	// Numbers are stringified without a float suffix; nil renders empty.
	assert.Equal(t, "7", in.Resolve(Concat(Lit(7)), scope))
	assert.Equal(t, "x", in.Resolve(Concat(Lit(nil), Lit("x")), scope))
}

func TestResolve_EqualsExpr(t *testing.T) {
	in := newTestInterpreter(fakeAccess{})
	scope := NewScope(nil)

	assert.Equal(t, true, in.Resolve(Eq(Lit(3), Lit(3.0)), scope))
	assert.Equal(t, false, in.Resolve(Eq(Lit(3), Lit(4)), scope))
	assert.Equal(t, true, in.Resolve(Eq(Lit("a"), Lit("a")), scope))
}

func TestResolve_Nested(t *testing.T) {
	in := newTestInterpreter(fakeAccess{})
	scope := NewScope(map[string]any{"base": 10})

	// (base + 5) * 2
	expr := Multiply(Add(Var("base"), Lit(5)), Lit(2))
	assert.Equal(t, 30.0, in.Resolve(expr, scope))
}

func TestResolve_DepthBound(t *testing.T) {
	in := NewInterpreter(fakeAccess{}, &fakeScheduler{}, WithMaxDepth(4))
	scope := NewScope(nil)

	// Nest beyond the bound; the resolver gives up with nil instead of
	// recursing forever.
	expr := Lit(1)
	for i := 0; i < 10; i++ {
		expr = Add(expr)
	}
	assert.Equal(t, 0.0, in.Resolve(expr, scope))
}

func TestResolveValue_RawForms(t *testing.T) {
	in := newTestInterpreter(fakeAccess{})
	scope := NewScope(map[string]any{"x": 5})

	assert.Nil(t, in.ResolveValue(nil, scope))
	assert.Equal(t, true, in.ResolveValue(true, scope))
	assert.Equal(t, 3.5, in.ResolveValue(3.5, scope))
	assert.Equal(t, "text", in.ResolveValue("text", scope))
	assert.Equal(t, 5, in.ResolveValue("$x", scope))
	assert.Nil(t, in.ResolveValue("$y", scope))

	assert.Equal(t, 6.0, in.ResolveValue(map[string]any{"add": []any{1, 2, 3}}, scope))
	assert.Nil(t, in.ResolveValue(map[string]any{"divide": []any{10, 0}}, scope))
	assert.Equal(t, "ab", in.ResolveValue(map[string]any{"concat": []any{"a", "b"}}, scope))
}

func TestDecodeExpr_Variants(t *testing.T) {
	// {value} unwraps recursively.
	e := DecodeExpr(map[string]any{"value": map[string]any{"value": 7}})
	assert.Equal(t, ExprLiteral, e.Kind)
	assert.Equal(t, 7, e.Literal)

	// {ref} with "#" dereferences a component.
	e = DecodeExpr(map[string]any{"ref": "#display"})
	assert.Equal(t, ExprComponent, e.Kind)
	assert.Equal(t, "display", e.Name)

	// {ref} with "$" dereferences a scope variable.
	e = DecodeExpr(map[string]any{"ref": "$count"})
	assert.Equal(t, ExprVariable, e.Kind)
	assert.Equal(t, "count", e.Name)

	// Derived variants keep their operand lists.
	e = DecodeExpr(map[string]any{"subtract": []any{10, 3}})
	require.Equal(t, ExprDerived, e.Kind)
	assert.Equal(t, OpSubtract, e.Op)
	require.Len(t, e.Operands, 2)

	// Typed expressions pass through.
	orig := Var("x")
	assert.Equal(t, orig, DecodeExpr(orig))

	// Unrecognized maps stay literal.
	e = DecodeExpr(map[string]any{"mystery": 1})
	assert.Equal(t, ExprLiteral, e.Kind)
}
