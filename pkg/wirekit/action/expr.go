package action

// ExprKind tags an Expr variant.
type ExprKind string

// Expression kinds.
const (
	ExprLiteral   ExprKind = "literal"
	ExprVariable  ExprKind = "variable"
	ExprComponent ExprKind = "component"
	ExprDerived   ExprKind = "derived"
)

// DeriveOp is the operator of a derived expression.
type DeriveOp string

// Derived expression operators.
const (
	OpConcat   DeriveOp = "concat"
	OpAdd      DeriveOp = "add"
	OpSubtract DeriveOp = "subtract"
	OpMultiply DeriveOp = "multiply"
	OpDivide   DeriveOp = "divide"
	OpEquals   DeriveOp = "equals"
)

// Expr is a resolvable value expression: a literal, a variable reference,
// a component-value reference, or a derived computation over nested
// expressions.
//
// The zero Expr resolves to nil.
type Expr struct {
	Kind ExprKind

	// Literal holds the raw value for ExprLiteral. A literal string with
	// a leading "$" still resolves as a variable reference, matching the
	// sentinel rule for raw string values.
	Literal any

	// Name is the variable name (without "$") or component ID (without
	// "#") for the reference kinds.
	Name string

	// Op and Operands define a derived expression.
	Op       DeriveOp
	Operands []Expr
}

// Lit wraps a raw value as a literal expression.
func Lit(v any) Expr {
	return Expr{Kind: ExprLiteral, Literal: v}
}

// Var references a scope variable by name.
func Var(name string) Expr {
	return Expr{Kind: ExprVariable, Name: name}
}

// Comp references a component's current value by component ID.
func Comp(id string) Expr {
	return Expr{Kind: ExprComponent, Name: id}
}

// Concat stringifies and joins the resolved operands.
func Concat(operands ...Expr) Expr {
	return Expr{Kind: ExprDerived, Op: OpConcat, Operands: operands}
}

// Add sums the resolved numeric operands.
func Add(operands ...Expr) Expr {
	return Expr{Kind: ExprDerived, Op: OpAdd, Operands: operands}
}

// Subtract resolves a - b. It takes exactly two operands.
func Subtract(a, b Expr) Expr {
	return Expr{Kind: ExprDerived, Op: OpSubtract, Operands: []Expr{a, b}}
}

// Multiply folds the resolved numeric operands into a product.
func Multiply(operands ...Expr) Expr {
	return Expr{Kind: ExprDerived, Op: OpMultiply, Operands: operands}
}

// Divide resolves a / b, yielding nil rather than an error on division
// by zero. It takes exactly two operands.
func Divide(a, b Expr) Expr {
	return Expr{Kind: ExprDerived, Op: OpDivide, Operands: []Expr{a, b}}
}

// Eq resolves both sides and compares them, yielding a boolean.
func Eq(a, b Expr) Expr {
	return Expr{Kind: ExprDerived, Op: OpEquals, Operands: []Expr{a, b}}
}
