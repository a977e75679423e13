// Package action implements the declarative action and expression
// interpreter. Actions are small tagged variants (set a value, toggle a
// class, branch on a condition, schedule a nested list) executed in order
// against named components and a variable scope.
//
// The vocabulary is intentionally closed and small; this is not a
// general-purpose scripting layer.
package action

import "time"

// Kind tags an Action variant. The interpreter dispatches on Kind with an
// exhaustive switch; an unrecognized kind is a logged no-op.
type Kind string

// Action kinds.
const (
	KindSetValue    Kind = "setValue"
	KindGetValue    Kind = "getValue"
	KindSetStyle    Kind = "setStyle"
	KindAddClass    Kind = "addClass"
	KindRemoveClass Kind = "removeClass"
	KindSetTimeout  Kind = "setTimeout"
	KindIf          Kind = "if"
)

// Action is one interpreted step of a declarative behavior script.
// Only the fields relevant to its Kind are set.
type Action struct {
	Kind Kind

	// Target selects the component operated on ("id" or "#id").
	Target string

	// Value is the expression resolved for setValue and setStyle.
	Value Expr

	// Store names the scope variable getValue binds the read value to.
	// Empty means the value is only returned, not bound.
	Store string

	// Property names the style property for setStyle.
	Property string

	// Class names the class marker for addClass and removeClass.
	Class string

	// Delay and Callback define a setTimeout step.
	Delay    time.Duration
	Callback []Action

	// Cond, Then and Else define an if step.
	Cond Condition
	Then []Action
	Else []Action
}

// SetValue resolves value and writes it as the target component's value.
func SetValue(target string, value Expr) Action {
	return Action{Kind: KindSetValue, Target: target, Value: value}
}

// GetValue reads the target's value. If store is non-empty the value is
// bound into the scope under that name.
func GetValue(target, store string) Action {
	return Action{Kind: KindGetValue, Target: target, Store: store}
}

// SetStyle resolves value and sets a named style property on the target.
func SetStyle(target, property string, value Expr) Action {
	return Action{Kind: KindSetStyle, Target: target, Property: property, Value: value}
}

// AddClass adds a class marker on the target.
func AddClass(target, class string) Action {
	return Action{Kind: KindAddClass, Target: target, Class: class}
}

// RemoveClass removes a class marker from the target.
func RemoveClass(target, class string) Action {
	return Action{Kind: KindRemoveClass, Target: target, Class: class}
}

// SetTimeout schedules the callback actions to run after delay on the
// engine's timer facility. The step's result is an opaque cancellable
// handle.
func SetTimeout(delay time.Duration, callback ...Action) Action {
	return Action{Kind: KindSetTimeout, Delay: delay, Callback: callback}
}

// If evaluates cond and runs the then branch when true, else otherwise.
func If(cond Condition, then []Action, els []Action) Action {
	return Action{Kind: KindIf, Cond: cond, Then: then, Else: els}
}

// CondKind tags a Condition variant.
type CondKind string

// Condition kinds.
const (
	CondEquals      CondKind = "equals"
	CondNotEquals   CondKind = "notEquals"
	CondGreaterThan CondKind = "greaterThan"
	CondLessThan    CondKind = "lessThan"
	CondContains    CondKind = "contains"
	CondAnd         CondKind = "and"
	CondOr          CondKind = "or"
)

// Condition is a tagged boolean test over resolved expressions.
// An unrecognized condition shape evaluates to false with a logged
// warning: conditions fail closed, in contrast to transforms, which
// fail open.
type Condition struct {
	Kind  CondKind
	Left  Expr
	Right Expr
	// All holds the nested operands for and/or.
	All []Condition
}

// Equals compares two resolved expressions for equality.
func Equals(left, right Expr) Condition {
	return Condition{Kind: CondEquals, Left: left, Right: right}
}

// NotEquals is the negation of Equals.
func NotEquals(left, right Expr) Condition {
	return Condition{Kind: CondNotEquals, Left: left, Right: right}
}

// GreaterThan compares two resolved expressions numerically.
func GreaterThan(left, right Expr) Condition {
	return Condition{Kind: CondGreaterThan, Left: left, Right: right}
}

// LessThan compares two resolved expressions numerically.
func LessThan(left, right Expr) Condition {
	return Condition{Kind: CondLessThan, Left: left, Right: right}
}

// Contains checks substring membership for string containers and element
// membership for array containers.
func Contains(container, item Expr) Condition {
	return Condition{Kind: CondContains, Left: container, Right: item}
}

// And is true when every nested condition is true.
func And(conds ...Condition) Condition {
	return Condition{Kind: CondAnd, All: conds}
}

// Or is true when any nested condition is true.
func Or(conds ...Condition) Condition {
	return Condition{Kind: CondOr, All: conds}
}
