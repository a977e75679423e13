package wirekit

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine operations.
var (
	// ErrEngineClosed indicates the engine has been closed.
	ErrEngineClosed = errors.New("engine closed")

	// ErrNoStore indicates a layout operation was attempted without a
	// snapshot store configured.
	ErrNoStore = errors.New("no snapshot store configured")

	// ErrUnknownTransform indicates a connection referenced a transform
	// name that was never registered.
	ErrUnknownTransform = errors.New("unknown transform")

	// ErrInvalidConnection indicates a validated connect failed the
	// direction or type checks.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrUnknownComponent indicates an operation referenced an
	// unregistered component.
	ErrUnknownComponent = errors.New("unknown component")
)

// DefinitionError wraps an error with definition context. It reports
// which component in a definition tree failed to instantiate.
type DefinitionError struct {
	// ComponentID is the definition node that failed ("" for the root
	// before an ID is known).
	ComponentID string
	// Op is the operation that failed ("parse", "instantiate", "attach").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	if e.ComponentID == "" {
		return fmt.Sprintf("definition %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("definition %s at %s: %v", e.Op, e.ComponentID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// LayoutError wraps errors from snapshot save/load operations.
type LayoutError struct {
	// Name is the layout name.
	Name string
	// Op is the operation that failed ("save", "load").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout %s %q: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LayoutError) Unwrap() error {
	return e.Err
}
