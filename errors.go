package stowage

import (
	"errors"
	"fmt"
)

// Errors returned by value construction and registration.
var (
	// ErrUnsupportedShape indicates a descriptor whose kind has no known wrapper:
	// an unrecognized container, an External descriptor with no codec, or a
	// container keyed by a non-scalar type.
	ErrUnsupportedShape = errors.New("stowage: unsupported shape")

	// ErrMissingTypeArgument indicates a container descriptor with the wrong
	// number of type arguments (e.g. a map descriptor without a value type).
	ErrMissingTypeArgument = errors.New("stowage: missing type argument")

	// ErrNoDefaultAvailable indicates that no default value was supplied and the
	// default-instance policy cannot produce one. Raised at first access, not at
	// construction time.
	ErrNoDefaultAvailable = errors.New("stowage: no default available")

	// ErrDuplicateName indicates an attempt to register a second node under a
	// name already taken in the same registry.
	ErrDuplicateName = errors.New("stowage: duplicate node name")

	// ErrTypeMismatch indicates a value whose shape does not match the one the
	// caller asked for. TypeError wraps it with node and shape detail.
	ErrTypeMismatch = errors.New("stowage: type mismatch")
)

// TypeError describes a typed-accessor failure: the node's declared shape does
// not match the shape the accessor expects.
type TypeError struct {
	// Name is the node name the accessor was called on.
	Name string
	// Expected is the shape the accessor expects (e.g. "bool").
	Expected string
	// Actual is the node's declared shape (e.g. "list[string]").
	Actual string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("stowage: node %q: expected %s, have %s", e.Name, e.Expected, e.Actual)
}

// Is reports whether target is ErrTypeMismatch, so callers can match with
// errors.Is without inspecting the concrete type.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
