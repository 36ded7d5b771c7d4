package stowage

import (
	"fmt"
)

// Value is the live, mutation-tracked holder for one declared field. A Value
// always holds a current value of its declared shape; absence is not
// representable. Concrete wrappers are *Scalar, *TupleValue, *ListValue,
// *MapValue, *SetValue, and *ExternalValue. The interface is sealed: only
// wrappers built by NewValue can implement it.
type Value interface {
	// Descriptor returns the declared shape.
	Descriptor() Descriptor

	// Get returns the current value, materializing the default on first
	// access if no value was ever supplied. It fails only when the
	// default-instance policy cannot produce a value (ErrNoDefaultAvailable).
	Get() (any, error)

	// MustGet is Get panicking on error.
	MustGet() any

	// Set replaces the current value and notifies the owning registry.
	// A value that cannot be coerced to the declared shape is a caller
	// contract violation and panics.
	Set(v any)

	// assign replaces the current value from a raw value without notifying.
	assign(raw any) error

	// encode renders the current value as a plain marshal-safe tree.
	encode() (any, error)

	// decode replaces the current value from a plain tree without notifying.
	decode(tree any) error

	// bind attaches the wrapper (and every descendant) to a registry node,
	// so later mutations reach the registry with that node as the subject.
	bind(r *Registry, n *Node)
}

// NewValue builds a wrapper for the given descriptor with no initial value.
// The default instance is materialized lazily, on first access. The whole
// descriptor tree is validated up front: unsupported or incomplete shapes fail
// here, not on first use.
func NewValue(d Descriptor) (Value, error) {
	if err := validateDescriptor(d); err != nil {
		return nil, err
	}
	return newValue(d), nil
}

// NewValueWith builds a wrapper holding the supplied initial value. Unlike
// NewValue, the initial value is materialized eagerly; a value that does not
// fit the declared shape is an error.
func NewValueWith(d Descriptor, initial any) (Value, error) {
	v, err := NewValue(d)
	if err != nil {
		return nil, err
	}
	if err := v.assign(initial); err != nil {
		return nil, fmt.Errorf("initial value for %s: %w", d, err)
	}
	return v, nil
}

// MustValue is NewValue panicking on error. Useful in package-level
// declaration blocks.
func MustValue(d Descriptor) Value {
	v, err := NewValue(d)
	if err != nil {
		panic(err)
	}
	return v
}

// MustValueWith is NewValueWith panicking on error.
func MustValueWith(d Descriptor, initial any) Value {
	v, err := NewValueWith(d, initial)
	if err != nil {
		panic(err)
	}
	return v
}

// validateDescriptor walks the descriptor tree and rejects shapes no wrapper
// exists for. Dispatch is purely structural: it never looks at runtime values.
func validateDescriptor(d Descriptor) error {
	switch {
	case d.Kind.IsScalar():
		return nil

	case d.Kind == KindPair || d.Kind == KindTriple:
		want := 2
		if d.Kind == KindTriple {
			want = 3
		}
		if len(d.Args) != want {
			return fmt.Errorf("%w: %s needs %d type arguments, have %d", ErrMissingTypeArgument, d.Kind, want, len(d.Args))
		}
		for _, arg := range d.Args {
			if err := validateDescriptor(arg); err != nil {
				return err
			}
		}
		return nil

	case d.Kind == KindList:
		if len(d.Args) != 1 {
			return fmt.Errorf("%w: list needs an element type", ErrMissingTypeArgument)
		}
		return validateDescriptor(d.Args[0])

	case d.Kind == KindSet:
		if len(d.Args) != 1 {
			return fmt.Errorf("%w: set needs an element type", ErrMissingTypeArgument)
		}
		if !d.Args[0].Kind.IsScalar() {
			return fmt.Errorf("%w: set elements must be scalar, have %s", ErrUnsupportedShape, d.Args[0])
		}
		return nil

	case d.Kind == KindMap:
		if len(d.Args) != 2 {
			return fmt.Errorf("%w: map needs key and value types, have %d", ErrMissingTypeArgument, len(d.Args))
		}
		if !d.Args[0].Kind.IsScalar() {
			return fmt.Errorf("%w: map keys must be scalar, have %s", ErrUnsupportedShape, d.Args[0])
		}
		return validateDescriptor(d.Args[1])

	case d.Kind == KindExternal:
		if d.Codec == nil {
			return fmt.Errorf("%w: external shape without a codec", ErrUnsupportedShape)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedShape, d)
	}
}

// newValue dispatches on an already-validated descriptor.
func newValue(d Descriptor) Value {
	switch {
	case d.Kind.IsScalar():
		return &Scalar{desc: d}
	case d.Kind == KindPair || d.Kind == KindTriple:
		return &TupleValue{desc: d}
	case d.Kind == KindList:
		return &ListValue{desc: d}
	case d.Kind == KindMap:
		return newMapValue(d)
	case d.Kind == KindSet:
		return newSetValue(d)
	case d.Kind == KindExternal:
		return &ExternalValue{desc: d}
	default:
		// Unreachable after validateDescriptor.
		panic(fmt.Sprintf("stowage: no wrapper for %s", d))
	}
}

// binding ties a wrapper to the registry node it was registered under. Every
// wrapper in a composite tree shares the same node, so a mutation anywhere in
// the tree reports the registered top-level value as its subject.
type binding struct {
	reg  *Registry
	node *Node
}

// notify reports one logical mutation to the owning registry, if any.
func (b *binding) notify() {
	if b.reg != nil && b.node != nil {
		b.reg.valueChanged(b.node)
	}
}

// adopt binds a freshly created child wrapper to this wrapper's node.
func (b *binding) adopt(child Value) {
	if b.reg != nil {
		child.bind(b.reg, b.node)
	}
}

// mustGet backs the MustGet implementations.
func mustGet(v Value) any {
	val, err := v.Get()
	if err != nil {
		panic(err)
	}
	return val
}
