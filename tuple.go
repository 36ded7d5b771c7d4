package stowage

import (
	"fmt"
	"reflect"
)

// TupleValue wraps the built-in pair and triple shapes: a fixed-arity sequence
// of components, each with its own declared type and child wrapper.
type TupleValue struct {
	binding
	desc     Descriptor
	children []Value
}

// Descriptor returns the declared shape.
func (t *TupleValue) Descriptor() Descriptor { return t.desc }

// Arity returns the number of components (2 for pairs, 3 for triples).
func (t *TupleValue) Arity() int { return len(t.desc.Args) }

// At returns the child wrapper for component i. Mutations through the child
// notify the registry with the registered top-level value as the subject.
func (t *TupleValue) At(i int) Value {
	t.materialize()
	return t.children[i]
}

// Get returns the component values as a slice in declaration order.
func (t *TupleValue) Get() (any, error) {
	t.materialize()
	out := make([]any, len(t.children))
	for i, c := range t.children {
		v, err := c.Get()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// MustGet is Get panicking on error.
func (t *TupleValue) MustGet() any { return mustGet(t) }

// Set replaces all components from a slice of matching arity and notifies the
// owning registry once. Panics on arity or component type mismatch.
func (t *TupleValue) Set(v any) {
	if err := t.assign(v); err != nil {
		panic(err)
	}
	t.notify()
}

func (t *TupleValue) assign(raw any) error {
	elems, ok := asSlice(raw)
	if !ok {
		return fmt.Errorf("%w: cannot use %T as %s", ErrTypeMismatch, raw, t.desc)
	}
	if len(elems) != t.Arity() {
		return fmt.Errorf("%w: %s needs %d components, have %d", ErrTypeMismatch, t.desc, t.Arity(), len(elems))
	}
	t.materialize()
	for i, e := range elems {
		if err := t.children[i].assign(e); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}

func (t *TupleValue) encode() (any, error) {
	t.materialize()
	out := make([]any, len(t.children))
	for i, c := range t.children {
		enc, err := c.encode()
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func (t *TupleValue) decode(tree any) error {
	elems, ok := asSlice(tree)
	if !ok {
		return fmt.Errorf("%w: cannot decode %T as %s", ErrTypeMismatch, tree, t.desc)
	}
	if len(elems) != t.Arity() {
		return fmt.Errorf("%w: %s needs %d components, have %d", ErrTypeMismatch, t.desc, t.Arity(), len(elems))
	}
	t.materialize()
	for i, e := range elems {
		if err := t.children[i].decode(e); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}

func (t *TupleValue) bind(r *Registry, n *Node) {
	t.reg, t.node = r, n
	for _, c := range t.children {
		c.bind(r, n)
	}
}

// materialize builds the component wrappers on first use.
func (t *TupleValue) materialize() {
	if t.children != nil {
		return
	}
	t.children = make([]Value, len(t.desc.Args))
	for i, arg := range t.desc.Args {
		c := newValue(arg)
		t.adopt(c)
		t.children[i] = c
	}
}

// asSlice converts any slice or array value to []any. []any passes through
// without copying element values.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
