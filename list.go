package stowage

import (
	"fmt"
)

// ListValue wraps an ordered sequence. Each element is held by a child wrapper
// of the declared element type, so nested composites stay live: mutating an
// element in place notifies the registry the same way replacing it would.
// Every exported mutation counts as one logical change and notifies exactly
// once, regardless of how many elements it touches.
type ListValue struct {
	binding
	desc  Descriptor
	elems []Value
}

// Descriptor returns the declared shape.
func (l *ListValue) Descriptor() Descriptor { return l.desc }

// Len returns the number of elements.
func (l *ListValue) Len() int { return len(l.elems) }

// At returns the child wrapper at index i. Mutating through it notifies the
// registry with the registered top-level value as the subject.
func (l *ListValue) At(i int) Value { return l.elems[i] }

// Append adds elements at the end, in argument order. One notification covers
// the whole call.
func (l *ListValue) Append(vs ...any) {
	if len(vs) == 0 {
		return
	}
	for _, v := range vs {
		l.elems = append(l.elems, l.newElem(v))
	}
	l.notify()
}

// Insert places v at index i, shifting later elements right. Panics if i is
// out of range.
func (l *ListValue) Insert(i int, v any) {
	if i < 0 || i > len(l.elems) {
		panic(fmt.Sprintf("stowage: list insert index %d out of range [0,%d]", i, len(l.elems)))
	}
	l.elems = append(l.elems, nil)
	copy(l.elems[i+1:], l.elems[i:])
	l.elems[i] = l.newElem(v)
	l.notify()
}

// SetAt replaces the element at index i. Panics if i is out of range.
func (l *ListValue) SetAt(i int, v any) {
	child := l.newElem(v)
	l.elems[i] = child
	l.notify()
}

// Remove deletes the element at index i, shifting later elements left.
// Panics if i is out of range.
func (l *ListValue) Remove(i int) {
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
	l.notify()
}

// Clear removes all elements. Clearing an already-empty list is a no-op and
// does not notify.
func (l *ListValue) Clear() {
	if len(l.elems) == 0 {
		return
	}
	l.elems = nil
	l.notify()
}

// Range calls fn for each element in order with its index and raw value,
// stopping early if fn returns false.
func (l *ListValue) Range(fn func(i int, v any) bool) {
	for i, e := range l.elems {
		v, err := e.Get()
		if err != nil {
			return
		}
		if !fn(i, v) {
			return
		}
	}
}

// Raw returns the current raw element values in order.
func (l *ListValue) Raw() []any {
	out := make([]any, len(l.elems))
	for i, e := range l.elems {
		v, _ := e.Get()
		out[i] = v
	}
	return out
}

// Get returns the raw element values in order. Never fails for list shapes
// whose elements have defaults.
func (l *ListValue) Get() (any, error) {
	out := make([]any, len(l.elems))
	for i, e := range l.elems {
		v, err := e.Get()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// MustGet is Get panicking on error.
func (l *ListValue) MustGet() any { return mustGet(l) }

// Set replaces the whole contents from a slice and notifies once. Panics on
// element type mismatch.
func (l *ListValue) Set(v any) {
	if err := l.assign(v); err != nil {
		panic(err)
	}
	l.notify()
}

func (l *ListValue) assign(raw any) error {
	elems, ok := asSlice(raw)
	if !ok {
		return fmt.Errorf("%w: cannot use %T as %s", ErrTypeMismatch, raw, l.desc)
	}
	next := make([]Value, len(elems))
	for i, e := range elems {
		child := newValue(l.desc.Args[0])
		l.adopt(child)
		if err := child.assign(e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		next[i] = child
	}
	l.elems = next
	return nil
}

func (l *ListValue) encode() (any, error) {
	out := make([]any, len(l.elems))
	for i, e := range l.elems {
		enc, err := e.encode()
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func (l *ListValue) decode(tree any) error {
	if tree == nil {
		l.elems = nil
		return nil
	}
	elems, ok := asSlice(tree)
	if !ok {
		return fmt.Errorf("%w: cannot decode %T as %s", ErrTypeMismatch, tree, l.desc)
	}
	next := make([]Value, len(elems))
	for i, e := range elems {
		child := newValue(l.desc.Args[0])
		l.adopt(child)
		if err := child.decode(e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		next[i] = child
	}
	l.elems = next
	return nil
}

func (l *ListValue) bind(r *Registry, n *Node) {
	l.reg, l.node = r, n
	for _, e := range l.elems {
		e.bind(r, n)
	}
}

// newElem builds, binds, and fills one element wrapper. Panics on type
// mismatch: exported mutations treat unconvertible values as contract
// violations.
func (l *ListValue) newElem(v any) Value {
	child := newValue(l.desc.Args[0])
	l.adopt(child)
	if err := child.assign(v); err != nil {
		panic(err)
	}
	return child
}
