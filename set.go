package stowage

import (
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SetValue wraps an unordered collection of distinct scalar elements. Elements
// iterate in insertion order, but serialization sorts them by canonical key
// string, so the serialized form is independent of insertion history.
// Membership no-ops (adding a present element, removing an absent one,
// clearing an empty set) do not notify.
type SetValue struct {
	binding
	desc  Descriptor
	elems *orderedmap.OrderedMap[any, Value]
}

func newSetValue(d Descriptor) *SetValue {
	return &SetValue{
		desc:  d,
		elems: orderedmap.New[any, Value](),
	}
}

// Descriptor returns the declared shape.
func (s *SetValue) Descriptor() Descriptor { return s.desc }

// Len returns the number of elements.
func (s *SetValue) Len() int { return s.elems.Len() }

// Contains reports whether v is present. Panics if v cannot be coerced to the
// declared element kind.
func (s *SetValue) Contains(v any) bool {
	_, ok := s.elems.Get(s.coerceElem(v))
	return ok
}

// Add inserts elements, skipping ones already present. Returns the number of
// elements actually added; a call that adds nothing does not notify.
func (s *SetValue) Add(vs ...any) int {
	added := 0
	for _, v := range vs {
		elem := s.coerceElem(v)
		if _, ok := s.elems.Get(elem); ok {
			continue
		}
		s.elems.Set(elem, s.newElem(elem))
		added++
	}
	if added > 0 {
		s.notify()
	}
	return added
}

// Remove deletes v, reporting whether it was present. Removing an absent
// element does not notify.
func (s *SetValue) Remove(v any) bool {
	_, present := s.elems.Delete(s.coerceElem(v))
	if present {
		s.notify()
	}
	return present
}

// Clear removes all elements with a single notification. Clearing an empty
// set is a no-op and does not notify.
func (s *SetValue) Clear() {
	if s.elems.Len() == 0 {
		return
	}
	s.elems = orderedmap.New[any, Value]()
	s.notify()
}

// Elements returns the raw elements in insertion order.
func (s *SetValue) Elements() []any {
	out := make([]any, 0, s.elems.Len())
	for pair := s.elems.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Range calls fn for each element in insertion order, stopping early if fn
// returns false.
func (s *SetValue) Range(fn func(v any) bool) {
	for pair := s.elems.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key) {
			return
		}
	}
}

// Raw is Elements under the name the other composite wrappers use.
func (s *SetValue) Raw() []any { return s.Elements() }

// Get returns the raw elements in insertion order. Never fails.
func (s *SetValue) Get() (any, error) { return s.Elements(), nil }

// MustGet is Get without the always-nil error.
func (s *SetValue) MustGet() any { return mustGet(s) }

// Set replaces the whole contents from a slice of elements and notifies once.
// Duplicates collapse; the first occurrence fixes insertion order. Panics on
// element type mismatch.
func (s *SetValue) Set(v any) {
	if err := s.assign(v); err != nil {
		panic(err)
	}
	s.notify()
}

func (s *SetValue) assign(raw any) error {
	elems, ok := asSlice(raw)
	if !ok {
		return fmt.Errorf("%w: cannot use %T as %s", ErrTypeMismatch, raw, s.desc)
	}
	next := orderedmap.New[any, Value]()
	for i, e := range elems {
		elem, err := coerceScalar(s.desc.Args[0].Kind, e)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if _, ok := next.Get(elem); ok {
			continue
		}
		next.Set(elem, s.newElem(elem))
	}
	s.elems = next
	return nil
}

// encode renders the set as a slice sorted by canonical key string, so the
// serialized form is stable regardless of insertion order.
func (s *SetValue) encode() (any, error) {
	type keyed struct {
		key  string
		elem Value
	}
	sorted := make([]keyed, 0, s.elems.Len())
	for pair := s.elems.Oldest(); pair != nil; pair = pair.Next() {
		sorted = append(sorted, keyed{
			key:  canonicalKey(s.desc.Args[0].Kind, pair.Key),
			elem: pair.Value,
		})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })

	out := make([]any, len(sorted))
	for i, k := range sorted {
		enc, err := k.elem.encode()
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func (s *SetValue) decode(tree any) error {
	if tree == nil {
		s.elems = orderedmap.New[any, Value]()
		return nil
	}
	return s.assign(tree)
}

func (s *SetValue) bind(r *Registry, n *Node) {
	s.reg, s.node = r, n
	for pair := s.elems.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.bind(r, n)
	}
}

// newElem builds and binds the wrapper for one already-coerced element.
func (s *SetValue) newElem(elem any) Value {
	child := newValue(s.desc.Args[0])
	s.adopt(child)
	if err := child.assign(elem); err != nil {
		panic(err)
	}
	return child
}

// coerceElem coerces a raw element to the declared element kind, panicking on
// mismatch.
func (s *SetValue) coerceElem(v any) any {
	elem, err := coerceScalar(s.desc.Args[0].Kind, v)
	if err != nil {
		panic(err)
	}
	return elem
}
