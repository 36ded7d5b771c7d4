package stowage

import (
	"fmt"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// mapEntry pairs the key and value wrappers for one mapping entry.
type mapEntry struct {
	key Value
	val Value
}

// MapValue wraps a mapping from a scalar key type to an arbitrary value type.
// Entries are keyed by the coerced raw key value and iterate in insertion
// order. Each entry owns a key wrapper and a value wrapper built by the same
// dispatch that built the map itself, so nested shapes stay live at any depth.
// Every exported mutation counts as one logical change and notifies exactly
// once; membership no-ops (deleting an absent key, clearing an empty map) do
// not notify.
type MapValue struct {
	binding
	desc    Descriptor
	entries *orderedmap.OrderedMap[any, *mapEntry]
}

func newMapValue(d Descriptor) *MapValue {
	return &MapValue{
		desc:    d,
		entries: orderedmap.New[any, *mapEntry](),
	}
}

// Descriptor returns the declared shape.
func (m *MapValue) Descriptor() Descriptor { return m.desc }

// Len returns the number of entries.
func (m *MapValue) Len() int { return m.entries.Len() }

// Has reports whether key k is present. Panics if k cannot be coerced to the
// declared key kind.
func (m *MapValue) Has(k any) bool {
	_, ok := m.entries.Get(m.coerceKey(k))
	return ok
}

// Lookup returns the raw value stored under k and whether it is present.
func (m *MapValue) Lookup(k any) (any, bool) {
	entry, ok := m.entries.Get(m.coerceKey(k))
	if !ok {
		return nil, false
	}
	v, err := entry.val.Get()
	if err != nil {
		return nil, false
	}
	return v, true
}

// ValueAt returns the child value wrapper stored under k, or nil if absent.
// Mutating through it notifies the registry with the registered top-level
// value as the subject.
func (m *MapValue) ValueAt(k any) Value {
	entry, ok := m.entries.Get(m.coerceKey(k))
	if !ok {
		return nil
	}
	return entry.val
}

// Put stores v under k, replacing any existing value, and notifies once.
// Panics if k or v cannot be coerced to the declared shapes.
func (m *MapValue) Put(k, v any) {
	key := m.coerceKey(k)
	if entry, ok := m.entries.Get(key); ok {
		if err := entry.val.assign(v); err != nil {
			panic(err)
		}
		m.notify()
		return
	}

	keyWrapper := newValue(m.desc.Args[0])
	m.adopt(keyWrapper)
	if err := keyWrapper.assign(key); err != nil {
		panic(err)
	}

	valWrapper := newValue(m.desc.Args[1])
	m.adopt(valWrapper)
	if err := valWrapper.assign(v); err != nil {
		panic(err)
	}

	m.entries.Set(key, &mapEntry{key: keyWrapper, val: valWrapper})
	m.notify()
}

// Delete removes the entry under k, reporting whether it was present.
// Deleting an absent key does not notify.
func (m *MapValue) Delete(k any) bool {
	_, present := m.entries.Delete(m.coerceKey(k))
	if present {
		m.notify()
	}
	return present
}

// Clear removes all entries with a single notification. Clearing an empty map
// is a no-op and does not notify.
func (m *MapValue) Clear() {
	if m.entries.Len() == 0 {
		return
	}
	m.entries = orderedmap.New[any, *mapEntry]()
	m.notify()
}

// Keys returns the raw keys in insertion order.
func (m *MapValue) Keys() []any {
	out := make([]any, 0, m.entries.Len())
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Range calls fn for each entry in insertion order with the raw key and
// value, stopping early if fn returns false.
func (m *MapValue) Range(fn func(k, v any) bool) {
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		v, err := pair.Value.val.Get()
		if err != nil {
			return
		}
		if !fn(pair.Key, v) {
			return
		}
	}
}

// Raw returns the current contents as a plain map of raw keys to raw values.
func (m *MapValue) Raw() map[any]any {
	out := make(map[any]any, m.entries.Len())
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		v, _ := pair.Value.val.Get()
		out[pair.Key] = v
	}
	return out
}

// Get returns the current contents as a map of raw keys to raw values.
func (m *MapValue) Get() (any, error) {
	out := make(map[any]any, m.entries.Len())
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		v, err := pair.Value.val.Get()
		if err != nil {
			return nil, err
		}
		out[pair.Key] = v
	}
	return out, nil
}

// MustGet is Get panicking on error.
func (m *MapValue) MustGet() any { return mustGet(m) }

// Set replaces the whole contents from any Go map and notifies once. Panics
// on key or value type mismatch.
func (m *MapValue) Set(v any) {
	if err := m.assign(v); err != nil {
		panic(err)
	}
	m.notify()
}

func (m *MapValue) assign(raw any) error {
	rv := reflect.ValueOf(raw)
	if raw == nil || rv.Kind() != reflect.Map {
		return fmt.Errorf("%w: cannot use %T as %s", ErrTypeMismatch, raw, m.desc)
	}

	next := orderedmap.New[any, *mapEntry]()
	iter := rv.MapRange()
	for iter.Next() {
		key, err := coerceScalar(m.desc.Args[0].Kind, iter.Key().Interface())
		if err != nil {
			return fmt.Errorf("map key: %w", err)
		}

		keyWrapper := newValue(m.desc.Args[0])
		m.adopt(keyWrapper)
		if err := keyWrapper.assign(key); err != nil {
			return err
		}

		valWrapper := newValue(m.desc.Args[1])
		m.adopt(valWrapper)
		if err := valWrapper.assign(iter.Value().Interface()); err != nil {
			return fmt.Errorf("map value for key %v: %w", key, err)
		}

		next.Set(key, &mapEntry{key: keyWrapper, val: valWrapper})
	}
	m.entries = next
	return nil
}

// encode renders the map as map[string]any with canonical key strings, safe
// for every supported marshaler. Marshalers sort map keys, so the byte output
// is stable regardless of insertion order.
func (m *MapValue) encode() (any, error) {
	out := make(map[string]any, m.entries.Len())
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		enc, err := pair.Value.val.encode()
		if err != nil {
			return nil, err
		}
		out[canonicalKey(m.desc.Args[0].Kind, pair.Key)] = enc
	}
	return out, nil
}

// decode replaces the contents from a serialized tree. String keys are parsed
// back through the canonical key syntax; non-string keys (as yaml.v3 produces
// for numeric keys) are coerced directly.
func (m *MapValue) decode(tree any) error {
	if tree == nil {
		m.entries = orderedmap.New[any, *mapEntry]()
		return nil
	}
	rv := reflect.ValueOf(tree)
	if rv.Kind() != reflect.Map {
		return fmt.Errorf("%w: cannot decode %T as %s", ErrTypeMismatch, tree, m.desc)
	}

	next := orderedmap.New[any, *mapEntry]()
	iter := rv.MapRange()
	for iter.Next() {
		var key any
		var err error
		rawKey := iter.Key().Interface()
		if s, ok := rawKey.(string); ok && m.desc.Args[0].Kind != KindString {
			key, err = parseCanonicalKey(m.desc.Args[0].Kind, s)
		} else {
			key, err = coerceScalar(m.desc.Args[0].Kind, rawKey)
		}
		if err != nil {
			return fmt.Errorf("map key: %w", err)
		}

		keyWrapper := newValue(m.desc.Args[0])
		m.adopt(keyWrapper)
		if err := keyWrapper.assign(key); err != nil {
			return err
		}

		valWrapper := newValue(m.desc.Args[1])
		m.adopt(valWrapper)
		if err := valWrapper.decode(iter.Value().Interface()); err != nil {
			return fmt.Errorf("map value for key %v: %w", key, err)
		}

		next.Set(key, &mapEntry{key: keyWrapper, val: valWrapper})
	}
	m.entries = next
	return nil
}

func (m *MapValue) bind(r *Registry, n *Node) {
	m.reg, m.node = r, n
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.key.bind(r, n)
		pair.Value.val.bind(r, n)
	}
}

// coerceKey coerces a raw key to the declared key kind, panicking on
// mismatch: exported map operations treat bad keys as contract violations.
func (m *MapValue) coerceKey(k any) any {
	key, err := coerceScalar(m.desc.Args[0].Kind, k)
	if err != nil {
		panic(err)
	}
	return key
}
