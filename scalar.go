package stowage

// Scalar wraps a single primitive value: numeric, boolean, or text. The value
// is stored in the canonical representation for its kind (int64 for signed
// integers, uint64 for unsigned, float64 for floats).
type Scalar struct {
	binding
	desc Descriptor
	val  any
	set  bool
}

// Descriptor returns the declared shape.
func (s *Scalar) Descriptor() Descriptor { return s.desc }

// Get returns the current value. If none was ever supplied, the kind's zero
// value is materialized on this first access. Never fails for scalar kinds.
func (s *Scalar) Get() (any, error) {
	if !s.set {
		s.val = scalarZero(s.desc.Kind)
		s.set = true
	}
	return s.val, nil
}

// MustGet is Get without the always-nil error.
func (s *Scalar) MustGet() any { return mustGet(s) }

// Set replaces the current value and notifies the owning registry. Panics if
// v cannot be coerced to the declared kind.
func (s *Scalar) Set(v any) {
	if err := s.assign(v); err != nil {
		panic(err)
	}
	s.notify()
}

// Equal reports whether two scalar wrappers hold equal current values of the
// same kind.
func (s *Scalar) Equal(other *Scalar) bool {
	if other == nil || s.desc.Kind != other.desc.Kind {
		return false
	}
	a, _ := s.Get()
	b, _ := other.Get()
	return a == b
}

func (s *Scalar) assign(raw any) error {
	coerced, err := coerceScalar(s.desc.Kind, raw)
	if err != nil {
		return err
	}
	s.val = coerced
	s.set = true
	return nil
}

func (s *Scalar) encode() (any, error) {
	return s.Get()
}

func (s *Scalar) decode(tree any) error {
	return s.assign(tree)
}

func (s *Scalar) bind(r *Registry, n *Node) {
	s.reg, s.node = r, n
}

// ExternalValue wraps a user-defined leaf serialized by a caller-supplied
// codec. With no initial value, the default comes from the codec's
// DefaultProvider implementation; a codec without one yields
// ErrNoDefaultAvailable on first access.
type ExternalValue struct {
	binding
	desc Descriptor
	val  any
	set  bool
}

// Descriptor returns the declared shape.
func (e *ExternalValue) Descriptor() Descriptor { return e.desc }

// Get returns the current value, asking the codec for a default on first
// access if none was supplied.
func (e *ExternalValue) Get() (any, error) {
	if !e.set {
		dp, ok := e.desc.Codec.(DefaultProvider)
		if !ok {
			return nil, errNoDefault(e.desc)
		}
		e.val = dp.DefaultValue()
		e.set = true
	}
	return e.val, nil
}

// MustGet is Get panicking on ErrNoDefaultAvailable.
func (e *ExternalValue) MustGet() any { return mustGet(e) }

// Set replaces the current value and notifies the owning registry. The value
// is stored as-is; the codec sees it only at serialization time.
func (e *ExternalValue) Set(v any) {
	e.val = v
	e.set = true
	e.notify()
}

func (e *ExternalValue) assign(raw any) error {
	e.val = raw
	e.set = true
	return nil
}

func (e *ExternalValue) encode() (any, error) {
	v, err := e.Get()
	if err != nil {
		return nil, err
	}
	return e.desc.Codec.Encode(v)
}

func (e *ExternalValue) decode(tree any) error {
	v, err := e.desc.Codec.Decode(tree)
	if err != nil {
		return err
	}
	e.val = v
	e.set = true
	return nil
}

func (e *ExternalValue) bind(r *Registry, n *Node) {
	e.reg, e.node = r, n
}
