package stowage

import (
	"fmt"

	"github.com/Azhovan/stowage/internal/pathkey"
)

// Store is the persistence collaborator a registry hands its state to. The
// registry calls RequestSave after every logical mutation; the store decides
// the cadence (immediate, debounced, batched) and owns all I/O concerns.
// A store must not mutate node values during a save.
type Store interface {
	RequestSave(r *Registry)
}

// Registry is the owner-level collection of named value nodes for one
// configuration object: the unit of persistence. Create one per owner context
// with NewRegistry, register each declared field once, then attach a Store.
//
// A registry is designed for one mutating owner with occasional concurrent
// reads. It takes no locks; unsynchronized concurrent mutation is a caller
// contract violation.
type Registry struct {
	nodes    []*Node
	store    Store
	subs     []*Subscription
	revision uint64
}

// NewRegistry creates an empty, unattached registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NodeOption configures a node at registration time.
type NodeOption func(*Node)

// WithCodec overrides the node's serializer: Encode and Decode go through c
// instead of the value's own tree encoding.
func WithCodec(c Codec) NodeOption {
	return func(n *Node) {
		n.codec = c
	}
}

// Register appends a node holding v under the given name. The value and all
// its descendants are bound to this registry: from here on, every mutation
// reaches it. Fails with ErrDuplicateName if the name is taken in this
// registry; the same name in another registry is unrelated.
func (r *Registry) Register(name string, v Value, opts ...NodeOption) (*Node, error) {
	if err := pathkey.ValidateName(name); err != nil {
		return nil, fmt.Errorf("stowage: register: %w", err)
	}
	if r.Find(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	n := &Node{name: name, value: v, registry: r}
	for _, opt := range opts {
		opt(n)
	}

	v.bind(r, n)
	r.nodes = append(r.nodes, n)
	return n, nil
}

// MustRegister registers and panics on error. Useful for init-time
// registration blocks where a failure is a programming error.
func (r *Registry) MustRegister(name string, v Value, opts ...NodeOption) *Node {
	n, err := r.Register(name, v, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

// Attach sets the store future save requests go to. Re-attaching is legal and
// redirects future requests; it does not flush anything to the previous store.
func (r *Registry) Attach(st Store) {
	r.store = st
}

// Find returns the node registered under name, or nil. Linear scan: node
// counts are expected in the tens.
func (r *Registry) Find(name string) *Node {
	for _, n := range r.nodes {
		if n.name == name {
			return n
		}
	}
	return nil
}

// FindValue returns the node whose registered value is v (wrapper identity,
// not value equality), or nil.
func (r *Registry) FindValue(v Value) *Node {
	for _, n := range r.nodes {
		if n.value == v {
			return n
		}
	}
	return nil
}

// Nodes returns the registered nodes in registration order.
func (r *Registry) Nodes() []*Node {
	out := make([]*Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// Encode renders every node's current value as a plain marshal-safe tree
// keyed by node name.
func (r *Registry) Encode() (map[string]any, error) {
	out := make(map[string]any, len(r.nodes))
	for _, n := range r.nodes {
		tree, err := n.Encode()
		if err != nil {
			return nil, fmt.Errorf("stowage: encode node %q: %w", n.name, err)
		}
		out[n.name] = tree
	}
	return out, nil
}

// Decode replaces node values from a tree previously produced by Encode.
// Names absent from the tree keep their current values; names in the tree
// with no registered node are ignored. Decoding is silent: it triggers no
// observers and no save requests.
func (r *Registry) Decode(tree map[string]any) error {
	for _, n := range r.nodes {
		sub, ok := tree[n.name]
		if !ok {
			continue
		}
		if err := n.Decode(sub); err != nil {
			return fmt.Errorf("stowage: decode node %q: %w", n.name, err)
		}
	}
	return nil
}

// valueChanged is the mutation sink every bound wrapper reports to. It runs
// synchronously on the mutating caller's goroutine: bump revisions, notify
// observers in subscription order, then request a save from the attached
// store.
func (r *Registry) valueChanged(n *Node) {
	r.revision++
	n.revision = r.revision

	change := Change{Node: n, Revision: r.revision}
	for _, s := range r.subs {
		s.observer(change)
	}

	if r.store != nil {
		r.store.RequestSave(r)
	}
}

// Node is one named (name, value, codec) entry in a registry.
type Node struct {
	name     string
	value    Value
	codec    Codec
	revision uint64
	registry *Registry
}

// Name returns the node's registered name.
func (n *Node) Name() string { return n.name }

// Value returns the node's value wrapper.
func (n *Node) Value() Value { return n.value }

// Codec returns the node's codec override, or nil when the value serializes
// itself.
func (n *Node) Codec() Codec { return n.codec }

// Revision returns the registry revision at the node's last mutation, or 0 if
// it was never mutated.
func (n *Node) Revision() uint64 { return n.revision }

// Encode renders the node's current value as a plain marshal-safe tree,
// through the codec override when one is set.
func (n *Node) Encode() (any, error) {
	if n.codec != nil {
		v, err := n.value.Get()
		if err != nil {
			return nil, err
		}
		return n.codec.Encode(v)
	}
	return n.value.encode()
}

// Decode replaces the node's value from a serialized tree, silently: no
// observers, no save request.
func (n *Node) Decode(tree any) error {
	if n.codec != nil {
		v, err := n.codec.Decode(tree)
		if err != nil {
			return err
		}
		return n.value.assign(v)
	}
	return n.value.decode(tree)
}

// Typed accessors. Each fails with a TypeError (matching ErrTypeMismatch via
// errors.Is) when the node's declared shape does not fit.

// AsBool returns the node's current value as a bool.
func (n *Node) AsBool() (bool, error) {
	if n.value.Descriptor().Kind != KindBool {
		return false, n.typeError("bool")
	}
	v, err := n.value.Get()
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// AsInt returns the node's current value as an int64. It accepts every signed
// integer width.
func (n *Node) AsInt() (int64, error) {
	switch n.value.Descriptor().Kind {
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
	default:
		return 0, n.typeError("int")
	}
	v, err := n.value.Get()
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// AsUint returns the node's current value as a uint64. It accepts every
// unsigned integer width.
func (n *Node) AsUint() (uint64, error) {
	switch n.value.Descriptor().Kind {
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
	default:
		return 0, n.typeError("uint")
	}
	v, err := n.value.Get()
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// AsFloat returns the node's current value as a float64. Integer kinds widen.
func (n *Node) AsFloat() (float64, error) {
	v, err := n.value.Get()
	if err != nil {
		return 0, err
	}
	switch n.value.Descriptor().Kind {
	case KindFloat32, KindFloat64:
		return v.(float64), nil
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return float64(v.(int64)), nil
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return float64(v.(uint64)), nil
	default:
		return 0, n.typeError("float")
	}
}

// AsString returns the node's current value as a string.
func (n *Node) AsString() (string, error) {
	if n.value.Descriptor().Kind != KindString {
		return "", n.typeError("string")
	}
	v, err := n.value.Get()
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (n *Node) typeError(expected string) error {
	return &TypeError{
		Name:     n.name,
		Expected: expected,
		Actual:   n.value.Descriptor().String(),
	}
}
