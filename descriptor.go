package stowage

import (
	"strings"
)

// Kind identifies the structural shape of a declared value.
type Kind uint8

const (
	// KindInvalid is the zero Kind; no wrapper exists for it.
	KindInvalid Kind = iota

	// Scalar kinds.
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString

	// Built-in tuple shapes.
	KindPair
	KindTriple

	// Container kinds.
	KindList
	KindMap
	KindSet

	// KindExternal marks a leaf handled by a caller-supplied Codec.
	KindExternal
)

// String returns the kind name as used in the compact descriptor syntax.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint:
		return "uint"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindPair:
		return "pair"
	case KindTriple:
		return "triple"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindExternal:
		return "external"
	default:
		return "invalid"
	}
}

// IsScalar reports whether the kind is a primitive leaf (numeric, boolean, or text).
func (k Kind) IsScalar() bool {
	return k >= KindBool && k <= KindString
}

// Descriptor is the structural description of a declared value: a kind plus,
// for containers and tuples, the ordered type arguments. Descriptors are plain
// immutable values; build them with the constructor functions (Bool, ListOf,
// MapOf, ...) rather than by hand.
type Descriptor struct {
	// Kind is the structural kind.
	Kind Kind

	// Args holds the nested type arguments, in declaration order:
	// key then value for maps, the single element type for lists and sets,
	// the components for pairs and triples. Empty for scalars.
	Args []Descriptor

	// Codec is the caller-supplied codec for KindExternal descriptors.
	// Nil for every other kind.
	Codec Codec
}

// Scalar descriptor constructors.

// Bool returns the descriptor for a boolean value.
func Bool() Descriptor { return Descriptor{Kind: KindBool} }

// Int returns the descriptor for a platform-width signed integer.
func Int() Descriptor { return Descriptor{Kind: KindInt} }

// Int8 returns the descriptor for an 8-bit signed integer.
func Int8() Descriptor { return Descriptor{Kind: KindInt8} }

// Int16 returns the descriptor for a 16-bit signed integer.
func Int16() Descriptor { return Descriptor{Kind: KindInt16} }

// Int32 returns the descriptor for a 32-bit signed integer.
func Int32() Descriptor { return Descriptor{Kind: KindInt32} }

// Int64 returns the descriptor for a 64-bit signed integer.
func Int64() Descriptor { return Descriptor{Kind: KindInt64} }

// Uint returns the descriptor for a platform-width unsigned integer.
func Uint() Descriptor { return Descriptor{Kind: KindUint} }

// Uint8 returns the descriptor for an 8-bit unsigned integer.
func Uint8() Descriptor { return Descriptor{Kind: KindUint8} }

// Uint16 returns the descriptor for a 16-bit unsigned integer.
func Uint16() Descriptor { return Descriptor{Kind: KindUint16} }

// Uint32 returns the descriptor for a 32-bit unsigned integer.
func Uint32() Descriptor { return Descriptor{Kind: KindUint32} }

// Uint64 returns the descriptor for a 64-bit unsigned integer.
func Uint64() Descriptor { return Descriptor{Kind: KindUint64} }

// Float32 returns the descriptor for a 32-bit float.
func Float32() Descriptor { return Descriptor{Kind: KindFloat32} }

// Float64 returns the descriptor for a 64-bit float.
func Float64() Descriptor { return Descriptor{Kind: KindFloat64} }

// String returns the descriptor for a text value.
func String() Descriptor { return Descriptor{Kind: KindString} }

// Composite descriptor constructors.

// PairOf returns the descriptor for a two-component tuple.
func PairOf(first, second Descriptor) Descriptor {
	return Descriptor{Kind: KindPair, Args: []Descriptor{first, second}}
}

// TripleOf returns the descriptor for a three-component tuple.
func TripleOf(first, second, third Descriptor) Descriptor {
	return Descriptor{Kind: KindTriple, Args: []Descriptor{first, second, third}}
}

// ListOf returns the descriptor for an ordered sequence of elem.
func ListOf(elem Descriptor) Descriptor {
	return Descriptor{Kind: KindList, Args: []Descriptor{elem}}
}

// MapOf returns the descriptor for a mapping from key to value.
// Keys must be scalar kinds; dispatch rejects anything else.
func MapOf(key, value Descriptor) Descriptor {
	return Descriptor{Kind: KindMap, Args: []Descriptor{key, value}}
}

// SetOf returns the descriptor for an unordered collection of distinct elements.
// Elements must be scalar kinds; dispatch rejects anything else.
func SetOf(elem Descriptor) Descriptor {
	return Descriptor{Kind: KindSet, Args: []Descriptor{elem}}
}

// External returns the descriptor for a leaf value serialized by the given codec.
func External(codec Codec) Descriptor {
	return Descriptor{Kind: KindExternal, Codec: codec}
}

// String renders the descriptor in the compact syntax accepted by
// ParseDescriptor, e.g. "map[string]list[int]".
func (d Descriptor) String() string {
	var b strings.Builder
	d.writeTo(&b)
	return b.String()
}

func (d Descriptor) writeTo(b *strings.Builder) {
	switch d.Kind {
	case KindList, KindSet:
		b.WriteString(d.Kind.String())
		b.WriteByte('[')
		if len(d.Args) > 0 {
			d.Args[0].writeTo(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteString("map[")
		if len(d.Args) > 0 {
			d.Args[0].writeTo(b)
		}
		b.WriteByte(']')
		if len(d.Args) > 1 {
			d.Args[1].writeTo(b)
		}
	case KindPair, KindTriple:
		b.WriteString(d.Kind.String())
		b.WriteByte('[')
		for i, arg := range d.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			arg.writeTo(b)
		}
		b.WriteByte(']')
	case KindExternal:
		b.WriteString("external[")
		if d.Codec != nil {
			b.WriteString(d.Codec.Name())
		}
		b.WriteByte(']')
	default:
		b.WriteString(d.Kind.String())
	}
}

// Equal reports whether two descriptors describe the same shape. External
// descriptors compare by codec name.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.Kind != other.Kind || len(d.Args) != len(other.Args) {
		return false
	}
	if d.Kind == KindExternal {
		if (d.Codec == nil) != (other.Codec == nil) {
			return false
		}
		if d.Codec != nil && d.Codec.Name() != other.Codec.Name() {
			return false
		}
	}
	for i := range d.Args {
		if !d.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}
