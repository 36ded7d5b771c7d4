package stowage

import (
	"encoding/json"
	"fmt"
)

// Codec serializes a user-defined leaf value to and from a plain tree: a
// structure of maps, slices, and scalars that any marshaler (JSON, YAML, TOML)
// can encode directly. Codecs are supplied per user type when declaring an
// External descriptor.
type Codec interface {
	// Name identifies the codec; External descriptors compare equal by it.
	Name() string

	// Encode converts a live value into a plain tree.
	Encode(v any) (any, error)

	// Decode converts a plain tree back into a live value.
	Decode(tree any) (any, error)
}

// DefaultProvider is implemented by codecs that can produce a default instance
// for their type. Without it, an External value with no supplied initial value
// fails with ErrNoDefaultAvailable on first access.
type DefaultProvider interface {
	DefaultValue() any
}

// CodecFor adapts any JSON-marshalable struct type into a Codec. Encode
// round-trips through encoding/json to produce a plain tree; Decode does the
// reverse. The returned codec also implements DefaultProvider, yielding a zero
// T, so External values built with it always have a default.
func CodecFor[T any](name string) Codec {
	return jsonCodec[T]{name: name}
}

// jsonCodec is the CodecFor implementation.
type jsonCodec[T any] struct {
	name string
}

func (c jsonCodec[T]) Name() string { return c.name }

func (c jsonCodec[T]) Encode(v any) (any, error) {
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("%w: codec %q cannot encode %T", ErrTypeMismatch, c.name, v)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("codec %q: encode: %w", c.name, err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("codec %q: encode: %w", c.name, err)
	}
	return tree, nil
}

func (c jsonCodec[T]) Decode(tree any) (any, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("codec %q: decode: %w", c.name, err)
	}
	var t T
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("codec %q: decode: %w", c.name, err)
	}
	return t, nil
}

// DefaultValue returns a zero T.
func (c jsonCodec[T]) DefaultValue() any {
	var t T
	return t
}
