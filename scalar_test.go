package stowage

import (
	"errors"
	"testing"
)

func TestScalar_SetGet(t *testing.T) {
	tests := []struct {
		name     string
		desc     Descriptor
		input    any
		expected any
	}{
		{name: "bool", desc: Bool(), input: true, expected: true},
		{name: "string", desc: String(), input: "hello", expected: "hello"},
		{name: "int", desc: Int(), input: 42, expected: int64(42)},
		{name: "int8", desc: Int8(), input: int8(-5), expected: int64(-5)},
		{name: "int16", desc: Int16(), input: 1000, expected: int64(1000)},
		{name: "int32", desc: Int32(), input: -70000, expected: int64(-70000)},
		{name: "int64", desc: Int64(), input: int64(1 << 40), expected: int64(1 << 40)},
		{name: "uint", desc: Uint(), input: uint(7), expected: uint64(7)},
		{name: "uint8", desc: Uint8(), input: 255, expected: uint64(255)},
		{name: "uint16", desc: Uint16(), input: 65535, expected: uint64(65535)},
		{name: "uint32", desc: Uint32(), input: uint32(1 << 31), expected: uint64(1 << 31)},
		{name: "uint64", desc: Uint64(), input: uint64(1 << 63), expected: uint64(1 << 63)},
		{name: "float32", desc: Float32(), input: float32(1.5), expected: 1.5},
		{name: "float64", desc: Float64(), input: 3.25, expected: 3.25},
		{name: "float64 from int", desc: Float64(), input: 2, expected: 2.0},
		{name: "int from json float", desc: Int(), input: float64(9), expected: int64(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MustValue(tt.desc)
			v.Set(tt.input)
			got, err := v.Get()
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Get() = %v (%T), want %v (%T)", got, got, tt.expected, tt.expected)
			}
		})
	}
}

func TestScalar_LazyDefaults(t *testing.T) {
	tests := []struct {
		name     string
		desc     Descriptor
		expected any
	}{
		{name: "bool", desc: Bool(), expected: false},
		{name: "string", desc: String(), expected: ""},
		{name: "int16", desc: Int16(), expected: int64(0)},
		{name: "uint32", desc: Uint32(), expected: uint64(0)},
		{name: "float64", desc: Float64(), expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MustValue(tt.desc)
			got, err := v.Get()
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("default = %v (%T), want %v (%T)", got, got, tt.expected, tt.expected)
			}
		})
	}
}

func TestScalar_SetPanicsOnTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		desc  Descriptor
		input any
	}{
		{name: "string into int", desc: Int(), input: "nope"},
		{name: "int into bool", desc: Bool(), input: 1},
		{name: "negative into uint", desc: Uint(), input: -1},
		{name: "fractional into int", desc: Int(), input: 1.5},
		{name: "overflow int8", desc: Int8(), input: 200},
		{name: "overflow uint16", desc: Uint16(), input: 1 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MustValue(tt.desc)
			defer func() {
				if recover() == nil {
					t.Errorf("Set(%v) did not panic", tt.input)
				}
			}()
			v.Set(tt.input)
		})
	}
}

func TestScalar_Equal(t *testing.T) {
	a := MustValue(Int()).(*Scalar)
	b := MustValue(Int()).(*Scalar)
	a.Set(3)
	b.Set(3)
	if !a.Equal(b) {
		t.Error("scalars with equal values compare unequal")
	}

	b.Set(4)
	if a.Equal(b) {
		t.Error("scalars with different values compare equal")
	}

	c := MustValue(Int64()).(*Scalar)
	c.Set(3)
	if a.Equal(c) {
		t.Error("scalars of different kinds compare equal")
	}
	if a.Equal(nil) {
		t.Error("scalar compares equal to nil")
	}
}

func TestScalar_InitialValue(t *testing.T) {
	v, err := NewValueWith(Int(), 7)
	if err != nil {
		t.Fatalf("NewValueWith failed: %v", err)
	}
	if got := v.MustGet(); got != int64(7) {
		t.Errorf("MustGet() = %v, want 7", got)
	}

	// An initial value that does not fit the shape is an error, not a panic.
	if _, err := NewValueWith(Int(), "seven"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("NewValueWith error = %v, want ErrTypeMismatch", err)
	}
}
