package stowage

import (
	"fmt"
)

// scalarKinds maps descriptor syntax names to scalar kinds.
var scalarKinds = map[string]Kind{
	"bool":    KindBool,
	"int":     KindInt,
	"int8":    KindInt8,
	"int16":   KindInt16,
	"int32":   KindInt32,
	"int64":   KindInt64,
	"uint":    KindUint,
	"uint8":   KindUint8,
	"uint16":  KindUint16,
	"uint32":  KindUint32,
	"uint64":  KindUint64,
	"float32": KindFloat32,
	"float64": KindFloat64,
	"string":  KindString,
}

// ParseDescriptor parses the compact descriptor syntax produced by
// Descriptor.String, e.g. "map[string]list[int]" or "pair[int,string]".
// External descriptors cannot be parsed: the codec they name is a runtime
// object with no textual representation.
func ParseDescriptor(s string) (Descriptor, error) {
	p := &descParser{input: s}
	d, err := p.parse()
	if err != nil {
		return Descriptor{}, err
	}
	if p.pos != len(p.input) {
		return Descriptor{}, fmt.Errorf("parse descriptor %q: trailing input at offset %d", s, p.pos)
	}
	return d, nil
}

// descParser is a single-pass recursive descent parser over the descriptor syntax.
type descParser struct {
	input string
	pos   int
}

func (p *descParser) parse() (Descriptor, error) {
	name := p.readName()
	if name == "" {
		return Descriptor{}, fmt.Errorf("parse descriptor %q: expected type name at offset %d", p.input, p.pos)
	}

	if kind, ok := scalarKinds[name]; ok {
		return Descriptor{Kind: kind}, nil
	}

	switch name {
	case "list", "set":
		elem, err := p.bracketed(1)
		if err != nil {
			return Descriptor{}, err
		}
		if name == "list" {
			return ListOf(elem[0]), nil
		}
		return SetOf(elem[0]), nil

	case "map":
		key, err := p.bracketed(1)
		if err != nil {
			return Descriptor{}, err
		}
		// The value descriptor follows the closing bracket, Go-style.
		value, err := p.parse()
		if err != nil {
			return Descriptor{}, err
		}
		return MapOf(key[0], value), nil

	case "pair":
		args, err := p.bracketed(2)
		if err != nil {
			return Descriptor{}, err
		}
		return PairOf(args[0], args[1]), nil

	case "triple":
		args, err := p.bracketed(3)
		if err != nil {
			return Descriptor{}, err
		}
		return TripleOf(args[0], args[1], args[2]), nil

	case "external":
		return Descriptor{}, fmt.Errorf("parse descriptor %q: external shapes carry a runtime codec and cannot be parsed", p.input)

	default:
		return Descriptor{}, fmt.Errorf("parse descriptor %q: unknown type name %q", p.input, name)
	}
}

// bracketed consumes "[" followed by exactly n comma-separated descriptors and "]".
func (p *descParser) bracketed(n int) ([]Descriptor, error) {
	if !p.consume('[') {
		return nil, fmt.Errorf("parse descriptor %q: expected '[' at offset %d", p.input, p.pos)
	}

	args := make([]Descriptor, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && !p.consume(',') {
			return nil, fmt.Errorf("parse descriptor %q: expected ',' at offset %d", p.input, p.pos)
		}
		arg, err := p.parse()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	if !p.consume(']') {
		return nil, fmt.Errorf("parse descriptor %q: expected ']' at offset %d", p.input, p.pos)
	}
	return args, nil
}

// readName consumes a run of lowercase letters and digits.
func (p *descParser) readName() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *descParser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// MustParseDescriptor parses s and panics on error. Useful for declaring
// descriptors in package-level variable blocks.
func MustParseDescriptor(s string) Descriptor {
	d, err := ParseDescriptor(s)
	if err != nil {
		panic(err)
	}
	return d
}
