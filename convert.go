package stowage

import (
	"fmt"
	"math"
	"strconv"
)

// Canonical in-memory representation per scalar kind:
// signed integer kinds hold int64, unsigned kinds hold uint64, float kinds
// hold float64, bool holds bool, string holds string. Width checks happen at
// coercion time, so a stored value always fits its declared kind.

// coerceScalar converts v to the canonical representation of kind k.
// It accepts the value shapes produced by the Go literal types and by the
// yaml.v3 / go-toml/v2 / encoding/json unmarshalers (int, int64, uint64,
// float64, json-style numbers for integral kinds).
func coerceScalar(k Kind, v any) (any, error) {
	switch k {
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}

	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		if i, ok := toInt64(v); ok {
			if err := checkSignedWidth(k, i); err != nil {
				return nil, err
			}
			return i, nil
		}

	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		if u, ok := toUint64(v); ok {
			if err := checkUnsignedWidth(k, u); err != nil {
				return nil, err
			}
			return u, nil
		}

	case KindFloat32, KindFloat64:
		if f, ok := toFloat64(v); ok {
			return f, nil
		}
	}

	return nil, fmt.Errorf("%w: cannot use %T as %s", ErrTypeMismatch, v, k)
}

// toInt64 widens any integer-shaped value to int64. Floats are accepted only
// when integral (JSON decodes all numbers as float64).
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n), true
		}
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case float32:
		if float32(int64(n)) == n {
			return int64(n), true
		}
	case float64:
		if float64(int64(n)) == n {
			return int64(n), true
		}
	}
	return 0, false
}

// toUint64 widens any non-negative integer-shaped value to uint64.
func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case int:
		if n >= 0 {
			return uint64(n), true
		}
	case int8:
		if n >= 0 {
			return uint64(n), true
		}
	case int16:
		if n >= 0 {
			return uint64(n), true
		}
	case int32:
		if n >= 0 {
			return uint64(n), true
		}
	case int64:
		if n >= 0 {
			return uint64(n), true
		}
	case float32:
		if n >= 0 && float32(uint64(n)) == n {
			return uint64(n), true
		}
	case float64:
		if n >= 0 && float64(uint64(n)) == n {
			return uint64(n), true
		}
	}
	return 0, false
}

// toFloat64 widens any numeric value to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func checkSignedWidth(k Kind, i int64) error {
	var min, max int64
	switch k {
	case KindInt8:
		min, max = math.MinInt8, math.MaxInt8
	case KindInt16:
		min, max = math.MinInt16, math.MaxInt16
	case KindInt32:
		min, max = math.MinInt32, math.MaxInt32
	default:
		return nil
	}
	if i < min || i > max {
		return fmt.Errorf("%w: %d overflows %s", ErrTypeMismatch, i, k)
	}
	return nil
}

func checkUnsignedWidth(k Kind, u uint64) error {
	var max uint64
	switch k {
	case KindUint8:
		max = math.MaxUint8
	case KindUint16:
		max = math.MaxUint16
	case KindUint32:
		max = math.MaxUint32
	default:
		return nil
	}
	if u > max {
		return fmt.Errorf("%w: %d overflows %s", ErrTypeMismatch, u, k)
	}
	return nil
}

// canonicalKey renders an already-coerced scalar as the string used for map
// serialization keys and set element ordering. The rendering is injective per
// kind, so distinct values never collide.
func canonicalKey(k Kind, v any) string {
	switch k {
	case KindBool:
		return strconv.FormatBool(v.(bool))
	case KindString:
		return v.(string)
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.(int64), 10)
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return strconv.FormatUint(v.(uint64), 10)
	case KindFloat32, KindFloat64:
		return strconv.FormatFloat(v.(float64), 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseCanonicalKey inverts canonicalKey: it turns a serialized map key back
// into the canonical scalar representation of kind k.
func parseCanonicalKey(k Kind, s string) (any, error) {
	switch k {
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid bool key %q", ErrTypeMismatch, s)
		}
		return b, nil
	case KindString:
		return s, nil
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s key %q", ErrTypeMismatch, k, s)
		}
		return coerceScalar(k, i)
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s key %q", ErrTypeMismatch, k, s)
		}
		return coerceScalar(k, u)
	case KindFloat32, KindFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s key %q", ErrTypeMismatch, k, s)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %s cannot be a key", ErrTypeMismatch, k)
	}
}
