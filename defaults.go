package stowage

import (
	"fmt"
)

// Default-instance policy. A wrapper built without an initial value stays
// empty until the value is first needed (Get, encode, or a mutation); only
// then is the default materialized. The policy, checked in order:
//
//   - numeric kinds:      zero of the declared width
//   - bool:               false
//   - string:             ""
//   - pair/triple:        the component defaults
//   - list/map/set:       the empty container
//   - external:           the codec's DefaultValue, if it implements
//     DefaultProvider; otherwise ErrNoDefaultAvailable
//
// Laziness matters: a caller who always supplies values explicitly never pays
// for (or fails on) default construction.

// scalarZero returns the zero value of a scalar kind in its canonical
// representation.
func scalarZero(k Kind) any {
	switch k {
	case KindBool:
		return false
	case KindString:
		return ""
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return int64(0)
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return uint64(0)
	case KindFloat32, KindFloat64:
		return float64(0)
	default:
		panic(fmt.Sprintf("stowage: %s has no scalar zero", k))
	}
}

func errNoDefault(d Descriptor) error {
	return fmt.Errorf("%w: %s supplies no default and its codec implements no DefaultValue", ErrNoDefaultAvailable, d)
}
