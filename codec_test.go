package stowage

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// endpoint is a user type serialized through a codec.
type endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// rawCodec implements Codec but not DefaultProvider, so values built on it
// have no default.
type rawCodec struct{}

func (rawCodec) Name() string                 { return "raw" }
func (rawCodec) Encode(v any) (any, error)    { return v, nil }
func (rawCodec) Decode(tree any) (any, error) { return tree, nil }

// singletonCodec supplies a shared default instance through DefaultProvider.
type singletonCodec struct {
	rawCodec
	instance any
}

func (c singletonCodec) DefaultValue() any { return c.instance }

func TestCodecFor_RoundTrip(t *testing.T) {
	codec := CodecFor[endpoint]("endpoint")

	tree, err := codec.Encode(endpoint{Host: "localhost", Port: 8080})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	assertTreeEqual(t, tree, map[string]any{"host": "localhost", "port": float64(8080)})

	back, err := codec.Decode(tree)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(back, endpoint{Host: "localhost", Port: 8080}) {
		t.Errorf("Decode returned %+v", back)
	}
}

func TestCodecFor_EncodeRejectsWrongType(t *testing.T) {
	codec := CodecFor[endpoint]("endpoint")
	if _, err := codec.Encode("not an endpoint"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Encode error = %v, want ErrTypeMismatch", err)
	}
}

func TestExternalValue_ZeroValueDefault(t *testing.T) {
	// CodecFor implements DefaultProvider with a zero T: the zero-argument
	// construction arm of the default policy.
	v := MustValue(External(CodecFor[endpoint]("endpoint")))
	got, err := v.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(got, endpoint{}) {
		t.Errorf("default = %+v, want zero endpoint", got)
	}
}

func TestExternalValue_SingletonDefault(t *testing.T) {
	shared := endpoint{Host: "fallback", Port: 1}
	v := MustValue(External(singletonCodec{instance: shared}))
	if got := v.MustGet(); !reflect.DeepEqual(got, shared) {
		t.Errorf("default = %+v, want the shared instance", got)
	}
}

func TestExternalValue_NoDefaultAvailable(t *testing.T) {
	// Construction succeeds: the default policy runs lazily, at first access.
	v, err := NewValue(External(rawCodec{}))
	if err != nil {
		t.Fatalf("NewValue failed: %v", err)
	}

	if _, err := v.Get(); !errors.Is(err, ErrNoDefaultAvailable) {
		t.Errorf("Get error = %v, want ErrNoDefaultAvailable", err)
	}

	// An explicitly supplied value sidesteps the policy entirely.
	v.Set(map[string]any{"ok": true})
	if _, err := v.Get(); err != nil {
		t.Errorf("Get after Set failed: %v", err)
	}
}

func TestExternalValue_MustGetPanicsWithoutDefault(t *testing.T) {
	v := MustValue(External(rawCodec{}))
	defer func() {
		if recover() == nil {
			t.Error("MustGet did not panic without a default")
		}
	}()
	v.MustGet()
}

func TestExternalValue_RegistryIntegration(t *testing.T) {
	r, st := newTrackedRegistry()
	n := r.MustRegister("endpoint", MustValue(External(CodecFor[endpoint]("endpoint"))))

	n.Value().Set(endpoint{Host: "a", Port: 1})
	if st.requests != 1 {
		t.Errorf("requests = %d, want 1", st.requests)
	}

	tree, err := n.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	assertTreeEqual(t, tree, map[string]any{"host": "a", "port": float64(1)})

	if err := n.Decode(map[string]any{"host": "b", "port": 2}); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := n.Value().MustGet(); !reflect.DeepEqual(got, endpoint{Host: "b", Port: 2}) {
		t.Errorf("after Decode: %+v", got)
	}
	if st.requests != 1 {
		t.Errorf("Decode triggered a save request")
	}
}

func TestNodeCodecOverride(t *testing.T) {
	// WithCodec replaces the node's serializer: the wire form goes through
	// the codec even though the value is an ordinary scalar.
	r := NewRegistry()
	n := r.MustRegister("level", MustValueWith(String(), "debug"), WithCodec(upperCodec{}))

	tree, err := n.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if tree != "DEBUG" {
		t.Errorf("Encode() = %v, want DEBUG", tree)
	}

	if err := n.Decode("WARN"); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got, _ := n.AsString(); got != "warn" {
		t.Errorf("AsString() = %q, want %q", got, "warn")
	}
}

// upperCodec uppercases on encode and lowercases on decode.
type upperCodec struct{}

func (upperCodec) Name() string { return "upper" }

func (upperCodec) Encode(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: upper codec needs a string, have %T", ErrTypeMismatch, v)
	}
	return strings.ToUpper(s), nil
}

func (upperCodec) Decode(tree any) (any, error) {
	s, ok := tree.(string)
	if !ok {
		return nil, fmt.Errorf("%w: upper codec needs a string, have %T", ErrTypeMismatch, tree)
	}
	return strings.ToLower(s), nil
}
