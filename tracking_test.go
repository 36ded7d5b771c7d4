package stowage

import (
	"testing"
)

func TestRegistry_RevisionAdvancesPerMutation(t *testing.T) {
	r := NewRegistry()
	a := r.MustRegister("a", MustValue(Int()))
	b := r.MustRegister("b", MustValue(ListOf(Int())))

	if r.Revision() != 0 {
		t.Fatalf("fresh registry revision = %d, want 0", r.Revision())
	}

	a.Value().Set(1)
	b.Value().(*ListValue).Append(1, 2) // bulk: one revision
	a.Value().Set(2)

	if r.Revision() != 3 {
		t.Errorf("registry revision = %d, want 3", r.Revision())
	}
	if a.Revision() != 3 {
		t.Errorf("node a revision = %d, want 3", a.Revision())
	}
	if b.Revision() != 2 {
		t.Errorf("node b revision = %d, want 2", b.Revision())
	}
}

func TestRegistry_NestedMutationBumpsOwningNodeOnce(t *testing.T) {
	r := NewRegistry()
	n := r.MustRegister("m", MustValue(MapOf(String(), ListOf(Int()))))

	m := n.Value().(*MapValue)
	m.Put("k", []int{1})
	before := n.Revision()

	m.ValueAt("k").(*ListValue).Append(2)
	if n.Revision() != before+1 {
		t.Errorf("node revision advanced by %d, want 1", n.Revision()-before)
	}
}

func TestRegistry_DirtySince(t *testing.T) {
	r := NewRegistry()
	a := r.MustRegister("a", MustValue(Int()))
	b := r.MustRegister("b", MustValue(Int()))
	c := r.MustRegister("c", MustValue(Int()))

	a.Value().Set(1)
	b.Value().Set(2)
	mark := r.Revision()
	c.Value().Set(3)
	a.Value().Set(4)

	dirty := r.DirtySince(mark)
	if len(dirty) != 2 {
		t.Fatalf("DirtySince returned %d nodes, want 2", len(dirty))
	}
	// Registration order, not mutation order.
	if dirty[0] != a || dirty[1] != c {
		t.Errorf("DirtySince = [%s %s], want [a c]", dirty[0].Name(), dirty[1].Name())
	}

	if got := r.DirtySince(r.Revision()); len(got) != 0 {
		t.Errorf("DirtySince(current) returned %d nodes, want 0", len(got))
	}
	if got := r.DirtySince(0); len(got) != 3 {
		t.Errorf("DirtySince(0) returned %d nodes, want 3", len(got))
	}
}

func TestRegistry_DecodeDoesNotAdvanceRevision(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("a", MustValue(Int()))

	if err := r.Decode(map[string]any{"a": 5}); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if r.Revision() != 0 {
		t.Errorf("revision after Decode = %d, want 0", r.Revision())
	}
}
