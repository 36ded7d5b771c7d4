package stowage

import (
	"fmt"
	"testing"
)

// benchRegistry builds a registry with the given number of map nodes, each
// holding entries mapping strings to small integer lists.
func benchRegistry(nodes, entries int) *Registry {
	r := NewRegistry()
	for i := 0; i < nodes; i++ {
		n := r.MustRegister(fmt.Sprintf("node%d", i), MustValue(MapOf(String(), ListOf(Int()))))
		m := n.Value().(*MapValue)
		for j := 0; j < entries; j++ {
			m.Put(fmt.Sprintf("key%d", j), []int{j, j + 1, j + 2})
		}
	}
	return r
}

func BenchmarkRegistryEncode(b *testing.B) {
	sizes := []struct {
		name    string
		nodes   int
		entries int
	}{
		{name: "small", nodes: 5, entries: 4},
		{name: "medium", nodes: 20, entries: 25},
		{name: "large", nodes: 50, entries: 100},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			r := benchRegistry(size.nodes, size.entries)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := r.Encode(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkMapPut(b *testing.B) {
	r := NewRegistry()
	n := r.MustRegister("m", MustValue(MapOf(String(), Int())))
	m := n.Value().(*MapValue)

	keys := make([]string, 64)
	for i := range keys {
		keys[i] = fmt.Sprintf("key%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Put(keys[i%len(keys)], i)
	}
}
