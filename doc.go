// Package stowage provides typed, mutation-tracked configuration values with pluggable persistence.
//
// Quick Start:
//
//	reg := stowage.NewRegistry()
//
//	retries := reg.MustRegister("retries", stowage.MustValue(stowage.Int()))
//	tags := reg.MustRegister("tags", stowage.MustValue(stowage.ListOf(stowage.String())))
//
//	store := storefile.New("settings.yaml", storefile.Options{})
//	store.Load(context.Background(), reg)
//	reg.Attach(store)
//
//	retries.Value().Set(5)                      // persisted automatically
//	tags.Value().(*stowage.ListValue).Append("a")
//
// Shapes are declared with descriptor constructors (Bool, Int, String, ListOf,
// MapOf, SetOf, PairOf, External, ...) and compose recursively: a value of
// shape map[string]list[int] is a live mapping whose elements are live lists
// whose elements are live integers. Any in-place mutation at any depth reaches
// the registry and triggers a save request.
//
// See example_test.go and README.md for detailed usage.
package stowage
