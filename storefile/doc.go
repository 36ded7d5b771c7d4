// Package storefile persists one registry per file in YAML, JSON, or TOML.
//
// Save requests are debounced: rapid mutation bursts coalesce into a single
// write. Writes are atomic (temp file plus rename), and a missing file on
// load is not an error.
package storefile
