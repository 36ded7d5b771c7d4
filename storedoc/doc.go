// Package storedoc persists many registries in one shared JSON document, each
// under its own dot-separated prefix.
//
// Saves are incremental: only nodes mutated since the last completed save are
// rewritten, through sjson path updates, so sibling prefixes in the document
// are never touched. Writes are atomic (temp file plus rename).
package storedoc
