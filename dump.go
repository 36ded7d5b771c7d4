package stowage

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpEffective.
type dumpConfig struct {
	withDescriptors bool   // Include each node's declared shape
	asJSON          bool   // Output as JSON instead of text format
	indent          string // Indentation for JSON output (default: "  ")
}

// WithDescriptors includes each node's declared shape in the output.
func WithDescriptors() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withDescriptors = true
	}
}

// AsJSON outputs the registry as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  ").
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// DumpEffective writes a human-readable representation of the registry's
// current state, one node per line in text mode. Returns an error if a node
// cannot be serialized or the writer fails.
func DumpEffective(w io.Writer, r *Registry, opts ...DumpOption) error {
	if r == nil {
		return ErrNilRegistry
	}

	// Apply options
	config := dumpConfig{
		indent: "  ", // Default indent
	}
	for _, opt := range opts {
		opt(&config)
	}

	if config.asJSON {
		return dumpAsJSON(w, r, config)
	}
	return dumpAsText(w, r, config)
}

// dumpAsText outputs the registry in text format (name: value), one node per
// line in registration order.
func dumpAsText(w io.Writer, r *Registry, config dumpConfig) error {
	for _, n := range r.Nodes() {
		tree, err := n.Encode()
		if err != nil {
			return fmt.Errorf("dump node %q: %w", n.Name(), err)
		}

		line := fmt.Sprintf("%s: %s", n.Name(), formatTree(tree))
		if config.withDescriptors {
			line += fmt.Sprintf(" (type: %s)", n.Value().Descriptor())
		}
		line += "\n"

		if _, err := w.Write([]byte(line)); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}

	return nil
}

// dumpAsJSON outputs the registry state as one JSON document.
func dumpAsJSON(w io.Writer, r *Registry, config dumpConfig) error {
	tree, err := r.Encode()
	if err != nil {
		return err
	}

	var data []byte
	if config.indent != "" {
		data, err = json.MarshalIndent(tree, "", config.indent)
	} else {
		data, err = json.Marshal(tree)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	// Add newline for better formatting
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	return nil
}

// formatTree renders a serialized tree compactly for text output. Map keys
// are sorted so the rendering is deterministic.
func formatTree(tree any) string {
	switch v := tree.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatTree(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, formatTree(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}
