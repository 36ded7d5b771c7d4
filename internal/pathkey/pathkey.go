// Package pathkey validates node names and escapes them for use in
// dot-separated document paths.
package pathkey

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidName is returned for names that cannot serve as node names.
var ErrInvalidName = errors.New("invalid node name")

// ValidateName checks that a node name is usable: non-empty, no leading or
// trailing whitespace, and no control characters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q has leading or trailing whitespace", ErrInvalidName, name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains control characters", ErrInvalidName, name)
		}
	}
	return nil
}

// Escape makes a node name safe as one component of a gjson/sjson path by
// backslash-escaping the path metacharacters.
// Examples:
//   - "server.port" → "server\.port"
//   - "glob*"       → "glob\*"
func Escape(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.', '*', '?', '\\', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteByte(name[i])
	}
	return b.String()
}

// Join combines a document prefix with an escaped name component.
// If prefix is empty, returns the name unchanged.
// Examples:
//   - Join("plugins.myplugin", "list") → "plugins.myplugin.list"
//   - Join("", "list")                 → "list"
func Join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}
