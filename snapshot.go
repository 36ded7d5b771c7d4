package stowage

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxSnapshotSize is the maximum allowed snapshot size (100MB).
const MaxSnapshotSize = 100 * 1024 * 1024

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = "1.0"

// Snapshot errors.
var (
	// ErrSnapshotTooLarge is returned when a snapshot exceeds MaxSnapshotSize.
	ErrSnapshotTooLarge = errors.New("stowage: snapshot exceeds 100MB size limit")

	// ErrNilRegistry is returned when CreateSnapshot receives a nil registry.
	ErrNilRegistry = errors.New("stowage: registry is nil")

	// ErrUnsupportedVersion is returned when reading a snapshot with unknown version.
	ErrUnsupportedVersion = errors.New("stowage: unsupported snapshot version")
)

// supportedVersions lists snapshot format versions ReadSnapshot accepts.
var supportedVersions = map[string]bool{
	"1.0": true,
}

// RegistrySnapshot represents a point-in-time capture of a registry's state.
type RegistrySnapshot struct {
	// Version is the snapshot format version (currently "1.0")
	Version string `json:"version"`

	// Timestamp is when the snapshot was created
	Timestamp time.Time `json:"timestamp"`

	// Values holds each node's serialized tree, keyed by node name.
	Values map[string]any `json:"values"`

	// Revisions records each node's revision at capture time.
	Revisions map[string]uint64 `json:"revisions"`
}

// SnapshotOption configures snapshot creation behavior.
type SnapshotOption func(*snapshotConfig)

// snapshotConfig holds internal configuration for snapshot creation.
type snapshotConfig struct {
	excludeNodes []string // Node names to exclude
}

// WithExcludeNodes excludes the named nodes from the snapshot.
func WithExcludeNodes(names ...string) SnapshotOption {
	return func(cfg *snapshotConfig) {
		cfg.excludeNodes = append(cfg.excludeNodes, names...)
	}
}

// CreateSnapshot captures the registry's current state: every node's
// serialized value plus its revision. The snapshot's Timestamp is captured at
// creation time.
func CreateSnapshot(r *Registry, opts ...SnapshotOption) (*RegistrySnapshot, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}

	// Apply options
	snapCfg := &snapshotConfig{}
	for _, opt := range opts {
		opt(snapCfg)
	}

	excluded := make(map[string]bool, len(snapCfg.excludeNodes))
	for _, name := range snapCfg.excludeNodes {
		excluded[name] = true
	}

	values := make(map[string]any)
	revisions := make(map[string]uint64)
	for _, n := range r.Nodes() {
		if excluded[n.Name()] {
			continue
		}
		tree, err := n.Encode()
		if err != nil {
			return nil, fmt.Errorf("stowage: snapshot node %q: %w", n.Name(), err)
		}
		values[n.Name()] = tree
		revisions[n.Name()] = n.Revision()
	}

	return &RegistrySnapshot{
		Version:   SnapshotVersion,
		Timestamp: time.Now().UTC(),
		Values:    values,
		Revisions: revisions,
	}, nil
}

// ExpandPath expands template variables using current time.
// For consistency with snapshot metadata, prefer WriteSnapshot which
// uses the snapshot's internal timestamp for expansion.
func ExpandPath(template string) string {
	return ExpandPathWithTime(template, time.Now())
}

// ExpandPathWithTime expands template variables using the provided timestamp.
// Replaces all {{timestamp}} occurrences with the time formatted as 20060102-150405.
// Returns the path unchanged if no template variables are present.
func ExpandPathWithTime(template string, t time.Time) string {
	timestamp := t.UTC().Format("20060102-150405")
	return strings.ReplaceAll(template, "{{timestamp}}", timestamp)
}

// WriteSnapshot persists a snapshot to disk with atomic write semantics.
// Supports {{timestamp}} template variable in path - uses snapshot.Timestamp
// (not current time) to ensure filename matches internal metadata.
// Returns ErrSnapshotTooLarge if serialized size exceeds 100MB.
func WriteSnapshot(snapshot *RegistrySnapshot, pathTemplate string) error {
	if snapshot == nil {
		return ErrNilRegistry
	}

	// Expand path template using snapshot's timestamp for consistency
	targetPath := ExpandPathWithTime(pathTemplate, snapshot.Timestamp)

	// Marshal snapshot to indented JSON
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	// Check size against MaxSnapshotSize
	if len(data) > MaxSnapshotSize {
		return ErrSnapshotTooLarge
	}

	// Create parent directories with 0700 permissions
	dir := filepath.Dir(targetPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0700); mkdirErr != nil {
			return mkdirErr
		}
	}

	// Generate temp file name in same directory for atomic rename
	tempPath, err := generateTempFileName(targetPath)
	if err != nil {
		return err
	}

	// Ensure temp file is cleaned up on any error
	var tempFileCreated bool
	defer func() {
		if tempFileCreated {
			_ = os.Remove(tempPath)
		}
	}()

	// Write to temp file
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return err
	}
	tempFileCreated = true

	// Atomic rename temp file to target path
	if err := os.Rename(tempPath, targetPath); err != nil {
		return err
	}

	// Rename succeeded, don't clean up temp file (it's now the target)
	tempFileCreated = false

	return nil
}

// ReadSnapshot reads a snapshot previously written by WriteSnapshot.
// Returns ErrUnsupportedVersion for unknown format versions.
func ReadSnapshot(path string) (*RegistrySnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSnapshotSize {
		return nil, ErrSnapshotTooLarge
	}

	var snapshot RegistrySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("stowage: read snapshot %s: %w", path, err)
	}
	if !supportedVersions[snapshot.Version] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, snapshot.Version)
	}
	return &snapshot, nil
}

// Restore replaces the registry's node values from a snapshot, silently:
// no observers, no save requests. Node names absent from the snapshot keep
// their current values.
func (r *Registry) Restore(snapshot *RegistrySnapshot) error {
	if snapshot == nil {
		return ErrNilRegistry
	}
	return r.Decode(snapshot.Values)
}

// generateTempFileName generates a unique temporary file name for atomic writes.
// The temp file is placed in the same directory as the target to ensure
// atomic rename works (same filesystem).
// Format: targetPath + ".tmp." + randomHex
func generateTempFileName(targetPath string) (string, error) {
	// Generate 8 random bytes (16 hex chars)
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	suffix := hex.EncodeToString(randomBytes)
	return targetPath + ".tmp." + suffix, nil
}
