package storefile

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Azhovan/stowage"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultSaveDelay is the debounce window used when Options.SaveDelay is zero.
const DefaultSaveDelay = 100 * time.Millisecond

// Synchronous disables debouncing: every save request writes immediately on
// the mutating caller's goroutine.
const Synchronous = time.Duration(-1)

// Options configures file store behavior.
type Options struct {
	// Format: "yaml", "json", or "toml". Auto-detected from extension if empty.
	Format string

	// SaveDelay is the debounce window for save requests. Zero means
	// DefaultSaveDelay; Synchronous (any negative value) writes immediately.
	SaveDelay time.Duration

	// DirMode is the permission for created parent directories. Default: 0755.
	DirMode os.FileMode

	// FileMode is the permission for the written file. Default: 0644.
	FileMode os.FileMode

	// Logger receives asynchronous save failures, which cannot be returned
	// to the mutating caller. Default: slog.Default().
	Logger *slog.Logger
}

// Store is a file-backed stowage.Store: one registry, one file.
type Store struct {
	path   string
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *stowage.Registry
}

var _ stowage.Store = (*Store)(nil)

// New creates a file-backed store writing to path.
func New(path string, opts Options) *Store {
	if opts.SaveDelay == 0 {
		opts.SaveDelay = DefaultSaveDelay
	}
	if opts.DirMode == 0 {
		opts.DirMode = 0755
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0644
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		opts:   opts,
		logger: logger,
	}
}

// RequestSave schedules a save of the registry's current state. With a
// positive SaveDelay the write happens after the debounce window, and further
// requests inside the window restart it; with Synchronous the write happens
// before RequestSave returns. Failures of debounced writes go to the logger.
func (s *Store) RequestSave(r *stowage.Registry) {
	if s.opts.SaveDelay < 0 {
		if err := s.Save(context.Background(), r); err != nil {
			s.logger.Error("storefile: save failed", "path", s.path, "error", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = r
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.SaveDelay, s.savePending)
}

// Flush writes any pending debounced save immediately.
func (s *Store) Flush() error {
	s.mu.Lock()
	r := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if r == nil {
		return nil
	}
	return s.Save(context.Background(), r)
}

// Close flushes any pending save and stops the debounce timer.
func (s *Store) Close() error {
	return s.Flush()
}

// Save serializes the registry and writes it atomically: marshal, write to a
// temp file in the same directory, rename over the target.
func (s *Store) Save(ctx context.Context, r *stowage.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tree, err := r.Encode()
	if err != nil {
		return fmt.Errorf("storefile: encode registry: %w", err)
	}

	data, err := s.marshal(tree)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, s.opts.DirMode); err != nil {
			return fmt.Errorf("storefile: create directory %s: %w", dir, err)
		}
	}

	tempPath, err := tempFileName(s.path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(tempPath, data, s.opts.FileMode); err != nil {
		return fmt.Errorf("storefile: write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storefile: rename to %s: %w", s.path, err)
	}
	return nil
}

// Load reads the file and replaces the registry's node values from it.
// A missing file is not an error: the registry keeps its defaults. Loading is
// silent; it triggers no observers and no save requests.
func (s *Store) Load(ctx context.Context, r *stowage.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("storefile: read %s: %w", s.path, err)
	}

	tree, err := s.unmarshal(data)
	if err != nil {
		return err
	}
	return r.Decode(tree)
}

// marshal encodes the tree in the configured format.
func (s *Store) marshal(tree map[string]any) ([]byte, error) {
	switch s.format() {
	case "yaml", "yml":
		data, err := yaml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("storefile: marshal YAML for %s: %w", s.path, err)
		}
		return data, nil
	case "json":
		data, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("storefile: marshal JSON for %s: %w", s.path, err)
		}
		return append(data, '\n'), nil
	case "toml":
		data, err := toml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("storefile: marshal TOML for %s: %w", s.path, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("storefile: unsupported file format: %s (supported: yaml, json, toml)", s.format())
	}
}

// unmarshal decodes file bytes in the configured format.
func (s *Store) unmarshal(data []byte) (map[string]any, error) {
	var tree map[string]any
	switch s.format() {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("storefile: parse YAML file %s: %w", s.path, err)
		}
	case "json":
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("storefile: parse JSON file %s: %w", s.path, err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("storefile: parse TOML file %s: %w", s.path, err)
		}
	default:
		return nil, fmt.Errorf("storefile: unsupported file format: %s (supported: yaml, json, toml)", s.format())
	}
	if tree == nil {
		tree = make(map[string]any)
	}
	return tree, nil
}

// Name returns a human-readable identifier for this store.
func (s *Store) Name() string {
	return "file:" + filepath.Base(s.path)
}

// savePending fires from the debounce timer.
func (s *Store) savePending() {
	s.mu.Lock()
	r := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if r == nil {
		return
	}
	if err := s.Save(context.Background(), r); err != nil {
		s.logger.Error("storefile: save failed", "path", s.path, "error", err)
	}
}

func (s *Store) format() string {
	if s.opts.Format != "" {
		return s.opts.Format
	}
	return inferFormat(s.path)
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}

// tempFileName generates a unique temp file name next to the target, so the
// final rename stays on one filesystem.
func tempFileName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}
