package storedoc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Azhovan/stowage"
	"github.com/Azhovan/stowage/internal/pathkey"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Options configures document store behavior.
type Options struct {
	// Prefix is the dot-separated path this store's registry lives under in
	// the shared document (e.g. "plugins.myplugin"). Empty means the
	// document root.
	Prefix string

	// Logger receives save failures raised from RequestSave, which cannot
	// be returned to the mutating caller. Default: slog.Default().
	Logger *slog.Logger
}

// Store is a shared-document stowage.Store. Several stores may point at the
// same file with different prefixes; each save rewrites only its own subtree.
type Store struct {
	path   string
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	saved map[*stowage.Registry]uint64 // registry revision at last completed save
}

var _ stowage.Store = (*Store)(nil)

// New creates a document store writing to path under opts.Prefix.
func New(path string, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		opts:   opts,
		logger: logger,
		saved:  make(map[*stowage.Registry]uint64),
	}
}

// RequestSave saves the registry's dirty nodes immediately, on the mutating
// caller's goroutine. Failures go to the logger.
func (s *Store) RequestSave(r *stowage.Registry) {
	if err := s.Save(context.Background(), r); err != nil {
		s.logger.Error("storedoc: save failed", "path", s.path, "prefix", s.opts.Prefix, "error", err)
	}
}

// Save writes the registry's state into the shared document. The first save
// of a registry writes every node; later saves rewrite only nodes mutated
// since the last completed save.
func (s *Store) Save(ctx context.Context, r *stowage.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}

	last, seen := s.saved[r]
	nodes := r.Nodes()
	if seen {
		nodes = r.DirtySince(last)
	}

	for _, n := range nodes {
		tree, err := n.Encode()
		if err != nil {
			return fmt.Errorf("storedoc: encode node %q: %w", n.Name(), err)
		}
		doc, err = sjson.SetBytes(doc, s.nodePath(n.Name()), tree)
		if err != nil {
			return fmt.Errorf("storedoc: set node %q: %w", n.Name(), err)
		}
	}

	if err := s.writeDocument(doc); err != nil {
		return err
	}
	s.saved[r] = r.Revision()
	return nil
}

// Load replaces the registry's node values from its subtree of the shared
// document. A missing file, or a prefix with no data yet, leaves the registry
// on its defaults. Loading is silent: no observers, no save requests.
func (s *Store) Load(ctx context.Context, r *stowage.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}

	for _, n := range r.Nodes() {
		res := gjson.GetBytes(doc, s.nodePath(n.Name()))
		if !res.Exists() {
			continue
		}
		if err := n.Decode(res.Value()); err != nil {
			return fmt.Errorf("storedoc: decode node %q: %w", n.Name(), err)
		}
	}

	s.saved[r] = r.Revision()
	return nil
}

// Name returns a human-readable identifier for this store.
func (s *Store) Name() string {
	if s.opts.Prefix == "" {
		return "doc:" + filepath.Base(s.path)
	}
	return "doc:" + filepath.Base(s.path) + "#" + s.opts.Prefix
}

// nodePath builds the gjson/sjson path for one node. The prefix is trusted as
// a path; the node name is escaped, so names containing dots stay one key.
func (s *Store) nodePath(name string) string {
	return pathkey.Join(s.opts.Prefix, pathkey.Escape(name))
}

// readDocument returns the current document bytes, or an empty object when
// the file does not exist yet.
func (s *Store) readDocument() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []byte("{}"), nil
		}
		return nil, fmt.Errorf("storedoc: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []byte("{}"), nil
	}
	return data, nil
}

// writeDocument writes the document atomically: temp file in the same
// directory, then rename over the target.
func (s *Store) writeDocument(doc []byte) error {
	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("storedoc: create directory %s: %w", dir, err)
		}
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return err
	}
	tempPath := s.path + ".tmp." + hex.EncodeToString(randomBytes)

	if err := os.WriteFile(tempPath, doc, 0644); err != nil {
		return fmt.Errorf("storedoc: write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storedoc: rename to %s: %w", s.path, err)
	}
	return nil
}
