package storefile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Azhovan/stowage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRegistry builds a registry with one node of each common shape.
func newTestRegistry(t *testing.T) *stowage.Registry {
	t.Helper()
	r := stowage.NewRegistry()
	r.MustRegister("port", stowage.MustValue(stowage.Int()))
	r.MustRegister("name", stowage.MustValue(stowage.String()))
	r.MustRegister("tags", stowage.MustValue(stowage.ListOf(stowage.String())))
	r.MustRegister("limits", stowage.MustValue(stowage.MapOf(stowage.String(), stowage.Int())))
	return r
}

func fillTestRegistry(r *stowage.Registry) {
	r.Find("port").Value().Set(8080)
	r.Find("name").Value().Set("svc")
	r.Find("tags").Value().(*stowage.ListValue).Append("a", "b")
	r.Find("limits").Value().(*stowage.MapValue).Put("read", 10)
}

func assertTestRegistry(t *testing.T, r *stowage.Registry) {
	t.Helper()

	port, err := r.Find("port").AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(8080), port)

	name, err := r.Find("name").AsString()
	require.NoError(t, err)
	assert.Equal(t, "svc", name)

	assert.Equal(t, []any{"a", "b"}, r.Find("tags").Value().(*stowage.ListValue).Raw())

	read, ok := r.Find("limits").Value().(*stowage.MapValue).Lookup("read")
	require.True(t, ok)
	assert.Equal(t, int64(10), read)
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	formats := []struct {
		name string
		file string
	}{
		{name: "yaml", file: "config.yaml"},
		{name: "json", file: "config.json"},
		{name: "toml", file: "config.toml"},
	}

	for _, tt := range formats {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			store := New(path, Options{})

			src := newTestRegistry(t)
			fillTestRegistry(src)
			require.NoError(t, store.Save(context.Background(), src))

			dst := newTestRegistry(t)
			require.NoError(t, store.Load(context.Background(), dst))
			assertTestRegistry(t, dst)
		})
	}
}

func TestStore_Load_MissingFileIsNotAnError(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing.yaml"), Options{})

	r := newTestRegistry(t)
	require.NoError(t, store.Load(context.Background(), r))

	// The registry keeps its defaults.
	port, err := r.Find("port").AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(0), port)
}

func TestStore_Load_IsSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := New(path, Options{SaveDelay: Synchronous})

	src := newTestRegistry(t)
	fillTestRegistry(src)
	require.NoError(t, store.Save(context.Background(), src))

	dst := newTestRegistry(t)
	var changes int
	dst.Subscribe(func(stowage.Change) { changes++ })
	dst.Attach(store)

	require.NoError(t, store.Load(context.Background(), dst))
	assert.Zero(t, changes, "load must not notify observers")
}

func TestStore_SynchronousRequestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := New(path, Options{SaveDelay: Synchronous})

	r := newTestRegistry(t)
	r.Attach(store)
	fillTestRegistry(r)

	// Every mutation wrote immediately; the file reflects the final state.
	dst := newTestRegistry(t)
	require.NoError(t, store.Load(context.Background(), dst))
	assertTestRegistry(t, dst)
}

func TestStore_DebounceCoalescesRapidMutations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := New(path, Options{SaveDelay: 50 * time.Millisecond})

	r := newTestRegistry(t)
	r.Attach(store)
	fillTestRegistry(r)

	// Inside the debounce window nothing has been written yet.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file written before the debounce window elapsed")

	// After the window, one write carries the final state.
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	dst := newTestRegistry(t)
	require.NoError(t, store.Load(context.Background(), dst))
	assertTestRegistry(t, dst)
}

func TestStore_FlushWritesPendingSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := New(path, Options{SaveDelay: time.Hour}) // never fires on its own

	r := newTestRegistry(t)
	r.Attach(store)
	fillTestRegistry(r)

	require.NoError(t, store.Flush())

	dst := newTestRegistry(t)
	require.NoError(t, store.Load(context.Background(), dst))
	assertTestRegistry(t, dst)

	// Nothing pending: Flush is a no-op.
	require.NoError(t, store.Flush())
}

func TestStore_CloseFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := New(path, Options{SaveDelay: time.Hour})

	r := newTestRegistry(t)
	r.Attach(store)
	r.Find("port").Value().Set(8080)

	require.NoError(t, store.Close())

	_, err := os.Stat(path)
	assert.NoError(t, err, "Close must write the pending save")
}

func TestStore_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	store := New(path, Options{})

	r := newTestRegistry(t)
	err := store.Save(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestStore_FormatOverridesExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.dat")
	store := New(path, Options{Format: "json"})

	src := newTestRegistry(t)
	fillTestRegistry(src)
	require.NoError(t, store.Save(context.Background(), src))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 0 && data[0] == '{', "expected JSON output")
}

func TestStore_SaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	store := New(path, Options{})

	r := newTestRegistry(t)
	require.NoError(t, store.Save(context.Background(), r))
	require.NoError(t, store.Save(context.Background(), r))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may remain")
}

func TestStore_Name(t *testing.T) {
	store := New("/etc/app/config.yaml", Options{})
	assert.Equal(t, "file:config.yaml", store.Name())
}
