package testsupport

import (
	"path/filepath"
	"testing"

	"dubmix/internal/synthcache"
)

// MustOpenCache opens a clip cache in a temp directory and registers cleanup.
func MustOpenCache(t testing.TB) *synthcache.Store {
	t.Helper()

	store, err := synthcache.Open(filepath.Join(t.TempDir(), "clips.db"))
	if err != nil {
		t.Fatalf("synthcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
