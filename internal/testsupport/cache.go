package testsupport

import (
	"io"
	"log/slog"
	"testing"

	"winnow/internal/config"
	"winnow/internal/hashcache"
)

// MustOpenCache opens a hashcache.Store for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *hashcache.Store {
	t.Helper()

	store, err := hashcache.Open(cfg.CachePath(), DiscardLogger())
	if err != nil {
		t.Fatalf("hashcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// DiscardLogger returns a logger that drops everything, keeping test output
// readable.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
