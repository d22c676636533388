package hashcache

import (
	"context"
	"time"

	"winnow/internal/digest"
	"winnow/internal/imagehash"
)

// Entry is the persisted record for one file. An entry is reusable iff the
// file's current size and mtime match (fast path, when the config allows
// trusting timestamps) or the recomputed content digest matches; a digest
// mismatch always forces fingerprint recomputation.
type Entry struct {
	Path      string
	Digest    digest.Digest
	Hash      imagehash.BitVector
	CoreSize  int
	Size      int64
	ModTime   time.Time
	UpdatedAt time.Time
}

// Matches reports whether the stored size and modification time equal the
// observed values. Timestamps are compared at nanosecond precision; storage
// that truncates mtimes simply fails the fast path and falls back to the
// digest check.
func (e *Entry) Matches(size int64, modTime time.Time) bool {
	return e.Size == size && e.ModTime.Equal(modTime)
}

// Cache is the store contract the engine depends on. Implementations must
// make Upsert atomic with respect to concurrent Lookup calls on the same
// path and must degrade unreadable entries to misses rather than errors.
type Cache interface {
	Lookup(ctx context.Context, path string) (*Entry, error)
	Upsert(ctx context.Context, entry *Entry) error
	Prune(ctx context.Context, existing map[string]struct{}) (int64, error)
	Close() error
}

// CacheStats summarizes the persistent cache for diagnostics.
type CacheStats struct {
	Path      string
	Entries   int64
	SizeBytes int64
}
