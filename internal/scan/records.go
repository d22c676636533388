package scan

import (
	"time"

	"winnow/internal/digest"
	"winnow/internal/imagehash"
)

// CacheStatus records how a file's hashes were obtained during a pass.
type CacheStatus string

const (
	// StatusFresh means the cached entry was reused without rehashing.
	StatusFresh CacheStatus = "fresh"
	// StatusStale means the cached entry existed but the file changed.
	StatusStale CacheStatus = "stale"
	// StatusMissing means no usable cache entry existed.
	StatusMissing CacheStatus = "missing"
)

// FileRecord is the per-file result of one scan pass. Records are owned by
// the pass that produced them and never mutated afterwards.
type FileRecord struct {
	Path        string
	Size        int64
	ModTime     time.Time
	Digest      digest.Digest
	Hash        imagehash.BitVector
	CacheStatus CacheStatus
}

// FailedFile captures a per-file failure with its classification. Failures
// never abort the batch; they are excluded from grouping and reported.
type FailedFile struct {
	Path   string
	Reason string
	Err    error
}

// Counts summarizes a scan for the reporting surface.
type Counts struct {
	Scanned        int
	CacheHits      int
	CacheMisses    int
	DecodeFailures int
	ReadFailures   int
}

// Result bundles the successes and failures of one scan pass. Record order
// is unspecified; callers needing determinism sort by path.
type Result struct {
	Records  []*FileRecord
	Failures []FailedFile
	Counts   Counts
}
