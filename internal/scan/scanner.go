package scan

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"winnow/internal/digest"
	"winnow/internal/errkind"
	"winnow/internal/hashcache"
	"winnow/internal/imagehash"
)

// Scanner fans per-file hashing work across a fixed worker pool. Workers
// share no state beyond the cache, whose lookup/upsert operations are
// atomic, so a scan is safely abortable between file units: in-flight
// upserts for cancelled files are simply lost and recomputed next run.
type Scanner struct {
	Cache      hashcache.Cache
	CoreSize   int
	Workers    int
	TrustMTime bool
	Logger     *slog.Logger

	// Progress, when set, is called after every finished file with the
	// number of completed files and the total.
	Progress func(done, total int)
}

// Scan hashes every path and returns per-file records plus isolated
// failures. Only context cancellation aborts the pass.
func (s *Scanner) Scan(ctx context.Context, paths []string) (*Result, error) {
	if err := imagehash.ValidateCoreSize(s.CoreSize); err != nil {
		return nil, err
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scan")

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) && len(paths) > 0 {
		workers = len(paths)
	}

	result := &Result{}
	if len(paths) == 0 {
		return result, nil
	}

	var (
		mu   sync.Mutex
		done atomic.Int64
	)

	group, ctx := errgroup.WithContext(ctx)
	work := make(chan string)

	group.Go(func() error {
		defer close(work)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case work <- path:
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for path := range work {
				if err := ctx.Err(); err != nil {
					return err
				}
				record, failure := s.scanOne(ctx, logger, path)

				mu.Lock()
				result.Counts.Scanned++
				if record != nil {
					result.Records = append(result.Records, record)
					if record.CacheStatus == StatusFresh {
						result.Counts.CacheHits++
					} else {
						result.Counts.CacheMisses++
					}
				} else {
					result.Failures = append(result.Failures, *failure)
					if errors.Is(failure.Err, errkind.ErrDecode) {
						result.Counts.DecodeFailures++
					} else {
						result.Counts.ReadFailures++
					}
				}
				mu.Unlock()

				if s.Progress != nil {
					s.Progress(int(done.Add(1)), len(paths))
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// scanOne resolves one file against the cache, rehashing when the entry is
// stale or missing. Exactly one of record and failure is non-nil.
func (s *Scanner) scanOne(ctx context.Context, logger *slog.Logger, path string) (*FileRecord, *FailedFile) {
	info, err := os.Stat(path)
	if err != nil {
		wrapped := errkind.Wrap(errkind.ErrRead, "scan", "stat", path, err)
		return nil, &FailedFile{Path: path, Reason: "stat failed", Err: wrapped}
	}

	record := &FileRecord{
		Path:        path,
		Size:        info.Size(),
		ModTime:     info.ModTime().UTC(),
		CacheStatus: StatusMissing,
	}

	var entry *hashcache.Entry
	if s.Cache != nil {
		entry, err = s.Cache.Lookup(ctx, path)
		if err != nil {
			// A failing cache must not fail the scan; rehash instead.
			logger.Warn("cache lookup failed, rehashing", "path", path, "error", err)
			entry = nil
		}
	}
	if entry != nil && entry.CoreSize != s.CoreSize {
		// Fingerprints at another resolution are useless for this run.
		entry = nil
	}

	if entry != nil {
		if s.TrustMTime && entry.Matches(record.Size, record.ModTime) {
			record.Digest = entry.Digest
			record.Hash = entry.Hash
			record.CacheStatus = StatusFresh
			return record, nil
		}

		// Fast path refused or disabled: the digest decides.
		contentDigest, digestErr := digest.File(path)
		if digestErr != nil {
			return nil, &FailedFile{Path: path, Reason: "unreadable", Err: digestErr}
		}
		record.Digest = contentDigest
		if contentDigest == entry.Digest {
			record.Hash = entry.Hash
			record.CacheStatus = StatusFresh
			// Refresh size/mtime so the fast path works next run.
			s.upsert(ctx, logger, record)
			return record, nil
		}
		record.CacheStatus = StatusStale
	}

	if record.CacheStatus == StatusMissing {
		contentDigest, digestErr := digest.File(path)
		if digestErr != nil {
			return nil, &FailedFile{Path: path, Reason: "unreadable", Err: digestErr}
		}
		record.Digest = contentDigest
	}

	hash, hashErr := imagehash.DHashFile(path, s.CoreSize)
	if hashErr != nil {
		reason := "unreadable"
		if errors.Is(hashErr, errkind.ErrDecode) {
			reason = "not a decodable image"
		}
		return nil, &FailedFile{Path: path, Reason: reason, Err: hashErr}
	}
	record.Hash = hash

	s.upsert(ctx, logger, record)
	return record, nil
}

func (s *Scanner) upsert(ctx context.Context, logger *slog.Logger, record *FileRecord) {
	if s.Cache == nil {
		return
	}
	err := s.Cache.Upsert(ctx, &hashcache.Entry{
		Path:     record.Path,
		Digest:   record.Digest,
		Hash:     record.Hash,
		CoreSize: s.CoreSize,
		Size:     record.Size,
		ModTime:  record.ModTime,
	})
	if err != nil {
		// Losing an upsert only costs a recompute next run.
		logger.Warn("cache upsert failed", "path", record.Path, "error", err)
	}
}
