package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"winnow/internal/config"
	"winnow/internal/dedup"
	"winnow/internal/discovery"
	"winnow/internal/hashcache"
	"winnow/internal/remover"
	"winnow/internal/scan"
)

// ErrCacheLocked means another process holds the cache lock for the same
// cache directory.
var ErrCacheLocked = errors.New("hash cache is locked by another run")

// Session executes one full dedup pass: discover, scan, group, remove.
type Session struct {
	Config *config.Config
	Logger *slog.Logger

	// Progress, when set, receives per-file completion updates from the
	// scan phase.
	Progress func(done, total int)
}

// Report captures everything one pass produced, for rendering and tests.
type Report struct {
	RunID     string
	SourceDir string
	StartedAt time.Time
	Duration  time.Duration

	Counts   scan.Counts
	Failures []scan.FailedFile
	Groups   []*dedup.Group
	Pruned   int
	Removal  *remover.Outcome
}

// Run executes the pass. Per-file problems are collected in the report;
// only configuration errors, a locked cache, and cancellation are fatal.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	cfg := s.Config
	runID := uuid.NewString()

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "run", "run_id", runID)

	mode, err := remover.ParseMode(cfg.Removal.Mode)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	var cache hashcache.Cache
	var store *hashcache.Store
	if cfg.Cache.Enabled {
		// The lock lives next to the database so concurrent runs against
		// different cache directories never contend.
		lock := flock.New(cfg.CachePath() + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire cache lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s", ErrCacheLocked, cfg.CachePath())
		}
		defer lock.Unlock()

		store, err = hashcache.Open(cfg.CachePath(), logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		cache = store
	}

	report := &Report{
		RunID:     runID,
		SourceDir: cfg.Paths.SourceDir,
		StartedAt: time.Now(),
	}

	paths, err := discovery.FindImages(cfg.Paths.SourceDir, cfg.Dedup.Extensions)
	if err != nil {
		return nil, err
	}
	logger.Info("discovered images", "source", cfg.Paths.SourceDir, "count", len(paths))

	scanner := &scan.Scanner{
		Cache:      cache,
		CoreSize:   cfg.Dedup.CoreSize,
		Workers:    cfg.Dedup.Workers,
		TrustMTime: cfg.Cache.TrustMTime,
		Logger:     logger,
		Progress:   s.Progress,
	}
	result, err := scanner.Scan(ctx, paths)
	if err != nil {
		return nil, err
	}
	report.Counts = result.Counts
	report.Failures = result.Failures
	logger.Info("scan complete",
		"scanned", result.Counts.Scanned,
		"cache_hits", result.Counts.CacheHits,
		"failures", len(result.Failures))

	if store != nil {
		keep := make(map[string]struct{}, len(paths))
		for _, p := range paths {
			keep[p] = struct{}{}
		}
		pruned, err := store.Prune(ctx, keep)
		if err != nil {
			// Stale rows only cost disk space; the run proceeds.
			logger.Warn("cache prune failed", "error", err)
		} else {
			report.Pruned = int(pruned)
		}
	}

	groups, err := dedup.GroupRecords(result.Records, cfg.Dedup.ThresholdPercent)
	if err != nil {
		return nil, err
	}
	report.Groups = groups

	rem := &remover.Remover{
		Mode:          mode,
		QuarantineDir: cfg.Paths.QuarantineDir,
		Logger:        logger,
	}
	outcome, err := rem.Remove(dedup.DuplicateGroups(groups))
	if err != nil {
		return nil, err
	}
	report.Removal = outcome
	report.Duration = time.Since(report.StartedAt)

	logger.Info("run complete",
		"duration", report.Duration.Round(time.Millisecond),
		"groups", len(groups),
		"duplicates", len(outcome.Removed),
		"mode", string(mode))
	return report, nil
}
