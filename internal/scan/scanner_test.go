package scan_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"winnow/internal/digest"
	"winnow/internal/hashcache"
	"winnow/internal/scan"
	"winnow/internal/testsupport"
)

func newScanner(cache hashcache.Cache, trustMTime bool) *scan.Scanner {
	return &scan.Scanner{
		Cache:      cache,
		CoreSize:   8,
		Workers:    2,
		TrustMTime: trustMTime,
		Logger:     testsupport.DiscardLogger(),
	}
}

func TestScanComputesAndCaches(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		testsupport.WriteGradientPNG(t, dir, "a.png", 1),
		testsupport.WriteGradientPNG(t, dir, "b.png", 2),
		testsupport.WriteGradientPNG(t, dir, "c.png", 3),
	}

	cache := hashcache.NewMemoryCache()
	scanner := newScanner(cache, true)
	ctx := context.Background()

	first, err := scanner.Scan(ctx, paths)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(first.Records) != 3 || len(first.Failures) != 0 {
		t.Fatalf("expected 3 records, got %d records, %d failures", len(first.Records), len(first.Failures))
	}
	if first.Counts.CacheMisses != 3 || first.Counts.CacheHits != 0 {
		t.Fatalf("unexpected first-run counts: %+v", first.Counts)
	}
	for _, r := range first.Records {
		if r.CacheStatus != scan.StatusMissing {
			t.Fatalf("expected missing status for %s, got %s", r.Path, r.CacheStatus)
		}
		if r.Hash.Width() != 64 {
			t.Fatalf("expected 64-bit fingerprint, got %d", r.Hash.Width())
		}
	}

	second, err := scanner.Scan(ctx, paths)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if second.Counts.CacheHits != 3 || second.Counts.CacheMisses != 0 {
		t.Fatalf("expected full cache hit on second run, got %+v", second.Counts)
	}
	for _, r := range second.Records {
		if r.CacheStatus != scan.StatusFresh {
			t.Fatalf("expected fresh status for %s, got %s", r.Path, r.CacheStatus)
		}
	}
}

func TestScanDigestMismatchForcesRehash(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteGradientPNG(t, dir, "a.png", 1)

	cache := hashcache.NewMemoryCache()
	scanner := newScanner(cache, false)
	ctx := context.Background()

	first, err := scanner.Scan(ctx, []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	good := first.Records[0]

	// Doctor the cached entry so its digest no longer matches the bytes on
	// disk while size and mtime still do. The scan must not trust it.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := cache.Upsert(ctx, &hashcache.Entry{
		Path:     path,
		Digest:   digest.Bytes([]byte("something else")),
		Hash:     good.Hash,
		CoreSize: 8,
		Size:     info.Size(),
		ModTime:  info.ModTime().UTC(),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second, err := scanner.Scan(ctx, []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	r := second.Records[0]
	if r.CacheStatus != scan.StatusStale {
		t.Fatalf("expected stale status, got %s", r.CacheStatus)
	}
	if r.Digest != good.Digest {
		t.Fatalf("expected recomputed digest %s, got %s", good.Digest, r.Digest)
	}
	if second.Counts.CacheMisses != 1 {
		t.Fatalf("stale entry must count as a miss: %+v", second.Counts)
	}
}

func TestScanModifiedFileRehashed(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteGradientPNG(t, dir, "a.png", 1)

	cache := hashcache.NewMemoryCache()
	scanner := newScanner(cache, true)
	ctx := context.Background()

	if _, err := scanner.Scan(ctx, []string{path}); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// Replace the file with different content.
	other := testsupport.WriteGradientPNG(t, dir, "b.png", 9)
	data, err := os.ReadFile(other)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	result, err := scanner.Scan(ctx, []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.Records[0].CacheStatus == scan.StatusFresh {
		t.Fatal("modified file must not be served from cache")
	}
}

func TestScanCoreSizeChangeInvalidates(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteGradientPNG(t, dir, "a.png", 1)

	cache := hashcache.NewMemoryCache()
	ctx := context.Background()

	if _, err := newScanner(cache, true).Scan(ctx, []string{path}); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	wider := newScanner(cache, true)
	wider.CoreSize = 16
	result, err := wider.Scan(ctx, []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	r := result.Records[0]
	if r.CacheStatus == scan.StatusFresh {
		t.Fatal("entry hashed at another core size must not be reused")
	}
	if r.Hash.Width() != 256 {
		t.Fatalf("expected 256-bit fingerprint, got %d", r.Hash.Width())
	}
}

func TestScanIsolatesBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := testsupport.WriteGradientPNG(t, dir, "good.png", 1)
	bad := dir + "/bad.png"
	if err := os.WriteFile(bad, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	missing := dir + "/missing.png"

	result, err := newScanner(hashcache.NewMemoryCache(), true).Scan(context.Background(), []string{good, bad, missing})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].Path != good {
		t.Fatalf("expected only the good file to succeed: %+v", result.Records)
	}
	if len(result.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", result.Failures)
	}
	if result.Counts.DecodeFailures != 1 || result.Counts.ReadFailures != 1 {
		t.Fatalf("unexpected failure counts: %+v", result.Counts)
	}
}

func TestScanNilCache(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteGradientPNG(t, dir, "a.png", 1)

	scanner := newScanner(nil, true)
	result, err := scanner.Scan(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Records) != 1 || result.Counts.CacheMisses != 1 {
		t.Fatalf("unexpected result without cache: %+v", result.Counts)
	}
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 4; i++ {
		paths = append(paths, testsupport.WriteGradientPNG(t, dir, fmt.Sprintf("img-%d.png", i), i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newScanner(hashcache.NewMemoryCache(), true).Scan(ctx, paths); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestScanReportsProgress(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		testsupport.WriteGradientPNG(t, dir, "a.png", 1),
		testsupport.WriteGradientPNG(t, dir, "b.png", 2),
	}

	var calls int
	scanner := newScanner(hashcache.NewMemoryCache(), true)
	scanner.Workers = 1
	scanner.Progress = func(done, total int) {
		calls++
		if total != 2 {
			t.Fatalf("expected total 2, got %d", total)
		}
	}
	if _, err := scanner.Scan(context.Background(), paths); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 progress calls, got %d", calls)
	}
}
