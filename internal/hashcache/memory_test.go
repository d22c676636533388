package hashcache_test

import (
	"context"
	"testing"
	"time"

	"winnow/internal/digest"
	"winnow/internal/hashcache"
	"winnow/internal/imagehash"
	"winnow/internal/testsupport"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := hashcache.NewMemoryCache()
	ctx := context.Background()

	hash, err := imagehash.DHash(testsupport.GradientImage(64, 64, 3), 8)
	if err != nil {
		t.Fatalf("DHash: %v", err)
	}
	entry := &hashcache.Entry{
		Path:     "/mem/a.png",
		Digest:   digest.Bytes([]byte("a")),
		Hash:     hash,
		CoreSize: 8,
		Size:     10,
		ModTime:  time.Now().UTC(),
	}
	if err := cache.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	fetched, err := cache.Lookup(ctx, entry.Path)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if fetched == nil || fetched.Digest != entry.Digest {
		t.Fatalf("unexpected entry: %+v", fetched)
	}

	// Mutating the returned entry must not affect the stored copy.
	fetched.Size = 999
	again, err := cache.Lookup(ctx, entry.Path)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if again.Size != 10 {
		t.Fatal("lookup must return copies")
	}

	pruned, err := cache.Prune(ctx, map[string]struct{}{})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if pruned != 1 || cache.Len() != 0 {
		t.Fatalf("expected full prune, got %d pruned, %d left", pruned, cache.Len())
	}
}
