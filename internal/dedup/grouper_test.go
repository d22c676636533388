package dedup_test

import (
	"testing"

	"winnow/internal/dedup"
	"winnow/internal/imagehash"
	"winnow/internal/scan"
)

func record(t *testing.T, path, hex string) *scan.FileRecord {
	t.Helper()
	hash, err := imagehash.DecodeHex(hex, 64)
	if err != nil {
		t.Fatalf("DecodeHex(%q): %v", hex, err)
	}
	return &scan.FileRecord{Path: path, Hash: hash}
}

func TestMaxDistance(t *testing.T) {
	cases := []struct {
		percent float64
		width   int
		want    int
	}{
		{100, 64, 0},
		{90, 64, 6},
		{90, 256, 26},
		{50, 64, 32},
		{0, 64, 64},
	}
	for _, c := range cases {
		if got := dedup.MaxDistance(c.percent, c.width); got != c.want {
			t.Fatalf("MaxDistance(%v, %d) = %d, want %d", c.percent, c.width, got, c.want)
		}
	}
}

func TestGroupRecordsNearDuplicates(t *testing.T) {
	a := record(t, "/pics/a.png", "0000000000000000")
	b := record(t, "/pics/b.png", "0000000000000003") // 2 bits from a
	c := record(t, "/pics/c.png", "00000000000003ff") // 10 bits from a

	groups, err := dedup.GroupRecords([]*scan.FileRecord{c, a, b}, 90)
	if err != nil {
		t.Fatalf("GroupRecords failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Kept != a || len(groups[0].Duplicates) != 1 || groups[0].Duplicates[0] != b {
		t.Fatalf("expected a to keep b as duplicate, got %+v", groups[0])
	}
	if groups[1].Kept != c || groups[1].HasDuplicates() {
		t.Fatalf("expected c alone, got %+v", groups[1])
	}
}

func TestGroupRecordsAnchoredNotTransitive(t *testing.T) {
	// b is within budget of both a and c, but c is compared against the
	// anchor a only, so the chain does not merge.
	a := record(t, "/pics/a.png", "0000000000000000")
	b := record(t, "/pics/b.png", "000000000000000f") // d(a,b)=4
	c := record(t, "/pics/c.png", "00000000000000ff") // d(a,c)=8, d(b,c)=4

	groups, err := dedup.GroupRecords([]*scan.FileRecord{a, b, c}, 90)
	if err != nil {
		t.Fatalf("GroupRecords failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Kept != a || groups[0].Duplicates[0] != b {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Kept != c {
		t.Fatalf("expected c to anchor its own group, got %+v", groups[1])
	}
}

func TestGroupRecordsExactThreshold(t *testing.T) {
	a := record(t, "/pics/a.png", "deadbeefdeadbeef")
	b := record(t, "/pics/b.png", "deadbeefdeadbeef")
	c := record(t, "/pics/c.png", "deadbeefdeadbeee") // 1 bit off

	groups, err := dedup.GroupRecords([]*scan.FileRecord{a, b, c}, 100)
	if err != nil {
		t.Fatalf("GroupRecords failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups at threshold 100, got %d", len(groups))
	}
	if groups[0].Kept != a || groups[0].Duplicates[0] != b {
		t.Fatalf("unexpected exact group: %+v", groups[0])
	}
	if groups[1].Kept != c || groups[1].HasDuplicates() {
		t.Fatalf("expected c alone, got %+v", groups[1])
	}
}

func TestGroupRecordsZeroThreshold(t *testing.T) {
	a := record(t, "/pics/a.png", "0000000000000000")
	b := record(t, "/pics/b.png", "ffffffffffffffff")

	groups, err := dedup.GroupRecords([]*scan.FileRecord{a, b}, 0)
	if err != nil {
		t.Fatalf("GroupRecords failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Kept != a || groups[0].Duplicates[0] != b {
		t.Fatalf("expected everything in one group, got %+v", groups)
	}
}

func TestGroupRecordsFirstSeenWins(t *testing.T) {
	// Input order must not matter; the lexicographically first path anchors.
	x := record(t, "/pics/z.png", "00000000000000ff")
	y := record(t, "/pics/a.png", "00000000000000ff")

	groups, err := dedup.GroupRecords([]*scan.FileRecord{x, y}, 90)
	if err != nil {
		t.Fatalf("GroupRecords failed: %v", err)
	}
	if groups[0].Kept != y {
		t.Fatalf("expected /pics/a.png to be kept, got %s", groups[0].Kept.Path)
	}
}

func TestGroupRecordsEmpty(t *testing.T) {
	groups, err := dedup.GroupRecords(nil, 90)
	if err != nil {
		t.Fatalf("GroupRecords failed: %v", err)
	}
	if groups != nil {
		t.Fatalf("expected no groups, got %+v", groups)
	}
}

func TestGroupRecordsMixedWidths(t *testing.T) {
	a := record(t, "/pics/a.png", "0000000000000000")
	wide, err := imagehash.DecodeHex("00000000000000000000000000000000", 128)
	if err != nil {
		t.Fatalf("DecodeHex: %v", err)
	}
	b := &scan.FileRecord{Path: "/pics/b.png", Hash: wide}

	if _, err := dedup.GroupRecords([]*scan.FileRecord{a, b}, 90); err == nil {
		t.Fatal("expected error for mixed widths")
	}
}

func TestDuplicateGroups(t *testing.T) {
	a := record(t, "/pics/a.png", "0000000000000000")
	b := record(t, "/pics/b.png", "0000000000000000")
	c := record(t, "/pics/c.png", "ffffffffffffffff")

	groups, err := dedup.GroupRecords([]*scan.FileRecord{a, b, c}, 100)
	if err != nil {
		t.Fatalf("GroupRecords failed: %v", err)
	}
	dupes := dedup.DuplicateGroups(groups)
	if len(dupes) != 1 || dupes[0].Kept != a {
		t.Fatalf("expected one duplicate group anchored at a, got %+v", dupes)
	}
}
