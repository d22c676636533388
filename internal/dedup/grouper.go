package dedup

import (
	"fmt"
	"math"
	"sort"

	"winnow/internal/scan"
)

// Group is one cluster of perceptually similar files. Kept is the anchor,
// the first file seen in path order; Duplicates are the later files that
// landed within the distance budget of the anchor.
type Group struct {
	Kept       *scan.FileRecord
	Duplicates []*scan.FileRecord
}

// HasDuplicates reports whether the group contains removal candidates.
func (g *Group) HasDuplicates() bool {
	return len(g.Duplicates) > 0
}

// MaxDistance converts a similarity percentage into the Hamming distance
// budget for fingerprints of the given bit width. 100 demands identical
// fingerprints; 0 accepts anything.
func MaxDistance(thresholdPercent float64, bitWidth int) int {
	return int(math.Round((1 - thresholdPercent/100) * float64(bitWidth)))
}

// GroupRecords clusters records by perceptual similarity. Records are
// ordered by path first, so the anchor of every group and the kept/duplicate
// split are deterministic for a given input set. Membership is anchored:
// a file joins the first group whose anchor is within the distance budget,
// and is never compared against the group's other members.
func GroupRecords(records []*scan.FileRecord, thresholdPercent float64) ([]*Group, error) {
	if len(records) == 0 {
		return nil, nil
	}

	ordered := make([]*scan.FileRecord, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Path < ordered[j].Path })

	width := ordered[0].Hash.Width()
	for _, r := range ordered[1:] {
		if r.Hash.Width() != width {
			return nil, fmt.Errorf("mixed fingerprint widths %d and %d", width, r.Hash.Width())
		}
	}

	maxDist := MaxDistance(thresholdPercent, width)
	if maxDist == 0 {
		return groupExact(ordered)
	}
	return groupAnchored(ordered, maxDist)
}

// groupExact handles the identical-fingerprint case with prefix bucketing,
// comparing each record only against anchors sharing its first 16 bits.
// Distance zero implies an equal prefix, so the result matches what the
// full anchored sweep would produce.
func groupExact(ordered []*scan.FileRecord) ([]*Group, error) {
	var groups []*Group
	buckets := make(map[uint16][]*Group)
	for _, r := range ordered {
		key := r.Hash.Prefix16()
		joined := false
		for _, g := range buckets[key] {
			dist, err := r.Hash.Distance(g.Kept.Hash)
			if err != nil {
				return nil, err
			}
			if dist == 0 {
				g.Duplicates = append(g.Duplicates, r)
				joined = true
				break
			}
		}
		if !joined {
			g := &Group{Kept: r}
			buckets[key] = append(buckets[key], g)
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func groupAnchored(ordered []*scan.FileRecord, maxDist int) ([]*Group, error) {
	var groups []*Group
	for _, r := range ordered {
		joined := false
		for _, g := range groups {
			dist, err := r.Hash.Distance(g.Kept.Hash)
			if err != nil {
				return nil, err
			}
			if dist <= maxDist {
				g.Duplicates = append(g.Duplicates, r)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, &Group{Kept: r})
		}
	}
	return groups, nil
}

// DuplicateGroups filters groups down to those holding removal candidates.
func DuplicateGroups(groups []*Group) []*Group {
	var dupes []*Group
	for _, g := range groups {
		if g.HasDuplicates() {
			dupes = append(dupes, g)
		}
	}
	return dupes
}
