package run

import (
	"winnow/internal/dedup"
)

// GroupSummary is the serializable shape of one duplicate group.
type GroupSummary struct {
	Kept       string   `json:"kept"`
	Duplicates []string `json:"duplicates"`
}

// FailureSummary is the serializable shape of one per-file failure.
type FailureSummary struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary is the machine-readable form of a report, used for JSON output.
type Summary struct {
	RunID           string           `json:"run_id"`
	SourceDir       string           `json:"source_dir"`
	Scanned         int              `json:"scanned"`
	CacheHits       int              `json:"cache_hits"`
	CacheMisses     int              `json:"cache_misses"`
	UniqueImages    int              `json:"unique_images"`
	DuplicateCount  int              `json:"duplicate_count"`
	Groups          []GroupSummary   `json:"duplicate_groups"`
	Failures        []FailureSummary `json:"failures,omitempty"`
	PrunedEntries   int              `json:"pruned_cache_entries"`
	RemovalMode     string           `json:"removal_mode"`
	Removed         []string         `json:"removed,omitempty"`
	RemovalFailures []string         `json:"removal_failures,omitempty"`
	BytesReclaimed  int64            `json:"bytes_reclaimed"`
	DurationMS      int64            `json:"duration_ms"`
}

// DuplicateCount returns the number of removal candidates across all groups.
func (r *Report) DuplicateCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Duplicates)
	}
	return n
}

// Summary flattens the report for serialization.
func (r *Report) Summary() Summary {
	s := Summary{
		RunID:          r.RunID,
		SourceDir:      r.SourceDir,
		Scanned:        r.Counts.Scanned,
		CacheHits:      r.Counts.CacheHits,
		CacheMisses:    r.Counts.CacheMisses,
		UniqueImages:   len(r.Groups),
		DuplicateCount: r.DuplicateCount(),
		PrunedEntries:  r.Pruned,
		DurationMS:     r.Duration.Milliseconds(),
	}
	for _, g := range dedup.DuplicateGroups(r.Groups) {
		gs := GroupSummary{Kept: g.Kept.Path}
		for _, d := range g.Duplicates {
			gs.Duplicates = append(gs.Duplicates, d.Path)
		}
		s.Groups = append(s.Groups, gs)
	}
	for _, f := range r.Failures {
		s.Failures = append(s.Failures, FailureSummary{Path: f.Path, Reason: f.Reason})
	}
	if r.Removal != nil {
		s.RemovalMode = string(r.Removal.Mode)
		s.Removed = r.Removal.Removed
		s.BytesReclaimed = r.Removal.BytesReclaimed
		for _, f := range r.Removal.Failed {
			s.RemovalFailures = append(s.RemovalFailures, f.Path)
		}
	}
	return s
}
