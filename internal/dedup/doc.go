// Package dedup clusters scanned files into groups of perceptual
// duplicates.
//
// Grouping is anchored rather than transitive: candidates are compared
// against a group's first-seen file only, in deterministic path order, so
// the same input set always yields the same groups and the same kept file
// per group.
package dedup
