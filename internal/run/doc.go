// Package run orchestrates a full dedup pass over a source directory:
// discovery, the hashing scan, cache pruning, grouping, and removal. One
// run holds an exclusive file lock next to the cache database, so two
// processes never dedup against the same cache at once.
package run
