// Package scan runs the hashing pass over discovered files.
//
// A pass stats each file, consults the hash cache, and only recomputes the
// content digest and perceptual fingerprint when the cached entry cannot be
// proven current. Per-file failures are collected, never fatal; only context
// cancellation aborts a pass.
package scan
