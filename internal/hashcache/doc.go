// Package hashcache persists per-file content digests and perceptual
// fingerprints in SQLite so unchanged files are never rehashed.
//
// The Store manages the database connection, schema initialization, atomic
// per-path upserts, and pruning of entries whose files no longer exist. WAL
// journaling plus a busy timeout make it safe for cooperating processes
// hashing disjoint file subsets: a partial write is atomically invisible and
// a crash mid-write never yields a readable corrupt entry. A malformed row
// (truncated fingerprint, unparseable timestamp) degrades to a cache miss
// and is deleted, never an error.
//
// The engine consumes the Cache interface rather than the concrete Store;
// MemoryCache backs tests without touching disk.
package hashcache
