package hashcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"winnow/internal/digest"
	"winnow/internal/errkind"
	"winnow/internal/imagehash"
)

// Store is the SQLite-backed Cache implementation.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ Cache = (*Store)(nil)

// Open initializes or connects to the cache database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, logger: logger.With("component", "hashcache")}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Lookup fetches the entry for path. A missing key returns (nil, nil). A
// row that cannot be parsed is deleted and reported as a miss so a single
// corrupted entry never fails the run.
func (s *Store) Lookup(ctx context.Context, path string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path, content_digest, fingerprint, core_size, size, mod_time, updated_at
         FROM hash_entries WHERE path = ?`, path)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, errkind.ErrCacheCorrupt) {
			s.logger.Warn("dropping corrupt cache entry", "path", path, "error", err)
			if _, delErr := s.db.ExecContext(ctx, `DELETE FROM hash_entries WHERE path = ?`, path); delErr != nil {
				return nil, fmt.Errorf("drop corrupt entry: %w", delErr)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("lookup entry: %w", err)
	}
	return entry, nil
}

// Upsert inserts or replaces the entry for its path in a single statement,
// so concurrent readers observe either the old or the new row, never a mix.
func (s *Store) Upsert(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hash_entries (path, content_digest, fingerprint, core_size, size, mod_time, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             content_digest = excluded.content_digest,
             fingerprint = excluded.fingerprint,
             core_size = excluded.core_size,
             size = excluded.size,
             mod_time = excluded.mod_time,
             updated_at = excluded.updated_at`,
		entry.Path,
		entry.Digest.String(),
		entry.Hash.EncodeHex(),
		entry.CoreSize,
		entry.Size,
		entry.ModTime.UTC().Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// Prune removes entries whose path is absent from the current file
// population, keeping the cache from growing without bound as source files
// are deleted.
func (s *Store) Prune(ctx context.Context, existing map[string]struct{}) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM hash_entries`)
	if err != nil {
		return 0, fmt.Errorf("list cached paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan cached path: %w", err)
		}
		if _, ok := existing[path]; !ok {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var pruned int64
	for _, path := range stale {
		res, err := tx.ExecContext(ctx, `DELETE FROM hash_entries WHERE path = ?`, path)
		if err != nil {
			return 0, fmt.Errorf("prune entry %q: %w", path, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		pruned += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return pruned, nil
}

// Clear removes every entry from the cache.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM hash_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports entry count and database size for diagnostics.
func (s *Store) Stats(ctx context.Context) (CacheStats, error) {
	stats := CacheStats{Path: s.path}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM hash_entries`)
	if err := row.Scan(&stats.Entries); err != nil {
		return stats, fmt.Errorf("count entries: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// corruptRow tags unparseable rows so Lookup can degrade them to a miss
// instead of failing the run.
func corruptRow(field string, err error) error {
	return errkind.Wrap(errkind.ErrCacheCorrupt, "hashcache", field, "", err)
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		path        string
		digestRaw   string
		fingerprint string
		coreSize    int
		size        int64
		modTimeRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&path, &digestRaw, &fingerprint, &coreSize, &size, &modTimeRaw, &updatedRaw); err != nil {
		return nil, err
	}

	contentDigest, err := digest.Parse(digestRaw)
	if err != nil {
		return nil, corruptRow("content digest", err)
	}
	if coreSize < imagehash.MinCoreSize || coreSize > imagehash.MaxCoreSize {
		return nil, corruptRow("core size", fmt.Errorf("%d out of range", coreSize))
	}
	hash, err := imagehash.DecodeHex(fingerprint, coreSize*coreSize)
	if err != nil {
		return nil, corruptRow("fingerprint", err)
	}
	modTime, err := time.Parse(time.RFC3339Nano, modTimeRaw)
	if err != nil {
		return nil, corruptRow("mod time", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updatedRaw)
	if err != nil {
		return nil, corruptRow("updated at", err)
	}

	return &Entry{
		Path:      path,
		Digest:    contentDigest,
		Hash:      hash,
		CoreSize:  coreSize,
		Size:      size,
		ModTime:   modTime,
		UpdatedAt: updatedAt,
	}, nil
}
