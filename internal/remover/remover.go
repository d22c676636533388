package remover

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"winnow/internal/dedup"
	"winnow/internal/errkind"
)

// Mode selects what happens to duplicate files.
type Mode string

const (
	// ModeDryRun reports what would be removed without touching anything.
	ModeDryRun Mode = "dry-run"
	// ModeDelete removes duplicates permanently.
	ModeDelete Mode = "delete"
	// ModeQuarantine moves duplicates into the quarantine directory.
	ModeQuarantine Mode = "quarantine"
)

// ParseMode validates a mode string from config or flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDryRun, ModeDelete, ModeQuarantine:
		return Mode(s), nil
	default:
		return "", errkind.Wrap(errkind.ErrConfig, "remover", "parse mode",
			fmt.Sprintf("unknown removal mode %q (want dry-run, delete, or quarantine)", s), nil)
	}
}

// FailedRemoval records a duplicate that could not be removed.
type FailedRemoval struct {
	Path string
	Err  error
}

// Outcome summarizes a removal pass. In dry-run mode Removed lists the
// files that would have been removed and BytesReclaimed the space that
// would have been freed.
type Outcome struct {
	Mode           Mode
	Removed        []string
	Failed         []FailedRemoval
	BytesReclaimed int64
}

// Remover disposes of the duplicates in each group, leaving the kept file
// untouched. Failures are per-file and never abort the pass.
type Remover struct {
	Mode          Mode
	QuarantineDir string
	Logger        *slog.Logger
}

// Remove processes every duplicate group.
func (r *Remover) Remove(groups []*dedup.Group) (*Outcome, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "remover")

	if r.Mode == ModeQuarantine {
		if r.QuarantineDir == "" {
			return nil, errkind.Wrap(errkind.ErrConfig, "remover", "quarantine",
				"quarantine mode requires paths.quarantine_dir", nil)
		}
		if err := os.MkdirAll(r.QuarantineDir, 0o755); err != nil {
			return nil, fmt.Errorf("create quarantine dir: %w", err)
		}
	}

	outcome := &Outcome{Mode: r.Mode}
	for _, group := range groups {
		for _, dup := range group.Duplicates {
			switch r.Mode {
			case ModeDryRun:
				logger.Info("would remove duplicate", "path", dup.Path, "kept", group.Kept.Path)
			case ModeDelete:
				if err := os.Remove(dup.Path); err != nil {
					logger.Warn("delete failed", "path", dup.Path, "error", err)
					outcome.Failed = append(outcome.Failed, FailedRemoval{Path: dup.Path, Err: err})
					continue
				}
				logger.Info("deleted duplicate", "path", dup.Path, "kept", group.Kept.Path)
			case ModeQuarantine:
				dest, err := r.quarantine(dup.Path)
				if err != nil {
					logger.Warn("quarantine failed", "path", dup.Path, "error", err)
					outcome.Failed = append(outcome.Failed, FailedRemoval{Path: dup.Path, Err: err})
					continue
				}
				logger.Info("quarantined duplicate", "path", dup.Path, "dest", dest, "kept", group.Kept.Path)
			default:
				return nil, errkind.Wrap(errkind.ErrConfig, "remover", "mode",
					fmt.Sprintf("unknown removal mode %q", r.Mode), nil)
			}
			outcome.Removed = append(outcome.Removed, dup.Path)
			outcome.BytesReclaimed += dup.Size
		}
	}
	return outcome, nil
}

// quarantine moves path into the quarantine directory, never overwriting
// an existing quarantined file.
func (r *Remover) quarantine(path string) (string, error) {
	dest := filepath.Join(r.QuarantineDir, filepath.Base(path))
	for i := 1; ; i++ {
		if _, err := os.Lstat(dest); os.IsNotExist(err) {
			break
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", dest, err)
		}
		ext := filepath.Ext(path)
		base := filepath.Base(path)
		dest = filepath.Join(r.QuarantineDir,
			fmt.Sprintf("%s.%d%s", base[:len(base)-len(ext)], i, ext))
	}
	if err := moveFile(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// moveFile renames src to dest, falling back to copy-and-delete when the
// quarantine directory sits on another filesystem.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return os.Remove(src)
}
