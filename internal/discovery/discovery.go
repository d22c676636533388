// Package discovery enumerates the image files a run will consider.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"winnow/internal/errkind"
)

// FindImages walks root and returns the absolute paths of regular files
// whose extension matches exts (case-insensitive, leading dot expected).
// The result is sorted so downstream ordering is reproducible across runs.
func FindImages(root string, exts []string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrConfig, "discovery", "stat source", root, err)
	}
	if !info.IsDir() {
		return nil, errkind.Wrap(errkind.ErrConfig, "discovery", "source", root+" is not a directory", nil)
	}

	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
