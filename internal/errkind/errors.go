package errkind

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRead marks files that could not be read from storage.
	ErrRead = errors.New("read error")
	// ErrDecode marks files that are not decodable images.
	ErrDecode = errors.New("decode error")
	// ErrCacheCorrupt marks persisted cache entries that could not be parsed.
	ErrCacheCorrupt = errors.New("cache corruption")
	// ErrConfig marks invalid configuration detected before a run starts.
	ErrConfig = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrRead
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsPerFile reports whether err should be isolated to a single file rather
// than aborting the batch.
func IsPerFile(err error) bool {
	return errors.Is(err, ErrRead) || errors.Is(err, ErrDecode)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
