package testsupport

import (
	"path/filepath"
	"testing"

	"winnow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "source")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.QuarantineDir = filepath.Join(base, "quarantine")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Dedup.CoreSize = 16
	cfg.Dedup.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithThreshold overrides the similarity threshold on the test config.
func WithThreshold(percent float64) ConfigOption {
	return func(c *config.Config) {
		c.Dedup.ThresholdPercent = percent
	}
}

// WithCoreSize overrides the fingerprint resolution on the test config.
func WithCoreSize(coreSize int) ConfigOption {
	return func(c *config.Config) {
		c.Dedup.CoreSize = coreSize
	}
}
