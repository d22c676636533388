package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SourceDir     string `toml:"source_dir"`
	CacheDir      string `toml:"cache_dir"`
	QuarantineDir string `toml:"quarantine_dir"`
	LogDir        string `toml:"log_dir"`
}

// Dedup contains tuning for the duplicate detection engine.
type Dedup struct {
	// ThresholdPercent is the similarity fraction; 100 keeps only
	// bit-identical fingerprints together, 0 groups everything.
	ThresholdPercent float64 `toml:"threshold_percent"`
	// CoreSize is the square sampling resolution of the fingerprint.
	// The useful range is 8-64; larger values capture smaller regions
	// of change, smaller values wash out local noise.
	CoreSize int `toml:"core_size"`
	// Workers is the hashing worker pool size. Zero means NumCPU.
	Workers int `toml:"workers"`
	// Extensions lists the file extensions treated as images.
	Extensions []string `toml:"extensions"`
}

// Cache contains configuration for the persistent hash cache.
type Cache struct {
	Enabled bool `toml:"enabled"`
	// TrustMTime allows a matching size+mtime pair to stand in for a
	// content digest check. Disable on storage with unreliable timestamps
	// to force rehashing every run.
	TrustMTime bool `toml:"trust_mtime"`
}

// Removal contains configuration for what happens to duplicates.
type Removal struct {
	// Mode is one of "dry-run", "delete", or "quarantine".
	Mode string `toml:"mode"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Winnow. It is resolved
// once (defaults, then file, then CLI flag overrides applied by the caller)
// and the engine only ever sees the final value.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Dedup   Dedup   `toml:"dedup"`
	Cache   Cache   `toml:"cache"`
	Removal Removal `toml:"removal"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/winnow/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("winnow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs. SourceDir is left
// alone; a missing source is reported at validation time instead.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.QuarantineDir) != "" {
		if err := os.MkdirAll(c.Paths.QuarantineDir, 0o755); err != nil {
			return fmt.Errorf("create quarantine directory %q: %w", c.Paths.QuarantineDir, err)
		}
	}
	return nil
}

// CachePath returns the location of the hash cache database.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.CacheDir, "hashes.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "winnow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/winnow"
	}
	return filepath.Join(home, ".cache", "winnow")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
