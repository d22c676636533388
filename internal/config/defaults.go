package config

const (
	defaultLogDir           = "~/.local/share/winnow/logs"
	defaultQuarantineDir    = "~/.local/share/winnow/quarantine"
	defaultThresholdPercent = 90.0
	defaultCoreSize         = 16
	defaultRemovalMode      = "dry-run"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

func defaultExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:      defaultCacheDir(),
			QuarantineDir: defaultQuarantineDir,
			LogDir:        defaultLogDir,
		},
		Dedup: Dedup{
			ThresholdPercent: defaultThresholdPercent,
			CoreSize:         defaultCoreSize,
			Workers:          0,
			Extensions:       defaultExtensions(),
		},
		Cache: Cache{
			Enabled:    true,
			TrustMTime: true,
		},
		Removal: Removal{
			Mode: defaultRemovalMode,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
