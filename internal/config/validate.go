package config

import (
	"fmt"

	"winnow/internal/errkind"
)

// Validate ensures the configuration is usable. Violations are fatal before
// any scanning begins and name the offending field with its accepted range.
func (c *Config) Validate() error {
	if err := c.validateDedup(); err != nil {
		return err
	}
	if err := c.validateRemoval(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDedup() error {
	if c.Dedup.ThresholdPercent < 0 || c.Dedup.ThresholdPercent > 100 {
		return errkind.Wrap(errkind.ErrConfig, "config", "validate",
			fmt.Sprintf("dedup.threshold_percent must be between 0 and 100, got %g", c.Dedup.ThresholdPercent), nil)
	}
	if c.Dedup.CoreSize < 1 || c.Dedup.CoreSize > 512 {
		return errkind.Wrap(errkind.ErrConfig, "config", "validate",
			fmt.Sprintf("dedup.core_size must be between 1 and 512 (sweet spot 8-64), got %d", c.Dedup.CoreSize), nil)
	}
	if c.Dedup.Workers < 1 {
		return errkind.Wrap(errkind.ErrConfig, "config", "validate",
			fmt.Sprintf("dedup.workers must be positive, got %d", c.Dedup.Workers), nil)
	}
	return nil
}

func (c *Config) validateRemoval() error {
	switch c.Removal.Mode {
	case "dry-run", "delete", "quarantine":
		return nil
	default:
		return errkind.Wrap(errkind.ErrConfig, "config", "validate",
			fmt.Sprintf("removal.mode must be one of dry-run, delete, quarantine; got %q", c.Removal.Mode), nil)
	}
}
