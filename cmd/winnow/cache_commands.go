package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"winnow/internal/config"
	"winnow/internal/discovery"
	"winnow/internal/hashcache"
	"winnow/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the hash cache",
	}

	cacheCmd.AddCommand(newCacheInfoCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

// withCache opens the store under the same lock a dedup run takes, so
// maintenance never races a scan.
func withCache(ctx *commandContext, fn func(*cobra.Command, *config.Config, *hashcache.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return err
		}
		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}

		lock := flock.New(cfg.CachePath() + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire cache lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("cache %s is in use by another winnow process", cfg.CachePath())
		}
		defer lock.Unlock()

		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		store, err := hashcache.Open(cfg.CachePath(), logger)
		if err != nil {
			return err
		}
		defer store.Close()

		return fn(cmd, cfg, store)
	}
}

func newCacheInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show hash cache location and size",
		RunE: withCache(ctx, func(cmd *cobra.Command, cfg *config.Config, store *hashcache.Store) error {
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:    %s\n", stats.Path)
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Size:    %s\n", humanBytes(stats.SizeBytes))
			return nil
		}),
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop cache entries for files no longer under the source directory",
		RunE: withCache(ctx, func(cmd *cobra.Command, cfg *config.Config, store *hashcache.Store) error {
			if cfg.Paths.SourceDir == "" {
				return fmt.Errorf("pruning needs paths.source_dir to know which files still exist")
			}
			paths, err := discovery.FindImages(cfg.Paths.SourceDir, cfg.Dedup.Extensions)
			if err != nil {
				return err
			}
			keep := make(map[string]struct{}, len(paths))
			for _, p := range paths {
				keep[p] = struct{}{}
			}
			pruned, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d stale entries\n", pruned)
			return nil
		}),
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached hash",
		RunE: withCache(ctx, func(cmd *cobra.Command, cfg *config.Config, store *hashcache.Store) error {
			cleared, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries\n", cleared)
			return nil
		}),
	}
}
