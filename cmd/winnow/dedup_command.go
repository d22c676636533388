package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"winnow/internal/config"
	"winnow/internal/errkind"
	"winnow/internal/logging"
	"winnow/internal/run"
)

func newDedupCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag    string
		thresholdFlag float64
		coreSizeFlag  int
		workersFlag   int
		removeFlag    string
		noCacheFlag   bool
		jsonFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "dedup [source-dir]",
		Short: "Scan a directory and deal with duplicate images",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// Flags override the loaded config for this invocation only.
			cfg := *base
			if len(args) == 1 {
				sourceFlag = args[0]
			}
			if sourceFlag != "" {
				expanded, err := config.ExpandPath(sourceFlag)
				if err != nil {
					return err
				}
				cfg.Paths.SourceDir = expanded
			}
			if cfg.Paths.SourceDir == "" {
				return errkind.Wrap(errkind.ErrConfig, "dedup", "source",
					"no source directory; pass one as an argument or set paths.source_dir", nil)
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Dedup.ThresholdPercent = thresholdFlag
			}
			if cmd.Flags().Changed("core-size") {
				cfg.Dedup.CoreSize = coreSizeFlag
			}
			if cmd.Flags().Changed("workers") {
				cfg.Dedup.Workers = workersFlag
			}
			if cmd.Flags().Changed("remove") {
				cfg.Removal.Mode = removeFlag
			}
			if noCacheFlag {
				cfg.Cache.Enabled = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(&cfg)
			if err != nil {
				return err
			}

			session := &run.Session{Config: &cfg, Logger: logger}
			if !jsonFlag && stderrIsTerminal() {
				// Progress callbacks arrive from scan workers concurrently.
				var mu sync.Mutex
				var bar *progressbar.ProgressBar
				session.Progress = func(done, total int) {
					mu.Lock()
					defer mu.Unlock()
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetDescription("hashing"),
							progressbar.OptionSetWriter(os.Stderr),
							progressbar.OptionClearOnFinish(),
							progressbar.OptionShowCount(),
						)
					}
					bar.Set(done)
				}
			}

			report, err := session.Run(cmd.Context())
			if err != nil {
				if errors.Is(err, run.ErrCacheLocked) {
					return fmt.Errorf("another winnow run is using this cache; wait for it to finish or pass --no-cache")
				}
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, report.Summary())
			}
			renderReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Directory to scan for duplicate images")
	cmd.Flags().Float64VarP(&thresholdFlag, "threshold", "t", 0, "Similarity threshold percent (0-100)")
	cmd.Flags().IntVar(&coreSizeFlag, "core-size", 0, "Fingerprint sampling resolution")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Hashing worker count (0 = all CPUs)")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Removal mode: dry-run, delete, or quarantine")
	cmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "Skip the persistent hash cache")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the report as JSON")

	return cmd
}

func renderReport(cmd *cobra.Command, report *run.Report) {
	out := cmd.OutOrStdout()
	summary := report.Summary()

	fmt.Fprintf(out, "Scanned %d images in %s (%d cache hits, %d hashed)\n",
		summary.Scanned, report.Duration.Round(time.Millisecond), summary.CacheHits, summary.CacheMisses)

	if len(summary.Groups) == 0 {
		fmt.Fprintln(out, "No duplicates found.")
	} else {
		rows := make([][]string, 0, len(summary.Groups))
		for i, g := range summary.Groups {
			for j, dup := range g.Duplicates {
				kept := g.Kept
				index := strconv.Itoa(i + 1)
				if j > 0 {
					kept = ""
					index = ""
				}
				rows = append(rows, []string{index, kept, dup})
			}
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Group", "Kept", "Duplicate"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft},
		))
		verb := removalVerb(summary.RemovalMode)
		fmt.Fprintf(out, "%d duplicates %s, %s reclaimed\n",
			summary.DuplicateCount, verb, humanBytes(summary.BytesReclaimed))
	}

	if len(summary.Failures) > 0 {
		fmt.Fprintf(out, "Skipped %d files:\n", len(summary.Failures))
		for _, f := range summary.Failures {
			fmt.Fprintf(out, "  %s: %s\n", f.Path, f.Reason)
		}
	}
	if len(summary.RemovalFailures) > 0 {
		fmt.Fprintf(out, "Failed to remove %d files:\n", len(summary.RemovalFailures))
		for _, p := range summary.RemovalFailures {
			fmt.Fprintf(out, "  %s\n", p)
		}
	}
}

func removalVerb(mode string) string {
	switch mode {
	case "delete":
		return "deleted"
	case "quarantine":
		return "quarantined"
	default:
		return "found (dry run)"
	}
}
