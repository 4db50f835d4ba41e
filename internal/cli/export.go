package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/export"
	"github.com/rileyhilliard/statdash/internal/lock"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/source"
	"github.com/rileyhilliard/statdash/internal/stats"
	"github.com/rileyhilliard/statdash/internal/ui"
	"github.com/rileyhilliard/statdash/internal/util"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Source   SourceFlags
	Interval string
	Count    int
	Output   string
}

// exportCommand records one CSV row per snapshot until Count rows are
// written or the context is cancelled.
func exportCommand(cmd *cobra.Command, opts ExportOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interval, err := ParseIntervalFlag(opts.Interval)
	if err != nil {
		return err
	}
	if interval == 0 {
		interval = cfg.Refresh.Interval
	}

	log := logger.Default()
	src, timeout, err := buildSource(cfg, opts.Source, log)
	if err != nil {
		return err
	}

	path := opts.Output
	if path == "" {
		path = fmt.Sprintf("system_stats_%s.csv", time.Now().Format("20060102_150405"))
	}
	path = config.ExpandTilde(path)

	// A second recorder on the same file would interleave rows.
	lk, err := lock.Acquire(cmd.Context(), lock.PathFor(path), lock.Options{
		Stale:   lock.DefaultStale,
		Command: "statdash export",
	})
	if err != nil {
		return err
	}
	defer lk.Release()

	sw, err := export.CreateSystemLog(path)
	if err != nil {
		return err
	}
	defer sw.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recording %s every %s to %s\n", src.Describe(), interval, path)

	rows, err := recordMetrics(cmd.Context(), src, sw, recordOptions{
		Interval: interval,
		Timeout:  timeout,
		Count:    opts.Count,
		Logger:   log,
	})
	fmt.Fprintf(out, "%s wrote %d %s to %s\n", ui.SymbolSuccess, rows, util.Pluralize(rows, "row", "rows"), path)
	return err
}

type recordOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	Count    int
	Logger   logger.Logger
}

// metricsSink receives one snapshot per row. *export.SystemWriter satisfies it.
type metricsSink interface {
	Write(snap *stats.Snapshot) error
}

// recordMetrics fetches a snapshot immediately and then every Interval.
// Failed fetches are logged and skipped. It returns the number of rows
// written; cancellation is a normal stop, not an error.
func recordMetrics(ctx context.Context, src source.StatsSource, sink metricsSink, opts recordOptions) (int, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	rows := 0
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		snap, err := src.FetchSnapshot(fetchCtx)
		cancel()
		if err == nil && snap == nil {
			err = source.NoSnapshot(src)
		}

		switch {
		case ctx.Err() != nil:
			return rows, nil
		case err != nil:
			opts.Logger.Warn("skipping row: %v", err)
		default:
			if err := sink.Write(snap); err != nil {
				return rows, err
			}
			rows++
			opts.Logger.Debug("row %d at %s", rows, snap.Timestamp.Format(time.RFC3339))
		}

		if opts.Count > 0 && rows >= opts.Count {
			return rows, nil
		}

		select {
		case <-ctx.Done():
			return rows, nil
		case <-ticker.C:
		}
	}
}
