package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/collector"
	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/source"
	"github.com/rileyhilliard/statdash/internal/util"
)

// SourceFlags picks where snapshots come from. Used by watch and snapshot.
type SourceFlags struct {
	URL     string
	Local   bool
	Timeout string
}

// AddSourceFlags registers --url, --local and --timeout on a command.
func AddSourceFlags(cmd *cobra.Command, flags *SourceFlags) {
	cmd.Flags().StringVar(&flags.URL, "url", "", "stats endpoint (default: source.url from config)")
	cmd.Flags().BoolVar(&flags.Local, "local", false, "read this machine directly instead of polling a server")
	cmd.Flags().StringVar(&flags.Timeout, "timeout", "", "per-request timeout (e.g., 5s, 500ms)")
}

// ViewFlags sets the initial table state. Used by watch and snapshot.
type ViewFlags struct {
	Sort string
	Asc  bool
	Pin  string
}

// AddViewFlags registers --sort, --asc and --pin on a command.
func AddViewFlags(cmd *cobra.Command, flags *ViewFlags) {
	cmd.Flags().StringVar(&flags.Sort, "sort", "", "initial sort column (cpu, memory, name, username, cpu_time, threads)")
	cmd.Flags().BoolVar(&flags.Asc, "asc", false, "sort ascending instead of descending")
	cmd.Flags().StringVar(&flags.Pin, "pin", "", "pids to pin, comma separated (e.g., 1,4012)")
}

// ValidateURLAndLocal checks that --url and --local are not used together.
func ValidateURLAndLocal(url string, local bool) error {
	if local && url != "" {
		return errors.New(errors.ErrConfig,
			"--url and --local cannot be used together",
			"Use --local to read this machine, or --url to poll a server, but not both.")
	}
	return nil
}

// ParseDurationFlag parses a duration flag. Returns zero duration if the
// flag is empty.
func ParseDurationFlag(name, flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid %s", flag, name),
			"Try something like 5s, 2m, or 500ms.")
	}
	if duration <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s must be positive, got %s", name, flag),
			"Try something like 5s, 2m, or 500ms.")
	}
	return duration, nil
}

// ParseIntervalFlag is ParseDurationFlag with the refresh floor applied.
func ParseIntervalFlag(flag string) (time.Duration, error) {
	d, err := ParseDurationFlag("interval", flag)
	if err != nil {
		return 0, err
	}
	if d != 0 && d < config.MinRefreshInterval {
		return 0, errors.New(errors.ErrConfig,
			"Interval too short",
			fmt.Sprintf("Minimum interval is %s to avoid hammering the stats endpoint", config.MinRefreshInterval))
	}
	return d, nil
}

// ParsePinFlag parses --pin. An empty flag pins nothing.
func ParsePinFlag(raw string) ([]int32, error) {
	pids, err := util.ParsePIDs(raw)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid pin list '%s'", raw),
			"Use comma separated positive pids, e.g. --pin 12,40")
	}
	return pids, nil
}

// resolveViewState merges config defaults with command-line overrides.
// Flags win; --pin replaces the configured pins rather than adding to them.
func resolveViewState(cmd *cobra.Command, cfg *config.Config, flags ViewFlags) (proctable.ViewState, error) {
	state := proctable.DefaultViewState()

	sortName := cfg.View.Sort
	if flags.Sort != "" {
		sortName = flags.Sort
	}
	if sortName != "" {
		key, err := proctable.ParseSortKey(sortName)
		if err != nil {
			return state, err
		}
		if !key.Sortable() {
			return state, errors.New(errors.ErrConfig,
				fmt.Sprintf("Column '%s' can't be sorted", sortName),
				"Sort by one of: "+sortableNames())
		}
		state.SortKey = key
	}

	state.Ascending = cfg.View.Ascending
	if cmd != nil && cmd.Flags().Changed("asc") {
		state.Ascending = flags.Asc
	}

	pids := cfg.View.Pins
	if flags.Pin != "" {
		parsed, err := ParsePinFlag(flags.Pin)
		if err != nil {
			return state, err
		}
		pids = parsed
	}
	state.Pins = proctable.NewPinSet(pids...)
	return state, nil
}

func sortableNames() string {
	keys := proctable.SortableKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return util.JoinOrNone(names)
}

// thresholdsFrom converts the configured warning and critical levels.
func thresholdsFrom(cfg *config.Config) proctable.Thresholds {
	return proctable.Thresholds{
		Medium: cfg.View.Thresholds.Warning,
		High:   cfg.View.Thresholds.Critical,
	}
}

// buildSource returns the snapshot source selected by flags and config.
func buildSource(cfg *config.Config, flags SourceFlags, log logger.Logger) (source.StatsSource, time.Duration, error) {
	if err := ValidateURLAndLocal(flags.URL, flags.Local); err != nil {
		return nil, 0, err
	}

	timeout, err := ParseDurationFlag("timeout", flags.Timeout)
	if err != nil {
		return nil, 0, err
	}
	if timeout == 0 {
		timeout = cfg.Source.Timeout
	}

	if flags.Local {
		c := collector.New(collector.Options{
			CacheTTL:     -1,
			MaxProcesses: -1,
			Logger:       log,
		})
		return source.NewLocalSource(c), timeout, nil
	}

	url := cfg.Source.URL
	if flags.URL != "" {
		url = flags.URL
	}
	return source.NewHTTPSource(url, timeout).WithUserAgent("statdash/" + GetVersion()), timeout, nil
}
