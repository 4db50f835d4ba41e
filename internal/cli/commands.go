package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/errors"
)

// Command-specific flags
var (
	watchOpts    WatchOptions
	serveOpts    ServeOptions
	snapshotOpts SnapshotOptions
	exportOpts   ExportOptions
	initOpts     InitOptions
	doctorOpts   DoctorOptions
)

// watchCmd starts the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard for a stats endpoint",
	Long: `Start an interactive dashboard that polls a statdash stats endpoint
and shows CPU, memory, file systems, network and the process table.

Sort order and pins live only in this session. The auto-refresh toggle
is remembered between runs.

Keyboard shortcuts:
  q / Ctrl+C     Quit
  r              Refresh now
  a              Toggle auto-refresh
  left/right     Move column focus
  s / Enter      Sort by focused column (again to flip direction)
  1-9, 0         Sort by the nth sortable column
  up/k down/j    Select process
  space / p      Pin or unpin the selected process
  e              Export the process table to CSV
  ?              Show help

Examples:
  statdash watch
  statdash watch --url http://build-box:8080/stats --interval 5s
  statdash watch --local --sort memory --pin 1,4012`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd, watchOpts)
	},
}

// serveCmd exposes this machine's stats over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve this machine's stats over HTTP",
	Long: `Collect stats from this machine and serve them for 'statdash watch'.

Endpoints:
  GET /stats       snapshot as JSON
  GET /stats.csv   process table as CSV (?sort=cpu&order=desc&pin=12,40)
  GET /healthz     liveness check

Examples:
  statdash serve
  statdash serve --port 9000 --cache-ttl 1s --max-processes 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCommand(cmd, serveOpts)
	},
}

// snapshotCmd prints one snapshot and exits
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print one snapshot and exit",
	Long: `Fetch a single snapshot and print it as tables, JSON or CSV.

Examples:
  statdash snapshot
  statdash snapshot --local --sort memory
  statdash snapshot --pin 1 --csv > procs.csv
  statdash snapshot --json | jq '.data.cpu_usage'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(cmd, snapshotOpts)
	},
}

// exportCmd records system metrics to CSV
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Record system metrics to a CSV log",
	Long: `Poll the stats source on an interval and append one CSV row per
snapshot: CPU, memory, disk I/O and network totals.

Stops after --count rows, or on Ctrl+C.

Examples:
  statdash export --output metrics.csv
  statdash export --local --interval 10s --count 360`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportCommand(cmd, exportOpts)
	},
}

// initCmd creates a config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .statdash.yaml config file",
	Long: `Create a .statdash.yaml in the current directory.

Prompts for the stats URL, refresh interval and poll policy unless
--non-interactive is given or stdin is not a terminal.

Examples:
  statdash init
  statdash init --url http://build-box:8080/stats --non-interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.OutOrStdout(), initOpts)
	},
}

// doctorCmd diagnoses the config, source and writable paths
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that statdash is set up correctly",
	Long: `Run diagnostic checks and report problems with suggestions.

Checks the config file, fetches one snapshot from the source and times it,
collects locally, and makes sure the preferences, log and export
directories are writable.

Examples:
  statdash doctor
  statdash doctor --url http://build-box:8080/stats
  statdash doctor --fix
  statdash doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd, doctorOpts)
	},
}

// configCmd groups config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or edit the config file",
}

// configSetCmd updates one key in the config file
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a single key in the config file, keeping comments and layout.

Examples:
  statdash config set refresh.interval 5s
  statdash config set refresh.policy overlap
  statdash config set view.pins 1,4012`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd, args[0], args[1])
	},
}

// configPathCmd prints which config file would be used
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configPathCommand(cmd)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for statdash.

Examples:
  # Bash
  statdash completion bash > /etc/bash_completion.d/statdash

  # Zsh
  statdash completion zsh > "${fpath[1]}/_statdash"

  # Fish
  statdash completion fish > ~/.config/fish/completions/statdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// watch command flags
	AddSourceFlags(watchCmd, &watchOpts.Source)
	AddViewFlags(watchCmd, &watchOpts.View)
	watchCmd.Flags().StringVar(&watchOpts.Interval, "interval", "", "refresh interval (e.g., 2s, 5s, 1m)")
	watchCmd.Flags().StringVar(&watchOpts.Policy, "policy", "", "overlapping polls: serialize or overlap")
	watchCmd.Flags().StringVar(&watchOpts.ExportDir, "export-dir", "", "directory for 'e' exports (default: export.dir from config)")

	// serve command flags
	serveCmd.Flags().IntVar(&serveOpts.Port, "port", 0, "port to listen on (default: server.port from config)")
	serveCmd.Flags().StringVar(&serveOpts.Addr, "addr", "", "interface to bind (default: all)")
	serveCmd.Flags().StringVar(&serveOpts.CacheTTL, "cache-ttl", "", "reuse a collected snapshot for this long (e.g., 2s)")
	serveCmd.Flags().IntVar(&serveOpts.MaxProcesses, "max-processes", 0, "keep only the top N processes by CPU")

	// snapshot command flags
	AddSourceFlags(snapshotCmd, &snapshotOpts.Source)
	AddViewFlags(snapshotCmd, &snapshotOpts.View)
	snapshotCmd.Flags().BoolVar(&snapshotOpts.JSON, "json", false, "print the snapshot as JSON")
	snapshotCmd.Flags().BoolVar(&snapshotOpts.CSV, "csv", false, "print the process table as CSV")
	snapshotCmd.MarkFlagsMutuallyExclusive("json", "csv")

	// export command flags
	AddSourceFlags(exportCmd, &exportOpts.Source)
	exportCmd.Flags().StringVar(&exportOpts.Interval, "interval", "", "time between rows (default: refresh.interval from config)")
	exportCmd.Flags().IntVar(&exportOpts.Count, "count", 0, "stop after this many rows (0 runs until interrupted)")
	exportCmd.Flags().StringVarP(&exportOpts.Output, "output", "o", "", "CSV file to write (default: system_stats_<time>.csv)")

	// init command flags
	initCmd.Flags().StringVar(&initOpts.URL, "url", "", "pre-specify the stats URL")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "skip prompts, use flags and defaults")

	// doctor command flags
	AddSourceFlags(doctorCmd, &doctorOpts.Source)
	doctorCmd.Flags().BoolVar(&doctorOpts.JSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorOpts.Fix, "fix", false, "attempt automatic fixes where possible")

	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	// Register all commands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}
