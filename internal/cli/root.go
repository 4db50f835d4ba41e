package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/ui"
)

// Global flags
var (
	cfgFile   string
	verbose   bool
	colorMode string
)

var rootCmd = &cobra.Command{
	Use:   "statdash",
	Short: "Live process and system stats dashboard",
	Long: `statdash polls a stats endpoint and shows CPU, memory, file systems,
network and a sortable process table in the terminal.

Run 'statdash serve' on the machine you want to watch, then
'statdash watch --url http://host:8080/stats' anywhere else.
'statdash watch --local' skips the server and reads this machine directly.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./.statdash.yaml or ~/.config/statdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", ui.ColorAuto, "color output: auto, always or never")
}

// setupGlobals applies the persistent flags before any subcommand runs.
func setupGlobals(cmd *cobra.Command, args []string) error {
	switch colorMode {
	case ui.ColorAuto, ui.ColorAlways, ui.ColorNever:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a color mode", colorMode),
			"Use --color auto, --color always or --color never")
	}
	ui.SetColorMode(colorMode, cmd.OutOrStdout())

	if verbose {
		logger.SetDefault(logger.NewWriterLogger(os.Stderr, "", true))
	}
	return nil
}

// loadConfig resolves the config file (or defaults) and validates it.
func loadConfig() (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Default().Debug("using config %s", path)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command. Errors are printed to stderr and the
// process exits with status 1. SIGINT and SIGTERM cancel the command's
// context so serve and export can shut down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if isUnknownCommandError(err) {
			fmt.Fprintln(os.Stderr, err.Error())
			if name := extractUnknownCommand(err); name != "" {
				if suggestions := rootCmd.SuggestionsFor(name); len(suggestions) > 0 {
					fmt.Fprintf(os.Stderr, "\nDid you mean %s?\n", strings.Join(suggestions, " or "))
				}
			}
			fmt.Fprintln(os.Stderr, "\nRun 'statdash --help' for usage.")
			os.Exit(1)
		}
		fmt.Fprint(os.Stderr, err.Error())
		if !strings.HasSuffix(err.Error(), "\n") {
			fmt.Fprintln(os.Stderr)
		}
		os.Exit(1)
	}
}

// isUnknownCommandError reports whether err came from cobra rejecting the
// command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "statdash"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
