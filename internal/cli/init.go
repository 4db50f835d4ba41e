package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/source"
	"github.com/rileyhilliard/statdash/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	URL            string // Pre-specified stats URL
	Dir            string // Directory to write into, default "."
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// initProbeTimeout bounds the reachability check before saving.
const initProbeTimeout = 3 * time.Second

// probeURL checks that url serves a decodable snapshot.
var probeURL = func(ctx context.Context, u string) error {
	ctx, cancel := context.WithTimeout(ctx, initProbeTimeout)
	defer cancel()
	_, err := source.NewHTTPSource(u, initProbeTimeout).FetchSnapshot(ctx)
	return err
}

// stdinIsTerminal reports whether prompts can be shown.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Init creates a new .statdash.yaml configuration file.
func Init(out io.Writer, opts InitOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	interactive := !opts.NonInteractive && stdinIsTerminal()

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if !interactive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.URL != "" {
		cfg.Source.URL = opts.URL
	}

	if interactive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := validateStatsURL(cfg.Source.URL); err != nil {
		return errors.New(errors.ErrConfig, err.Error(),
			"Use the full endpoint, e.g. http://localhost:8080/stats")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Check the endpoint before saving. A server that isn't up yet is not
	// fatal: the dashboard keeps retrying.
	fmt.Fprintf(out, "Checking %s ... ", cfg.Source.URL)
	if err := probeURL(context.Background(), cfg.Source.URL); err != nil {
		fmt.Fprintf(out, "%s\n", ui.SymbolFail)
		fmt.Fprintf(out, "  %s\n\n", errors.OneLine(err))

		if interactive {
			var saveAnyway bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Save config anyway? (Start 'statdash serve' there later)").
						Value(&saveAnyway),
				),
			)
			if formErr := form.Run(); formErr != nil || !saveAnyway {
				return errors.WrapWithCode(err, errors.ErrTransport,
					fmt.Sprintf("Couldn't reach %s", cfg.Source.URL),
					"Run 'statdash serve' on that machine, or pick another URL")
			}
		}
	} else {
		fmt.Fprintf(out, "%s\n\n", ui.SymbolSuccess)
	}

	if err := config.Write(configPath, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  statdash serve      - Serve this machine's stats")
	fmt.Fprintln(out, "  statdash watch      - Open the dashboard")
	fmt.Fprintln(out, "  statdash snapshot   - Print one snapshot")

	return nil
}

// promptConfig asks for the values most people change.
func promptConfig(cfg *config.Config) error {
	sourceURL := cfg.Source.URL
	interval := cfg.Refresh.Interval.String()
	policy := cfg.Refresh.Policy

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Stats URL").
				Description("The /stats endpoint of a machine running 'statdash serve'").
				Placeholder("http://localhost:8080/stats").
				Value(&sourceURL).
				Validate(validateStatsURL),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Refresh interval").
				Description(fmt.Sprintf("How often to poll (minimum %s)", config.MinRefreshInterval)).
				Placeholder("2s").
				Value(&interval).
				Validate(func(s string) error {
					d, err := time.ParseDuration(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("use a duration like 2s or 500ms")
					}
					if d < config.MinRefreshInterval {
						return fmt.Errorf("minimum is %s", config.MinRefreshInterval)
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("When a poll is still running").
				Options(
					huh.NewOption("Skip the next poll (serialize)", config.PolicySerialize),
					huh.NewOption("Send it anyway, newest response wins (overlap)", config.PolicyOverlap),
				).
				Value(&policy),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}

	d, err := time.ParseDuration(strings.TrimSpace(interval))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", interval),
			"Try something like 2s or 500ms.")
	}

	cfg.Source.URL = strings.TrimSpace(sourceURL)
	cfg.Refresh.Interval = d
	cfg.Refresh.Policy = policy
	return nil
}

// validateStatsURL accepts absolute http(s) URLs.
func validateStatsURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("stats URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("'%s' isn't an http:// or https:// URL", s)
	}
	return nil
}
