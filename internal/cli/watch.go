package cli

import (
	stderrors "errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/monitor"
	"github.com/rileyhilliard/statdash/internal/prefs"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Source    SourceFlags
	View      ViewFlags
	Interval  string
	Policy    string
	ExportDir string
}

// watchCommand runs the dashboard until the user quits.
func watchCommand(cmd *cobra.Command, opts WatchOptions) error {
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

	policy, err := resolvePolicy(cfg, opts.Policy)
	if err != nil {
		return err
	}

	log, closer := openDashboardLog(cfg)
	defer closer.Close()

	src, timeout, err := buildSource(cfg, opts.Source, log)
	if err != nil {
		return err
	}

	state, err := resolveViewState(cmd, cfg, opts.View)
	if err != nil {
		return err
	}

	exportDir := cfg.Export.Dir
	if opts.ExportDir != "" {
		exportDir = config.ExpandTilde(opts.ExportDir)
	}

	prefsPath := cfg.Prefs.Path
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	log.Info("watching %s every %s (policy %s)", src.Describe(), interval, policy)

	model := monitor.NewModel(monitor.Options{
		Source:     src,
		Interval:   interval,
		Clock:      cfg.Refresh.Clock,
		Timeout:    timeout,
		Policy:     policy,
		State:      state,
		Thresholds: thresholdsFrom(cfg),
		Prefs:      prefs.New(prefsPath),
		ExportDir:  exportDir,
		Logger:     log,
		Context:    cmd.Context(),
	})

	// Run the TUI program
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Dashboard stopped unexpectedly",
			fmt.Sprintf("See the log at %s", cfg.Log.File))
	}
	return nil
}

// resolvePolicy lets --policy override refresh.policy.
func resolvePolicy(cfg *config.Config, flag string) (string, error) {
	if flag == "" {
		return cfg.Refresh.Policy, nil
	}
	switch flag {
	case config.PolicySerialize, config.PolicyOverlap:
		return flag, nil
	}
	return "", errors.New(errors.ErrConfig,
		fmt.Sprintf("'%s' isn't a poll policy", flag),
		"Use --policy serialize or --policy overlap")
}

// openDashboardLog opens log.file. The dashboard owns the terminal, so when
// the file can't be opened logging is dropped rather than sent to stderr.
func openDashboardLog(cfg *config.Config) (logger.Logger, io.Closer) {
	if cfg.Log.File == "" {
		return logger.Noop(), nopCloser{}
	}
	log, closer, err := logger.NewFileLogger(cfg.Log.File, "[watch]", cfg.Log.Debug || verbose)
	if err != nil {
		logger.Default().Warn("can't open log file %s: %v", cfg.Log.File, err)
		return logger.Noop(), nopCloser{}
	}
	return log, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
