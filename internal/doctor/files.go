package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/prefs"
)

// DirCheck verifies a directory statdash writes into exists and is writable.
// A missing directory is fixable by creating it.
type DirCheck struct {
	ID    string // Check name
	Label string // What the directory holds, e.g. "Preferences"
	Dir   string
}

func (c *DirCheck) Name() string     { return c.ID }
func (c *DirCheck) Category() string { return CategoryFiles }

func (c *DirCheck) Run() CheckResult {
	info, err := os.Stat(c.Dir)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s directory %s does not exist", c.Label, c.Dir),
			Suggestion: "It is created on first write, or run with --fix to create it now",
			Fixable:    true,
		}
	}
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot access %s: %v", c.Dir, err),
			Suggestion: "Check the directory permissions",
		}
	}
	if !info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is not a directory", c.Dir),
			Suggestion: "Point the setting at a directory",
		}
	}

	f, err := os.CreateTemp(c.Dir, ".statdash-doctor-*")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s directory %s is not writable", c.Label, c.Dir),
			Suggestion: "Fix the permissions or choose another path",
		}
	}
	f.Close()
	os.Remove(f.Name())

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s directory %s is writable", c.Label, c.Dir),
	}
}

func (c *DirCheck) Fix() error {
	return os.MkdirAll(c.Dir, 0755)
}

// NewFileChecks creates checks for every directory cfg writes into.
// The log check is skipped when no log file is configured.
func NewFileChecks(cfg *config.Config) []Check {
	prefsPath := cfg.Prefs.Path
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	checks := []Check{
		&DirCheck{ID: "prefs_dir", Label: "Preferences", Dir: filepath.Dir(prefsPath)},
	}
	if cfg.Log.File != "" {
		checks = append(checks, &DirCheck{ID: "log_dir", Label: "Log", Dir: filepath.Dir(cfg.Log.File)})
	}
	exportDir := cfg.Export.Dir
	if exportDir == "" {
		exportDir = "."
	}
	checks = append(checks, &DirCheck{ID: "export_dir", Label: "Export", Dir: config.ExpandTilde(exportDir)})
	return checks
}
