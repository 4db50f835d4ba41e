package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/collector"
	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/doctor"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/source"
	"github.com/rileyhilliard/statdash/internal/ui"
	"github.com/rileyhilliard/statdash/internal/util"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Source SourceFlags
	JSON   bool
	Fix    bool
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(cmd *cobra.Command, opts DoctorOptions) error {
	// Config problems are reported by the CONFIG checks, so fall back to
	// defaults and keep going.
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil || cfg == nil {
		cfg = config.DefaultConfig()
	}

	checks, err := collectChecks(cfg, opts.Source)
	if err != nil {
		return err
	}

	// Checks are independent of each other.
	results := doctor.RunAllParallel(checks)

	if opts.Fix {
		results = doctor.AttemptFixes(checks, results)
	}

	out := cmd.OutOrStdout()
	if opts.JSON {
		return outputDoctorJSON(out, checks, results)
	}
	outputDoctorText(out, checks, results, opts.Fix)
	return nil
}

// collectChecks gathers all diagnostic checks for cfg.
func collectChecks(cfg *config.Config, flags SourceFlags) ([]doctor.Check, error) {
	log := logger.Default()

	var checks []doctor.Check
	checks = append(checks, doctor.NewConfigChecks(cfgFile)...)

	src, timeout, err := buildSource(cfg, flags, log)
	if err != nil {
		return nil, err
	}

	// --local makes the collector the source, so one LOCAL check covers it.
	if !flags.Local {
		checks = append(checks, &doctor.SourceCheck{
			Source:   src,
			Timeout:  timeout,
			Interval: cfg.Refresh.Interval,
		})
	}

	var local source.Collector = collector.New(collector.Options{
		CacheTTL:     -1,
		MaxProcesses: -1,
		Logger:       log,
	})
	checks = append(checks, &doctor.LocalCheck{Collector: local, Timeout: timeout})

	checks = append(checks, doctor.NewFileChecks(cfg)...)
	return checks, nil
}

// groupResults splits results by category in report order. Unknown
// categories go last in the order they were first seen.
func groupResults(checks []doctor.Check, results []doctor.CheckResult) []CategoryOutput {
	grouped := make(map[string][]doctor.CheckResult)
	var extra []string
	known := make(map[string]bool)
	for _, cat := range doctor.CategoryOrder {
		known[cat] = true
	}

	for i, check := range checks {
		cat := check.Category()
		if _, seen := grouped[cat]; !seen && !known[cat] {
			extra = append(extra, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	var categories []CategoryOutput
	for _, cat := range append(append([]string{}, doctor.CategoryOrder...), extra...) {
		if len(grouped[cat]) == 0 {
			continue
		}
		categories = append(categories, CategoryOutput{Name: cat, Results: grouped[cat]})
	}
	return categories
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	counts := doctor.CountByStatus(results)
	output := DoctorOutput{
		Categories: groupResults(checks, results),
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			Fixable:  doctor.FixableCount(results),
			AllClear: !doctor.HasIssues(results),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("statdash Diagnostic Report"))
	fmt.Fprintln(w)

	for _, category := range groupResults(checks, results) {
		fmt.Fprintln(w, headerStyle.Render(category.Name))
		for _, result := range category.Results {
			renderCheckResult(w, result)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))

		if fixable := doctor.FixableCount(results); fixable > 0 && !fixed {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  Run with %s to fix %d %s automatically.\n",
				mutedStyle.Render("--fix"), fixable, util.Pluralize(fixable, "issue", "issues"))
		}
	}

	fmt.Fprintln(w)
}

// renderCheckResult renders a single check result.
func renderCheckResult(w io.Writer, result doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol = ui.SymbolSuccess
		style = lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	case doctor.StatusWarn:
		symbol = ui.SymbolSuccess // Still works, but with warning styling
		style = lipgloss.NewStyle().Foreground(ui.ColorWarning)
	default:
		symbol = ui.SymbolFail
		style = lipgloss.NewStyle().Foreground(ui.ColorError)
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		muted := lipgloss.NewStyle().Foreground(ui.ColorMuted)
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", muted.Render(line))
		}
	}
}
