package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/source"
	"github.com/rileyhilliard/statdash/internal/util"
)

// SourceCheck fetches one snapshot from the configured source and times it.
type SourceCheck struct {
	Source   source.StatsSource
	Timeout  time.Duration
	Interval time.Duration // Refresh interval; a fetch slower than half of it warns

	// Latency of the last successful fetch.
	Latency time.Duration
}

func (c *SourceCheck) Name() string     { return "source_fetch" }
func (c *SourceCheck) Category() string { return CategorySource }

func (c *SourceCheck) Run() CheckResult {
	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := c.Source.FetchSnapshot(ctx)
	if err == nil && snap == nil {
		err = source.NoSnapshot(c.Source)
	}
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.OneLine(err),
			Suggestion: fmt.Sprintf("Start 'statdash serve' on the host behind %s, or use --local", c.Source.Describe()),
		}
	}
	c.Latency = time.Since(start)

	n := len(snap.Processes)
	msg := fmt.Sprintf("%s answered in %s (%d %s)",
		c.Source.Describe(), formatLatency(c.Latency), n, util.Pluralize(n, "process", "processes"))

	if c.Interval > 0 && c.Latency > c.Interval/2 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    msg,
			Suggestion: fmt.Sprintf("Fetches take more than half the %s refresh interval; raise refresh.interval or some polls will be skipped", c.Interval),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: msg,
	}
}

func (c *SourceCheck) Fix() error {
	return nil
}

// LocalCheck verifies the in-process collector can read this machine.
type LocalCheck struct {
	Collector source.Collector
	Timeout   time.Duration
}

func (c *LocalCheck) Name() string     { return "local_collect" }
func (c *LocalCheck) Category() string { return CategoryLocal }

func (c *LocalCheck) Run() CheckResult {
	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	snap, err := c.Collector.Collect(ctx)
	if err == nil && snap == nil {
		err = fmt.Errorf("collector returned no snapshot")
	}
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.OneLine(err),
			Suggestion: "statdash serve and --local need read access to /proc (or the platform equivalent)",
		}
	}

	if len(snap.Processes) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Collector returned no processes",
			Suggestion: "The process list may be hidden from this user; try running with more privileges",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Collector read %d %s", len(snap.Processes), util.Pluralize(len(snap.Processes), "process", "processes")),
	}
}

func (c *LocalCheck) Fix() error {
	return nil
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	return d.Round(time.Millisecond).String()
}
