package doctor

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/statdash/internal/stats"
)

// fakeSource answers after delay with snap or err.
type fakeSource struct {
	snap  *stats.Snapshot
	err   error
	delay time.Duration
}

func (f *fakeSource) Describe() string { return "http://box:8080/stats" }

func (f *fakeSource) FetchSnapshot(ctx context.Context) (*stats.Snapshot, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.snap, f.err
}

func (f *fakeSource) Collect(ctx context.Context) (*stats.Snapshot, error) {
	return f.FetchSnapshot(ctx)
}

func twoProcesses() *stats.Snapshot {
	return &stats.Snapshot{Processes: []stats.ProcessRecord{{PID: 1, Name: "init"}, {PID: 2, Name: "sshd"}}}
}

func TestSourceCheck(t *testing.T) {
	tests := []struct {
		name     string
		src      *fakeSource
		interval time.Duration
		timeout  time.Duration
		want     CheckStatus
		contains string
	}{
		{
			name:     "reachable",
			src:      &fakeSource{snap: twoProcesses()},
			interval: 2 * time.Second,
			want:     StatusPass,
			contains: "2 processes",
		},
		{
			name:     "unreachable",
			src:      &fakeSource{err: fmt.Errorf("connection refused")},
			interval: 2 * time.Second,
			want:     StatusFail,
			contains: "connection refused",
		},
		{
			name:     "slower than half the interval",
			src:      &fakeSource{snap: twoProcesses(), delay: 30 * time.Millisecond},
			interval: 40 * time.Millisecond,
			want:     StatusWarn,
		},
		{
			name:     "timeout",
			src:      &fakeSource{snap: twoProcesses(), delay: time.Second},
			timeout:  10 * time.Millisecond,
			want:     StatusFail,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check := &SourceCheck{Source: tc.src, Timeout: tc.timeout, Interval: tc.interval}
			result := check.Run()

			if result.Status != tc.want {
				t.Fatalf("expected %v, got %v: %s", tc.want, result.Status, result.Message)
			}
			if tc.contains != "" && !strings.Contains(result.Message, tc.contains) {
				t.Errorf("message %q should contain %q", result.Message, tc.contains)
			}
			if result.Status != StatusPass && result.Suggestion == "" {
				t.Errorf("expected a suggestion for %v", result.Status)
			}
		})
	}
}

func TestLocalCheck(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
		want CheckStatus
	}{
		{name: "reads processes", src: &fakeSource{snap: twoProcesses()}, want: StatusPass},
		{name: "empty process list", src: &fakeSource{snap: &stats.Snapshot{}}, want: StatusWarn},
		{name: "collector error", src: &fakeSource{err: fmt.Errorf("open /proc: permission denied")}, want: StatusFail},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := (&LocalCheck{Collector: tc.src, Timeout: time.Second}).Run()
			if result.Status != tc.want {
				t.Errorf("expected %v, got %v: %s", tc.want, result.Status, result.Message)
			}
		})
	}
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "<1ms"},
		{12*time.Millisecond + 400*time.Microsecond, "12ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tc := range tests {
		if got := formatLatency(tc.in); got != tc.want {
			t.Errorf("formatLatency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
