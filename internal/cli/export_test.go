package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/statdash/internal/lock"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/stats"
)

// scriptedSource returns the next error from errs (nil means success) on
// each fetch, then succeeds forever.
type scriptedSource struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *scriptedSource) Describe() string { return "scripted" }

func (s *scriptedSource) FetchSnapshot(ctx context.Context) (*stats.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	snap := sampleSnapshot()
	snap.CPUUsage = float64(s.calls)
	return snap, nil
}

type memorySink struct {
	rows []*stats.Snapshot
	err  error
}

func (m *memorySink) Write(snap *stats.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, snap)
	return nil
}

func TestRecordMetrics_StopsAtCount(t *testing.T) {
	src := &scriptedSource{}
	sink := &memorySink{}

	rows, err := recordMetrics(context.Background(), src, sink, recordOptions{
		Interval: time.Millisecond,
		Timeout:  time.Second,
		Count:    3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rows)
	require.Len(t, sink.rows, 3)
	assert.Equal(t, []float64{1, 2, 3}, []float64{sink.rows[0].CPUUsage, sink.rows[1].CPUUsage, sink.rows[2].CPUUsage})
}

func TestRecordMetrics_SkipsFailedFetches(t *testing.T) {
	src := &scriptedSource{errs: []error{fmt.Errorf("timeout"), nil, fmt.Errorf("refused")}}
	sink := &memorySink{}
	log := logger.NewBufferLogger()

	rows, err := recordMetrics(context.Background(), src, sink, recordOptions{
		Interval: time.Millisecond,
		Timeout:  time.Second,
		Count:    2,
		Logger:   log,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, src.calls, "two failures plus two rows")
	assert.True(t, log.HasLevel("warn"))
}

// emptySource returns neither a snapshot nor an error.
type emptySource struct{ calls int }

func (e *emptySource) Describe() string { return "empty" }

func (e *emptySource) FetchSnapshot(ctx context.Context) (*stats.Snapshot, error) {
	e.calls++
	return nil, nil
}

func TestRecordMetrics_SkipsEmptyFetches(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	src := &emptySource{}
	sink := &memorySink{}
	log := logger.NewBufferLogger()

	var rows int
	var err error
	require.NotPanics(t, func() {
		rows, err = recordMetrics(ctx, src, sink, recordOptions{
			Interval: time.Millisecond,
			Timeout:  time.Second,
			Logger:   log,
		})
	})
	require.NoError(t, err)

	assert.Zero(t, rows)
	assert.Empty(t, sink.rows)
	assert.Positive(t, src.calls)
	assert.True(t, log.HasLevel("warn"))
}

func TestRecordMetrics_SinkErrorStops(t *testing.T) {
	sink := &memorySink{err: fmt.Errorf("disk full")}

	rows, err := recordMetrics(context.Background(), &scriptedSource{}, sink, recordOptions{
		Interval: time.Millisecond,
		Timeout:  time.Second,
	})
	require.Error(t, err)
	assert.Zero(t, rows)
}

// signalSink reports each write on a channel.
type signalSink struct {
	wrote chan struct{}
}

func (s *signalSink) Write(snap *stats.Snapshot) error {
	s.wrote <- struct{}{}
	return nil
}

func TestRecordMetrics_CancelIsCleanStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := &signalSink{wrote: make(chan struct{}, 1)}

	done := make(chan int, 1)
	go func() {
		rows, err := recordMetrics(ctx, &scriptedSource{}, sink, recordOptions{
			Interval: time.Hour,
			Timeout:  time.Second,
		})
		assert.NoError(t, err)
		done <- rows
	}()

	// The first row is written immediately; the next would wait an hour.
	select {
	case <-sink.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("first row was not written")
	}

	cancel()
	select {
	case rows := <-done:
		assert.Equal(t, 1, rows)
	case <-time.After(2 * time.Second):
		t.Fatal("recordMetrics did not stop after cancel")
	}
}

func exportTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "export"}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func TestExportCommand_WritesRowsAndReleasesLock(t *testing.T) {
	statsServer(t, sampleSnapshot())
	path := filepath.Join(t.TempDir(), "out", "stats.csv")

	cmd, out := exportTestCmd()
	require.NoError(t, exportCommand(cmd, ExportOptions{Interval: "500ms", Count: 2, Output: path}))

	assert.Contains(t, out.String(), "wrote 2 rows")
	assert.NoDirExists(t, lock.PathFor(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3, "header plus two rows")
}

func TestExportCommand_RefusesLockedFile(t *testing.T) {
	statsServer(t, sampleSnapshot())
	path := filepath.Join(t.TempDir(), "stats.csv")

	held, err := lock.TryAcquire(lock.PathFor(path), lock.Options{Command: "statdash export"})
	require.NoError(t, err)
	defer held.Release()

	cmd, _ := exportTestCmd()
	err = exportCommand(cmd, ExportOptions{Count: 1, Output: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in use by")
	assert.NoFileExists(t, path)
}
