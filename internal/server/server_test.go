package server

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollector struct {
	snap *stats.Snapshot
	err  error
}

func (s stubCollector) Collect(ctx context.Context) (*stats.Snapshot, error) {
	return s.snap, s.err
}

func testSnapshot() *stats.Snapshot {
	return &stats.Snapshot{
		CPUUsage: 33,
		Processes: []stats.ProcessRecord{
			{PID: 1, Name: "init", Username: "root", CPU: 0.1},
			{PID: 20, Name: "Xorg", Username: "alice", CPU: 12},
			{PID: 300, Name: "bash", Username: "alice", CPU: 3},
		},
	}
}

func TestHandleStats(t *testing.T) {
	srv := New(stubCollector{snap: testSnapshot()}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	snap, err := stats.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 33.0, snap.CPUUsage)
	assert.Len(t, snap.Processes, 3)
}

func TestHandleStats_CollectorError(t *testing.T) {
	log := logger.NewBufferLogger()
	srv := New(stubCollector{err: stderrors.New("no /proc")}, log)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error collecting stats\n", rec.Body.String())
	assert.True(t, log.HasLevel("error"))
}

func TestHandleStats_MethodNotAllowed(t *testing.T) {
	srv := New(stubCollector{snap: testSnapshot()}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stats", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestHandleStatsCSV(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantNames []string
		wantPins  []string
	}{
		{"default cpu desc", "", []string{"Xorg", "bash", "init"}, []string{"false", "false", "false"}},
		{"name asc", "?sort=name&order=asc", []string{"bash", "init", "Xorg"}, []string{"false", "false", "false"}},
		{"pid desc", "?sort=pid&order=desc", []string{"bash", "Xorg", "init"}, []string{"false", "false", "false"}},
		{"pinned first", "?pin=1", []string{"init", "Xorg", "bash"}, []string{"true", "false", "false"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(stubCollector{snap: testSnapshot()}, nil)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats.csv"+tt.query, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

			rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
			require.NoError(t, err)
			require.Len(t, rows, 4)

			var gotNames, gotPins []string
			for _, row := range rows[1:] {
				gotPins = append(gotPins, row[0])
				gotNames = append(gotNames, row[len(row)-1])
			}
			assert.Equal(t, tt.wantNames, gotNames)
			assert.Equal(t, tt.wantPins, gotPins)
		})
	}
}

func TestHandleStatsCSV_BadQuery(t *testing.T) {
	queries := []string{"?sort=bogus", "?order=sideways", "?pin=abc"}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			srv := New(stubCollector{snap: testSnapshot()}, nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats.csv"+q, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleHealth(t *testing.T) {
	srv := New(stubCollector{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(stubCollector{snap: testSnapshot()}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
