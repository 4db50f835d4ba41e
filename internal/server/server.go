// Package server exposes the local collector over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/export"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/stats"
	"github.com/rileyhilliard/statdash/internal/util"
)

// Collector produces the snapshot served at /stats.
type Collector interface {
	Collect(ctx context.Context) (*stats.Snapshot, error)
}

// Server serves /stats, /stats.csv and /healthz.
type Server struct {
	collector Collector
	log       logger.Logger
	mux       *http.ServeMux
}

// New builds a Server. A nil log discards output.
func New(c Collector, log logger.Logger) *Server {
	if log == nil {
		log = logger.Noop()
	}
	s := &Server{collector: c, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("/stats", s.handleStats)
	s.mux.HandleFunc("/stats.csv", s.handleStatsCSV)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't listen on %s", addr),
			"Pick another port with --port or stop whatever is using it")
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving stats on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrTransport, "HTTP server stopped", "")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) collect(w http.ResponseWriter, r *http.Request) (*stats.Snapshot, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	snap, err := s.collector.Collect(r.Context())
	if err != nil {
		s.log.Error("collecting stats: %s", errors.OneLine(err))
		http.Error(w, "Error collecting stats", http.StatusInternalServerError)
		return nil, false
	}
	return snap, true
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.collect(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.Warn("encoding stats: %v", err)
	}
}

// handleStatsCSV serves the process table sorted by ?sort=<key>&order=asc|desc
// and pinned by ?pin=1,2,3.
func (s *Server) handleStatsCSV(w http.ResponseWriter, r *http.Request) {
	state, err := viewStateFromQuery(r)
	if err != nil {
		http.Error(w, errors.OneLine(err), http.StatusBadRequest)
		return
	}

	snap, ok := s.collect(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="processes.csv"`)
	if err := export.WriteTable(w, proctable.Render(snap.Processes, state)); err != nil {
		s.log.Warn("writing csv: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func viewStateFromQuery(r *http.Request) (proctable.ViewState, error) {
	state := proctable.DefaultViewState()
	q := r.URL.Query()

	if raw := q.Get("sort"); raw != "" {
		key, err := proctable.ParseSortKey(raw)
		if err != nil {
			return state, err
		}
		state.SortKey = key
	}

	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
		state.Ascending = false
	case "asc":
		state.Ascending = true
	default:
		return state, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown order '%s'", q.Get("order")), "Use asc or desc")
	}

	if raw := q.Get("pin"); raw != "" {
		pids, err := util.ParsePIDs(raw)
		if err != nil {
			return state, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid pin list '%s'", raw), "Use comma separated positive pids, e.g. pin=12,40")
		}
		state.Pins = proctable.NewPinSet(pids...)
	}

	return state, nil
}
