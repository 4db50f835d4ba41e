// Package source provides where the dashboard gets its snapshots from.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/stats"
)

// StatsSource fetches one snapshot. Any error means the poll failed and the
// caller keeps what it had. A nil snapshot with a nil error counts as a
// failed poll too; see NoSnapshot.
type StatsSource interface {
	FetchSnapshot(ctx context.Context) (*stats.Snapshot, error)
	// Describe names the source for headers and logs.
	Describe() string
}

// DefaultTimeout bounds a single HTTP fetch when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

// HTTPSource GETs a /stats endpoint.
type HTTPSource struct {
	url       string
	client    *http.Client
	userAgent string
}

// NewHTTPSource returns a source for url. A zero timeout uses DefaultTimeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		url:       url,
		client:    &http.Client{Timeout: timeout},
		userAgent: "statdash",
	}
}

// WithClient swaps the HTTP client, mainly for tests.
func (s *HTTPSource) WithClient(c *http.Client) *HTTPSource {
	s.client = c
	return s
}

// WithUserAgent sets the User-Agent header.
func (s *HTTPSource) WithUserAgent(ua string) *HTTPSource {
	s.userAgent = ua
	return s
}

// Describe returns the endpoint URL.
func (s *HTTPSource) Describe() string {
	return s.url
}

// FetchSnapshot performs one GET and decodes the body.
func (s *HTTPSource) FetchSnapshot(ctx context.Context) (*stats.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid source URL '%s'", s.url),
			"Set source.url to something like http://localhost:8080/stats")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Couldn't reach %s", s.url),
			"Is `statdash serve` running on that host?")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, errors.New(errors.ErrTransport,
			fmt.Sprintf("%s returned %s", s.url, resp.Status),
			"Check the server log for collection errors")
	}

	return stats.Decode(io.LimitReader(resp.Body, maxBody))
}

// Collector is what LocalSource needs from the collector package.
type Collector interface {
	Collect(ctx context.Context) (*stats.Snapshot, error)
}

// LocalSource reads the local machine directly, without a server.
type LocalSource struct {
	collector Collector
}

// NewLocalSource wraps c.
func NewLocalSource(c Collector) *LocalSource {
	return &LocalSource{collector: c}
}

// Describe returns "local".
func (s *LocalSource) Describe() string {
	return "local"
}

// FetchSnapshot collects a snapshot in-process.
func (s *LocalSource) FetchSnapshot(ctx context.Context) (*stats.Snapshot, error) {
	return s.collector.Collect(ctx)
}

// NoSnapshot is the error callers record when src returns neither a
// snapshot nor an error.
func NoSnapshot(src StatsSource) error {
	return errors.New(errors.ErrParse,
		fmt.Sprintf("%s returned no snapshot", src.Describe()),
		"Check that the source serves a statdash /stats payload")
}
