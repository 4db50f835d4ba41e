package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/collector"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/server"
	"github.com/rileyhilliard/statdash/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port         int
	Addr         string
	CacheTTL     string
	MaxProcesses int
}

// serveCommand serves local stats until the context is cancelled.
func serveCommand(cmd *cobra.Command, opts ServeOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	ttl, err := ParseDurationFlag("cache-ttl", opts.CacheTTL)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = cfg.Server.CacheTTL
	}

	maxProcs := cfg.Server.MaxProcesses
	if opts.MaxProcesses != 0 {
		maxProcs = opts.MaxProcesses
	}

	log := serveLogger()
	c := collector.New(collector.Options{
		CacheTTL:     ttl,
		MaxProcesses: maxProcs,
		Logger:       log,
	})

	addr := net.JoinHostPort(opts.Addr, strconv.Itoa(port))
	fmt.Fprintf(cmd.OutOrStdout(), "%s serving stats on http://%s/stats (cache %s, top %d processes)\n",
		ui.SymbolSuccess, displayAddr(opts.Addr, port), ttl, maxProcs)

	return server.New(c, log).ListenAndServe(cmd.Context(), addr)
}

// serveLogger logs requests to stderr; --verbose adds debug output.
func serveLogger() logger.Logger {
	if verbose {
		return logger.Default()
	}
	return logger.NewEnvLogger("[serve]")
}

func displayAddr(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
