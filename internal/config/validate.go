package config

import (
	"fmt"
	"net/url"

	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/proctable"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but statdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade statdash or lower the version field")
	}

	if err := validateSource(cfg.Source); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'source' section in your .statdash.yaml.")
	}

	if err := validateRefresh(cfg.Refresh); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'refresh' section in your .statdash.yaml.")
	}

	if err := validateView(cfg.View); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'view' section in your .statdash.yaml.")
	}

	if err := validateServer(cfg.Server); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'server' section in your .statdash.yaml.")
	}

	return nil
}

func validateSource(s SourceConfig) error {
	if s.URL == "" {
		return fmt.Errorf("source.url is empty")
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("source.url '%s' isn't a valid URL: %v", s.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source.url '%s' must start with http:// or https://", s.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("source.url '%s' has no host", s.URL)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be positive, got %s", s.Timeout)
	}
	return nil
}

func validateRefresh(r RefreshConfig) error {
	if r.Interval < MinRefreshInterval {
		return fmt.Errorf("refresh.interval %s is too short (minimum %s)", r.Interval, MinRefreshInterval)
	}
	if r.Clock <= 0 {
		return fmt.Errorf("refresh.clock must be positive, got %s", r.Clock)
	}
	switch r.Policy {
	case PolicySerialize, PolicyOverlap:
	default:
		return fmt.Errorf("refresh.policy '%s' isn't valid (use %s or %s)", r.Policy, PolicySerialize, PolicyOverlap)
	}
	return nil
}

func validateView(v ViewConfig) error {
	if _, err := proctable.ParseSortKey(v.Sort); err != nil {
		return fmt.Errorf("view.sort: %s", errors.OneLine(err))
	}

	seen := make(map[int32]bool)
	for _, pid := range v.Pins {
		if pid <= 0 {
			return fmt.Errorf("view.pins contains invalid pid %d", pid)
		}
		if seen[pid] {
			return fmt.Errorf("view.pins lists pid %d twice", pid)
		}
		seen[pid] = true
	}

	t := v.Thresholds
	if t.Warning < 0 || t.Critical > 100 || t.Warning >= t.Critical {
		return fmt.Errorf("view.thresholds need 0 <= warning < critical <= 100, got %.0f/%.0f", t.Warning, t.Critical)
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range (1-65535)", s.Port)
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("server.cache_ttl can't be negative")
	}
	if s.MaxProcesses < 0 {
		return fmt.Errorf("server.max_processes can't be negative (use 0 for the default)")
	}
	return nil
}
