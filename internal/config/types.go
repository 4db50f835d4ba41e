package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Poll policies for overlapping refreshes.
const (
	// PolicySerialize drops a poll while another is still in flight.
	PolicySerialize = "serialize"
	// PolicyOverlap lets polls overlap; the last response to arrive wins.
	PolicyOverlap = "overlap"
)

// MinRefreshInterval is the shortest allowed poll interval.
const MinRefreshInterval = 500 * time.Millisecond

// Config represents the complete .statdash.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	View    ViewConfig    `yaml:"view" mapstructure:"view"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Prefs   PrefsConfig   `yaml:"prefs" mapstructure:"prefs"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourceConfig says where the dashboard gets snapshots.
type SourceConfig struct {
	// URL of a statdash /stats endpoint. Ignored with --local.
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds a single fetch.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// RefreshConfig controls the poll and clock timers.
type RefreshConfig struct {
	// Interval between automatic polls.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Clock is the header clock tick. Independent of polling.
	Clock time.Duration `yaml:"clock" mapstructure:"clock"`

	// Policy is "serialize" or "overlap".
	Policy string `yaml:"policy" mapstructure:"policy"`
}

// ViewConfig is the initial table state. Changes made in the dashboard are
// not written back.
type ViewConfig struct {
	// Sort is the initial sort column (cpu, memory, name, ...).
	Sort string `yaml:"sort" mapstructure:"sort"`

	// Ascending flips the initial direction.
	Ascending bool `yaml:"ascending" mapstructure:"ascending"`

	// Pins are pids pinned at startup.
	Pins []int32 `yaml:"pins" mapstructure:"pins"`

	// Thresholds color usage bars.
	Thresholds ThresholdConfig `yaml:"thresholds" mapstructure:"thresholds"`
}

// ThresholdConfig holds warning and critical percentages for usage bars.
type ThresholdConfig struct {
	Warning  float64 `yaml:"warning" mapstructure:"warning"`
	Critical float64 `yaml:"critical" mapstructure:"critical"`
}

// ServerConfig controls `statdash serve`.
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	MaxProcesses int           `yaml:"max_processes" mapstructure:"max_processes"`
}

// ExportConfig controls CSV output.
type ExportConfig struct {
	// Dir receives process-table exports from the dashboard.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// PrefsConfig locates the persisted preferences file.
type PrefsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig controls the dashboard's log file. The TUI owns stdout, so logs
// never go to the terminal while it runs.
type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"`
	Debug bool   `yaml:"debug" mapstructure:"debug"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Source: SourceConfig{
			URL:     "http://localhost:8080/stats",
			Timeout: 5 * time.Second,
		},
		Refresh: RefreshConfig{
			Interval: 2 * time.Second,
			Clock:    time.Second,
			Policy:   PolicySerialize,
		},
		View: ViewConfig{
			Sort:      "cpu",
			Ascending: false,
			Pins:      []int32{},
			Thresholds: ThresholdConfig{
				Warning:  50,
				Critical: 80,
			},
		},
		Server: ServerConfig{
			Port:         8080,
			CacheTTL:     2 * time.Second,
			MaxProcesses: 20,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Prefs: PrefsConfig{
			Path: "${CONFIG}/statdash/prefs.yaml",
		},
		Log: LogConfig{
			File:  "${CONFIG}/statdash/statdash.log",
			Debug: false,
		},
	}
}
