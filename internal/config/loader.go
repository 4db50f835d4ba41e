package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rileyhilliard/statdash/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".statdash.yaml"
	// GlobalConfigDir is the directory for global config, relative to home.
	GlobalConfigDir = ".config/statdash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. STATDASH_SOURCE_URL.
	EnvPrefix = "STATDASH"
)

// Load reads config from the specified path. Environment overrides apply on top.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'statdash init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .statdash.yaml in current directory
// 3. ~/.config/statdash/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads the config found by Find, or defaults plus environment
// overrides when there is none. A .env file in the working directory is
// loaded into the environment first; existing variables win.
func LoadOrDefault(explicit string) (*Config, string, error) {
	LoadDotEnv()

	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// LoadDotEnv loads .env from the working directory if present.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	expandPaths(cfg)
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys the
// config file doesn't mention.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("source.url", d.Source.URL)
	v.SetDefault("source.timeout", d.Source.Timeout.String())
	v.SetDefault("refresh.interval", d.Refresh.Interval.String())
	v.SetDefault("refresh.clock", d.Refresh.Clock.String())
	v.SetDefault("refresh.policy", d.Refresh.Policy)
	v.SetDefault("view.sort", d.View.Sort)
	v.SetDefault("view.ascending", d.View.Ascending)
	v.SetDefault("view.pins", []int32{})
	v.SetDefault("view.thresholds.warning", d.View.Thresholds.Warning)
	v.SetDefault("view.thresholds.critical", d.View.Thresholds.Critical)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cache_ttl", d.Server.CacheTTL.String())
	v.SetDefault("server.max_processes", d.Server.MaxProcesses)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("prefs.path", d.Prefs.Path)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.debug", d.Log.Debug)
}
