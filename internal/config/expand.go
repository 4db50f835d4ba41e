package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// Expand replaces variables in a local path.
// Supported variables:
//   - ${HOME}   - user's home directory
//   - ${USER}   - current username
//   - ${CONFIG} - user config directory (~/.config on Linux)
//   - ${HOST}   - this machine's hostname
//
// A leading ~ is expanded too.
func Expand(s string) string {
	if s == "" {
		return s
	}

	result := s

	if strings.Contains(result, "${HOME}") {
		result = strings.ReplaceAll(result, "${HOME}", getHome())
	}

	if strings.Contains(result, "${USER}") {
		result = strings.ReplaceAll(result, "${USER}", getUser())
	}

	if strings.Contains(result, "${CONFIG}") {
		result = strings.ReplaceAll(result, "${CONFIG}", getConfigDir())
	}

	if strings.Contains(result, "${HOST}") {
		result = strings.ReplaceAll(result, "${HOST}", getHostname())
	}

	return ExpandTilde(result)
}

// getUser returns the current username for ${USER} expansion.
func getUser() string {
	for _, key := range []string{"USER", "LOGNAME", "USERNAME"} {
		if user := os.Getenv(key); user != "" {
			return user
		}
	}
	return "user"
}

// getHome returns the home directory for ${HOME} expansion.
func getHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	return "~"
}

// getConfigDir honors XDG_CONFIG_HOME, falling back to ~/.config.
func getConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return filepath.Join(getHome(), ".config")
}

func getHostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}

// expandPaths resolves variables in every path-valued field.
func expandPaths(cfg *Config) {
	cfg.Export.Dir = Expand(cfg.Export.Dir)
	cfg.Prefs.Path = Expand(cfg.Prefs.Path)
	cfg.Log.File = Expand(cfg.Log.File)
}
