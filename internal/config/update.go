package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SetValue sets a dotted key (e.g. "refresh.interval") in the config file,
// creating intermediate mappings as needed. It preserves the existing YAML
// structure and comments. The value is written as a plain scalar and left
// for the loader to type.
func SetValue(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if root.Kind == 0 {
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for i, part := range parts {
		if part == "" {
			return fmt.Errorf("invalid key '%s'", key)
		}
		last := i == len(parts)-1

		child := findMapValue(node, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			if last {
				child = &yaml.Node{Kind: yaml.ScalarNode}
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: part},
				child)
		}

		if last {
			child.Kind = yaml.ScalarNode
			child.Tag = ""
			child.Style = 0
			child.Content = nil
			child.Value = value
			break
		}

		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		node = child
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

// fileConfig mirrors Config with durations as strings so written files
// read "2s" instead of nanoseconds.
type fileConfig struct {
	Version int `yaml:"version"`
	Source  struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"source"`
	Refresh struct {
		Interval string `yaml:"interval"`
		Clock    string `yaml:"clock"`
		Policy   string `yaml:"policy"`
	} `yaml:"refresh"`
	View   ViewConfig `yaml:"view"`
	Server struct {
		Port         int    `yaml:"port"`
		CacheTTL     string `yaml:"cache_ttl"`
		MaxProcesses int    `yaml:"max_processes"`
	} `yaml:"server"`
	Export ExportConfig `yaml:"export"`
	Prefs  PrefsConfig  `yaml:"prefs"`
	Log    LogConfig    `yaml:"log"`
}

// Write serializes cfg to path as YAML.
func Write(path string, cfg *Config) error {
	var fc fileConfig
	fc.Version = cfg.Version
	fc.Source.URL = cfg.Source.URL
	fc.Source.Timeout = cfg.Source.Timeout.String()
	fc.Refresh.Interval = cfg.Refresh.Interval.String()
	fc.Refresh.Clock = cfg.Refresh.Clock.String()
	fc.Refresh.Policy = cfg.Refresh.Policy
	fc.View = cfg.View
	fc.Server.Port = cfg.Server.Port
	fc.Server.CacheTTL = cfg.Server.CacheTTL.String()
	fc.Server.MaxProcesses = cfg.Server.MaxProcesses
	fc.Export = cfg.Export
	fc.Prefs = cfg.Prefs
	fc.Log = cfg.Log

	var buf strings.Builder
	buf.WriteString("# statdash configuration. Environment variables override any key,\n")
	buf.WriteString("# e.g. STATDASH_SOURCE_URL or STATDASH_REFRESH_INTERVAL.\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&fc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
