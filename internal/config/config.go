package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds defaults for flags that are not given on the command line.
type Config struct {
	Force         bool     `yaml:"force"`
	AbsoluteNames bool     `yaml:"absolute_names"`
	Match         string   `yaml:"match"`
	Progress      bool     `yaml:"progress"`
	Extensions    []string `yaml:"extensions"`
}

// DefaultConfig returns the built-in defaults. A nil Extensions list means
// the reconciler's own suffix table is used.
func DefaultConfig() *Config {
	return &Config{
		Match:    "root",
		Progress: true,
	}
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".debomb", "config.yaml")
}

// Load reads the config file at the default location.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	switch cfg.Match {
	case "", "root", "exact":
	default:
		return nil, fmt.Errorf("%s: match must be root or exact, got %q", path, cfg.Match)
	}

	return cfg, nil
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if path == "~" || (len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unexpanded if home unavailable
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
