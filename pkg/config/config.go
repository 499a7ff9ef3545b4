// Package config provides configuration file support for WCS working copies.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the per-working-copy configuration stored at
// .wcs/config.yaml.
type Config struct {
	Engine  string        `yaml:"engine"` // auto, native, git
	User    string        `yaml:"user"`
	Ignore  IgnoreConfig  `yaml:"ignore"`
	Logging LoggingConfig `yaml:"logging"`
}

// IgnoreConfig configures ignore-pattern filtering for recursive adds.
type IgnoreConfig struct {
	Patterns []string `yaml:"patterns"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: "auto",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the config file location for a working-copy root.
func Path(root string) string {
	return filepath.Join(root, ".wcs", "config.yaml")
}

// Load loads configuration from .wcs/config.yaml.
// Returns default config if the file doesn't exist.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(root))
	if os.IsNotExist(err) {
		return cfg, nil // No config file is OK, use defaults
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Discover walks up from dir to the nearest .wcs/config.yaml and loads it.
// The working-copy root may sit above the directory a handle is opened
// from; its configuration still applies. Defaults are returned when no
// config file exists anywhere above dir.
func Discover(dir string) (*Config, error) {
	path, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	for {
		if _, err := os.Stat(Path(path)); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return Default(), nil
		}
		path = parent
	}
}

// Save writes configuration to .wcs/config.yaml.
func Save(root string, cfg *Config) error {
	cfgPath := Path(root)

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
