// Package config provides configuration loading and management for the
// item-bank installer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/jward/itembank/internal/importer"
	"github.com/jward/itembank/internal/store"
)

// Default guardian settings: the LOM label path and the property it guards.
const (
	DefaultGuardianKey      = "guardian"
	DefaultGuardianProperty = "http://www.w3.org/2000/01/rdf-schema#label"
	lomPath                 = "http://ltsc.ieee.org/xsd/LOM#lom"
)

// Config represents the complete installer configuration
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Import   ImportConfig   `yaml:"import"`
	Guardian GuardianConfig `yaml:"guardian"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
}

// StoreConfig configures the resource repository
type StoreConfig struct {
	// Path is the SQLite database file
	Path string `yaml:"path"`
	// Namespace prefixes every minted resource URI
	Namespace string `yaml:"namespace"`
}

// ImportConfig configures where reference data comes from and how it is tagged
type ImportConfig struct {
	// DataDir holds the eight source documents (empty = embedded dataset)
	DataDir string `yaml:"data_dir"`
	// Generator is the provenance tag stamped on created resources
	Generator string `yaml:"generator"`
}

// GuardianConfig configures the metadata guardian install action
type GuardianConfig struct {
	// Key is the registry key the guardian is installed under
	Key string `yaml:"key"`
	// Path is the metadata path the guardian watches
	Path []string `yaml:"path"`
	// Property is the resource property the guardian keeps in sync
	Property string `yaml:"property"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is a zap level name (debug, info, warn, error)
	Level string `yaml:"level"`
	// Verbose forces debug level
	Verbose bool `yaml:"verbose"`
}

// MetricsConfig configures run metrics export
type MetricsConfig struct {
	// Textfile is a Prometheus textfile-collector path (empty = disabled)
	Textfile string `yaml:"textfile"`
}

// WatchConfig configures the data directory watcher
type WatchConfig struct {
	// Patterns are doublestar globs, relative to the data directory
	Patterns []string `yaml:"patterns"`
	// Debounce is how long to wait for more changes before reloading
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:      "itembank.db",
			Namespace: store.DefaultNamespace,
		},
		Import: ImportConfig{
			DataDir:   "", // Embedded
			Generator: importer.DefaultGenerator,
		},
		Guardian: GuardianConfig{
			Key:      DefaultGuardianKey,
			Path:     []string{lomPath, DefaultGuardianProperty},
			Property: DefaultGuardianProperty,
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Patterns: []string{"*.json"},
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Store.Namespace == "" {
		return fmt.Errorf("store.namespace is required")
	}
	if c.Import.Generator == "" {
		return fmt.Errorf("import.generator is required")
	}
	if c.Guardian.Key == "" || c.Guardian.Property == "" {
		return fmt.Errorf("guardian.key and guardian.property are required")
	}
	if len(c.Guardian.Path) == 0 {
		return fmt.Errorf("guardian.path must not be empty")
	}
	if _, err := c.Log.ZapLevel(); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// ZapLevel returns the configured log level, debug when Verbose is set.
func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	if l.Verbose {
		return zapcore.DebugLevel, nil
	}
	if l.Level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Store
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.Namespace != "" {
		c.Store.Namespace = other.Store.Namespace
	}

	// Import
	if other.Import.DataDir != "" {
		c.Import.DataDir = other.Import.DataDir
	}
	if other.Import.Generator != "" {
		c.Import.Generator = other.Import.Generator
	}

	// Guardian
	if other.Guardian.Key != "" {
		c.Guardian.Key = other.Guardian.Key
	}
	if len(other.Guardian.Path) > 0 {
		c.Guardian.Path = other.Guardian.Path
	}
	if other.Guardian.Property != "" {
		c.Guardian.Property = other.Guardian.Property
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Verbose {
		c.Log.Verbose = true
	}

	// Metrics
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}

	// Watch
	if len(other.Watch.Patterns) > 0 {
		c.Watch.Patterns = other.Watch.Patterns
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
