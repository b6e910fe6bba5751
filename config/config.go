// Package config provides configuration loading and management for styleforge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/styleforge/document"
)

// Config represents the complete styleforge configuration
type Config struct {
	Documents DocumentsConfig `yaml:"documents"`
	Engine    EngineConfig    `yaml:"engine"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	NATS      NATSConfig      `yaml:"nats"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DocumentsConfig configures document ingestion
type DocumentsConfig struct {
	// Dir is the spool directory loaded at startup
	Dir string `yaml:"dir"`
	// Patterns are doublestar globs selecting files to ingest (empty = defaults)
	Patterns []string `yaml:"patterns"`
	// Watch configures fsnotify-based spool watching
	Watch document.WatchConfig `yaml:"watch"`
	// CheckWorkers sets the background validation pool size
	CheckWorkers int `yaml:"check_workers"`
	// CheckTimeout bounds a single background validation check
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// EngineConfig configures the transformation engines
type EngineConfig struct {
	// Primary is the full-capability engine name (default: libxslt)
	Primary string `yaml:"primary"`
	// Fallback is the reduced-capability engine name (default: ratago, empty disables)
	Fallback string `yaml:"fallback"`
}

// PipelineConfig configures the job controller
type PipelineConfig struct {
	// MaxConcurrent caps jobs running at once (0 = unbounded)
	MaxConcurrent int `yaml:"max_concurrent"`
	// ValidationTimeout bounds the per-job schema check
	ValidationTimeout time.Duration `yaml:"validation_timeout"`
	// ExecutionTimeout bounds the transformation execution (0 = unbounded)
	ExecutionTimeout time.Duration `yaml:"execution_timeout"`
}

// NATSConfig configures the job event publisher
type NATSConfig struct {
	// URL is the NATS server URL (empty disables event publishing)
	URL string `yaml:"url"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty disables)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Documents: DocumentsConfig{
			Dir:          "documents",
			Watch:        document.DefaultWatchConfig(),
			CheckWorkers: 2,
			CheckTimeout: 10 * time.Second,
		},
		Engine: EngineConfig{
			Primary:  "libxslt",
			Fallback: "ratago",
		},
		Pipeline: PipelineConfig{
			MaxConcurrent:     0,
			ValidationTimeout: 10 * time.Second,
			ExecutionTimeout:  0,
		},
		NATS:    NATSConfig{URL: ""},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Documents.Dir == "" {
		return fmt.Errorf("documents.dir is required")
	}
	if c.Engine.Primary == "" {
		return fmt.Errorf("engine.primary is required")
	}
	if c.Documents.CheckWorkers < 0 {
		return fmt.Errorf("documents.check_workers must not be negative")
	}
	if c.Pipeline.MaxConcurrent < 0 {
		return fmt.Errorf("pipeline.max_concurrent must not be negative")
	}
	if c.Pipeline.ValidationTimeout <= 0 {
		return fmt.Errorf("pipeline.validation_timeout must be positive")
	}
	return nil
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

	if other.Documents.Dir != "" {
		c.Documents.Dir = other.Documents.Dir
	}
	if len(other.Documents.Patterns) > 0 {
		c.Documents.Patterns = other.Documents.Patterns
	}
	if other.Documents.Watch.Enabled {
		c.Documents.Watch = other.Documents.Watch
	}
	if other.Documents.CheckWorkers != 0 {
		c.Documents.CheckWorkers = other.Documents.CheckWorkers
	}
	if other.Documents.CheckTimeout != 0 {
		c.Documents.CheckTimeout = other.Documents.CheckTimeout
	}

	if other.Engine.Primary != "" {
		c.Engine.Primary = other.Engine.Primary
	}
	if other.Engine.Fallback != "" {
		c.Engine.Fallback = other.Engine.Fallback
	}

	if other.Pipeline.MaxConcurrent != 0 {
		c.Pipeline.MaxConcurrent = other.Pipeline.MaxConcurrent
	}
	if other.Pipeline.ValidationTimeout != 0 {
		c.Pipeline.ValidationTimeout = other.Pipeline.ValidationTimeout
	}
	if other.Pipeline.ExecutionTimeout != 0 {
		c.Pipeline.ExecutionTimeout = other.Pipeline.ExecutionTimeout
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}
