package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "documents", cfg.Documents.Dir)
	assert.Equal(t, 2, cfg.Documents.CheckWorkers)
	assert.Equal(t, 10*time.Second, cfg.Documents.CheckTimeout)
	assert.Equal(t, "libxslt", cfg.Engine.Primary)
	assert.Equal(t, "ratago", cfg.Engine.Fallback)
	assert.Equal(t, 0, cfg.Pipeline.MaxConcurrent)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.ValidationTimeout)
	assert.Equal(t, time.Duration(0), cfg.Pipeline.ExecutionTimeout)
	assert.Empty(t, cfg.NATS.URL)
	assert.Empty(t, cfg.Metrics.Addr)

	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing documents dir",
			mutate:  func(c *Config) { c.Documents.Dir = "" },
			wantErr: "documents.dir",
		},
		{
			name:    "missing primary engine",
			mutate:  func(c *Config) { c.Engine.Primary = "" },
			wantErr: "engine.primary",
		},
		{
			name:    "negative check workers",
			mutate:  func(c *Config) { c.Documents.CheckWorkers = -1 },
			wantErr: "check_workers",
		},
		{
			name:    "negative max concurrent",
			mutate:  func(c *Config) { c.Pipeline.MaxConcurrent = -1 },
			wantErr: "max_concurrent",
		},
		{
			name:    "zero validation timeout",
			mutate:  func(c *Config) { c.Pipeline.ValidationTimeout = 0 },
			wantErr: "validation_timeout",
		},
		{
			name:   "empty fallback disables fallback",
			mutate: func(c *Config) { c.Engine.Fallback = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `documents:
  dir: /var/spool/styleforge
  patterns:
    - "**/*.xsl"
engine:
  primary: libxslt
  fallback: ""
pipeline:
  max_concurrent: 4
  validation_timeout: 5s
nats:
  url: nats://localhost:4222
metrics:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/spool/styleforge", cfg.Documents.Dir)
	assert.Equal(t, []string{"**/*.xsl"}, cfg.Documents.Patterns)
	assert.Equal(t, 4, cfg.Pipeline.MaxConcurrent)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.ValidationTimeout)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	// Unset fields keep their defaults.
	assert.Equal(t, 2, cfg.Documents.CheckWorkers)
	assert.Equal(t, "libxslt", cfg.Engine.Primary)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("documents: [not a map"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Documents.Dir = "/data/docs"
	cfg.Pipeline.ExecutionTimeout = 30 * time.Second
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/docs", loaded.Documents.Dir)
	assert.Equal(t, 30*time.Second, loaded.Pipeline.ExecutionTimeout)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()

	overlay := &Config{}
	overlay.Documents.Dir = "/override"
	overlay.Engine.Fallback = "none"
	overlay.Pipeline.MaxConcurrent = 8
	overlay.NATS.URL = "nats://broker:4222"

	base.Merge(overlay)

	assert.Equal(t, "/override", base.Documents.Dir)
	assert.Equal(t, "none", base.Engine.Fallback)
	assert.Equal(t, 8, base.Pipeline.MaxConcurrent)
	assert.Equal(t, "nats://broker:4222", base.NATS.URL)

	// Zero overlay values leave base values alone.
	assert.Equal(t, "libxslt", base.Engine.Primary)
	assert.Equal(t, 10*time.Second, base.Pipeline.ValidationTimeout)
}

func TestMergeNil(t *testing.T) {
	base := DefaultConfig()
	base.Merge(nil)
	assert.Equal(t, "documents", base.Documents.Dir)
}
