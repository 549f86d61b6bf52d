// Package config loads reportpipe settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core/compose"
	"github.com/gaurav-prasanna/reportpipe/core/ingest"
	"github.com/gaurav-prasanna/reportpipe/core/preview"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config holds the full reportpipe configuration.
type Config struct {
	Header  compose.Header `yaml:"header"`
	Compose ComposeConfig  `yaml:"compose"`
	Ingest  IngestConfig   `yaml:"ingest"`
	Preview PreviewConfig  `yaml:"preview"`
	Log     LogConfig      `yaml:"log"`
}

// ComposeConfig configures the compositor.
type ComposeConfig struct {
	MaxColumns int `yaml:"max_columns"`
}

// IngestConfig configures upload normalization.
type IngestConfig struct {
	RasterScale float64 `yaml:"raster_scale"`
	Rasterizer  string  `yaml:"rasterizer"` // fitz | pdftoppm
	Workers     int     `yaml:"workers"`
	MaxFileMB   int     `yaml:"max_file_mb"`
}

// PreviewConfig configures the live preview.
type PreviewConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Mode string `yaml:"mode"` // dev | prod | off
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Header:  compose.DefaultHeader(),
		Compose: ComposeConfig{MaxColumns: compose.DefaultMaxColumns},
		Ingest: IngestConfig{
			RasterScale: ingest.DefaultScale,
			Rasterizer:  ingest.RasterizerFitz,
			MaxFileMB:   50,
		},
		Preview: PreviewConfig{DebounceMS: int(preview.DefaultDebounce / time.Millisecond)},
		Log:     LogConfig{Mode: "dev"},
	}
}

// LoadConfig reads and parses a YAML config file over DefaultConfig. An empty
// path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	if c.Compose.MaxColumns <= 0 {
		return fmt.Errorf("compose.max_columns must be > 0")
	}
	if c.Ingest.RasterScale <= 0 || c.Ingest.RasterScale > 8 {
		return fmt.Errorf("ingest.raster_scale must be in (0, 8]")
	}
	switch c.Ingest.Rasterizer {
	case ingest.RasterizerFitz, ingest.RasterizerPdftoppm:
	default:
		return fmt.Errorf("unsupported ingest.rasterizer %q (use %s or %s)", c.Ingest.Rasterizer, ingest.RasterizerFitz, ingest.RasterizerPdftoppm)
	}
	if c.Ingest.Workers < 0 {
		return fmt.Errorf("ingest.workers must be >= 0")
	}
	if c.Ingest.MaxFileMB <= 0 {
		return fmt.Errorf("ingest.max_file_mb must be > 0")
	}
	if c.Preview.DebounceMS <= 0 {
		return fmt.Errorf("preview.debounce_ms must be > 0")
	}
	switch c.Log.Mode {
	case "dev", "prod", "off":
	default:
		return fmt.Errorf("unsupported log.mode %q (use dev, prod or off)", c.Log.Mode)
	}
	return nil
}

// ComposeOptions returns the compositor options.
func (c *Config) ComposeOptions() compose.Options {
	return compose.Options{Header: c.Header, MaxColumns: c.Compose.MaxColumns}
}

// PipelineConfig returns the ingestion pipeline configuration.
func (c *Config) PipelineConfig(log *zap.Logger) ingest.Config {
	return ingest.Config{
		Scale:       c.Ingest.RasterScale,
		Rasterizer:  c.Ingest.Rasterizer,
		Workers:     c.Ingest.Workers,
		MaxFileSize: int64(c.Ingest.MaxFileMB) * 1024 * 1024,
		Logger:      log,
	}
}

// Debounce returns the preview quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Preview.DebounceMS) * time.Millisecond
}
