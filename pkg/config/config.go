// Package config loads run configuration from YAML and validates it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-evolution/pkg/algorithms"
	"github.com/dd0wney/cluso-evolution/pkg/evolution"
	"github.com/dd0wney/cluso-evolution/pkg/logging"
	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
	"github.com/dd0wney/cluso-evolution/pkg/timeline"
)

// Config is the full configuration of one evolution run
type Config struct {
	StabilityThreshold float64 `yaml:"stability_threshold" validate:"gte=0,lte=1"`
	Period             string  `yaml:"period" validate:"oneof=month week day none"`
	Algorithm          string  `yaml:"algorithm" validate:"oneof=components label_propagation louvain"`
	MaxIterations      int     `yaml:"max_iterations" validate:"gte=1"`
	Workers            int     `yaml:"workers" validate:"gte=1,lte=1024"`
	StableWindow       int     `yaml:"stable_window" validate:"gte=1"`

	OutputDir   string `yaml:"output_dir" validate:"required"`
	Compress    bool   `yaml:"compress"`
	Centrality  bool   `yaml:"centrality"`
	PostgresDSN string `yaml:"postgres_dsn"`

	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile     string `yaml:"log_file"`
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		StabilityThreshold: evolution.DefaultStabilityThreshold,
		Period:             string(snapshot.PeriodMonth),
		Algorithm:          algorithms.AlgorithmLouvain,
		MaxIterations:      algorithms.DefaultMaxIterations,
		Workers:            runtime.NumCPU(),
		StableWindow:       timeline.DefaultStableWindow,
		OutputDir:          ".",
		LogLevel:           "info",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every field, returning a *evolution.ConfigurationError
// naming the first invalid one
func (c *Config) Validate() error {
	return evolution.ValidateStruct(c)
}

// Evolution returns the propagator settings
func (c *Config) Evolution() evolution.Config {
	return evolution.Config{StabilityThreshold: c.StabilityThreshold}
}

// SnapshotPeriod returns the parsed snapshot period
func (c *Config) SnapshotPeriod() snapshot.Period {
	p, err := snapshot.ParsePeriod(c.Period)
	if err != nil {
		return snapshot.PeriodMonth
	}
	return p
}

// Level returns the parsed log level
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}
