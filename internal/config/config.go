// Package config loads the settings of the depot profiling harness from a
// YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/TheBitDrifter/depot"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage    StorageConfig    `yaml:"storage" toml:"storage"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Profile    ProfileConfig    `yaml:"profile" toml:"profile"`
}

type StorageConfig struct {
	GrowthFactor    float64 `yaml:"growth_factor" toml:"growth_factor"`
	InitialCapacity int     `yaml:"initial_capacity" toml:"initial_capacity"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "json" or "console"
}

type SimulationConfig struct {
	Entities   int `yaml:"entities" toml:"entities"`
	Rounds     int `yaml:"rounds" toml:"rounds"`
	Iterations int `yaml:"iterations" toml:"iterations"`
	Threads    int `yaml:"threads" toml:"threads"`
	// Churn is the share of entities destroyed and recreated every iteration
	Churn float64 `yaml:"churn" toml:"churn"`
}

type ProfileConfig struct {
	Mode string `yaml:"mode" toml:"mode"` // "cpu", "mem" or "off"
	Path string `yaml:"path" toml:"path"`
}

// Load reads path on top of Default. The format follows the extension:
// .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			GrowthFactor:    depot.DefaultGrowthFactor,
			InitialCapacity: depot.DefaultInitialCapacity,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Simulation: SimulationConfig{
			Entities:   1000,
			Rounds:     10,
			Iterations: 1000,
			Threads:    4,
			Churn:      0.1,
		},
		Profile: ProfileConfig{
			Mode: "cpu",
			Path: ".",
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Storage.GrowthFactor <= 1 {
		errs = append(errs, depot.GrowthFactorError{Factor: c.Storage.GrowthFactor})
	}
	if c.Storage.InitialCapacity < 0 {
		errs = append(errs, fmt.Errorf("initial_capacity must not be negative, got %d", c.Storage.InitialCapacity))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}
	if c.Simulation.Entities <= 0 || c.Simulation.Rounds <= 0 || c.Simulation.Iterations <= 0 {
		errs = append(errs, errors.New("simulation entities, rounds and iterations must be positive"))
	}
	if c.Simulation.Churn < 0 || c.Simulation.Churn > 1 {
		errs = append(errs, fmt.Errorf("churn must be within [0, 1], got %v", c.Simulation.Churn))
	}
	switch c.Profile.Mode {
	case "cpu", "mem", "off":
	default:
		errs = append(errs, fmt.Errorf("unknown profile mode %q", c.Profile.Mode))
	}
	return errors.Join(errs...)
}

// Logger builds the zap logger described by the logging section
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	encoder := zap.NewProductionEncoderConfig()
	if c.Logging.Format == "console" {
		encoder = zap.NewDevelopmentEncoderConfig()
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         c.Logging.Format,
		EncoderConfig:    encoder,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return cfg.Build()
}

// StorageOptions maps the storage section onto depot.Options
func (c *Config) StorageOptions(logger *zap.Logger) depot.Options {
	return depot.Options{
		GrowthFactor:    c.Storage.GrowthFactor,
		InitialCapacity: c.Storage.InitialCapacity,
		Logger:          logger,
	}
}
