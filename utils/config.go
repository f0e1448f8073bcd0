package utils

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/agelife/rules"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the configuration for the simulation and its driver
type Config struct {
	Width               int     `json:"width"`
	Height              int     `json:"height"`
	LiveProbability     float64 `json:"live_probability"`
	TickIntervalMs      int     `json:"tick_interval_ms"`
	Running             bool    `json:"running"`
	Threshold           string  `json:"threshold"`
	Seed                int64   `json:"seed"` // 0 picks a time-based seed
	UseParallel         bool    `json:"use_parallel"`
	UseMemoryPool       bool    `json:"use_memory_pool"`
	MaxGenerations      int     `json:"max_generations"` // 0 runs until interrupted
	AutoRestart         bool    `json:"auto_restart"`
	StagnationThreshold int     `json:"stagnation_threshold"`
	Color               bool    `json:"color"`
	ChartPath           string  `json:"chart_path"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Width:               50,
		Height:              50,
		LiveProbability:     0.1,
		TickIntervalMs:      100,
		Running:             true,
		Threshold:           rules.ThresholdExact.String(),
		UseParallel:         true,
		UseMemoryPool:       true,
		MaxGenerations:      0,
		AutoRestart:         false,
		StagnationThreshold: 5,
		Color:               true,
	}
}

// LoadConfig loads configuration from JSON file on top of the defaults
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Validate checks the config for values the engine or driver would reject
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] grid must be at least 1x1, got %dx%d", c.Width, c.Height)
	case c.LiveProbability < 0 || c.LiveProbability > 1:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] live_probability %v outside [0, 1]", c.LiveProbability)
	case c.TickIntervalMs <= 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] tick_interval_ms must be positive, got %d", c.TickIntervalMs)
	case c.MaxGenerations < 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] max_generations must not be negative, got %d", c.MaxGenerations)
	case c.StagnationThreshold < 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] stagnation_threshold must not be negative, got %d", c.StagnationThreshold)
	}
	if _, err := rules.ParseThreshold(c.Threshold); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "[Validate] %v", err)
	}
	return nil
}
