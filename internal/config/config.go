// ============================================================================
// Task Engine Configuration
// ============================================================================
//
// Package: internal/config
// File: config.go
// Purpose: YAML configuration for the task engine's managers, processors,
// and ambient services, loaded as a plain yaml-tagged struct unmarshaled
// with gopkg.in/yaml.v3, then defaulted manually field-by-field (mirroring
// NewController's bufferSize/flushInterval nil-check pattern) rather than a
// validation/defaulting library.
//
// ============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/taskengine/pkg/task"
)

// ReuseStrategy selects a task family's processor argument-acquisition
// policy.
type ReuseStrategy string

const (
	ReuseStrategyStatic  ReuseStrategy = "static"
	ReuseStrategyReuse   ReuseStrategy = "reuse"
	ReuseStrategyOneTime ReuseStrategy = "onetime"
)

// ManagerConfig configures one task family's manager + processor pairing.
type ManagerConfig struct {
	Name            string        `yaml:"name"`
	MaxAttempts     int           `yaml:"max_attempts"`
	MaxPriority     int           `yaml:"max_priority"`
	MaxSimultaneous int           `yaml:"max_simultaneous"`
	ReuseStrategy   ReuseStrategy `yaml:"reuse_strategy"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
}

// SchedulerConfig configures the scheduler's tick behavior.
type SchedulerConfig struct {
	// TickGranularity is parsed from the config file but not read by the
	// engine: the scheduler pump wakes only at the next fire time or on the
	// new-task event.
	TickGranularity time.Duration `yaml:"tick_granularity"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Config is the complete process configuration.
type Config struct {
	Managers  []ManagerConfig `yaml:"managers"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Load reads and parses a YAML config file from path, applying defaults to
// unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills unset fields with the engine's defaults, the way
// NewController defaults WALBufferSize/WALFlushInterval when the config
// file leaves them zero.
func (c *Config) applyDefaults() {
	for i := range c.Managers {
		m := &c.Managers[i]
		if m.MaxAttempts <= 0 {
			m.MaxAttempts = 1
		}
		if m.MaxSimultaneous <= 0 {
			m.MaxSimultaneous = 1
		}
		if m.ReuseStrategy == "" {
			m.ReuseStrategy = ReuseStrategyStatic
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Metrics.Port <= 0 {
		c.Metrics.Port = 9090
	}
}

// Validate checks every manager config names a recognized reuse strategy.
// MultipleReusable/MultipleOneTime processors support more than one
// concurrent slot natively, so maxSimultaneous is never rejected here -
// only an unrecognized strategy name is a configuration error.
func (c *Config) Validate() error {
	for _, m := range c.Managers {
		switch m.ReuseStrategy {
		case ReuseStrategyStatic, ReuseStrategyReuse, ReuseStrategyOneTime:
		default:
			return fmt.Errorf("%w: manager %q: unrecognized reuse_strategy %q", task.ErrConfigurationNotImplemented, m.Name, m.ReuseStrategy)
		}
	}
	return nil
}

// ManagerConfigByName finds a named manager config, or reports false.
func (c *Config) ManagerConfigByName(name string) (ManagerConfig, bool) {
	for _, m := range c.Managers {
		if m.Name == name {
			return m, true
		}
	}
	return ManagerConfig{}, false
}
