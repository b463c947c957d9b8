package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/sherine-k/mlfq/pkg/process"
	"github.com/sherine-k/mlfq/pkg/scheduler"
)

// CronParser parses process schedules. Seconds are optional so that
// sub-minute arrivals can be expressed.
var CronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// LoadConfig loads and parses the configuration file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses, defaults and validates a configuration document
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults fills in the scheduler defaults for unset fields
func applyDefaults(config *Config) {
	if config.Tick == 0 {
		config.Tick = DefaultTick
	}
	if config.BlockingQuantum == 0 {
		config.BlockingQuantum = DefaultBlockingQuantum
	}
	if len(config.Quanta) == 0 {
		config.Quanta = scheduler.DefaultQuanta()
	}
	if config.SimulationDuration == 0 {
		config.SimulationDuration = DefaultSimulationDuration
	}
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Tick <= 0 {
		return fmt.Errorf("tick must be greater than 0")
	}

	if config.SimulationDuration <= 0 {
		return fmt.Errorf("simulationDuration must be greater than 0")
	}

	if config.BlockingQuantum <= 0 {
		return fmt.Errorf("blockingQuantum must be greater than 0")
	}

	if config.StarvationThreshold < 0 {
		return fmt.Errorf("starvationThreshold must not be negative")
	}

	for i, q := range config.Quanta {
		if q <= 0 {
			return fmt.Errorf("quanta[%d] must be greater than 0", i)
		}
	}

	if len(config.Processes) == 0 {
		return fmt.Errorf("at least one process must be defined")
	}

	names := make(map[string]bool, len(config.Processes))
	for i, p := range config.Processes {
		if p.Name == "" {
			return fmt.Errorf("process %d: name is required", i)
		}

		if names[p.Name] {
			return fmt.Errorf("process %s: duplicate name", p.Name)
		}
		names[p.Name] = true

		if err := process.Validate(p.Bursts); err != nil {
			return fmt.Errorf("process %s: %w", p.Name, err)
		}

		if p.Arrival < 0 {
			return fmt.Errorf("process %s: arrival must not be negative", p.Name)
		}

		if p.Schedule != "" {
			if _, err := CronParser.Parse(p.Schedule); err != nil {
				return fmt.Errorf("process %s: invalid schedule: %w", p.Name, err)
			}
		}
	}

	return nil
}
