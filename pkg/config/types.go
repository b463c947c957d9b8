package config

import (
	"time"
)

// Config represents a scheduler simulation scenario
type Config struct {
	// Tick is the simulated time that elapses between two scheduler iterations
	Tick time.Duration `yaml:"tick"`

	// Start is the simulated wall-clock time of the first iteration.
	// Defaults to last Monday at midnight when omitted.
	Start *time.Time `yaml:"start,omitempty"`

	// SimulationDuration bounds the window in which recurring arrivals are generated
	SimulationDuration time.Duration `yaml:"simulationDuration"`

	BlockingQuantum time.Duration   `yaml:"blockingQuantum"`
	Quanta          []time.Duration `yaml:"quanta"`

	// StarvationThreshold raises a warning when a runnable process waits longer
	// than this in the CPU queues. Zero disables the check.
	StarvationThreshold time.Duration `yaml:"starvationThreshold,omitempty"`

	Processes []Process `yaml:"processes"`
}

// Process describes one process, or a family of processes when Schedule is set
type Process struct {
	Name string `yaml:"name"`

	// Bursts alternate CPU and I/O demand, starting and ending with CPU
	Bursts []time.Duration `yaml:"bursts"`

	// Arrival is the offset from the simulation start of the first admission
	Arrival time.Duration `yaml:"arrival,omitempty"`

	// Schedule is an optional cron expression for recurring admissions
	Schedule string `yaml:"schedule,omitempty"`
}

// Arrival is a concrete admission of a process at a point in simulated time
type Arrival struct {
	Process *Process
	At      time.Time
	Seq     int
}

// Defaults applied by LoadConfig for fields left unset
const (
	DefaultTick               = 5 * time.Millisecond
	DefaultBlockingQuantum    = 50 * time.Millisecond
	DefaultSimulationDuration = time.Hour
)
