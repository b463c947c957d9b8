package scheduler

import (
	"log/slog"
	"time"

	"k8s.io/utils/clock"
)

// Default queue configuration: three CPU levels with quanta of 10, 30 and 50
// time units and a blocking queue quantum of 50.
const (
	DefaultLevels          = 3
	DefaultBlockingQuantum = 50 * time.Millisecond
)

// DefaultQuanta returns the quantum of each default CPU level, 10+20*i units.
func DefaultQuanta() []time.Duration {
	quanta := make([]time.Duration, DefaultLevels)
	for i := range quanta {
		quanta[i] = time.Duration(10+i*20) * time.Millisecond
	}
	return quanta
}

// Observer receives scheduling events. Calls happen on the scheduler loop.
// OnTurn runs once the process of the turn sits in its next queue, so turns
// rolled back by a failed interrupt are never reported.
type Observer interface {
	OnAdmit(p Process, now time.Time)
	OnTurn(turn Turn, now time.Time)
	OnTick(tick Tick)
}

// Options holds configuration options for the [Scheduler].
type Options struct {
	Quanta          []time.Duration
	BlockingQuantum time.Duration
	Clock           clock.PassiveClock
	Logger          *slog.Logger
	Observer        Observer
}

// Option is a function that configures [Options].
type Option func(*Options)

// WithQuanta sets one quantum per CPU level, highest priority first.
func WithQuanta(quanta ...time.Duration) Option {
	return func(o *Options) {
		o.Quanta = append([]time.Duration(nil), quanta...)
	}
}

// WithBlockingQuantum caps the I/O time granted per turn in the blocking queue.
func WithBlockingQuantum(d time.Duration) Option {
	return func(o *Options) {
		o.BlockingQuantum = d
	}
}

// WithClock sets the clock the control loop reads once per iteration.
func WithClock(c clock.PassiveClock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

// WithLogger sets the logger for the [Scheduler].
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithObserver sets the observer for the [Scheduler].
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		o.Observer = obs
	}
}
