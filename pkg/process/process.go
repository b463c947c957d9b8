// Package process provides a process model made of alternating CPU and I/O
// bursts, suitable for admission into the scheduler.
package process

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sherine-k/mlfq/pkg/scheduler"
)

// Ensure BurstProcess implements [scheduler.Process].
var _ scheduler.Process = (*BurstProcess)(nil)

// NewID returns a new process identifier. Override in tests for determinism.
var NewID = func() string { return uuid.New().String() }

// BurstProcess runs through a fixed sequence of bursts. Even positions are CPU
// bursts and odd positions are I/O bursts, so the sequence starts and ends with
// CPU work.
type BurstProcess struct {
	id        string
	name      string
	bursts    []time.Duration
	cursor    int
	remaining time.Duration
}

// New creates a process from its burst sequence.
func New(name string, bursts []time.Duration) (*BurstProcess, error) {
	if err := Validate(bursts); err != nil {
		return nil, fmt.Errorf("process %q: %w", name, err)
	}
	return &BurstProcess{
		id:        NewID(),
		name:      name,
		bursts:    append([]time.Duration(nil), bursts...),
		remaining: bursts[0],
	}, nil
}

// Validate checks that bursts is a non-empty, odd-length sequence of positive
// durations.
func Validate(bursts []time.Duration) error {
	if len(bursts) == 0 {
		return fmt.Errorf("at least one burst is required")
	}
	if len(bursts)%2 == 0 {
		return fmt.Errorf("burst sequence must start and end with a cpu burst, got %d bursts", len(bursts))
	}
	for i, b := range bursts {
		if b <= 0 {
			return fmt.Errorf("burst %d must be greater than 0", i)
		}
	}
	return nil
}

func (p *BurstProcess) ID() string { return p.id }

func (p *BurstProcess) Name() string { return p.name }

// Bursts returns a copy of the burst sequence.
func (p *BurstProcess) Bursts() []time.Duration {
	return append([]time.Duration(nil), p.bursts...)
}

// Cursor returns the index of the current burst.
func (p *BurstProcess) Cursor() int { return p.cursor }

// Remaining returns what is left of the current burst.
func (p *BurstProcess) Remaining() time.Duration { return p.remaining }

// Phase returns the kind of the current burst.
func (p *BurstProcess) Phase() scheduler.Phase {
	switch {
	case p.cursor >= len(p.bursts):
		return scheduler.PhaseDone
	case p.cursor%2 == 0:
		return scheduler.PhaseCPU
	default:
		return scheduler.PhaseIO
	}
}

// ConsumeCPU spends up to units of the current CPU burst.
func (p *BurstProcess) ConsumeCPU(units time.Duration) (scheduler.Result, error) {
	return p.consume(scheduler.PhaseCPU, units)
}

// ConsumeIO spends up to units of the current I/O burst.
func (p *BurstProcess) ConsumeIO(units time.Duration) (scheduler.Result, error) {
	return p.consume(scheduler.PhaseIO, units)
}

func (p *BurstProcess) consume(want scheduler.Phase, units time.Duration) (scheduler.Result, error) {
	if phase := p.Phase(); phase != want {
		return scheduler.Result{}, fmt.Errorf("%s work requested in %s phase: %w", want, phase, scheduler.ErrPhaseMismatch)
	}
	if units < 0 {
		units = 0
	}

	consumed := min(units, p.remaining)
	p.remaining -= consumed

	res := scheduler.Result{Consumed: consumed}
	if p.remaining > 0 {
		return res, nil
	}

	res.BurstFinished = true
	p.cursor++
	if p.cursor >= len(p.bursts) {
		res.SequenceExhausted = true
		return res, nil
	}
	p.remaining = p.bursts[p.cursor]
	return res, nil
}

// TotalWork returns the sum of all bursts of the given phase.
func (p *BurstProcess) TotalWork(phase scheduler.Phase) time.Duration {
	var total time.Duration
	if phase == scheduler.PhaseDone {
		return 0
	}
	for i, b := range p.bursts {
		if (phase == scheduler.PhaseCPU) == (i%2 == 0) {
			total += b
		}
	}
	return total
}
