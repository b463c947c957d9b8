package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/utils/clock"
)

// Scheduler is a multi-level feedback queue scheduler. It owns one blocking
// queue and a fixed set of CPU queues where the index of a queue is its
// priority level, 0 being the highest.
//
// Every iteration of the control loop measures the time elapsed since the
// previous one, offers it to the blocking queue and then to the first non-empty
// CPU queue only. Queues hand processes back through interrupts, which the
// scheduler routes:
//
//   - PROCESS_BLOCKED moves the process to the blocking queue
//   - PROCESS_READY moves the process to CPU level 0
//   - LOWER_PRIORITY moves the process one CPU level down, bounded by the last level
//
// A Scheduler is not safe for concurrent use.
type Scheduler struct {
	clock    clock.PassiveClock
	last     time.Time
	blocking *Queue
	cpu      []*Queue

	logger   *slog.Logger
	observer Observer
}

// New creates a [Scheduler] with the given options.
func New(opts ...Option) (*Scheduler, error) {
	o := &Options{
		Quanta:          DefaultQuanta(),
		BlockingQuantum: DefaultBlockingQuantum,
	}
	for _, opt := range opts {
		opt(o)
	}

	if len(o.Quanta) == 0 {
		return nil, fmt.Errorf("at least one cpu queue is required")
	}
	for i, q := range o.Quanta {
		if q <= 0 {
			return nil, fmt.Errorf("cpu queue %d: quantum must be greater than 0", i)
		}
	}
	if o.BlockingQuantum <= 0 {
		return nil, fmt.Errorf("blocking quantum must be greater than 0")
	}
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	s := &Scheduler{
		clock:    o.Clock,
		blocking: NewQueue(QueueTypeBlocking, o.BlockingQuantum, 0),
		cpu:      make([]*Queue, len(o.Quanta)),
		logger:   o.Logger,
		observer: o.Observer,
	}
	for i, q := range o.Quanta {
		s.cpu[i] = NewQueue(QueueTypeCPU, q, i)
	}
	s.last = s.clock.Now()

	return s, nil
}

// Levels returns the number of CPU queues.
func (s *Scheduler) Levels() int {
	return len(s.cpu)
}

// CPUQueue returns the CPU queue at the given priority level, or nil when the
// level does not exist.
func (s *Scheduler) CPUQueue(level int) *Queue {
	if level < 0 || level >= len(s.cpu) {
		return nil
	}
	return s.cpu[level]
}

// BlockingQueue returns the queue of processes waiting on I/O.
func (s *Scheduler) BlockingQueue() *Queue {
	return s.blocking
}

// Now returns the clock value observed by the last iteration.
func (s *Scheduler) Now() time.Time {
	return s.last
}

// AllQueuesEmpty reports whether no process is left in any queue.
func (s *Scheduler) AllQueuesEmpty() bool {
	if !s.blocking.IsEmpty() {
		return false
	}
	for _, q := range s.cpu {
		if !q.IsEmpty() {
			return false
		}
	}
	return true
}

// AddNewProcess admits p at the highest priority level. The process must be
// about to run a CPU burst.
func (s *Scheduler) AddNewProcess(p Process) error {
	if p == nil {
		return fmt.Errorf("admit: nil process")
	}
	if phase := p.Phase(); phase != PhaseCPU {
		return fmt.Errorf("admit process %s in %s phase: %w", p.ID(), phase, ErrPhaseMismatch)
	}
	s.cpu[0].Enqueue(p)

	s.logger.Debug("process admitted", "pid", p.ID(), "queue", s.cpu[0].String())
	if s.observer != nil {
		s.observer.OnAdmit(p, s.last)
	}
	return nil
}

// Run drives the control loop until every queue is empty.
func (s *Scheduler) Run(ctx context.Context) error {
	for !s.AllQueuesEmpty() {
		if _, err := s.Step(ctx); err != nil {
			return err
		}
	}
	s.logger.Debug("all queues empty", "clock", s.last)
	return nil
}

// Step runs a single iteration of the control loop.
func (s *Scheduler) Step(ctx context.Context) (Tick, error) {
	if err := ctx.Err(); err != nil {
		return Tick{}, err
	}

	now := s.clock.Now()
	tick := Tick{Time: now, Slice: now.Sub(s.last)}
	s.last = now

	if !s.blocking.IsEmpty() {
		turn, err := s.blocking.DoBlockingWork(tick.Slice)
		if err != nil {
			return tick, err
		}
		tick.Turns = append(tick.Turns, turn)
		if err := s.complete(turn); err != nil {
			return tick, err
		}
	}

	for _, q := range s.cpu {
		if q.IsEmpty() {
			continue
		}
		turn, err := q.DoCPUWork(tick.Slice)
		if err != nil {
			return tick, err
		}
		tick.Turns = append(tick.Turns, turn)
		if err := s.complete(turn); err != nil {
			return tick, err
		}
		break
	}

	if s.observer != nil {
		s.observer.OnTick(tick)
	}
	return tick, nil
}

// complete routes the interrupt raised by turn, if any, and reports the turn to
// the observer once the process has reached its next queue. A turn whose
// routing fails is rolled back and never reported.
func (s *Scheduler) complete(turn Turn) error {
	if in, ok := turn.Interrupt(); ok {
		if err := s.HandleInterrupt(in); err != nil {
			turn.Queue.restoreFront(turn.Process)
			return err
		}
	} else if turn.Outcome == OutcomeTerminated {
		s.logger.Debug("process terminated", "pid", turn.Process.ID(), "queue", turn.Queue.String())
	}

	if s.observer != nil {
		s.observer.OnTurn(turn, s.last)
	}
	return nil
}

// HandleInterrupt moves the interrupted process to the queue its interrupt
// kind selects. This is the only place processes cross between queues. On error
// no queue is modified and the caller keeps the process.
func (s *Scheduler) HandleInterrupt(in Interrupt) error {
	if !in.Kind.Valid() {
		return fmt.Errorf("route %s: %w", in.Kind, ErrInvalidInterrupt)
	}
	if in.Process == nil {
		return fmt.Errorf("route %s without process: %w", in.Kind, ErrInvalidInterrupt)
	}
	if err := s.owns(in.Queue); err != nil {
		return fmt.Errorf("route %s for process %s: %w", in.Kind, in.Process.ID(), err)
	}

	var target *Queue
	switch in.Kind {
	case InterruptProcessBlocked:
		target = s.blocking
	case InterruptProcessReady:
		target = s.cpu[0]
	case InterruptLowerPriority:
		if in.Queue.QueueType() != QueueTypeCPU {
			return fmt.Errorf("lower priority from %s queue: %w", in.Queue, ErrInvalidQueueOperation)
		}
		target = s.cpu[min(len(s.cpu)-1, in.Queue.PriorityLevel()+1)]
	}

	want := PhaseCPU
	if target.QueueType() == QueueTypeBlocking {
		want = PhaseIO
	}
	if phase := in.Process.Phase(); phase != want {
		return fmt.Errorf("route %s for process %s in %s phase: %w", in.Kind, in.Process.ID(), phase, ErrPhaseMismatch)
	}

	target.Enqueue(in.Process)
	s.logger.Debug("interrupt handled",
		"interrupt", in.Kind.String(),
		"pid", in.Process.ID(),
		"from", in.Queue.String(),
		"to", target.String(),
	)
	return nil
}

func (s *Scheduler) owns(q *Queue) error {
	if q == nil {
		return fmt.Errorf("missing source queue: %w", ErrForeignQueue)
	}
	if q == s.blocking {
		return nil
	}
	level := q.PriorityLevel()
	if q.QueueType() == QueueTypeCPU && level >= 0 && level < len(s.cpu) && s.cpu[level] == q {
		return nil
	}
	return fmt.Errorf("source %s: %w", q, ErrForeignQueue)
}
