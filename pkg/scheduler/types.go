package scheduler

import (
	"fmt"
	"time"
)

// Phase is the kind of work a process currently needs.
type Phase int

const (
	PhaseCPU Phase = iota
	PhaseIO
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCPU:
		return "cpu"
	case PhaseIO:
		return "io"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Result reports what a process did with the time it was offered.
type Result struct {
	Consumed          time.Duration
	BurstFinished     bool
	SequenceExhausted bool
}

// Process is the work-consumption contract the scheduler needs from a process.
//
// ConsumeCPU and ConsumeIO must be deterministic for a given state and input and
// must never consume more than the remaining length of the current burst.
type Process interface {
	ID() string
	Phase() Phase
	ConsumeCPU(units time.Duration) (Result, error)
	ConsumeIO(units time.Duration) (Result, error)
}

// QueueType tags a queue as holding CPU-bound or blocked processes.
type QueueType int

const (
	QueueTypeCPU QueueType = iota
	QueueTypeBlocking
)

func (t QueueType) String() string {
	switch t {
	case QueueTypeCPU:
		return "cpu"
	case QueueTypeBlocking:
		return "blocking"
	default:
		return fmt.Sprintf("queue-type(%d)", int(t))
	}
}

// InterruptKind is the reason a queue hands a process back to the scheduler.
type InterruptKind int

const (
	InterruptProcessBlocked InterruptKind = iota + 1
	InterruptProcessReady
	InterruptLowerPriority
)

func (k InterruptKind) String() string {
	switch k {
	case InterruptProcessBlocked:
		return "PROCESS_BLOCKED"
	case InterruptProcessReady:
		return "PROCESS_READY"
	case InterruptLowerPriority:
		return "LOWER_PRIORITY"
	default:
		return fmt.Sprintf("INTERRUPT(%d)", int(k))
	}
}

// Valid reports whether k is one of the routed interrupt kinds.
func (k InterruptKind) Valid() bool {
	switch k {
	case InterruptProcessBlocked, InterruptProcessReady, InterruptLowerPriority:
		return true
	}
	return false
}

// Interrupt asks the scheduler to move Process out of Queue.
type Interrupt struct {
	Kind    InterruptKind
	Queue   *Queue
	Process Process
}

// Outcome is how a single process turn ended.
type Outcome int

const (
	OutcomeTerminated Outcome = iota
	OutcomeBlocked
	OutcomeReady
	OutcomeDemoted
	OutcomeRequeued
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTerminated:
		return "terminated"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeReady:
		return "ready"
	case OutcomeDemoted:
		return "demoted"
	case OutcomeRequeued:
		return "requeued"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Turn records one unit of scheduling work done by a queue.
type Turn struct {
	Queue    *Queue
	Process  Process
	Granted  time.Duration
	Consumed time.Duration
	Outcome  Outcome
}

// Interrupt returns the interrupt the turn raises, if any. Terminated and
// requeued turns raise none.
func (t Turn) Interrupt() (Interrupt, bool) {
	var kind InterruptKind
	switch t.Outcome {
	case OutcomeBlocked:
		kind = InterruptProcessBlocked
	case OutcomeReady:
		kind = InterruptProcessReady
	case OutcomeDemoted:
		kind = InterruptLowerPriority
	default:
		return Interrupt{}, false
	}
	return Interrupt{Kind: kind, Queue: t.Queue, Process: t.Process}, true
}

// Tick is the record of one control loop iteration.
type Tick struct {
	Time  time.Time
	Slice time.Duration
	Turns []Turn
}
