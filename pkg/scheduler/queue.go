package scheduler

import (
	"fmt"
	"time"
)

// Queue is a FIFO of processes served with a fixed quantum. Only membership
// changes after construction.
type Queue struct {
	processes []Process
	quantum   time.Duration
	priority  int
	kind      QueueType
}

// NewQueue creates an empty queue.
func NewQueue(kind QueueType, quantum time.Duration, priority int) *Queue {
	return &Queue{
		processes: []Process{},
		quantum:   quantum,
		priority:  priority,
		kind:      kind,
	}
}

// IsEmpty reports whether the queue holds no processes.
func (q *Queue) IsEmpty() bool {
	return len(q.processes) == 0
}

// Len returns the number of queued processes.
func (q *Queue) Len() int {
	return len(q.processes)
}

// Enqueue appends p to the tail of the queue.
func (q *Queue) Enqueue(p Process) {
	q.processes = append(q.processes, p)
}

// Processes returns a copy of the queued processes, head first.
func (q *Queue) Processes() []Process {
	out := make([]Process, len(q.processes))
	copy(out, q.processes)
	return out
}

func (q *Queue) QueueType() QueueType { return q.kind }

func (q *Queue) PriorityLevel() int { return q.priority }

func (q *Queue) Quantum() time.Duration { return q.quantum }

func (q *Queue) String() string {
	if q.kind == QueueTypeBlocking {
		return "blocking"
	}
	return fmt.Sprintf("cpu[%d]", q.priority)
}

func (q *Queue) dequeueFront() (Process, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("dequeue from %s: %w", q, ErrEmptyQueue)
	}
	p := q.processes[0]
	q.processes[0] = nil
	q.processes = q.processes[1:]
	return p, nil
}

// restoreFront puts back a process whose turn was aborted.
func (q *Queue) restoreFront(p Process) {
	q.processes = append([]Process{p}, q.processes...)
}

func (q *Queue) grant(timeSlice time.Duration) time.Duration {
	granted := min(q.quantum, timeSlice)
	if granted < 0 {
		return 0
	}
	return granted
}

// DoCPUWork runs the head process for min(quantum, timeSlice).
//
// A process whose burst ends with its sequence is dropped. One whose burst ends
// with I/O still pending is returned as blocked. One that used the whole grant
// without finishing is returned as demoted. Anything else, including a zero
// grant, goes back to the tail of this queue.
func (q *Queue) DoCPUWork(timeSlice time.Duration) (Turn, error) {
	if q.kind != QueueTypeCPU {
		return Turn{}, fmt.Errorf("cpu work on %s queue: %w", q, ErrInvalidQueueOperation)
	}
	p, err := q.dequeueFront()
	if err != nil {
		return Turn{}, err
	}

	granted := q.grant(timeSlice)
	res, err := p.ConsumeCPU(granted)
	if err != nil {
		q.restoreFront(p)
		return Turn{}, fmt.Errorf("cpu work for process %s: %w", p.ID(), err)
	}

	turn := Turn{Queue: q, Process: p, Granted: granted, Consumed: res.Consumed}
	switch {
	case res.BurstFinished && res.SequenceExhausted:
		turn.Outcome = OutcomeTerminated
	case res.BurstFinished:
		turn.Outcome = OutcomeBlocked
	case granted > 0 && res.Consumed >= granted:
		turn.Outcome = OutcomeDemoted
	default:
		turn.Outcome = OutcomeRequeued
		q.Enqueue(p)
	}
	return turn, nil
}

// DoBlockingWork advances the I/O burst of the head process by
// min(quantum, timeSlice). Unfinished I/O goes back to the tail of this queue.
func (q *Queue) DoBlockingWork(timeSlice time.Duration) (Turn, error) {
	if q.kind != QueueTypeBlocking {
		return Turn{}, fmt.Errorf("blocking work on %s queue: %w", q, ErrInvalidQueueOperation)
	}
	p, err := q.dequeueFront()
	if err != nil {
		return Turn{}, err
	}

	granted := q.grant(timeSlice)
	res, err := p.ConsumeIO(granted)
	if err != nil {
		q.restoreFront(p)
		return Turn{}, fmt.Errorf("blocking work for process %s: %w", p.ID(), err)
	}

	turn := Turn{Queue: q, Process: p, Granted: granted, Consumed: res.Consumed}
	switch {
	case res.BurstFinished && res.SequenceExhausted:
		turn.Outcome = OutcomeTerminated
	case res.BurstFinished:
		turn.Outcome = OutcomeReady
	default:
		turn.Outcome = OutcomeRequeued
		q.Enqueue(p)
	}
	return turn, nil
}
