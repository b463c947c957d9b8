package scheduler

import "errors"

var (
	// ErrEmptyQueue is returned when a process is taken from an empty queue.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrInvalidInterrupt is returned for an interrupt kind the scheduler does not route.
	ErrInvalidInterrupt = errors.New("invalid interrupt")

	// ErrInvalidQueueOperation is returned when CPU work is requested from the blocking
	// queue, blocking work from a CPU queue, or a demotion from a non-CPU queue.
	ErrInvalidQueueOperation = errors.New("invalid queue operation")

	// ErrPhaseMismatch is returned when a process is asked for work of a kind it is not
	// currently doing.
	ErrPhaseMismatch = errors.New("process phase mismatch")

	// ErrForeignQueue is returned when an interrupt names a queue the scheduler does not own.
	ErrForeignQueue = errors.New("queue not owned by scheduler")
)
