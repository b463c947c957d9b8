package simulation

import (
	"time"
)

// ProcessStats accumulates what happened to one process
type ProcessStats struct {
	PID        string        `json:"pid"`
	Name       string        `json:"name"`
	Arrival    time.Time     `json:"arrival"`
	Finish     time.Time     `json:"finish"`
	Finished   bool          `json:"finished"`
	CPUTime    time.Duration `json:"cpuTime"`
	IOTime     time.Duration `json:"ioTime"`
	Turns      int           `json:"turns"`
	Demotions  int           `json:"demotions"`
	Promotions int           `json:"promotions"`
	Level      int           `json:"level"`
	MaxLevel   int           `json:"maxLevel"`
}

// Turnaround returns the time from admission to termination
func (p ProcessStats) Turnaround() time.Duration {
	if !p.Finished {
		return 0
	}
	return p.Finish.Sub(p.Arrival)
}

// Waiting returns the part of the turnaround spent neither running nor doing I/O
func (p ProcessStats) Waiting() time.Duration {
	w := p.Turnaround() - p.CPUTime - p.IOTime
	if w < 0 {
		return 0
	}
	return w
}

// Summary aggregates a completed simulation
type Summary struct {
	Start             time.Time     `json:"start"`
	End               time.Time     `json:"end"`
	Ticks             int           `json:"ticks"`
	Processes         int           `json:"processes"`
	Finished          int           `json:"finished"`
	Demotions         int           `json:"demotions"`
	Promotions        int           `json:"promotions"`
	Warnings          int           `json:"warnings"`
	AverageTurnaround time.Duration `json:"averageTurnaround"`
	AverageWaiting    time.Duration `json:"averageWaiting"`
	CPUBusy           time.Duration `json:"cpuBusy"`
}

// Makespan returns the simulated time between the first and last iteration
func (s Summary) Makespan() time.Duration {
	return s.End.Sub(s.Start)
}
