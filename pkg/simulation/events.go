package simulation

import (
	"time"
)

// EventType defines the type of event in the simulation
type EventType string

const (
	EventTypeAdmitted   EventType = "admitted"
	EventTypeBlocked    EventType = "blocked"
	EventTypeReady      EventType = "ready"
	EventTypeDemoted    EventType = "demoted"
	EventTypeRequeued   EventType = "requeued"
	EventTypeTerminated EventType = "terminated"
	EventTypeStarving   EventType = "starving"
)

// EventTypes lists every event type in display order
var EventTypes = []EventType{
	EventTypeAdmitted,
	EventTypeBlocked,
	EventTypeReady,
	EventTypeDemoted,
	EventTypeRequeued,
	EventTypeTerminated,
	EventTypeStarving,
}

// Event represents a point-in-time event in the simulation
type Event struct {
	Time      time.Time     `json:"time"`
	Type      EventType     `json:"type"`
	PID       string        `json:"pid"`
	Process   string        `json:"process"`
	Queue     string        `json:"queue"`
	Granted   time.Duration `json:"granted"`
	Consumed  time.Duration `json:"consumed"`
	Message   string        `json:"message"`
	IsWarning bool          `json:"isWarning"`
}

// TimePoint represents the state of the queues after one scheduler iteration
type TimePoint struct {
	Time     time.Time     `json:"time"`
	Slice    time.Duration `json:"slice"`
	CPU      []int         `json:"cpu"`
	Blocking int           `json:"blocking"`
	Running  string        `json:"running,omitempty"`
}
