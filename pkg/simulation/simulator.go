package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sherine-k/mlfq/pkg/config"
	"github.com/sherine-k/mlfq/pkg/process"
	"github.com/sherine-k/mlfq/pkg/scheduler"
)

const tracerName = "github.com/sherine-k/mlfq/pkg/simulation"

// Simulator runs a scheduler scenario on simulated time
type Simulator struct {
	config    *config.Config
	scheduler *scheduler.Scheduler
	clock     *scheduler.TickClock
	tracer    trace.Tracer
	logger    *slog.Logger

	events     []Event
	timePoints []TimePoint
	stats      map[string]*ProcessStats
	order      []string
	spans      map[string]trace.Span

	waitingSince map[string]time.Time
	warned       map[string]bool

	simulationStart time.Time
	simulationEnd   time.Time
}

// Option configures a [Simulator]
type Option func(*Simulator)

// WithTracer sets the tracer used for per-process spans
func WithTracer(t trace.Tracer) Option {
	return func(s *Simulator) {
		s.tracer = t
	}
}

// WithLogger sets the logger for the [Simulator]
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = l
	}
}

// NewSimulator creates a new simulator
func NewSimulator(cfg *config.Config, opts ...Option) (*Simulator, error) {
	start := lastMonday(time.Now())
	if cfg.Start != nil {
		start = *cfg.Start
	}

	s := &Simulator{
		config:          cfg,
		events:          []Event{},
		timePoints:      []TimePoint{},
		stats:           map[string]*ProcessStats{},
		spans:           map[string]trace.Span{},
		waitingSince:    map[string]time.Time{},
		warned:          map[string]bool{},
		simulationStart: start,
		simulationEnd:   start.Add(cfg.SimulationDuration),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	// The scheduler reads the clock once on construction, which lands it on start.
	s.clock = scheduler.NewTickClock(start.Add(-cfg.Tick), cfg.Tick)
	sched, err := scheduler.New(
		scheduler.WithQuanta(cfg.Quanta...),
		scheduler.WithBlockingQuantum(cfg.BlockingQuantum),
		scheduler.WithClock(s.clock),
		scheduler.WithLogger(s.logger),
		scheduler.WithObserver(&recorder{sim: s}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.scheduler = sched

	return s, nil
}

// lastMonday returns midnight of the most recent Monday
func lastMonday(now time.Time) time.Time {
	weekday := now.Weekday()
	var daysBack int
	if weekday == time.Sunday {
		daysBack = 6 // Sunday is 6 days after Monday
	} else {
		daysBack = int(weekday) - 1 // Days since Monday
	}
	d := now.AddDate(0, 0, -daysBack)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}

// Run executes the simulation until every arrival has been admitted and every
// queue has drained
func (s *Simulator) Run(ctx context.Context) error {
	arrivals, err := s.generateArrivals()
	if err != nil {
		return err
	}

	s.logger.Info("simulation started",
		"start", s.simulationStart,
		"arrivals", len(arrivals),
		"levels", s.scheduler.Levels(),
		"tick", s.config.Tick,
	)

	next := 0
	for {
		now := s.clock.Current()
		for next < len(arrivals) && !arrivals[next].At.After(now) {
			if err := s.admit(ctx, arrivals[next]); err != nil {
				return err
			}
			next++
		}

		if s.scheduler.AllQueuesEmpty() {
			if next >= len(arrivals) {
				break
			}
			// Nothing runnable: skip the idle gap up to the next arrival.
			s.clock.Jump(arrivals[next].At)
		}

		if _, err := s.scheduler.Step(ctx); err != nil {
			return fmt.Errorf("simulation step at %s: %w", s.clock.Current().Format(time.RFC3339Nano), err)
		}
	}

	s.endOpenSpans()

	summary := s.Summary()
	s.logger.Info("simulation finished",
		"processes", summary.Processes,
		"finished", summary.Finished,
		"ticks", summary.Ticks,
		"makespan", summary.Makespan(),
		"warnings", summary.Warnings,
	)
	return nil
}

// generateArrivals expands the configured processes into concrete arrivals,
// following cron schedules within the simulation window
func (s *Simulator) generateArrivals() ([]config.Arrival, error) {
	arrivals := []config.Arrival{}

	for i := range s.config.Processes {
		p := &s.config.Processes[i]
		first := s.simulationStart.Add(p.Arrival)
		arrivals = append(arrivals, config.Arrival{Process: p, At: first})

		if p.Schedule == "" {
			continue
		}
		schedule, err := config.CronParser.Parse(p.Schedule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule for process %s: %w", p.Name, err)
		}

		seq := 1
		for next := schedule.Next(first); !next.IsZero() && !next.After(s.simulationEnd); next = schedule.Next(next) {
			arrivals = append(arrivals, config.Arrival{Process: p, At: next, Seq: seq})
			seq++
		}
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].At.Before(arrivals[j].At)
	})
	return arrivals, nil
}

func (s *Simulator) admit(ctx context.Context, a config.Arrival) error {
	name := a.Process.Name
	if a.Seq > 0 {
		name = fmt.Sprintf("%s#%d", name, a.Seq)
	}

	p, err := process.New(name, a.Process.Bursts)
	if err != nil {
		return err
	}

	st := &ProcessStats{PID: p.ID(), Name: name, Arrival: a.At}
	s.stats[p.ID()] = st
	s.order = append(s.order, p.ID())

	_, span := s.tracer.Start(ctx, "process "+name,
		trace.WithNewRoot(),
		trace.WithTimestamp(a.At),
		trace.WithAttributes(
			attribute.String("process.id", p.ID()),
			attribute.String("process.name", name),
			attribute.Int("process.bursts", len(a.Process.Bursts)),
			attribute.Int64("process.cpu_ns", int64(p.TotalWork(scheduler.PhaseCPU))),
			attribute.Int64("process.io_ns", int64(p.TotalWork(scheduler.PhaseIO))),
		),
	)
	s.spans[p.ID()] = span

	if err := s.scheduler.AddNewProcess(p); err != nil {
		span.End(trace.WithTimestamp(a.At))
		delete(s.spans, p.ID())
		return fmt.Errorf("failed to admit process %s: %w", name, err)
	}
	return nil
}

func (s *Simulator) endOpenSpans() {
	end := s.clock.Current()
	for pid, span := range s.spans {
		span.End(trace.WithTimestamp(end))
		delete(s.spans, pid)
	}
}

// addEvent adds an event to the event list
func (s *Simulator) addEvent(event Event) {
	s.events = append(s.events, event)
}

// GetEvents returns all events
func (s *Simulator) GetEvents() []Event {
	return s.events
}

// GetTimePoints returns all time points
func (s *Simulator) GetTimePoints() []TimePoint {
	return s.timePoints
}

// GetWarnings returns all warning events
func (s *Simulator) GetWarnings() []Event {
	warnings := []Event{}
	for _, event := range s.events {
		if event.IsWarning {
			warnings = append(warnings, event)
		}
	}
	return warnings
}

// GetProcessStats returns per-process statistics in admission order
func (s *Simulator) GetProcessStats() []ProcessStats {
	out := make([]ProcessStats, 0, len(s.order))
	for _, pid := range s.order {
		out = append(out, *s.stats[pid])
	}
	return out
}

// GetProcess returns the statistics of a single process
func (s *Simulator) GetProcess(pid string) (ProcessStats, bool) {
	st, ok := s.stats[pid]
	if !ok {
		return ProcessStats{}, false
	}
	return *st, true
}

// Levels returns the number of CPU queues
func (s *Simulator) Levels() int {
	return s.scheduler.Levels()
}

// Summary aggregates the simulation results
func (s *Simulator) Summary() Summary {
	summary := Summary{
		Start:     s.simulationStart,
		End:       s.simulationStart,
		Ticks:     len(s.timePoints),
		Processes: len(s.order),
		Warnings:  len(s.GetWarnings()),
	}
	if n := len(s.timePoints); n > 0 {
		summary.End = s.timePoints[n-1].Time
	}

	var turnaround, waiting time.Duration
	for _, pid := range s.order {
		st := s.stats[pid]
		summary.Demotions += st.Demotions
		summary.Promotions += st.Promotions
		summary.CPUBusy += st.CPUTime
		if !st.Finished {
			continue
		}
		summary.Finished++
		turnaround += st.Turnaround()
		waiting += st.Waiting()
	}
	if summary.Finished > 0 {
		summary.AverageTurnaround = turnaround / time.Duration(summary.Finished)
		summary.AverageWaiting = waiting / time.Duration(summary.Finished)
	}
	return summary
}
