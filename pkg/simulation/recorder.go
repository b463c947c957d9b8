package simulation

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sherine-k/mlfq/pkg/scheduler"
)

// Ensure recorder implements [scheduler.Observer].
var _ scheduler.Observer = (*recorder)(nil)

// recorder turns scheduler callbacks into events, time points, statistics and
// span events for its simulator
type recorder struct {
	sim *Simulator
}

func (r *recorder) OnAdmit(p scheduler.Process, now time.Time) {
	s := r.sim
	st := s.stats[p.ID()]
	name := p.ID()
	if st != nil {
		name = st.Name
	}

	s.waitingSince[p.ID()] = now
	s.addEvent(Event{
		Time:    now,
		Type:    EventTypeAdmitted,
		PID:     p.ID(),
		Process: name,
		Queue:   s.scheduler.CPUQueue(0).String(),
		Message: fmt.Sprintf("Process '%s' admitted", name),
	})
}

func (r *recorder) OnTurn(turn scheduler.Turn, now time.Time) {
	s := r.sim
	pid := turn.Process.ID()
	st, ok := s.stats[pid]
	if !ok {
		st = &ProcessStats{PID: pid, Name: pid, Arrival: now}
		s.stats[pid] = st
		s.order = append(s.order, pid)
	}

	st.Turns++
	if turn.Queue.QueueType() == scheduler.QueueTypeCPU {
		st.CPUTime += turn.Consumed
		st.Level = turn.Queue.PriorityLevel()
	} else {
		st.IOTime += turn.Consumed
	}

	event := Event{
		Time:     now,
		PID:      pid,
		Process:  st.Name,
		Queue:    turn.Queue.String(),
		Granted:  turn.Granted,
		Consumed: turn.Consumed,
	}

	switch turn.Outcome {
	case scheduler.OutcomeTerminated:
		event.Type = EventTypeTerminated
		event.Message = fmt.Sprintf("Process '%s' terminated", st.Name)
		st.Finished = true
		st.Finish = now
		delete(s.waitingSince, pid)
		delete(s.warned, pid)
	case scheduler.OutcomeBlocked:
		event.Type = EventTypeBlocked
		event.Message = fmt.Sprintf("Process '%s' blocked on I/O after %s", st.Name, turn.Consumed)
		delete(s.waitingSince, pid)
		delete(s.warned, pid)
	case scheduler.OutcomeReady:
		event.Type = EventTypeReady
		event.Message = fmt.Sprintf("Process '%s' finished I/O and returned to %s", st.Name, s.scheduler.CPUQueue(0))
		st.Promotions++
		st.Level = 0
		r.startWaiting(pid, now)
	case scheduler.OutcomeDemoted:
		level := min(s.scheduler.Levels()-1, turn.Queue.PriorityLevel()+1)
		event.Type = EventTypeDemoted
		event.Message = fmt.Sprintf("Process '%s' used its %s quantum and moved to %s", st.Name, turn.Granted, s.scheduler.CPUQueue(level))
		st.Demotions++
		st.Level = level
		st.MaxLevel = max(st.MaxLevel, level)
		r.startWaiting(pid, now)
	case scheduler.OutcomeRequeued:
		event.Type = EventTypeRequeued
		event.Message = fmt.Sprintf("Process '%s' requeued on %s", st.Name, turn.Queue)
		if turn.Queue.QueueType() == scheduler.QueueTypeCPU {
			r.startWaiting(pid, now)
		}
	}
	s.addEvent(event)

	span, ok := s.spans[pid]
	if !ok {
		return
	}
	span.AddEvent(string(event.Type), trace.WithTimestamp(now), trace.WithAttributes(
		attribute.String("queue", event.Queue),
		attribute.Int64("granted_ns", int64(turn.Granted)),
		attribute.Int64("consumed_ns", int64(turn.Consumed)),
	))
	if turn.Outcome == scheduler.OutcomeTerminated {
		span.SetAttributes(
			attribute.Int("process.demotions", st.Demotions),
			attribute.Int("process.promotions", st.Promotions),
			attribute.Int64("process.turnaround_ns", int64(st.Turnaround())),
		)
		span.SetStatus(codes.Ok, "")
		span.End(trace.WithTimestamp(now))
		delete(s.spans, pid)
	}
}

func (r *recorder) OnTick(tick scheduler.Tick) {
	s := r.sim

	point := TimePoint{
		Time:     tick.Time,
		Slice:    tick.Slice,
		CPU:      make([]int, s.scheduler.Levels()),
		Blocking: s.scheduler.BlockingQueue().Len(),
	}
	for i := range point.CPU {
		point.CPU[i] = s.scheduler.CPUQueue(i).Len()
	}
	for _, turn := range tick.Turns {
		if turn.Queue.QueueType() == scheduler.QueueTypeCPU {
			point.Running = turn.Process.ID()
		}
	}
	s.timePoints = append(s.timePoints, point)

	r.checkStarvation(tick.Time)
}

func (r *recorder) startWaiting(pid string, now time.Time) {
	r.sim.waitingSince[pid] = now
	r.sim.warned[pid] = false
}

// checkStarvation warns once per wait about runnable processes that have not
// been served for longer than the configured threshold
func (r *recorder) checkStarvation(now time.Time) {
	s := r.sim
	threshold := s.config.StarvationThreshold
	if threshold <= 0 {
		return
	}

	for level := 0; level < s.scheduler.Levels(); level++ {
		q := s.scheduler.CPUQueue(level)
		for _, p := range q.Processes() {
			pid := p.ID()
			since, ok := s.waitingSince[pid]
			if !ok || s.warned[pid] {
				continue
			}
			waited := now.Sub(since)
			if waited < threshold {
				continue
			}
			s.warned[pid] = true

			name := pid
			if st, ok := s.stats[pid]; ok {
				name = st.Name
			}
			s.addEvent(Event{
				Time:      now,
				Type:      EventTypeStarving,
				PID:       pid,
				Process:   name,
				Queue:     q.String(),
				Message:   fmt.Sprintf("Process '%s' waiting on %s for %s", name, q, waited),
				IsWarning: true,
			})
			s.logger.Warn("process starving", "pid", pid, "process", name, "queue", q.String(), "waited", waited)
		}
	}
}
