// Package server exposes the results of a finished simulation over a small
// read-only JSON API.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sherine-k/mlfq/pkg/simulation"
)

// Report is the read side of a simulation the API serves.
type Report interface {
	Summary() simulation.Summary
	GetEvents() []simulation.Event
	GetTimePoints() []simulation.TimePoint
	GetProcessStats() []simulation.ProcessStats
	GetProcess(pid string) (simulation.ProcessStats, bool)
}

// NewServer builds the root router and mounts the v1 API under /api/v1.
func NewServer(report Report) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Use a versioned path like /api/v1/summary")
	})

	r.Route("/api", func(api chi.Router) {
		api.Mount("/v1", Router(report))
	})

	return r
}

// Router returns the chi.Router for the v1 API.
func Router(report Report) chi.Router {
	h := &handler{report: report}
	r := chi.NewRouter()

	r.Get("/summary", h.getSummary)
	r.Get("/processes", h.listProcesses)
	r.Get("/processes/{pid}", h.getProcess)
	r.Get("/events", h.listEvents)
	r.Get("/timeline", h.getTimeline)

	return r
}

type handler struct {
	report Report
}

type summaryResponse struct {
	simulation.Summary
	Makespan time.Duration `json:"makespan"`
}

type processResponse struct {
	simulation.ProcessStats
	Turnaround time.Duration `json:"turnaround"`
	Waiting    time.Duration `json:"waiting"`
}

func newProcessResponse(st simulation.ProcessStats) processResponse {
	return processResponse{ProcessStats: st, Turnaround: st.Turnaround(), Waiting: st.Waiting()}
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	s := h.report.Summary()
	writeJSON(w, http.StatusOK, summaryResponse{Summary: s, Makespan: s.Makespan()})
}

func (h *handler) listProcesses(w http.ResponseWriter, r *http.Request) {
	stats := h.report.GetProcessStats()
	items := make([]processResponse, 0, len(stats))
	for _, st := range stats {
		items = append(items, newProcessResponse(st))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handler) getProcess(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")
	st, ok := h.report.GetProcess(pid)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown process "+pid)
		return
	}
	writeJSON(w, http.StatusOK, newProcessResponse(st))
}

func (h *handler) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	typ := simulation.EventType(q.Get("type"))
	pid := q.Get("pid")

	items := []simulation.Event{}
	for _, e := range h.report.GetEvents() {
		if typ != "" && e.Type != typ {
			continue
		}
		if pid != "" && e.PID != pid {
			continue
		}
		items = append(items, e)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handler) getTimeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.report.GetTimePoints()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
