package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherine-k/mlfq/pkg/config"
	"github.com/sherine-k/mlfq/pkg/server"
	"github.com/sherine-k/mlfq/pkg/simulation"
)

func newTestServer(t *testing.T) (*httptest.Server, *simulation.Simulator) {
	t.Helper()

	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	cfg := &config.Config{
		Tick:               10 * time.Millisecond,
		Start:              &start,
		SimulationDuration: time.Minute,
		BlockingQuantum:    50 * time.Millisecond,
		Quanta:             []time.Duration{10 * time.Millisecond, 30 * time.Millisecond},
		Processes: []config.Process{
			{Name: "batch", Bursts: []time.Duration{25 * time.Millisecond}},
			{Name: "editor", Bursts: []time.Duration{5 * time.Millisecond, 20 * time.Millisecond, 5 * time.Millisecond}},
		},
	}
	sim, err := simulation.NewSimulator(cfg)
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))

	ts := httptest.NewServer(server.NewServer(sim))
	t.Cleanup(ts.Close)
	return ts, sim
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, wantStatus, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestSummary(t *testing.T) {
	ts, sim := newTestServer(t)

	var got struct {
		Processes int           `json:"processes"`
		Finished  int           `json:"finished"`
		Ticks     int           `json:"ticks"`
		Makespan  time.Duration `json:"makespan"`
	}
	getJSON(t, ts.URL+"/api/v1/summary", http.StatusOK, &got)

	want := sim.Summary()
	assert.Equal(t, 2, got.Processes)
	assert.Equal(t, 2, got.Finished)
	assert.Equal(t, want.Ticks, got.Ticks)
	assert.Equal(t, want.Makespan(), got.Makespan)
}

func TestProcesses(t *testing.T) {
	ts, sim := newTestServer(t)

	var list struct {
		Items []struct {
			PID        string        `json:"pid"`
			Name       string        `json:"name"`
			CPUTime    time.Duration `json:"cpuTime"`
			Turnaround time.Duration `json:"turnaround"`
		} `json:"items"`
	}
	getJSON(t, ts.URL+"/api/v1/processes", http.StatusOK, &list)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "batch", list.Items[0].Name)
	assert.Equal(t, 25*time.Millisecond, list.Items[0].CPUTime)
	assert.Positive(t, list.Items[0].Turnaround)

	pid := sim.GetProcessStats()[1].PID
	var one struct {
		PID  string `json:"pid"`
		Name string `json:"name"`
	}
	getJSON(t, ts.URL+"/api/v1/processes/"+pid, http.StatusOK, &one)
	assert.Equal(t, pid, one.PID)
	assert.Equal(t, "editor", one.Name)

	var notFound map[string]string
	getJSON(t, ts.URL+"/api/v1/processes/missing", http.StatusNotFound, &notFound)
	assert.Equal(t, "not_found", notFound["error"])
}

func TestEvents(t *testing.T) {
	ts, sim := newTestServer(t)

	var all struct {
		Items []simulation.Event `json:"items"`
	}
	getJSON(t, ts.URL+"/api/v1/events", http.StatusOK, &all)
	assert.Len(t, all.Items, len(sim.GetEvents()))

	var terminated struct {
		Items []simulation.Event `json:"items"`
	}
	getJSON(t, ts.URL+"/api/v1/events?type=terminated", http.StatusOK, &terminated)
	require.Len(t, terminated.Items, 2)
	for _, e := range terminated.Items {
		assert.Equal(t, simulation.EventTypeTerminated, e.Type)
	}

	var limited struct {
		Items []simulation.Event `json:"items"`
	}
	getJSON(t, ts.URL+"/api/v1/events?limit=1", http.StatusOK, &limited)
	assert.Len(t, limited.Items, 1)

	pid := sim.GetProcessStats()[0].PID
	var byPID struct {
		Items []simulation.Event `json:"items"`
	}
	getJSON(t, ts.URL+"/api/v1/events?pid="+pid, http.StatusOK, &byPID)
	require.NotEmpty(t, byPID.Items)
	for _, e := range byPID.Items {
		assert.Equal(t, pid, e.PID)
	}

	var bad map[string]string
	getJSON(t, ts.URL+"/api/v1/events?limit=-3", http.StatusBadRequest, &bad)
	assert.Equal(t, "invalid_limit", bad["error"])
}

func TestTimeline(t *testing.T) {
	ts, sim := newTestServer(t)

	var got struct {
		Items []simulation.TimePoint `json:"items"`
	}
	getJSON(t, ts.URL+"/api/v1/timeline", http.StatusOK, &got)
	require.Len(t, got.Items, len(sim.GetTimePoints()))
	assert.Len(t, got.Items[0].CPU, 2)
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	var got map[string]string
	getJSON(t, ts.URL+"/nope", http.StatusNotFound, &got)
	assert.Equal(t, "not_found", got["error"])
}
