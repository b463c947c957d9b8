package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `
tick: 10ms
start: 2025-01-06T00:00:00Z
simulationDuration: 2m
blockingQuantum: 40ms
quanta: [10ms, 30ms, 50ms, 70ms]
starvationThreshold: 200ms
processes:
  - name: batch
    bursts: [25ms]
  - name: editor
    bursts: [5ms, 20ms, 5ms]
    arrival: 15ms
    schedule: "*/30 * * * * *"
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(scenario))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.Tick)
	require.NotNil(t, cfg.Start)
	assert.True(t, cfg.Start.Equal(time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2*time.Minute, cfg.SimulationDuration)
	assert.Equal(t, 40*time.Millisecond, cfg.BlockingQuantum)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 50 * time.Millisecond, 70 * time.Millisecond}, cfg.Quanta)

	assert.Equal(t, 200*time.Millisecond, cfg.StarvationThreshold)

	require.Len(t, cfg.Processes, 2)
	assert.Equal(t, "editor", cfg.Processes[1].Name)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 20 * time.Millisecond, 5 * time.Millisecond}, cfg.Processes[1].Bursts)
	assert.Equal(t, 15*time.Millisecond, cfg.Processes[1].Arrival)
	assert.Equal(t, "*/30 * * * * *", cfg.Processes[1].Schedule)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("processes:\n  - name: p\n    bursts: [1ms]\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultTick, cfg.Tick)
	assert.Equal(t, DefaultBlockingQuantum, cfg.BlockingQuantum)
	assert.Equal(t, DefaultSimulationDuration, cfg.SimulationDuration)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 50 * time.Millisecond}, cfg.Quanta)
	assert.Nil(t, cfg.Start)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"malformed yaml":   "processes: [",
		"no processes":     "tick: 1ms\n",
		"negative tick":    "tick: -1ms\nprocesses:\n  - name: p\n    bursts: [1ms]\n",
		"zero quantum":     "quanta: [10ms, 0s]\nprocesses:\n  - name: p\n    bursts: [1ms]\n",
		"missing name":     "processes:\n  - bursts: [1ms]\n",
		"duplicate name":   "processes:\n  - name: p\n    bursts: [1ms]\n  - name: p\n    bursts: [1ms]\n",
		"even bursts":      "processes:\n  - name: p\n    bursts: [1ms, 2ms]\n",
		"negative arrival": "processes:\n  - name: p\n    bursts: [1ms]\n    arrival: -1s\n",
		"bad schedule":     "processes:\n  - name: p\n    bursts: [1ms]\n    schedule: \"not a cron\"\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Processes, 2)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
