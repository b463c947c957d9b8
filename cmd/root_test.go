package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `
tick: 10ms
start: 2025-01-06T09:00:00Z
simulationDuration: 1s
quanta: [10ms, 30ms]
processes:
  - name: batch
    bursts: [25ms]
  - name: editor
    bursts: [5ms, 20ms, 5ms]
`

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"--config", path, "--timeline", "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})

	require.NoError(t, Execute())

	report := out.String()
	assert.Contains(t, report, "Loaded configuration from "+path)
	assert.Contains(t, report, "  - CPU Queues: 2 [10ms 30ms]")
	assert.Contains(t, report, "Queue Depth Over Time")
	assert.Contains(t, report, "Finished: 2/2")
	assert.Contains(t, report, "Process 'editor' terminated")
	assert.Contains(t, report, "No warnings!")
}

func TestRootCommand_MissingConfig(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]struct {
		want    slog.Level
		wantErr bool
	}{
		"DEBUG":   {want: slog.LevelDebug},
		"info":    {want: slog.LevelInfo},
		"":        {want: slog.LevelInfo},
		"Warn":    {want: slog.LevelWarn},
		"ERROR":   {want: slog.LevelError},
		"verbose": {want: slog.LevelInfo, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseLevel(name)
			assert.Equal(t, tc.want, got)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInitLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlfq.log")
	var stderr bytes.Buffer
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })

	closeFile, err := initLogger(&stderr, "debug", path)
	require.NoError(t, err)
	slog.Debug("hello", "k", "v")
	require.NoError(t, closeFile())
	assert.ErrorIs(t, closeFile(), os.ErrClosed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello k=v")
	assert.Contains(t, stderr.String(), "msg=hello k=v")
}

func TestRootCommand_ClosesLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))
	logPath := filepath.Join(dir, "mlfq.log")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", path, "--log-file", logPath, "--log-level", "info"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		logFile = ""
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})

	var captured func() error
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) { captured = closeLogFile }
	t.Cleanup(func() { rootCmd.PersistentPostRun = nil })

	require.NoError(t, Execute())

	require.NotNil(t, captured)
	assert.ErrorIs(t, captured(), os.ErrClosed)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "simulation finished")
}
