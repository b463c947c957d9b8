package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// initLogger installs the default slog logger writing to w and, when path is
// set, to that file as well. The returned func closes the log file.
func initLogger(w io.Writer, level string, path string) (func() error, error) {
	closeFile := func() error { return nil }
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return closeFile, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closeFile = f.Close
	}

	lvl, err := parseLevel(level)
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	if err != nil {
		slog.Warn(err.Error())
	}
	return closeFile, nil
}

// parseLevel maps a level name to a slog level, falling back to INFO
func parseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q, using INFO", level)
	}
}
