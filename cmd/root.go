package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sherine-k/mlfq/pkg/chart"
	"github.com/sherine-k/mlfq/pkg/config"
	"github.com/sherine-k/mlfq/pkg/simulation"
	"github.com/sherine-k/mlfq/pkg/tracing"
)

const version = "0.1.0"

var (
	configFile       string
	showTimeline     bool
	timelineLimit    int
	showEventSummary bool
	showProcesses    bool
	traceFile        string
	logLevel         string
	logFile          string

	closeLogFile = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "mlfq",
	Short: "Multi-level feedback queue scheduler simulator",
	Long: `A CLI tool that simulates a multi-level feedback queue CPU scheduler.

This tool reads a scenario file describing processes as alternating CPU and
I/O bursts, runs them through a set of priority-ranked CPU queues and one
blocking queue on simulated time, and reports queue depths, per-process
statistics and warnings about starving processes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := initLogger(cmd.ErrOrStderr(), logLevel, logFile)
		closeLogFile = closer
		return err
	},
	RunE: runSimulation,
}

// Execute runs the root command
func Execute() error {
	defer func() {
		if err := closeLogFile(); err != nil {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "failed to close log file: %v\n", err)
		}
		closeLogFile = func() error { return nil }
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to scenario file")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace-file", "", "Write OpenTelemetry spans of every process to this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")

	rootCmd.Flags().BoolVarP(&showTimeline, "timeline", "t", false, "Show detailed timeline of events")
	rootCmd.Flags().IntVarP(&timelineLimit, "timeline-limit", "l", 50, "Limit number of timeline events to display")
	rootCmd.Flags().BoolVarP(&showEventSummary, "summary", "s", true, "Show event summary")
	rootCmd.Flags().BoolVarP(&showProcesses, "processes", "p", true, "Show per-process statistics")

	rootCmd.AddCommand(serveCmd)
}

// simulate loads the scenario and runs it to completion
func simulate(ctx context.Context, out io.Writer) (*config.Config, *simulation.Simulator, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Fprintf(out, "Loaded configuration from %s\n", configFile)
	fmt.Fprintf(out, "  - Tick: %s\n", cfg.Tick)
	fmt.Fprintf(out, "  - CPU Queues: %d %v\n", len(cfg.Quanta), cfg.Quanta)
	fmt.Fprintf(out, "  - Blocking Quantum: %s\n", cfg.BlockingQuantum)
	fmt.Fprintf(out, "  - Simulation Duration: %s\n", cfg.SimulationDuration)
	fmt.Fprintf(out, "  - Processes: %d\n\n", len(cfg.Processes))

	if traceFile != "" {
		if err := tracing.Init("mlfq", version, traceFile); err != nil {
			return nil, nil, fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}

	sim, err := simulation.NewSimulator(cfg, simulation.WithTracer(tracing.Tracer()))
	if err != nil {
		return nil, nil, err
	}
	if err := sim.Run(ctx); err != nil {
		return nil, nil, fmt.Errorf("simulation failed: %w", err)
	}

	if err := tracing.Shutdown(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to flush traces: %w", err)
	}

	return cfg, sim, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	_, sim, err := simulate(cmd.Context(), out)
	if err != nil {
		return err
	}

	// Generate and display chart
	chartGen := chart.NewGenerator()

	timePoints := sim.GetTimePoints()
	events := sim.GetEvents()
	warnings := sim.GetWarnings()

	// Display queue chart
	fmt.Fprintln(out, chartGen.GenerateQueueChart(timePoints, sim.Levels()))

	// Display per-process statistics
	if showProcesses {
		fmt.Fprintln(out, chartGen.GenerateProcessTable(sim.GetProcessStats(), sim.Summary()))
	}

	// Display event summary
	if showEventSummary {
		fmt.Fprintln(out, chartGen.GenerateEventSummary(events))
	}

	// Display warnings
	fmt.Fprintln(out, chartGen.GenerateWarnings(warnings))

	// Display detailed timeline if requested
	if showTimeline {
		fmt.Fprintln(out, chartGen.GenerateDetailedTimeline(events, timelineLimit))
	}

	return nil
}
