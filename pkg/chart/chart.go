package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/sherine-k/mlfq/pkg/simulation"
)

const (
	chartWidth  = 80
	chartHeight = 20
)

// Generator generates ASCII charts
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a new chart generator
func NewGenerator() *Generator {
	return &Generator{
		width:  chartWidth,
		height: chartHeight,
	}
}

// levelMark returns the glyph used for a CPU level in the queue chart
func levelMark(level int) byte {
	if level < 10 {
		return byte('0' + level)
	}
	return '+'
}

// GenerateQueueChart generates an ASCII chart showing queue depths over time.
// Each column stacks the CPU levels, highest priority at the bottom, with the
// blocked processes on top.
func (g *Generator) GenerateQueueChart(timePoints []simulation.TimePoint, levels int) string {
	if len(timePoints) == 0 {
		return "No data to display"
	}

	var sb strings.Builder

	// Header
	sb.WriteString("\n")
	sb.WriteString("Queue Depth Over Time\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	plotWidth := g.width - 6
	columns := min(len(timePoints), plotWidth)

	// Sample one stack per column
	stacks := make([][]byte, columns)
	maxDepth := 0
	for x := 0; x < columns; x++ {
		pointIndex := 0
		if columns > 1 {
			pointIndex = int(float64(x) / float64(columns-1) * float64(len(timePoints)-1))
		}
		tp := timePoints[pointIndex]

		stack := []byte{}
		for level, depth := range tp.CPU {
			stack = append(stack, []byte(strings.Repeat(string(levelMark(level)), depth))...)
		}
		stack = append(stack, []byte(strings.Repeat("B", tp.Blocking))...)
		stacks[x] = stack

		if len(stack) > maxDepth {
			maxDepth = len(stack)
		}
	}

	if maxDepth == 0 {
		sb.WriteString("All queues empty for the whole run\n")
		return sb.String()
	}

	// Compress tall charts so they fit the configured height
	rows := min(maxDepth, g.height)
	perRow := (maxDepth + rows - 1) / rows

	for row := rows; row >= 1; row-- {
		// Y-axis label
		sb.WriteString(fmt.Sprintf("%3d |", row*perRow))

		for _, stack := range stacks {
			idx := (row-1)*perRow + perRow - 1
			if idx >= len(stack) {
				idx = len(stack) - 1
			}
			if (row-1)*perRow < len(stack) {
				sb.WriteByte(stack[idx])
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	// X-axis
	sb.WriteString("    +")
	sb.WriteString(strings.Repeat("-", plotWidth))
	sb.WriteString("\n")

	// X-axis labels - elapsed time at each quarter
	startTime := timePoints[0].Time
	totalDuration := timePoints[len(timePoints)-1].Time.Sub(startTime)

	labelLine := make([]rune, plotWidth)
	for i := range labelLine {
		labelLine[i] = ' '
	}
	for quarter := 0; quarter <= 3; quarter++ {
		position := quarter * (columns - 1) / 4
		marker := FormatDuration(totalDuration * time.Duration(quarter) / 4)
		if position+len(marker) > plotWidth {
			continue
		}
		for i, ch := range marker {
			labelLine[position+i] = ch
		}
	}
	sb.WriteString("     ")
	sb.WriteString(strings.TrimRight(string(labelLine), " "))
	sb.WriteString("\n")

	// Legend
	sb.WriteString("\n")
	sb.WriteString("Legend:\n")
	for level := 0; level < levels; level++ {
		sb.WriteString(fmt.Sprintf("    %c - Process waiting in cpu[%d]\n", levelMark(level), level))
	}
	sb.WriteString("    B - Process blocked on I/O\n")
	if perRow > 1 {
		sb.WriteString(fmt.Sprintf("  Each row represents %d processes\n", perRow))
	}
	sb.WriteString("\n")

	return sb.String()
}

// GenerateEventSummary generates a summary of events
func (g *Generator) GenerateEventSummary(events []simulation.Event) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Event Summary\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	// Group events by type
	eventsByType := make(map[simulation.EventType]int)
	for _, event := range events {
		eventsByType[event.Type]++
	}

	sb.WriteString(fmt.Sprintf("Total Events: %d\n", len(events)))
	sb.WriteString(fmt.Sprintf("  - Admitted: %d\n", eventsByType[simulation.EventTypeAdmitted]))
	sb.WriteString(fmt.Sprintf("  - Blocked: %d\n", eventsByType[simulation.EventTypeBlocked]))
	sb.WriteString(fmt.Sprintf("  - Ready: %d\n", eventsByType[simulation.EventTypeReady]))
	sb.WriteString(fmt.Sprintf("  - Demoted: %d\n", eventsByType[simulation.EventTypeDemoted]))
	sb.WriteString(fmt.Sprintf("  - Requeued: %d\n", eventsByType[simulation.EventTypeRequeued]))
	sb.WriteString(fmt.Sprintf("  - Terminated: %d\n", eventsByType[simulation.EventTypeTerminated]))
	sb.WriteString(fmt.Sprintf("  - Starving: %d\n", eventsByType[simulation.EventTypeStarving]))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateProcessTable generates per-process statistics
func (g *Generator) GenerateProcessTable(stats []simulation.ProcessStats, summary simulation.Summary) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Processes\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("%-16s %10s %10s %10s %10s %5s %5s %5s\n",
		"NAME", "CPU", "I/O", "WAIT", "TURNAROUND", "DEM", "PROM", "LVL"))
	for _, st := range stats {
		turnaround := "-"
		if st.Finished {
			turnaround = FormatDuration(st.Turnaround())
		}
		sb.WriteString(fmt.Sprintf("%-16s %10s %10s %10s %10s %5d %5d %5d\n",
			truncate(st.Name, 16),
			FormatDuration(st.CPUTime),
			FormatDuration(st.IOTime),
			FormatDuration(st.Waiting()),
			turnaround,
			st.Demotions,
			st.Promotions,
			st.Level))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Finished: %d/%d in %d ticks (makespan %s)\n",
		summary.Finished, summary.Processes, summary.Ticks, FormatDuration(summary.Makespan())))
	sb.WriteString(fmt.Sprintf("Average turnaround: %s\n", FormatDuration(summary.AverageTurnaround)))
	sb.WriteString(fmt.Sprintf("Average waiting: %s\n", FormatDuration(summary.AverageWaiting)))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateWarnings generates a list of warnings
func (g *Generator) GenerateWarnings(warnings []simulation.Event) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Warnings\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(warnings) == 0 {
		sb.WriteString("No warnings!\n")
		return sb.String()
	}

	for _, warning := range warnings {
		timestamp := warning.Time.Format("15:04:05.000")
		sb.WriteString(fmt.Sprintf("[%s] %s\n", timestamp, warning.Message))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total Warnings: %d\n", len(warnings)))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateDetailedTimeline generates a detailed timeline of events
func (g *Generator) GenerateDetailedTimeline(events []simulation.Event, limit int) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Detailed Timeline")
	if limit > 0 && limit < len(events) {
		sb.WriteString(fmt.Sprintf(" (showing first %d events)", limit))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	displayCount := len(events)
	if limit > 0 && limit < displayCount {
		displayCount = limit
	}

	for i := 0; i < displayCount; i++ {
		event := events[i]
		timestamp := event.Time.Format("15:04:05.000")

		typeIcon := " "
		switch event.Type {
		case simulation.EventTypeAdmitted:
			typeIcon = "+"
		case simulation.EventTypeTerminated:
			typeIcon = "-"
		case simulation.EventTypeBlocked:
			typeIcon = "B"
		case simulation.EventTypeReady:
			typeIcon = "R"
		case simulation.EventTypeDemoted:
			typeIcon = "v"
		case simulation.EventTypeRequeued:
			typeIcon = "."
		case simulation.EventTypeStarving:
			typeIcon = "!"
		}

		sb.WriteString(fmt.Sprintf("[%s] %s [%-8s] %s\n",
			timestamp,
			typeIcon,
			event.Queue,
			event.Message))
	}

	if limit > 0 && limit < len(events) {
		sb.WriteString(fmt.Sprintf("\n... and %d more events\n", len(events)-limit))
	}

	sb.WriteString("\n")

	return sb.String()
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.String()
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// truncate shortens s to at most n runes, marking the cut with '~'
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "~"
}
