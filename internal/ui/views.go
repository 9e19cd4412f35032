package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderReplayView renders the main replay view
func renderReplayView(m Model) string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	// Trace queue
	b.WriteString(renderTraceQueue(m))
	b.WriteString("\n\n")

	// Overall progress
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A40000")).
		Render("Noisectl 🎛  - Adaptive Noise Factor Controller")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Replaying %d trace(s)", m.TotalTraces))

	return title + "\n" + subtitle
}

// renderTraceQueue renders the list of traces with their status
func renderTraceQueue(m Model) string {
	var b strings.Builder

	for i, trace := range m.Traces {
		b.WriteString(renderTraceEntry(trace, i, m.CurrentIndex))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTraceEntry renders a single trace entry in the queue
func renderTraceEntry(trace TraceProgress, index int, currentIndex int) string {
	traceName := filepath.Base(trace.Name)

	switch trace.Status {
	case StatusComplete:
		// ✓ completed trace with summary
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		summary := fmt.Sprintf("Final: ×%.3f | ↓%d ↑%d =%d",
			trace.FinalFactor, trace.Attenuated, trace.Amplified, trace.Held)
		return fmt.Sprintf(" %s %s\n   %s", icon, traceName, summary)

	case StatusReplaying:
		// ⚙ active trace with detailed progress
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s",
			icon, traceName, renderTraceDetails(trace))

	case StatusError:
		// ✗ failed trace
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, traceName, trace.Err)

	default:
		// ○ queued trace
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, traceName)
	}
}

// renderTraceDetails renders detailed progress for the active trace
func renderTraceDetails(trace TraceProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#A40000")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	content.WriteString(fmt.Sprintf("Step %d/%d\n", trace.Step, trace.TotalSteps))

	// Progress bar
	var progress float64
	if trace.TotalSteps > 0 {
		progress = float64(trace.Step) / float64(trace.TotalSteps)
	}
	content.WriteString(renderProgressBar(progress, 40))
	content.WriteString("\n\n")

	// Time estimates
	elapsed := trace.Elapsed.Seconds()
	var remaining float64
	if progress > 0 {
		remaining = (elapsed / progress) - elapsed
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs\n", elapsed, remaining))

	// Live controller state
	content.WriteString(fmt.Sprintf("🎚  Factor: ×%.3f [×%.3f … ×%.3f]\n",
		trace.Factor, trace.LowFactor, trace.HighFactor))
	content.WriteString(fmt.Sprintf("📊 Variance: %.4f | Error: %+.4f | Peak: %.4f",
		trace.Variance, trace.ErrMetric, trace.PeakVariance))

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	// Show current trace being replayed
	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Traces) {
		currentTrace := m.CurrentIndex + 1 // 1-indexed for display
		content = fmt.Sprintf("Replaying trace %d of %d (%d complete)",
			currentTrace, m.TotalTraces, m.CompletedTraces)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedTraces, m.TotalTraces)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	// Completion header
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Replay Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	// Summary for each trace
	for _, trace := range m.Traces {
		if trace.Status == StatusComplete {
			b.WriteString(renderCompletedTrace(trace))
			b.WriteString("\n")
		}
	}

	if m.FailedTraces > 0 {
		b.WriteString("\n")
		for _, trace := range m.Traces {
			if trace.Status == StatusError {
				icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
				b.WriteString(fmt.Sprintf(" %s %s: %v\n", icon, filepath.Base(trace.Name), trace.Err))
			}
		}
	}

	// Overall summary
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d trace(s) replayed, %d failed\n", m.CompletedTraces, m.FailedTraces))

	return b.String()
}

// renderCompletedTrace renders a summary for a completed trace
func renderCompletedTrace(trace TraceProgress) string {
	traceName := filepath.Base(trace.Name)

	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")

	line := fmt.Sprintf(" %s %s\n"+
		"   Final Factor: ×%.3f | Range: ×%.3f … ×%.3f\n"+
		"   Attenuated: %d | Amplified: %d | Held: %d",
		icon, traceName,
		trace.FinalFactor, trace.LowFactor, trace.HighFactor,
		trace.Attenuated, trace.Amplified, trace.Held)

	if trace.ReportPath != "" {
		line += fmt.Sprintf("\n   Report: %s", trace.ReportPath)
	}

	return line
}
