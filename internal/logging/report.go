// Package logging handles replay session accounting and report generation.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ciphercore/noisectl/internal/noisectrl"
)

// ============================================================================
// Interpretation helpers
// ============================================================================
// These turn session numbers into the short prose a reader scanning the
// report actually wants.

// interpretFactorDrift describes where the control loop left the factor.
func interpretFactorDrift(finalFactor float64) string {
	switch {
	case finalFactor <= noisectrl.MinFactor:
		return "pinned at floor, variance persistently high"
	case finalFactor < 0.8:
		return "attenuating, variance ran hot"
	case finalFactor <= 1.2:
		return "near neutral, variance well controlled"
	case finalFactor < noisectrl.MaxFactor:
		return "amplifying, variance ran quiet"
	default:
		return "pinned at ceiling, variance persistently low"
	}
}

// interpretVarianceSpread describes how widely the trace variance ranged.
func interpretVarianceSpread(min, max float64) string {
	spread := max - min
	switch {
	case spread < 0.2:
		return "very steady source"
	case spread < 1.0:
		return "typical drift"
	case spread < 2.5:
		return "wide swings"
	default:
		return "extreme swings, check the source"
	}
}

// interpretActivity describes how often the controller had to move.
func interpretActivity(moved, steps int) string {
	if steps == 0 {
		return ""
	}
	ratio := float64(moved) / float64(steps)
	switch {
	case ratio < 0.1:
		return "mostly in-window, little correction needed"
	case ratio < 0.5:
		return "moderate correction activity"
	default:
		return "constant correction, source far from nominal"
	}
}

// ReportData carries everything the report needs about one replay.
type ReportData struct {
	Session    *Session
	TracePath  string
	ReportDir  string // defaults to the trace's directory
	HumFreqHz  int    // 0 when the replay used a file trace
	WindowSize int    // analyzer window when replaying raw samples, else 0
}

// GenerateReport writes a session report file next to the trace (or in
// ReportDir) and returns its path. Each report is stamped with a fresh run ID
// so repeated replays of the same trace never collide.
func GenerateReport(data ReportData) (string, error) {
	runID := uuid.New().String()

	dir := data.ReportDir
	if dir == "" {
		dir = filepath.Dir(data.TracePath)
	}

	base := strings.TrimSuffix(filepath.Base(data.TracePath), filepath.Ext(data.TracePath))
	reportPath := filepath.Join(dir, fmt.Sprintf("%s-noisectl-%s.log", base, runID[:8]))

	f, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := writeReport(f, data, runID); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return reportPath, nil
}

// writeReport renders the full report body.
func writeReport(w io.Writer, data ReportData, runID string) error {
	s := data.Session

	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "NOISE CONTROL SESSION: %s\n", s.TraceName)
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Run ID:    %s\n", runID)
	fmt.Fprintf(w, "Started:   %s\n", s.StartTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:  %s\n", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))
	fmt.Fprintf(w, "Readings:  %d\n", s.Steps)
	if data.HumFreqHz > 0 {
		fmt.Fprintf(w, "Hum:       %d Hz ripple (synthetic trace)\n", data.HumFreqHz)
	}
	if data.WindowSize > 0 {
		fmt.Fprintf(w, "Window:    %d samples per reading\n", data.WindowSize)
	}
	fmt.Fprintln(w)

	writeSection(w, "NOISE FACTOR")
	table := NewMetricTable()
	table.AddMetricRow("Factor", s.InitialFactor, s.FinalFactor, 3, "",
		interpretFactorDrift(s.FinalFactor))
	table.AddRow("Change", []string{"", formatMetricSigned(s.FinalFactor-s.InitialFactor, 3)}, "", "")
	table.AddMetricRow("Observed range", s.MinFactor, s.MaxFactor, 3, "", "")
	fmt.Fprint(w, table.String())
	fmt.Fprintf(w, "Bounds held: %v  [%.1f, %.1f]\n", s.BoundsHeld(),
		noisectrl.MinFactor, noisectrl.MaxFactor)
	fmt.Fprintln(w)

	writeSection(w, "VARIANCE")
	fmt.Fprintf(w, "  Min:   %s\n", formatMetric(s.MinVariance, 3))
	fmt.Fprintf(w, "  Mean:  %s\n", formatMetric(s.MeanVariance(), 3))
	fmt.Fprintf(w, "  Max:   %s   (%s)\n", formatMetric(s.MaxVariance, 3),
		interpretVarianceSpread(s.MinVariance, s.MaxVariance))
	fmt.Fprintln(w)

	writeSection(w, "CONTROL ACTIVITY")
	moved := s.Attenuated + s.Amplified
	fmt.Fprintf(w, "  Attenuated: %d\n", s.Attenuated)
	fmt.Fprintf(w, "  Amplified:  %d\n", s.Amplified)
	fmt.Fprintf(w, "  Held:       %d   (%s)\n", s.Held, interpretActivity(moved, s.Steps))
	fmt.Fprintf(w, "  Mean |error|: %s   Max |error|: %s\n",
		formatMetric(s.MeanAbsError(), 3), formatMetric(s.MaxAbsError, 3))

	return nil
}

// DisplaySummary writes a short console summary of a finished session.
func DisplaySummary(w io.Writer, s *Session) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "SESSION: %s\n", s.TraceName)
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Readings:     %d\n", s.Steps)
	fmt.Fprintf(w, "Noise factor: %.3f → %.3f  (%s)\n",
		s.InitialFactor, s.FinalFactor, interpretFactorDrift(s.FinalFactor))
	fmt.Fprintf(w, "Variance:     %s … %s (mean %s)\n",
		formatMetric(s.MinVariance, 3), formatMetric(s.MaxVariance, 3),
		formatMetric(s.MeanVariance(), 3))
	fmt.Fprintf(w, "Activity:     %d attenuate / %d amplify / %d hold\n",
		s.Attenuated, s.Amplified, s.Held)
}

// writeSection writes a section header.
func writeSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}
