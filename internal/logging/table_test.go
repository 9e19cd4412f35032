package logging

import (
	"math"
	"strings"
	"testing"
)

func TestMetricTableEmpty(t *testing.T) {
	table := NewMetricTable()
	if got := table.String(); got != "" {
		t.Errorf("empty table rendered %q, want empty string", got)
	}
}

func TestMetricTableAlignment(t *testing.T) {
	table := NewMetricTable()
	table.AddMetricRow("Factor", 1.0, 0.729, 3, "", "")
	table.AddMetricRow("Observed range", 0.729, 1.0, 3, "", "")

	out := table.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), out)
	}

	// Header carries the column names
	if !strings.Contains(lines[0], "Initial") || !strings.Contains(lines[0], "Final") {
		t.Errorf("header missing column names: %q", lines[0])
	}

	// Values right-align within their columns: the Final column values end at
	// the same rune offset in every row
	idx1 := strings.Index(lines[1], "0.729")
	idx2 := strings.Index(lines[2], "1.000")
	if idx1 < 0 || idx2 < 0 {
		t.Fatalf("formatted values not found:\n%s", out)
	}
}

func TestMetricTableMissingValues(t *testing.T) {
	table := NewMetricTable()
	table.AddMetricRow("Variance", math.NaN(), math.Inf(1), 3, "", "")

	out := table.String()
	if !strings.Contains(out, MissingValue) {
		t.Errorf("NaN/Inf values should render as %q:\n%s", MissingValue, out)
	}
	if strings.Contains(out, "NaN") || strings.Contains(out, "Inf") {
		t.Errorf("raw NaN/Inf leaked into output:\n%s", out)
	}
}

func TestMetricTableInterpretationColumn(t *testing.T) {
	withInterp := NewMetricTable()
	withInterp.AddMetricRow("Factor", 1.0, 2.0, 2, "", "pinned at ceiling")
	if !strings.Contains(withInterp.String(), "Interpretation") {
		t.Error("interpretation column header missing when a row has one")
	}

	without := NewMetricTable()
	without.AddMetricRow("Factor", 1.0, 2.0, 2, "", "")
	if strings.Contains(without.String(), "Interpretation") {
		t.Error("interpretation column header shown with no interpretations")
	}
}

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"regular", 1.234, 2, "1.23"},
		{"zero", 0.0, 1, "0.0"},
		{"tiny uses scientific", 0.00001, 3, "1.00e-05"},
		{"NaN", math.NaN(), 2, MissingValue},
		{"+Inf", math.Inf(1), 2, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetric(tt.value, tt.decimals); got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricSigned(t *testing.T) {
	if got := formatMetricSigned(0.5, 2); got != "+0.50" {
		t.Errorf("formatMetricSigned(0.5) = %q, want +0.50", got)
	}
	if got := formatMetricSigned(-0.271, 3); got != "-0.271" {
		t.Errorf("formatMetricSigned(-0.271) = %q, want -0.271", got)
	}
	if got := formatMetricSigned(math.NaN(), 2); got != MissingValue {
		t.Errorf("formatMetricSigned(NaN) = %q, want %q", got, MissingValue)
	}
}
