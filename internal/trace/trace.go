// Package trace loads variance traces for replay and synthesizes
// deterministic demo traces.
//
// Trace files hold one reading per line. Blank lines and lines starting with
// '#' are skipped. A line may carry multiple comma- or whitespace-separated
// fields, in which case the last field is the reading (earlier fields are
// treated as timestamps or labels and ignored).
package trace

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ciphercore/noisectl/internal/hum"
)

// ReadFile loads all readings from a trace file.
func ReadFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	var readings []float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		field := lastField(line)
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("parse trace %s line %d: %w", path, lineNo, err)
		}
		readings = append(readings, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("trace %s contains no readings", path)
	}
	return readings, nil
}

// lastField returns the final comma- or whitespace-separated field of a line.
func lastField(line string) string {
	if i := strings.LastIndex(line, ","); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	fields := strings.Fields(line)
	return fields[len(fields)-1]
}

// SynthOptions configures the synthetic demo trace.
type SynthOptions struct {
	Steps       int     // number of readings (default 200)
	Baseline    float64 // nominal variance the trace drifts around (default 1.0)
	DriftDepth  float64 // peak deviation of the slow drift (default 1.0)
	DriftPeriod int     // steps per drift cycle (default 80)
	HumFreqHz   int     // mains ripple frequency, 0 disables ripple
	HumAmp      float64 // ripple amplitude added to each reading
	SampleRate  float64 // steps per second for the ripple phase (default 1000)
	NoiseAmp    float64 // amplitude of the deterministic jitter component
	Seed        uint32  // LCG seed (default 12345)
}

// Synthesize produces a deterministic variance trace: a slow sinusoidal drift
// around the baseline, optional mains-hum ripple, and LCG jitter. The same
// options always yield the same trace. Readings are floored at zero; measured
// variance is never negative.
func Synthesize(opts SynthOptions) []float64 {
	if opts.Steps <= 0 {
		opts.Steps = 200
	}
	if opts.Baseline == 0 {
		opts.Baseline = 1.0
	}
	if opts.DriftDepth == 0 {
		opts.DriftDepth = 1.0
	}
	if opts.DriftPeriod <= 0 {
		opts.DriftPeriod = 80
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 1000
	}
	if opts.Seed == 0 {
		opts.Seed = 12345
	}

	// Simple LCG for deterministic jitter (avoids math/rand seeding drift
	// across Go versions). Parameters from Numerical Recipes.
	rngState := opts.Seed
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	readings := make([]float64, opts.Steps)
	for i := range readings {
		drift := opts.DriftDepth * math.Sin(2*math.Pi*float64(i)/float64(opts.DriftPeriod))

		var ripple float64
		if opts.HumFreqHz > 0 {
			ripple = hum.Ripple(opts.HumFreqHz, opts.SampleRate, i, opts.HumAmp)
		}

		v := opts.Baseline + drift + ripple + opts.NoiseAmp*nextRandom()
		if v < 0 {
			v = 0
		}
		readings[i] = v
	}
	return readings
}
