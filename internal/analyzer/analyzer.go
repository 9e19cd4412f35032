// Package analyzer derives variance readings from raw signal samples so the
// control loop can be fed from sample dumps as well as pre-computed traces.
package analyzer

import "math"

// Analysis tuning constants.
const (
	// DefaultWindow is the number of samples per variance reading. 256 keeps
	// the estimate responsive while smoothing single-sample spikes.
	DefaultWindow = 256

	// silenceFloorDB is the level reported for silent or empty windows.
	silenceFloorDB = -60.0

	// minRMS guards the log conversion; anything quieter reports the floor.
	minRMS = 1e-5
)

// WindowStats summarises one analysis window.
type WindowStats struct {
	Variance float64 // population variance of the window
	Mean     float64
	RMS      float64
	LevelDB  float64 // RMS level in dB, floored at silence
}

// Analyze splits samples into windows of the given size and returns one
// WindowStats per full window. A trailing partial window shorter than size
// is dropped; fewer than size samples yields no readings. size values below
// one fall back to DefaultWindow.
func Analyze(samples []float64, size int) []WindowStats {
	if size < 1 {
		size = DefaultWindow
	}
	if len(samples) < size {
		return nil
	}

	stats := make([]WindowStats, 0, len(samples)/size)
	for start := 0; start+size <= len(samples); start += size {
		stats = append(stats, analyzeWindow(samples[start:start+size]))
	}
	return stats
}

// analyzeWindow computes the stats for one window using Welford's running
// moments, which stays stable for windows with a large mean offset.
func analyzeWindow(window []float64) WindowStats {
	var mean, m2, sumSquares float64
	for i, s := range window {
		delta := s - mean
		mean += delta / float64(i+1)
		m2 += delta * (s - mean)
		sumSquares += s * s
	}

	n := float64(len(window))
	rms := math.Sqrt(sumSquares / n)

	return WindowStats{
		Variance: m2 / n,
		Mean:     mean,
		RMS:      rms,
		LevelDB:  levelDB(rms),
	}
}

// levelDB converts a linear RMS value to dB, floored at the silence level.
func levelDB(rms float64) float64 {
	if rms < minRMS {
		return silenceFloorDB
	}
	db := 20.0 * math.Log10(rms)
	if db < silenceFloorDB {
		return silenceFloorDB
	}
	return db
}

// Smoother applies exponential moving average smoothing to a variance series,
// damping single-window outliers before they reach the controller. The zero
// value is not usable; use NewSmoother.
type Smoother struct {
	alpha  float64
	value  float64
	primed bool
}

// NewSmoother returns a smoother with the given coefficient. alpha is clamped
// to (0, 1]; higher values track the input more closely.
func NewSmoother(alpha float64) *Smoother {
	if !(alpha > 0) || alpha > 1 {
		alpha = 1.0
	}
	return &Smoother{alpha: alpha}
}

// Smooth feeds one reading through the filter and returns the smoothed value.
// The first reading primes the filter and passes through unchanged. NaN
// readings are ignored and return the current value.
func (s *Smoother) Smooth(reading float64) float64 {
	if math.IsNaN(reading) {
		return s.value
	}
	if !s.primed {
		s.value = reading
		s.primed = true
		return s.value
	}
	s.value = s.alpha*reading + (1-s.alpha)*s.value
	return s.value
}

// Value returns the current smoothed value without feeding a reading.
func (s *Smoother) Value() float64 { return s.value }
