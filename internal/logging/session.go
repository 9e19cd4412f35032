// Package logging handles replay session accounting and report generation.
package logging

import (
	"math"
	"time"

	"github.com/ciphercore/noisectl/internal/noisectrl"
)

// StepDirection classifies what one reading did to the factor.
type StepDirection int

const (
	StepHold StepDirection = iota
	StepAttenuate
	StepAmplify
)

// Direction classifies the factor transition caused by one reading.
func Direction(before, after float64) StepDirection {
	switch {
	case after < before:
		return StepAttenuate
	case after > before:
		return StepAmplify
	default:
		return StepHold
	}
}

// Session accumulates statistics while a trace replays through a controller.
// It observes factor transitions from the outside; it never mutates the
// controller itself.
type Session struct {
	TraceName string
	StartTime time.Time
	EndTime   time.Time

	InitialFactor float64
	FinalFactor   float64
	MinFactor     float64 // lowest factor observed
	MaxFactor     float64 // highest factor observed

	Steps      int
	Attenuated int
	Amplified  int
	Held       int

	MinVariance  float64
	MaxVariance  float64
	varianceSum  float64
	MaxAbsError  float64
	errorSum     float64
	boundsBreach bool
}

// NewSession starts accounting for one trace replay.
func NewSession(traceName string, initialFactor float64) *Session {
	return &Session{
		TraceName:     traceName,
		StartTime:     time.Now(),
		InitialFactor: initialFactor,
		FinalFactor:   initialFactor,
		MinFactor:     initialFactor,
		MaxFactor:     initialFactor,
		MinVariance:   math.Inf(1),
		MaxVariance:   math.Inf(-1),
	}
}

// Record accounts for one replay step: the factor before and after the
// reading, and the metrics the controller derived.
func (s *Session) Record(before, after float64, m noisectrl.Measurement) {
	s.Steps++
	s.FinalFactor = after

	switch Direction(before, after) {
	case StepAttenuate:
		s.Attenuated++
	case StepAmplify:
		s.Amplified++
	default:
		s.Held++
	}

	if after < s.MinFactor {
		s.MinFactor = after
	}
	if after > s.MaxFactor {
		s.MaxFactor = after
	}
	if after < noisectrl.MinFactor || after > noisectrl.MaxFactor {
		s.boundsBreach = true
	}

	if !math.IsNaN(m.Variance) {
		if m.Variance < s.MinVariance {
			s.MinVariance = m.Variance
		}
		if m.Variance > s.MaxVariance {
			s.MaxVariance = m.Variance
		}
		s.varianceSum += m.Variance
	}
	if abs := math.Abs(m.Error); !math.IsNaN(abs) {
		if abs > s.MaxAbsError {
			s.MaxAbsError = abs
		}
		s.errorSum += abs
	}
}

// Finish marks the session complete.
func (s *Session) Finish() {
	s.EndTime = time.Now()
}

// MeanVariance returns the mean of all finite variance readings.
func (s *Session) MeanVariance() float64 {
	if s.Steps == 0 {
		return math.NaN()
	}
	return s.varianceSum / float64(s.Steps)
}

// MeanAbsError returns the mean magnitude of the derived error metric.
func (s *Session) MeanAbsError() float64 {
	if s.Steps == 0 {
		return math.NaN()
	}
	return s.errorSum / float64(s.Steps)
}

// BoundsHeld reports whether every observed factor stayed within the
// controller's supported range. Diagnostic only; the controller clamps, so
// this should never be false.
func (s *Session) BoundsHeld() bool {
	return !s.boundsBreach
}
