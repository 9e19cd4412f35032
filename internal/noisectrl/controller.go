// Package noisectrl maintains the shared noise scaling factor applied across
// the signal chain. The controller watches measured signal variance and nudges
// the factor so that downstream variance stays inside the operational window,
// while clamping every write to the supported range.
package noisectrl

import (
	"math"
	"sync"
)

// Factor bounds and the neutral baseline. Callers may rely on Factor() always
// lying in [MinFactor, MaxFactor].
const (
	MinFactor     = 0.1 // floor - never suppress noise below 10%
	MaxFactor     = 2.0 // ceiling - never amplify beyond 2x
	NeutralFactor = 1.0 // multiplicative identity, restored by Reset

	// Variance window driving adaptation. Readings above the window attenuate
	// the factor, readings below it amplify; in between the factor holds.
	varianceHigh = 1.5
	varianceLow  = 0.5

	// Multiplicative adaptation steps. Chosen asymmetric around 1.0 so the
	// factor walks the range in small moves rather than oscillating.
	attenuateStep = 0.9
	amplifyStep   = 1.1

	// Error metric derivation: signed deviation from nominal variance,
	// scaled to moderate the influence of extreme outliers.
	nominalVariance = 1.0
	errorScale      = 0.5
)

// Measurement reports the diagnostics derived by Measure.
type Measurement struct {
	Error    float64 // signed, scaled deviation of the reading from nominal
	Variance float64 // the variance reading as observed
}

// Controller owns the noise factor. All methods are safe for concurrent use;
// each takes an exclusive lock around the read-modify-write so Update, Set
// and Measure are mutually atomic. The zero value is not usable; use New.
type Controller struct {
	mu     sync.Mutex
	factor float64
}

// New returns a controller at the neutral factor.
func New() *Controller {
	return &Controller{factor: NeutralFactor}
}

// Factor returns the current noise factor. Always within
// [MinFactor, MaxFactor].
func (c *Controller) Factor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.factor
}

// Set stores value as the noise factor, clamped to the supported range so
// callers cannot drive the control loop into an invalid state. NaN substitutes
// the neutral factor; ±Inf saturates at the nearer bound. Set never fails and
// never stores a value outside [MinFactor, MaxFactor].
func (c *Controller) Set(value float64) {
	if math.IsNaN(value) {
		value = NeutralFactor
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factor = clamp(value, MinFactor, MaxFactor)
}

// Reset restores the factor to the neutral baseline. Idempotent.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factor = NeutralFactor
}

// Update adapts the noise factor to a measured variance reading. Readings
// above the variance window attenuate the factor, readings below it amplify,
// and readings inside the window (or NaN) leave it unchanged. The result is
// clamped, so the bounds invariant holds after every call. Deterministic:
// a fixed starting factor and reading always produce the same result.
//
// Negative or zero variance is physically unusual but accepted; it falls
// below the window and amplifies like any other low reading.
func (c *Controller) Update(variance float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factor = step(c.factor, variance)
}

// Measure feeds a variance reading through the same adaptation as Update and
// reports the derived metrics. The state update and the metric derivation
// happen under one lock acquisition, so no caller can observe the factor
// updated without the metrics or vice versa. Callers that want no
// diagnostics can ignore the result or call Update; the state transition is
// identical.
func (c *Controller) Measure(variance float64) Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factor = step(c.factor, variance)
	return Measurement{
		Error:    errorFromVariance(variance),
		Variance: variance,
	}
}

// step applies one adaptation move to factor for the given reading.
// NaN compares false against both thresholds, so the factor holds.
func step(factor, variance float64) float64 {
	if variance > varianceHigh {
		factor *= attenuateStep
	} else if variance < varianceLow {
		factor *= amplifyStep
	}
	return clamp(factor, MinFactor, MaxFactor)
}

// errorFromVariance converts a variance reading into the signed error metric:
// how far the reading sits from nominal, scaled to temper outliers.
func errorFromVariance(variance float64) float64 {
	return (variance - nominalVariance) * errorScale
}

// clamp restricts val to the range [min, max].
func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
