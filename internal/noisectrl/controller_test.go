package noisectrl

import (
	"math"
	"sync"
	"testing"
)

func TestNewStartsNeutral(t *testing.T) {
	c := New()
	if got := c.Factor(); got != NeutralFactor {
		t.Errorf("Factor() = %v, want %v", got, NeutralFactor)
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"in range", 1.3, 1.3},
		{"at min", MinFactor, MinFactor},
		{"at max", MaxFactor, MaxFactor},
		{"below min clamps", MinFactor - 100.0, MinFactor},
		{"above max clamps", MaxFactor + 100.0, MaxFactor},
		{"negative clamps to min", -5.0, MinFactor},
		{"zero clamps to min", 0.0, MinFactor},
		{"+Inf clamps to max", math.Inf(1), MaxFactor},
		{"-Inf clamps to min", math.Inf(-1), MinFactor},
		{"NaN substitutes neutral", math.NaN(), NeutralFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Set(tt.value)
			if got := c.Factor(); got != tt.want {
				t.Errorf("Set(%v); Factor() = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestResetIdempotent(t *testing.T) {
	c := New()
	c.Set(1.7)

	c.Reset()
	if got := c.Factor(); got != NeutralFactor {
		t.Errorf("Factor() after Reset = %v, want %v", got, NeutralFactor)
	}

	// Second reset leaves state unchanged
	c.Reset()
	if got := c.Factor(); got != NeutralFactor {
		t.Errorf("Factor() after double Reset = %v, want %v", got, NeutralFactor)
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		start    float64
		variance float64
		want     float64
	}{
		{"high variance attenuates", 1.0, 2.0, 0.9},
		{"low variance amplifies", 1.0, 0.2, 1.1},
		{"in-window variance holds", 1.0, 1.0, 1.0},
		{"at high threshold holds", 1.0, varianceHigh, 1.0},
		{"at low threshold holds", 1.0, varianceLow, 1.0},
		{"zero variance amplifies", 1.0, 0.0, 1.1},
		{"negative variance amplifies", 1.0, -3.0, 1.1},
		{"NaN variance holds", 1.0, math.NaN(), 1.0},
		{"+Inf variance attenuates", 1.0, math.Inf(1), 0.9},
		{"-Inf variance amplifies", 1.0, math.Inf(-1), 1.1},
		{"attenuation saturates at min", 0.11, 5.0, MinFactor},
		{"amplification saturates at max", 1.95, 0.1, MaxFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Set(tt.start)
			c.Update(tt.variance)
			got := c.Factor()
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Update(%v) from %v; Factor() = %v, want %v",
					tt.variance, tt.start, got, tt.want)
			}
		})
	}
}

// The factor never leaves [MinFactor, MaxFactor], whatever sequence of
// operations runs.
func TestBoundsInvariant(t *testing.T) {
	c := New()

	readings := []float64{
		5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, // drive to floor
		0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, // drive to ceiling
		0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
		math.Inf(1), math.Inf(-1), math.NaN(), -1.0, 1.0,
	}

	check := func(op string, v float64) {
		f := c.Factor()
		if f < MinFactor || f > MaxFactor || math.IsNaN(f) {
			t.Fatalf("%s(%v) left factor out of bounds: %v", op, v, f)
		}
	}

	for _, v := range readings {
		c.Update(v)
		check("Update", v)
	}
	for _, v := range []float64{-100, 0, 0.5, 3.0, math.Inf(1), math.NaN()} {
		c.Set(v)
		check("Set", v)
	}
	for _, v := range readings {
		c.Measure(v)
		check("Measure", v)
	}
}

// Two independent controllers given the same sequence end at the same factor.
func TestUpdateDeterministic(t *testing.T) {
	a, b := New(), New()
	for _, v := range []float64{5.0, 5.0, 0.1, 2.0, 0.3, 1.0} {
		a.Update(v)
		b.Update(v)
	}
	if a.Factor() != b.Factor() {
		t.Errorf("independent controllers diverged: %v vs %v", a.Factor(), b.Factor())
	}
}

// Readings on the same side of the window never move the factor in opposite
// directions.
func TestMonotonicResponse(t *testing.T) {
	direction := func(variance float64) float64 {
		c := New()
		c.Update(variance)
		return c.Factor() - NeutralFactor
	}

	// Both above the window: direction must not differ in sign
	d1, d2 := direction(1.6), direction(10.0)
	if d1*d2 < 0 {
		t.Errorf("above-window readings moved factor in opposite directions: %v, %v", d1, d2)
	}
	if d1 > 0 || d2 > 0 {
		t.Errorf("above-window readings amplified the factor: %v, %v", d1, d2)
	}

	// Both below the window
	d1, d2 = direction(0.4), direction(-10.0)
	if d1*d2 < 0 {
		t.Errorf("below-window readings moved factor in opposite directions: %v, %v", d1, d2)
	}
	if d1 < 0 || d2 < 0 {
		t.Errorf("below-window readings attenuated the factor: %v, %v", d1, d2)
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name       string
		variance   float64
		wantError  float64
		wantFactor float64
	}{
		{"high variance", 2.0, 0.5, 0.9},
		{"nominal variance", 1.0, 0.0, 1.0},
		{"low variance", 0.2, -0.4, 1.1},
		{"zero variance", 0.0, -0.5, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			m := c.Measure(tt.variance)

			if math.Abs(m.Error-tt.wantError) > 1e-12 {
				t.Errorf("Measure(%v).Error = %v, want %v", tt.variance, m.Error, tt.wantError)
			}
			if m.Variance != tt.variance {
				t.Errorf("Measure(%v).Variance = %v, want %v", tt.variance, m.Variance, tt.variance)
			}
			if got := c.Factor(); math.Abs(got-tt.wantFactor) > 1e-12 {
				t.Errorf("Factor() after Measure(%v) = %v, want %v", tt.variance, got, tt.wantFactor)
			}
		})
	}
}

// Measure mutates state exactly like Update, even when the caller discards
// the metrics.
func TestMeasureMatchesUpdate(t *testing.T) {
	for _, v := range []float64{2.0, 1.0, 0.2, 0.0, -1.0, math.NaN()} {
		a, b := New(), New()
		a.Update(v)
		_ = b.Measure(v)
		af, bf := a.Factor(), b.Factor()
		if af != bf && !(math.IsNaN(af) && math.IsNaN(bf)) {
			t.Errorf("Update(%v) gave %v but Measure gave %v", v, af, bf)
		}
	}
}

// Concurrent writers with distinct in-range values leave the factor equal to
// exactly one of them - no torn or corrupted value.
func TestConcurrentSet(t *testing.T) {
	const writers = 32

	c := New()
	values := make([]float64, writers)
	for i := range values {
		values[i] = MinFactor + float64(i)*(MaxFactor-MinFactor)/float64(writers)
	}

	var wg sync.WaitGroup
	for _, v := range values {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			c.Set(v)
		}(v)
	}
	wg.Wait()

	got := c.Factor()
	for _, v := range values {
		if got == v {
			return
		}
	}
	t.Errorf("Factor() = %v, not one of the written values", got)
}

// Concurrent mixed operations never violate the bounds invariant.
func TestConcurrentMixed(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				switch (seed + j) % 4 {
				case 0:
					c.Update(float64(j%3) * 0.9)
				case 1:
					c.Set(0.5 + float64(j%10)*0.1)
				case 2:
					c.Measure(2.0)
				default:
					if f := c.Factor(); f < MinFactor || f > MaxFactor {
						t.Errorf("Factor() = %v out of bounds", f)
						return
					}
				}
			}
		}(i)
	}
	wg.Wait()

	if f := c.Factor(); f < MinFactor || f > MaxFactor {
		t.Errorf("final Factor() = %v out of bounds", f)
	}
}
