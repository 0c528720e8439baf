// Package dsp holds small DSP building blocks shared across filter models
// that don't warrant their own file.
package dsp

import "math"

// Biquad implements a second-order IIR filter with coefficient smoothing:
// each call to Process lerps the live coefficients toward whatever target
// was last set via SetTargetCoeffs, at the given smoothing rate (§4.D.1:
// "lerps the six coefficients ... toward their targets with rate
// 705.6/sample_rate to suppress zipper noise").
type Biquad struct {
	// Live coefficients, used by Process.
	b0, b1, b2 float32
	a1, a2     float32

	// Target coefficients, set by the caller once per block (or more often).
	tb0, tb1, tb2 float32
	ta1, ta2      float32

	smoothRate float32

	// State (previous samples).
	x1, x2 float32
	y1, y2 float32

	initialized bool
}

// NewBiquad creates a biquad with the given smoothing rate (coefficients
// per sample, e.g. 705.6/sampleRate).
func NewBiquad(smoothRate float32) *Biquad {
	return &Biquad{smoothRate: smoothRate}
}

// SetTargetCoeffs updates the coefficients Process will glide toward. On
// the very first call the live coefficients jump directly to the target to
// avoid a garbage attack transient.
func (b *Biquad) SetTargetCoeffs(b0, b1, b2, a1, a2 float32) {
	b.tb0, b.tb1, b.tb2, b.ta1, b.ta2 = b0, b1, b2, a1, a2
	if !b.initialized {
		b.b0, b.b1, b.b2, b.a1, b.a2 = b0, b1, b2, a1, a2
		b.initialized = true
	}
}

// Process runs one sample through the filter, smoothing coefficients
// toward target first (Direct Form I).
func (b *Biquad) Process(input float32) float32 {
	r := b.smoothRate
	b.b0 += (b.tb0 - b.b0) * r
	b.b1 += (b.tb1 - b.b1) * r
	b.b2 += (b.tb2 - b.b2) * r
	b.a1 += (b.ta1 - b.a1) * r
	b.a2 += (b.ta2 - b.a2) * r

	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears filter state but keeps live/target coefficients.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// Finite reports whether the filter's output history is still finite,
// ahead of the next Process call (§7 "non-finite filter state").
func (b *Biquad) Finite() bool {
	return isFinite(b.y1) && isFinite(b.y2) && isFinite(b.x1) && isFinite(b.x2)
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}
