package synth

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// svfFilter is a trapezoidally-integrated (topology-preserving) two
// integrator state-variable filter with simultaneous LP/BP/HP taps
// (§4.D.2). setType selects which tap process() returns.
type svfFilter struct {
	typ FilterType

	g, k, a1, a2, a3 float32
	ic1eq, ic2eq     float32
}

func newSVFFilter(sampleRate float32) svfFilter {
	f := svfFilter{}
	f.setParams(sampleRate, 1000, 0.7)
	return f
}

func (f *svfFilter) setType(t FilterType) {
	f.typ = t
}

func (f *svfFilter) setParams(sampleRate, cutoffHz, resonance float32) {
	cutoffHz = maxf(cutoffHz, 10)
	resonance = maxf(resonance, 0.01)

	f.g = float32(math.Tan(math.Pi * float64(cutoffHz) / float64(sampleRate)))
	f.k = 1.0 / resonance
	f.a1 = 1.0 / (1 + f.g*(f.g+f.k))
	f.a2 = f.g * f.a1
	f.a3 = f.g * f.a2
}

func (f *svfFilter) process(x float32) float32 {
	v3 := x - f.ic2eq
	v1 := f.a1*f.ic1eq + f.a2*v3
	v2 := f.ic2eq + f.a2*f.ic1eq + f.a3*v3
	f.ic1eq = 2*v1 - f.ic1eq
	f.ic2eq = 2*v2 - f.ic2eq

	if !isFinite32(f.ic1eq) || !isFinite32(f.ic2eq) {
		f.reset()
		return 0
	}
	f.ic1eq = float32(dspcore.FlushDenormals(float64(f.ic1eq)))
	f.ic2eq = float32(dspcore.FlushDenormals(float64(f.ic2eq)))

	switch f.typ {
	case Bandpass:
		return v1
	case Highpass:
		return x - f.k*v1 - v2
	default: // Lowpass
		return v2
	}
}

func (f *svfFilter) finite() bool {
	return isFinite32(f.ic1eq) && isFinite32(f.ic2eq)
}

func (f *svfFilter) reset() {
	f.ic1eq, f.ic2eq = 0, 0
}

var _ filterCore = (*svfFilter)(nil)
