package synth

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-synth3/dsp"
)

// biquadSmoothRate is the fixed per-sample coefficient smoothing rate from
// §4.D.1: "705.6/sample_rate".
const biquadSmoothRate = 705.6

// biquadMinCutoff is the stability floor from §4.D.1 ("clamped to >=30 Hz").
const biquadMinCutoff = 30.0

// biquadFilter is the RBJ-cookbook resonant biquad (§4.D.1).
type biquadFilter struct {
	core       dsp.Biquad
	sampleRate float32
	cutoffHz   float32
	resonance  float32
	typ        FilterType
}

func newBiquadFilter(sampleRate float32) biquadFilter {
	return biquadFilter{
		core:       *dsp.NewBiquad(biquadSmoothRate / sampleRate),
		sampleRate: sampleRate,
		cutoffHz:   1000,
		resonance:  0.7,
	}
}

func (f *biquadFilter) setType(t FilterType) {
	f.typ = t
}

func (f *biquadFilter) setParams(sampleRate, cutoffHz, resonance float32) {
	f.sampleRate = sampleRate
	f.cutoffHz = maxf(cutoffHz, biquadMinCutoff)
	f.resonance = maxf(resonance, 0.01)

	w0 := float64(twoPi) * float64(f.cutoffHz) / float64(sampleRate)
	sinw, cosw := math.Sincos(w0)
	alpha := sinw / (2 * float64(f.resonance))

	var b0, b1, b2, a0, a1, a2 float64
	switch f.typ {
	case Highpass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default: // Lowpass
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
	}
	a0 = 1 + alpha
	a1 = -2 * cosw
	a2 = 1 - alpha

	f.core.SetTargetCoeffs(
		float32(b0/a0), float32(b1/a0), float32(b2/a0),
		float32(a1/a0), float32(a2/a0),
	)
}

// process filters one sample and flushes denormals in the returned sample
// (§4.D.1, DOMAIN STACK table). The core's own history (x1, x2, y1, y2)
// keeps the unflushed value.
func (f *biquadFilter) process(x float32) float32 {
	y := f.core.Process(x)
	if !isFinite32(y) {
		f.core.Reset()
		return 0
	}
	return float32(dspcore.FlushDenormals(float64(y)))
}

func (f *biquadFilter) finite() bool {
	return f.core.Finite()
}

func (f *biquadFilter) reset() {
	f.core.Reset()
}

var _ filterCore = (*biquadFilter)(nil)
