package synth

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// rcOversample is the fixed oversampling factor for the RC ladder (§4.D.3
// "two-stage 4x-oversampled").
const rcOversample = 4

// rcClip hard-clips to [-1,1], the nonlinearity source (§4.D.3).
func rcClip(x float32) float32 {
	return clampf(x, -1, 1)
}

// rcClipTanh is the Padé-3/2 tanh approximation offered as a smoother
// alternative to hard clipping (§4.D.3 "substituting a Padé-3/2 tanh
// approximation x(15+x^2)/(15+6x^2) is allowed").
func rcClipTanh(x float32) float32 {
	x2 := x * x
	return x * (15 + x2) / (15 + 6*x2)
}

// rcStage holds one {last, bp, lp, hp} RC network state (§4.D.3).
type rcStage struct {
	last, bp, lp, hp float32
}

// step advances the stage by one oversampled tick.
func (s *rcStage) step(x, rca, rcb, rcc, rcq float32, clip func(float32) float32) {
	tempIn := clip(x + s.bp*rcq)
	s.lp = clip(tempIn*rcb + s.lp*rca)
	s.hp = clip(rcc * (s.hp + tempIn - s.last))
	s.bp = clip(s.hp*rcb + s.bp*rca)
	s.last = tempIn
}

// tap returns the stage output selected by type.
func (s *rcStage) tap(t FilterType) float32 {
	switch t {
	case Bandpass:
		return s.bp
	case Highpass:
		return s.hp
	default:
		return s.lp
	}
}

func (s *rcStage) finite() bool {
	return isFinite32(s.last) && isFinite32(s.bp) && isFinite32(s.lp) && isFinite32(s.hp)
}

func (s *rcStage) reset() {
	*s = rcStage{}
}

// rcFilter is the two-stage 4x-oversampled analog RC ladder, modeled on the
// LMMS RC network (§4.D.3).
type rcFilter struct {
	typ        FilterType
	sampleRate float32

	rca, rcb, rcc, rcq float32

	stage1, stage2 rcStage

	// useTanh selects the Pade-3/2 tanh saturation instead of hard clip.
	useTanh bool

	// slope selects single-stage 12 dB or cascaded two-stage 24 dB response
	// (§4.D.3).
	slope FilterSlope
}

func newRCFilter(sampleRate float32) rcFilter {
	f := rcFilter{sampleRate: sampleRate, useTanh: true}
	f.setParams(sampleRate, 1000, 0.5)
	return f
}

func (f *rcFilter) setType(t FilterType) {
	f.typ = t
}

// setSlope selects the 12 dB single-stage or 24 dB two-stage response
// (§4.D.3).
func (f *rcFilter) setSlope(s FilterSlope) {
	f.slope = s
}

func (f *rcFilter) setParams(sampleRate, cutoffHz, resonance float32) {
	f.sampleRate = sampleRate
	cutoffHz = maxf(cutoffHz, 10)

	tau := float32(1.0 / (2 * math.Pi * float64(cutoffHz)))
	delta := 1.0 / (4 * sampleRate)
	f.rca = 1 - delta/(tau+delta)
	f.rcb = 1 - f.rca
	f.rcc = tau / (tau + delta)
	f.rcq = resonance * 0.245
}

func (f *rcFilter) clipFn() func(float32) float32 {
	if f.useTanh {
		return rcClipTanh
	}
	return rcClip
}

func (f *rcFilter) process(x float32) float32 {
	clip := f.clipFn()
	var out float32
	for i := 0; i < rcOversample; i++ {
		f.stage1.step(x, f.rca, f.rcb, f.rcc, f.rcq, clip)
		out = f.stage1.tap(f.typ)
		if f.slope == Slope24dB {
			f.stage2.step(out, f.rca, f.rcb, f.rcc, f.rcq, clip)
			out = f.stage2.tap(f.typ)
		}
	}
	if !isFinite32(out) {
		f.reset()
		return 0
	}
	return float32(dspcore.FlushDenormals(float64(out)))
}

func (f *rcFilter) finite() bool {
	return f.stage1.finite() && f.stage2.finite()
}

func (f *rcFilter) reset() {
	f.stage1.reset()
	f.stage2.reset()
}

var _ filterCore = (*rcFilter)(nil)
