package synth

// lfoState is a single oscillator-less LFO phase accumulator (§3 Voice "one
// LFO phase").
type lfoState struct {
	phase float32
}

// advance steps the LFO by deltaLfo (2*pi*freq/SR, §4.G step 3) and returns
// the naively generated wave sample in [-1,1] (SUPPLEMENTED FEATURES: the
// LFO uses the direct, non-bandlimited generator, not a wavetable).
func (l *lfoState) advance(p *LfoParams, deltaLfo float32) float32 {
	l.phase = euclidMod(l.phase+deltaLfo, twoPi)
	return generateNaive(p.Wave, l.phase, piConst)
}

const piConst = 3.14159265358979323846
