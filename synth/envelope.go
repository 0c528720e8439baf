package synth

import "math"

// sampleHeld evaluates the ADSR's held phase at time t (seconds) since
// note-on (§4.C). Attack of exactly 0 is exact: it skips straight to the
// decay/sustain branch instead of dividing t/0.
func sampleHeld(p *EnvelopeParams, t float32) float32 {
	if p.AttackTime > 0 && t <= p.AttackTime {
		return powf(t/p.AttackTime, p.attackExp)
	}
	return sampleDecay(p, t)
}

// sampleDecay evaluates the decay/sustain portion once attack is behind us.
func sampleDecay(p *EnvelopeParams, t float32) float32 {
	td := t - p.AttackTime
	if p.DecayTime <= 0 || td >= p.DecayTime {
		return p.SustainLevel
	}
	frac := 1 - td/p.DecayTime
	return powf(frac, p.decayExp)*(1-p.SustainLevel) + p.SustainLevel
}

// sampleReleased evaluates the released phase: level at release onset
// decaying to 0 over release_time, clamped to 0 once elapsed >= R (§4.C).
func sampleReleased(p *EnvelopeParams, levelAtRelease float32, elapsed float32) float32 {
	if p.ReleaseTime <= 0 || elapsed >= p.ReleaseTime {
		return 0
	}
	frac := 1 - elapsed/p.ReleaseTime
	return levelAtRelease * powf(frac, p.decayExp)
}

// powf is x^y for x>=0, using math.Pow; x is clamped to [0,1] since the
// envelope's fractional inputs can dip marginally below 0 or above 1 from
// floating point error at phase boundaries.
func powf(x, y float32) float32 {
	x = clampf(x, 0, 1)
	return float32(math.Pow(float64(x), float64(y)))
}
