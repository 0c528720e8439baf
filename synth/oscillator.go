package synth

import "math"

// fmScale is the fixed linear-FM scaling constant K (§4.B "Frequency
// modulation"): depths in 0..1 map to musically useful FM ranges.
const fmScale = 125.0

// pmScale scales a modulator sample into a phase offset for PM (§4.G step 4
// "osc_i_out = sum ... WT_note[note](phase_v + PM·150)").
const pmScale = 150.0

// generateNaive evaluates a base waveform directly from phase, without a
// wavetable lookup (SUPPLEMENTED FEATURES: the LFO's wave source, since
// aliasing is not a concern at sub-audio control rates).
func generateNaive(wave OscWave, phase float32, pulseWidth float32) float32 {
	phase = euclidMod(phase, twoPi)
	switch wave {
	case WaveSine:
		return float32(math.Sin(float64(phase)))
	case WaveTri:
		// triangle via folded ramp, peak +/-1
		t := phase / twoPi
		return float32(4*math.Abs(float64(t)-0.5) - 1)
	case WaveSaw:
		return 2*(phase/twoPi) - 1
	case WaveExp:
		t := phase / twoPi
		return float32(2*math.Exp(float64(-t)) - 1)
	case WaveSquare:
		if phase < math.Pi {
			return 1
		}
		return -1
	case WavePulse:
		if phase < pulseWidth {
			return 1
		}
		return -1
	default:
		return 0
	}
}

// superVoice holds the unison phase accumulators for one oscillator slot in
// one Voice (§3 Voice "three SuperVoice phase arrays").
type superVoice struct {
	phases [128]float32
}

// spread returns the alternating positive/negative detune weight for
// unison voice index v among voiceCount total voices (§4.B: "voice 0
// unshifted, voice 1 pulled down, voice 2 pushed up, ...").
func spread(v, voiceCount int) float32 {
	if v == 0 {
		return 0
	}
	half := (v + 1) / 2
	w := float32(half) / float32(voiceCount)
	if v%2 == 1 {
		return -w
	}
	return w
}

// seedPhases initializes the unison phase accumulators from the
// oscillator's phase and phase_rand parameters, using a deterministic
// pseudo-random sequence seeded per note-on (so two runs with identical
// parameters and note sequences reproduce bit-identical output, P10).
func (sv *superVoice) seedPhases(p *OscillatorParams, rng *detRand) {
	for v := 0; v < p.VoiceCount; v++ {
		offset := float32(0)
		if p.PhaseRand != 0 {
			offset = rng.next() * p.PhaseRand
		}
		sv.phases[v] = euclidMod(p.Phase+offset, twoPi)
	}
}

// advance moves every active unison phase forward by delta*(1+d*spread(v))
// (spread already carries the /V term) and returns the unison-summed,
// 1/sqrt(V)-scaled wavetable lookup,
// optionally subtracting a second phase-shifted lookup for Pulse (§4.B,
// §4.G).
func (sv *superVoice) advance(p *OscillatorParams, notes *WavetableNotes, note int, delta float32, pmOffset float32) float32 {
	voiceCount := p.VoiceCount
	var sum float32
	for v := 0; v < voiceCount; v++ {
		d := delta * (1 + p.VoicesDetune*spread(v, voiceCount))
		ph := euclidMod(sv.phases[v]+d, twoPi)
		sv.phases[v] = ph

		lookupPhase := euclidMod(ph+pmOffset*pmScale, twoPi)
		sample := notes.lookup(note, lookupPhase)
		if p.Wave == WavePulse {
			shifted := notes.lookup(note, euclidMod(lookupPhase+p.PulseWidth, twoPi))
			sample -= shifted
		}
		sum += sample
	}
	return sum * p.unisonAmp
}

// detRand is a tiny deterministic linear-congruential generator used only
// to seed unison phase spread from phase_rand (P10: reproducible given the
// same seed and note sequence).
type detRand struct {
	state uint32
}

// next returns a value in [0,1).
func (r *detRand) next() float32 {
	r.state = r.state*1664525 + 1013904223
	return float32(r.state>>8) / float32(1<<24)
}
