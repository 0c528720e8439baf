package synth

import "math"

// OscWave selects the base waveform an oscillator (or the LFO) generates.
type OscWave int

const (
	WaveSine OscWave = iota
	WaveTri
	WaveSaw
	WaveExp
	WaveSquare
	WavePulse
)

// FilterModel selects which of the four filter DSP cores a voice runs.
type FilterModel int

const (
	FilterNone FilterModel = iota
	FilterRC
	FilterLadder
	FilterBiquad
	FilterSVF
)

// FilterType selects the response shape a filter model produces.
type FilterType int

const (
	Lowpass FilterType = iota
	Bandpass
	Highpass
)

// FilterSlope selects the RC ladder's single- or two-stage response (§4.D.3
// "Selectable 12 dB (single stage) or 24 dB (two stages) slope").
type FilterSlope int

const (
	Slope24dB FilterSlope = iota
	Slope12dB
)

// Polyphony selects how NoteOn/NoteOff are turned into voice allocations.
type Polyphony int

const (
	Polyphonic Polyphony = iota
	Monophonic
	Legato
)

// LfoTarget selects which oscillator slot an LFO modulates (or none).
type LfoTarget int

const (
	LfoTargetNone LfoTarget = iota - 1
	LfoTargetOsc0
	LfoTargetOsc1
	LfoTargetOsc2
)

// OscillatorParams holds the per-slot controls for one of the three
// cascaded oscillators (§3 OscillatorParams). Slot 2 is evaluated first and
// feeds slot 1, which feeds slot 0; slot 0 is the voice's audio output.
type OscillatorParams struct {
	Amp             float32 // 0..1
	Semitone        float32 // -24..24
	Octave          float32 // -8..8 (kept as float to allow smooth automation)
	PitchMultiplier float32 // (0, inf); set via SetPitchMultiplier
	VoiceCount      int     // 1..128 unison voices
	VoicesDetune    float32 // 0..1
	Wave            OscWave
	Phase           float32 // 0..2pi
	PhaseRand       float32 // 0..2pi
	PulseWidth      float32 // 0..2pi, used only when Wave == WavePulse
	FM              float32 // 0..1
	PM              float32 // 0..1
	AM              float32 // 0..1
	PitchBend       float32 // semitones, written by the host each block (§4.G "Pitch bend")

	// Cached derived fields, recomputed once per block (§3 "Cached derived fields").
	totalPitchMultiplier float32
	unisonAmp            float32
}

// NewOscillatorParams returns the oscillator defaults from §3/§6: unity amp,
// unison voice count 1, sine wave, full random-phase spread.
func NewOscillatorParams() OscillatorParams {
	p := OscillatorParams{
		Amp:             1.0,
		PitchMultiplier: 1.0,
		VoiceCount:      1,
		VoicesDetune:    0.1,
		Wave:            WaveSine,
		PhaseRand:       twoPi,
		PulseWidth:      3.14159265,
	}
	p.refreshCache()
	return p
}

// SetPitchMultiplier applies the "positive multiplies, negative divides"
// convention from §3: a negative input m is stored as 1/|m|.
func (p *OscillatorParams) SetPitchMultiplier(m float32) {
	switch {
	case m > 0:
		p.PitchMultiplier = m
	case m < 0:
		p.PitchMultiplier = 1.0 / -m
	default:
		p.PitchMultiplier = 1.0
	}
}

// refreshCache recomputes totalPitchMultiplier and unisonAmp (§3). Called
// once per block by the Engine, never per-sample.
func (p *OscillatorParams) refreshCache() {
	if p.VoiceCount < 1 {
		p.VoiceCount = 1
	}
	if p.VoiceCount > 128 {
		p.VoiceCount = 128
	}
	mult := p.PitchMultiplier
	if mult <= 0 {
		mult = 1.0
	}
	p.totalPitchMultiplier = pow2Approx((p.Semitone+p.PitchBend)/12.0+p.Octave) * mult
	p.unisonAmp = float32(1.0 / math.Sqrt(float64(p.VoiceCount)))
}

// EnvelopeParams is an ADSR envelope with a shape exponent (§4.C).
type EnvelopeParams struct {
	AttackTime   float32 // seconds, >= 0
	DecayTime    float32
	ReleaseTime  float32
	SustainLevel float32 // 0..1
	Slope        float32 // -8..8

	// Cached shape exponents, recomputed whenever Slope changes.
	attackExp float32
	decayExp  float32
}

// NewEnvelopeParams returns a fast, full-sustain default envelope.
func NewEnvelopeParams() EnvelopeParams {
	e := EnvelopeParams{SustainLevel: 1.0}
	e.SetSlope(0)
	return e
}

// SetSlope recomputes the attack and decay/release exponents (§4.C):
// positive slope biases the held curve toward zero and softens the attack
// exponent by a factor of 4; negative slope softens decay/release instead.
func (e *EnvelopeParams) SetSlope(slope float32) {
	e.Slope = slope
	if slope >= 0 {
		e.decayExp = pow2Approx(slope)
		e.attackExp = pow2Approx(-slope / 4.0)
	} else {
		e.decayExp = pow2Approx(slope / 4.0)
		e.attackExp = pow2Approx(-slope)
	}
}

// FilterController holds the filter bank's controls, including its own
// cutoff-modulation envelope (§3 FilterController, §4.D.5).
type FilterController struct {
	Model          FilterModel
	Type           FilterType
	CutoffHz       float32 // 10..22000
	Resonance      float32
	Drive          float32 // (0, 10]
	Keytrack       float32 // 0..1
	EnvelopeAmount float32
	CutoffEnvelope EnvelopeParams
	Slope          FilterSlope // RC ladder only (§4.D.3)
}

// NewFilterController returns a bypassed filter (Model == FilterNone) with a
// wide-open cutoff, matching the teacher's "filter off by default" posture.
func NewFilterController() FilterController {
	return FilterController{
		Model:          FilterNone,
		Type:           Lowpass,
		CutoffHz:       22000,
		Resonance:      0.5,
		Drive:          1.0,
		CutoffEnvelope: NewEnvelopeParams(),
	}
}

// LfoParams holds the single LFO's rate, wave, routing target and depths
// (§3 LfoParams).
type LfoParams struct {
	FreqHz    float32
	Wave      OscWave
	Target    LfoTarget
	FreqMod   float32 // 0..1
	AmpMod    float32
	ModMod    float32
	FilterMod float32
}

// NewLfoParams returns a silent (zero-depth) LFO at 5 Hz.
func NewLfoParams() LfoParams {
	return LfoParams{FreqHz: 5.0, Wave: WaveSine, Target: LfoTargetNone}
}

// GlobalParams holds engine-wide controls not owned by any single
// oscillator/filter/envelope (§3 GlobalParams).
type GlobalParams struct {
	OutputGainLinear          float32
	BendRangeSemitones        float32
	Polyphony                 Polyphony
	PortamentoRate            float32 // 0..1, host-facing normalized glide speed
	PortamentoOffsetSemitones float32
	OctaveDetune              float32 // ~1.0 +/- 0.04

	// actualPortamentoRate is the cached per-sample lerp coefficient derived
	// from PortamentoRate (§9 "Portamento glide": "portamento_rate at the
	// host is a normalized value raised to 0.002*SR/44100 so glide duration
	// is approximately sample-rate-independent").
	actualPortamentoRate float32
}

// NewGlobalParams returns 0.3 linear output gain (about -10.5 dB), a 2-semitone bend range, polyphonic
// voicing, no portamento, and no stretch tuning.
func NewGlobalParams() GlobalParams {
	g := GlobalParams{
		OutputGainLinear:   0.3,
		BendRangeSemitones: 2.0,
		Polyphony:          Polyphonic,
		OctaveDetune:       1.0,
	}
	g.refreshCache(48000)
	return g
}

// refreshCache recomputes actualPortamentoRate for the given sample rate
// (§9): the host's 0..1 "glide amount" is inverted so 0 means an instant
// snap (lerp coefficient 1) and 1 means the slowest glide (coefficient ~0).
func (g *GlobalParams) refreshCache(sampleRate float32) {
	rate := clampf(g.PortamentoRate, 0, 1)
	exponent := float64(0.002 * sampleRate / 44100.0)
	g.actualPortamentoRate = 1.0 - float32(math.Pow(float64(rate), exponent))
}

// Params aggregates every parameter group the Engine owns (§3). The host
// thread mutates fields directly between Process calls; the audio thread
// only reads.
type Params struct {
	Oscillators [3]OscillatorParams
	Filter      FilterController
	VolEnv      EnvelopeParams
	Lfo         LfoParams
	Global      GlobalParams
}

// NewDefaultParams builds the full default parameter set.
func NewDefaultParams() *Params {
	return &Params{
		Oscillators: [3]OscillatorParams{
			NewOscillatorParams(),
			NewOscillatorParams(),
			NewOscillatorParams(),
		},
		Filter: NewFilterController(),
		VolEnv: NewEnvelopeParams(),
		Lfo:    NewLfoParams(),
		Global: NewGlobalParams(),
	}
}

// refreshCaches recomputes every oscillator's cached derived fields plus the
// global portamento rate. Called once per block (§4.G step 2), never
// per-sample.
func (p *Params) refreshCaches(sampleRate float32) {
	for i := range p.Oscillators {
		p.Oscillators[i].refreshCache()
	}
	p.Global.refreshCache(sampleRate)
}
