package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/algo-synth3/synth"
)

// OscillatorFile is the JSON schema for one of the three oscillator slots.
type OscillatorFile struct {
	Wave            *string  `json:"wave"`
	Amp             *float32 `json:"amp"`
	Semitone        *float32 `json:"semitone"`
	Octave          *float32 `json:"octave"`
	PitchMultiplier *float32 `json:"pitch_multiplier"`
	VoiceCount      *int     `json:"voices"`
	VoicesDetune    *float32 `json:"voices_detune"`
	Phase           *float32 `json:"phase"`
	PhaseRand       *float32 `json:"phase_rand"`
	PulseWidth      *float32 `json:"pulse_width"`
	FM              *float32 `json:"fm"`
	PM              *float32 `json:"pm"`
	AM              *float32 `json:"am"`
}

// EnvelopeFile is the JSON schema for an ADSR envelope.
type EnvelopeFile struct {
	Attack  *float32 `json:"attack"`
	Decay   *float32 `json:"decay"`
	Release *float32 `json:"release"`
	Sustain *float32 `json:"sustain"`
	Slope   *float32 `json:"slope"`
}

// FilterFile is the JSON schema for the filter bank.
type FilterFile struct {
	Model          *string       `json:"model"`
	Type           *string       `json:"type"`
	CutoffHz       *float32      `json:"cutoff_hz"`
	Resonance      *float32      `json:"resonance"`
	Drive          *float32      `json:"drive"`
	Keytrack       *float32      `json:"keytrack"`
	EnvelopeAmount *float32      `json:"envelope_amount"`
	Envelope       *EnvelopeFile `json:"envelope"`
	Slope          *string       `json:"slope"`
}

// LfoFile is the JSON schema for the single LFO.
type LfoFile struct {
	FreqHz    *float32 `json:"freq_hz"`
	Wave      *string  `json:"wave"`
	Target    *string  `json:"target"`
	FreqMod   *float32 `json:"freq_mod"`
	AmpMod    *float32 `json:"amp_mod"`
	ModMod    *float32 `json:"mod_mod"`
	FilterMod *float32 `json:"filter_mod"`
}

// GlobalFile is the JSON schema for engine-wide controls.
type GlobalFile struct {
	OutputGainLinear          *float32 `json:"output_gain_linear"`
	BendRangeSemitones        *float32 `json:"bend_range_semitones"`
	Polyphony                 *string  `json:"polyphony"`
	PortamentoRate            *float32 `json:"portamento_rate"`
	PortamentoOffsetSemitones *float32 `json:"portamento_offset_semitones"`
	OctaveDetune              *float32 `json:"octave_detune"`
}

// File is the JSON schema for a full synth preset.
type File struct {
	Oscillators [3]OscillatorFile `json:"oscillators"`
	Filter      FilterFile        `json:"filter"`
	VolEnv      EnvelopeFile      `json:"vol_env"`
	Lfo         LfoFile           `json:"lfo"`
	Global      GlobalFile        `json:"global"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*synth.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := synth.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *synth.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	for i := range f.Oscillators {
		if err := applyOscillator(&dst.Oscillators[i], &f.Oscillators[i], i); err != nil {
			return err
		}
	}
	if err := applyFilter(&dst.Filter, &f.Filter); err != nil {
		return err
	}
	if err := applyEnvelope(&dst.VolEnv, &f.VolEnv, "vol_env"); err != nil {
		return err
	}
	if err := applyLfo(&dst.Lfo, &f.Lfo); err != nil {
		return err
	}
	if err := applyGlobal(&dst.Global, &f.Global); err != nil {
		return err
	}
	return nil
}

func applyOscillator(dst *synth.OscillatorParams, f *OscillatorFile, slot int) error {
	if f.Wave != nil {
		w, err := parseWave(*f.Wave)
		if err != nil {
			return fmt.Errorf("oscillators[%d].wave: %w", slot, err)
		}
		dst.Wave = w
	}
	if f.Amp != nil {
		if *f.Amp < 0 {
			return fmt.Errorf("oscillators[%d].amp must be >= 0", slot)
		}
		dst.Amp = *f.Amp
	}
	if f.Semitone != nil {
		dst.Semitone = *f.Semitone
	}
	if f.Octave != nil {
		dst.Octave = *f.Octave
	}
	if f.PitchMultiplier != nil {
		dst.SetPitchMultiplier(*f.PitchMultiplier)
	}
	if f.VoiceCount != nil {
		if *f.VoiceCount < 1 || *f.VoiceCount > 128 {
			return fmt.Errorf("oscillators[%d].voices must be in [1,128]", slot)
		}
		dst.VoiceCount = *f.VoiceCount
	}
	if f.VoicesDetune != nil {
		if *f.VoicesDetune < 0 {
			return fmt.Errorf("oscillators[%d].voices_detune must be >= 0", slot)
		}
		dst.VoicesDetune = *f.VoicesDetune
	}
	if f.Phase != nil {
		dst.Phase = *f.Phase
	}
	if f.PhaseRand != nil {
		if *f.PhaseRand < 0 {
			return fmt.Errorf("oscillators[%d].phase_rand must be >= 0", slot)
		}
		dst.PhaseRand = *f.PhaseRand
	}
	if f.PulseWidth != nil {
		dst.PulseWidth = *f.PulseWidth
	}
	if f.FM != nil {
		dst.FM = *f.FM
	}
	if f.PM != nil {
		dst.PM = *f.PM
	}
	if f.AM != nil {
		dst.AM = *f.AM
	}
	return nil
}

func applyEnvelope(dst *synth.EnvelopeParams, f *EnvelopeFile, name string) error {
	if f.Attack != nil {
		if *f.Attack < 0 {
			return fmt.Errorf("%s.attack must be >= 0", name)
		}
		dst.AttackTime = *f.Attack
	}
	if f.Decay != nil {
		if *f.Decay < 0 {
			return fmt.Errorf("%s.decay must be >= 0", name)
		}
		dst.DecayTime = *f.Decay
	}
	if f.Release != nil {
		if *f.Release < 0 {
			return fmt.Errorf("%s.release must be >= 0", name)
		}
		dst.ReleaseTime = *f.Release
	}
	if f.Sustain != nil {
		if *f.Sustain < 0 || *f.Sustain > 1 {
			return fmt.Errorf("%s.sustain must be in [0,1]", name)
		}
		dst.SustainLevel = *f.Sustain
	}
	if f.Slope != nil {
		dst.SetSlope(*f.Slope)
	}
	return nil
}

func applyFilter(dst *synth.FilterController, f *FilterFile) error {
	if f.Model != nil {
		m, err := parseFilterModel(*f.Model)
		if err != nil {
			return fmt.Errorf("filter.model: %w", err)
		}
		dst.Model = m
	}
	if f.Type != nil {
		t, err := parseFilterType(*f.Type)
		if err != nil {
			return fmt.Errorf("filter.type: %w", err)
		}
		dst.Type = t
	}
	if f.CutoffHz != nil {
		if *f.CutoffHz < 10 || *f.CutoffHz > 22000 {
			return fmt.Errorf("filter.cutoff_hz must be in [10,22000]")
		}
		dst.CutoffHz = *f.CutoffHz
	}
	if f.Resonance != nil {
		if *f.Resonance <= 0 {
			return fmt.Errorf("filter.resonance must be > 0")
		}
		dst.Resonance = *f.Resonance
	}
	if f.Drive != nil {
		if *f.Drive <= 0 {
			return fmt.Errorf("filter.drive must be > 0")
		}
		dst.Drive = *f.Drive
	}
	if f.Keytrack != nil {
		if *f.Keytrack < 0 || *f.Keytrack > 1 {
			return fmt.Errorf("filter.keytrack must be in [0,1]")
		}
		dst.Keytrack = *f.Keytrack
	}
	if f.EnvelopeAmount != nil {
		dst.EnvelopeAmount = *f.EnvelopeAmount
	}
	if f.Envelope != nil {
		if err := applyEnvelope(&dst.CutoffEnvelope, f.Envelope, "filter.envelope"); err != nil {
			return err
		}
	}
	if f.Slope != nil {
		s, err := parseFilterSlope(*f.Slope)
		if err != nil {
			return fmt.Errorf("filter.slope: %w", err)
		}
		dst.Slope = s
	}
	return nil
}

func applyLfo(dst *synth.LfoParams, f *LfoFile) error {
	if f.FreqHz != nil {
		if *f.FreqHz <= 0 {
			return fmt.Errorf("lfo.freq_hz must be > 0")
		}
		dst.FreqHz = *f.FreqHz
	}
	if f.Wave != nil {
		w, err := parseWave(*f.Wave)
		if err != nil {
			return fmt.Errorf("lfo.wave: %w", err)
		}
		dst.Wave = w
	}
	if f.Target != nil {
		t, err := parseLfoTarget(*f.Target)
		if err != nil {
			return fmt.Errorf("lfo.target: %w", err)
		}
		dst.Target = t
	}
	if f.FreqMod != nil {
		dst.FreqMod = *f.FreqMod
	}
	if f.AmpMod != nil {
		dst.AmpMod = *f.AmpMod
	}
	if f.ModMod != nil {
		dst.ModMod = *f.ModMod
	}
	if f.FilterMod != nil {
		dst.FilterMod = *f.FilterMod
	}
	return nil
}

func applyGlobal(dst *synth.GlobalParams, f *GlobalFile) error {
	if f.OutputGainLinear != nil {
		if *f.OutputGainLinear < 0 {
			return fmt.Errorf("global.output_gain_linear must be >= 0")
		}
		dst.OutputGainLinear = *f.OutputGainLinear
	}
	if f.BendRangeSemitones != nil {
		dst.BendRangeSemitones = *f.BendRangeSemitones
	}
	if f.Polyphony != nil {
		pl, err := parsePolyphony(*f.Polyphony)
		if err != nil {
			return fmt.Errorf("global.polyphony: %w", err)
		}
		dst.Polyphony = pl
	}
	if f.PortamentoRate != nil {
		if *f.PortamentoRate < 0 || *f.PortamentoRate > 1 {
			return fmt.Errorf("global.portamento_rate must be in [0,1]")
		}
		dst.PortamentoRate = *f.PortamentoRate
	}
	if f.PortamentoOffsetSemitones != nil {
		dst.PortamentoOffsetSemitones = *f.PortamentoOffsetSemitones
	}
	if f.OctaveDetune != nil {
		dst.OctaveDetune = *f.OctaveDetune
	}
	return nil
}

func parseWave(s string) (synth.OscWave, error) {
	switch s {
	case "sine":
		return synth.WaveSine, nil
	case "triangle":
		return synth.WaveTri, nil
	case "saw":
		return synth.WaveSaw, nil
	case "exp":
		return synth.WaveExp, nil
	case "square":
		return synth.WaveSquare, nil
	case "pulse":
		return synth.WavePulse, nil
	default:
		return 0, fmt.Errorf("unknown wave %q", s)
	}
}

func parseFilterModel(s string) (synth.FilterModel, error) {
	switch s {
	case "none":
		return synth.FilterNone, nil
	case "rc":
		return synth.FilterRC, nil
	case "ladder":
		return synth.FilterLadder, nil
	case "biquad":
		return synth.FilterBiquad, nil
	case "svf":
		return synth.FilterSVF, nil
	default:
		return 0, fmt.Errorf("unknown filter model %q", s)
	}
}

func parseFilterType(s string) (synth.FilterType, error) {
	switch s {
	case "lowpass":
		return synth.Lowpass, nil
	case "bandpass":
		return synth.Bandpass, nil
	case "highpass":
		return synth.Highpass, nil
	default:
		return 0, fmt.Errorf("unknown filter type %q", s)
	}
}

func parseFilterSlope(s string) (synth.FilterSlope, error) {
	switch s {
	case "12db":
		return synth.Slope12dB, nil
	case "24db":
		return synth.Slope24dB, nil
	default:
		return 0, fmt.Errorf("unknown filter slope %q", s)
	}
}

func parsePolyphony(s string) (synth.Polyphony, error) {
	switch s {
	case "polyphonic":
		return synth.Polyphonic, nil
	case "monophonic":
		return synth.Monophonic, nil
	case "legato":
		return synth.Legato, nil
	default:
		return 0, fmt.Errorf("unknown polyphony mode %q", s)
	}
}

func parseLfoTarget(s string) (synth.LfoTarget, error) {
	switch s {
	case "none":
		return synth.LfoTargetNone, nil
	case "osc0":
		return synth.LfoTargetOsc0, nil
	case "osc1":
		return synth.LfoTargetOsc1, nil
	case "osc2":
		return synth.LfoTargetOsc2, nil
	default:
		return 0, fmt.Errorf("unknown lfo target %q", s)
	}
}
