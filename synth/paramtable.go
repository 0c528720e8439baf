package synth

import (
	"fmt"
	"math"
)

// ParamDescriptor documents one entry in the flat named-value parameter
// interface (§6 "Parameter interface"): default, min, max, and whether the
// host should display it on a logarithmic scale.
type ParamDescriptor struct {
	Name          string
	Default       float32
	Min           float32
	Max           float32
	Logarithmic   bool
}

// ParamTable lists every control from §6's table, in declaration order.
// Oscillator 1/2 entries carry pm/fm/am; oscillator 3 swaps them for pwm.
func ParamTable() []ParamDescriptor {
	var table []ParamDescriptor
	for i := 1; i <= 3; i++ {
		table = append(table, oscillatorDescriptors(i)...)
	}
	table = append(table, []ParamDescriptor{
		{Name: "fil1_model", Default: 0, Min: 0, Max: 4},
		{Name: "fil1_type", Default: 0, Min: 0, Max: 3},
		{Name: "fil1_cutoff", Default: 22000, Min: 10, Max: 22000, Logarithmic: true},
		{Name: "fil1_resonance", Default: 0.5, Min: 0.01, Max: 10},
		{Name: "fil1_drive", Default: 1, Min: 0.01, Max: 10},
		{Name: "fil1_keytrack", Default: 0, Min: 0, Max: 1},
		{Name: "fil1_env_amount", Default: 0, Min: 0, Max: 1},
		{Name: "fil1_attack", Default: 0, Min: 0, Max: 20, Logarithmic: true},
		{Name: "fil1_decay", Default: 0, Min: 0, Max: 20, Logarithmic: true},
		{Name: "fil1_release", Default: 0, Min: 0, Max: 20, Logarithmic: true},
		{Name: "fil1_sustain", Default: 1, Min: 0, Max: 1},
		{Name: "fil1_slope", Default: 0, Min: -8, Max: 8},
		{Name: "fil1_rc_slope", Default: 0, Min: 0, Max: 1},

		{Name: "vol_attack", Default: 0, Min: 0, Max: 20, Logarithmic: true},
		{Name: "vol_decay", Default: 0, Min: 0, Max: 20, Logarithmic: true},
		{Name: "vol_release", Default: 0, Min: 0, Max: 20, Logarithmic: true},
		{Name: "vol_sustain", Default: 1, Min: 0, Max: 1},
		{Name: "vol_slope", Default: 0, Min: -8, Max: 8},

		{Name: "lfo_target", Default: -1, Min: -1, Max: 2},
		{Name: "lfo_wave", Default: 0, Min: 0, Max: 5},
		{Name: "lfo_freq", Default: 5, Min: 0.01, Max: 20},
		{Name: "lfo_freq_mod", Default: 0, Min: 0, Max: 1},
		{Name: "lfo_amp_mod", Default: 0, Min: 0, Max: 1},
		{Name: "lfo_mod_mod", Default: 0, Min: 0, Max: 1},
		{Name: "lfo_filter_mod", Default: 0, Min: 0, Max: 1},

		{Name: "global_polyphony", Default: 0, Min: 0, Max: 2},
		{Name: "global_portamento_rate", Default: 0, Min: 0, Max: 1},
		{Name: "global_pitch_offset", Default: 0, Min: -24, Max: 24},
		{Name: "global_octave_detune", Default: 0, Min: -0.05, Max: 0.05},
		{Name: "global_output_gain", Default: -10.46, Min: -90, Max: 0, Logarithmic: true},
		{Name: "global_bend_range", Default: 2, Min: -24, Max: 24},
	}...)
	return table
}

func oscillatorDescriptors(slot int) []ParamDescriptor {
	prefix := fmt.Sprintf("osc%d_", slot)
	d := []ParamDescriptor{
		{Name: prefix + "wave", Default: 0, Min: 0, Max: 4},
		{Name: prefix + "amp", Default: 100, Min: 0, Max: 100},
		{Name: prefix + "semitone", Default: 0, Min: -24, Max: 24},
		{Name: prefix + "octave", Default: 0, Min: -8, Max: 8},
		{Name: prefix + "multiplier", Default: 1, Min: -64, Max: 64},
	}
	if slot != 3 {
		d = append(d,
			ParamDescriptor{Name: prefix + "pm", Default: 0, Min: 0, Max: 1},
			ParamDescriptor{Name: prefix + "fm", Default: 0, Min: 0, Max: 1},
			ParamDescriptor{Name: prefix + "am", Default: 0, Min: 0, Max: 1},
		)
	}
	d = append(d,
		ParamDescriptor{Name: prefix + "voices", Default: 1, Min: 1, Max: 128},
		ParamDescriptor{Name: prefix + "super_detune", Default: 46.42, Min: 0, Max: 100},
		ParamDescriptor{Name: prefix + "phase", Default: 0, Min: 0, Max: 100},
		ParamDescriptor{Name: prefix + "phase_rand", Default: 100, Min: 0, Max: 100},
	)
	if slot == 3 {
		d = append(d, ParamDescriptor{Name: prefix + "pwm", Default: 50, Min: 0, Max: 100})
	}
	return d
}

// SetParam applies a host-facing named value onto the live Params,
// performing the §6 unit conversions ("amp values entered as 0..100 are
// divided by 100 internally; super_detune similarly (and cubed for finer
// control at low settings). Attack/decay values <= 0.001s collapse to 0").
func (e *Engine) SetParam(name string, value float32) error {
	for slot := 0; slot < 3; slot++ {
		if ok, err := setOscillatorParam(&e.params.Oscillators[slot], slot+1, name, value); ok {
			return err
		}
	}
	if ok, err := setFilterParam(&e.params.Filter, name, value); ok {
		return err
	}
	if ok, err := setEnvelopeParam(&e.params.VolEnv, "vol_", name, value); ok {
		return err
	}
	if ok, err := setLfoParam(&e.params.Lfo, name, value); ok {
		return err
	}
	if ok, err := setGlobalParam(&e.params.Global, name, value); ok {
		return err
	}
	return fmt.Errorf("synth: unknown parameter %q", name)
}

// GetParam reads back a host-facing named value, inverting the unit
// conversions SetParam applies.
func (e *Engine) GetParam(name string) (float32, error) {
	for slot := 0; slot < 3; slot++ {
		if v, ok := getOscillatorParam(&e.params.Oscillators[slot], slot+1, name); ok {
			return v, nil
		}
	}
	if v, ok := getFilterParam(&e.params.Filter, name); ok {
		return v, nil
	}
	if v, ok := getEnvelopeParam(&e.params.VolEnv, "vol_", name); ok {
		return v, nil
	}
	if v, ok := getLfoParam(&e.params.Lfo, name); ok {
		return v, nil
	}
	if v, ok := getGlobalParam(&e.params.Global, name); ok {
		return v, nil
	}
	return 0, fmt.Errorf("synth: unknown parameter %q", name)
}

func getOscillatorParam(p *OscillatorParams, slot int, name string) (float32, bool) {
	prefix := fmt.Sprintf("osc%d_", slot)
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	switch name[len(prefix):] {
	case "wave":
		return float32(p.Wave), true
	case "amp":
		return p.Amp * 100.0, true
	case "semitone":
		return p.Semitone, true
	case "octave":
		return p.Octave, true
	case "multiplier":
		return p.PitchMultiplier, true
	case "pm":
		return p.PM, true
	case "fm":
		return p.FM, true
	case "am":
		return p.AM, true
	case "voices":
		return float32(p.VoiceCount), true
	case "super_detune":
		d := p.VoicesDetune
		if d < 0 {
			d = 0
		}
		cubeRoot := float32(math.Cbrt(float64(d)))
		return cubeRoot * 100.0, true
	case "phase":
		return p.Phase / twoPi * 100.0, true
	case "phase_rand":
		return p.PhaseRand / twoPi * 100.0, true
	case "pwm":
		if slot != 3 {
			return 0, false
		}
		return p.PulseWidth / twoPi * 100.0, true
	}
	return 0, false
}

func getFilterParam(fc *FilterController, name string) (float32, bool) {
	const prefix = "fil1_"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	switch name[len(prefix):] {
	case "model":
		return float32(fc.Model), true
	case "type":
		return float32(fc.Type), true
	case "cutoff":
		return fc.CutoffHz, true
	case "resonance":
		return fc.Resonance, true
	case "drive":
		return fc.Drive, true
	case "keytrack":
		return fc.Keytrack, true
	case "env_amount":
		return fc.EnvelopeAmount, true
	case "attack":
		return fc.CutoffEnvelope.AttackTime, true
	case "decay":
		return fc.CutoffEnvelope.DecayTime, true
	case "release":
		return fc.CutoffEnvelope.ReleaseTime, true
	case "sustain":
		return fc.CutoffEnvelope.SustainLevel, true
	case "slope":
		return fc.CutoffEnvelope.Slope, true
	case "rc_slope":
		return float32(fc.Slope), true
	}
	return 0, false
}

func getEnvelopeParam(env *EnvelopeParams, prefix, name string) (float32, bool) {
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	switch name[len(prefix):] {
	case "attack":
		return env.AttackTime, true
	case "decay":
		return env.DecayTime, true
	case "release":
		return env.ReleaseTime, true
	case "sustain":
		return env.SustainLevel, true
	case "slope":
		return env.Slope, true
	}
	return 0, false
}

func getLfoParam(l *LfoParams, name string) (float32, bool) {
	const prefix = "lfo_"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	switch name[len(prefix):] {
	case "target":
		return float32(l.Target), true
	case "wave":
		return float32(l.Wave), true
	case "freq":
		return l.FreqHz, true
	case "freq_mod":
		return l.FreqMod, true
	case "amp_mod":
		return l.AmpMod, true
	case "mod_mod":
		return l.ModMod, true
	case "filter_mod":
		return l.FilterMod, true
	}
	return 0, false
}

func getGlobalParam(g *GlobalParams, name string) (float32, bool) {
	const prefix = "global_"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	switch name[len(prefix):] {
	case "polyphony":
		return float32(g.Polyphony), true
	case "portamento_rate":
		return g.PortamentoRate, true
	case "pitch_offset":
		return g.PortamentoOffsetSemitones, true
	case "octave_detune":
		return g.OctaveDetune - 1.0, true
	case "output_gain":
		if g.OutputGainLinear <= 0 {
			return -90, true
		}
		return 6.0205999 * float32(math.Log2(float64(g.OutputGainLinear))), true
	case "bend_range":
		return g.BendRangeSemitones, true
	}
	return 0, false
}

func collapseAttackDecay(v float32) float32 {
	if v <= 0.001 {
		return 0
	}
	return v
}

func setOscillatorParam(p *OscillatorParams, slot int, name string, value float32) (bool, error) {
	prefix := fmt.Sprintf("osc%d_", slot)
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false, nil
	}
	switch name[len(prefix):] {
	case "wave":
		p.Wave = OscWave(clampf(value, 0, 5))
	case "amp":
		p.Amp = clampf(value, 0, 100) / 100.0
	case "semitone":
		p.Semitone = clampf(value, -24, 24)
	case "octave":
		p.Octave = clampf(value, -8, 8)
	case "multiplier":
		p.SetPitchMultiplier(clampf(value, -64, 64))
	case "pm":
		if slot == 3 {
			return true, fmt.Errorf("synth: osc3 has no pm parameter")
		}
		p.PM = clampf(value, 0, 1)
	case "fm":
		if slot == 3 {
			return true, fmt.Errorf("synth: osc3 has no fm parameter")
		}
		p.FM = clampf(value, 0, 1)
	case "am":
		if slot == 3 {
			return true, fmt.Errorf("synth: osc3 has no am parameter")
		}
		p.AM = clampf(value, 0, 1)
	case "voices":
		p.VoiceCount = int(clampf(value, 1, 128))
	case "super_detune":
		d := clampf(value, 0, 100) / 100.0
		p.VoicesDetune = d * d * d
	case "phase":
		p.Phase = clampf(value, 0, 100) / 100.0 * twoPi
	case "phase_rand":
		p.PhaseRand = clampf(value, 0, 100) / 100.0 * twoPi
	case "pwm":
		if slot != 3 {
			return true, fmt.Errorf("synth: only osc3 has a pwm parameter")
		}
		p.PulseWidth = clampf(value, 0, 100) / 100.0 * twoPi
	default:
		return false, nil
	}
	return true, nil
}

func setFilterParam(fc *FilterController, name string, value float32) (bool, error) {
	const prefix = "fil1_"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false, nil
	}
	switch name[len(prefix):] {
	case "model":
		fc.Model = FilterModel(clampf(value, 0, 4))
	case "type":
		fc.Type = FilterType(clampf(value, 0, 3))
	case "cutoff":
		fc.CutoffHz = clampf(value, 10, 22000)
	case "resonance":
		fc.Resonance = clampf(value, 0.01, 10)
	case "drive":
		fc.Drive = clampf(value, 0.01, 10)
	case "keytrack":
		fc.Keytrack = clampf(value, 0, 1)
	case "env_amount":
		fc.EnvelopeAmount = clampf(value, 0, 1)
	case "attack":
		fc.CutoffEnvelope.AttackTime = collapseAttackDecay(maxf(value, 0))
	case "decay":
		fc.CutoffEnvelope.DecayTime = collapseAttackDecay(maxf(value, 0))
	case "release":
		fc.CutoffEnvelope.ReleaseTime = maxf(value, 0)
	case "sustain":
		fc.CutoffEnvelope.SustainLevel = clampf(value, 0, 1)
	case "slope":
		fc.CutoffEnvelope.SetSlope(clampf(value, -8, 8))
	case "rc_slope":
		fc.Slope = FilterSlope(clampf(value, 0, 1))
	default:
		return false, nil
	}
	return true, nil
}

func setEnvelopeParam(env *EnvelopeParams, prefix, name string, value float32) (bool, error) {
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false, nil
	}
	switch name[len(prefix):] {
	case "attack":
		env.AttackTime = collapseAttackDecay(maxf(value, 0))
	case "decay":
		env.DecayTime = collapseAttackDecay(maxf(value, 0))
	case "release":
		env.ReleaseTime = maxf(value, 0)
	case "sustain":
		env.SustainLevel = clampf(value, 0, 1)
	case "slope":
		env.SetSlope(clampf(value, -8, 8))
	default:
		return false, nil
	}
	return true, nil
}

func setLfoParam(l *LfoParams, name string, value float32) (bool, error) {
	const prefix = "lfo_"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false, nil
	}
	switch name[len(prefix):] {
	case "target":
		l.Target = LfoTarget(clampf(value, -1, 2))
	case "wave":
		l.Wave = OscWave(clampf(value, 0, 5))
	case "freq":
		l.FreqHz = maxf(value, 0.01)
	case "freq_mod":
		l.FreqMod = clampf(value, 0, 1)
	case "amp_mod":
		l.AmpMod = clampf(value, 0, 1)
	case "mod_mod":
		l.ModMod = clampf(value, 0, 1)
	case "filter_mod":
		l.FilterMod = clampf(value, 0, 1)
	default:
		return false, nil
	}
	return true, nil
}

func setGlobalParam(g *GlobalParams, name string, value float32) (bool, error) {
	const prefix = "global_"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false, nil
	}
	switch name[len(prefix):] {
	case "polyphony":
		g.Polyphony = Polyphony(clampf(value, 0, 2))
	case "portamento_rate":
		g.PortamentoRate = clampf(value, 0, 1)
	case "pitch_offset":
		g.PortamentoOffsetSemitones = clampf(value, -24, 24)
	case "octave_detune":
		g.OctaveDetune = 1.0 + clampf(value, -0.05, 0.05)
	case "output_gain":
		db := clampf(value, -90, 0)
		g.OutputGainLinear = pow2Approx(db / 6.0205999)
	case "bend_range":
		g.BendRangeSemitones = clampf(value, -24, 24)
	default:
		return false, nil
	}
	return true, nil
}
