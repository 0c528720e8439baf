package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-synth3/synth"
)

func TestLoadJSONAppliesAllGroups(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	content := `{
  "oscillators": [
    {"wave": "saw", "amp": 0.8, "semitone": -12, "voices": 4, "voices_detune": 0.2},
    {"wave": "square", "fm": 0.3},
    {"wave": "pulse", "pulse_width": 1.57}
  ],
  "filter": {
    "model": "ladder",
    "type": "lowpass",
    "cutoff_hz": 1200,
    "resonance": 2.5,
    "drive": 1.4,
    "envelope": {"attack": 0.01, "decay": 0.2, "sustain": 0.6, "release": 0.3}
  },
  "vol_env": {"attack": 0.005, "decay": 0.1, "sustain": 0.8, "release": 0.4},
  "lfo": {"freq_hz": 6, "wave": "triangle", "target": "osc0", "freq_mod": 0.1},
  "global": {"polyphony": "legato", "portamento_rate": 0.05, "output_gain_linear": 0.5}
}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.Oscillators[0].Wave != synth.WaveSaw || p.Oscillators[0].Amp != 0.8 || p.Oscillators[0].Semitone != -12 {
		t.Fatalf("oscillator 0 mismatch: %+v", p.Oscillators[0])
	}
	if p.Oscillators[0].VoiceCount != 4 || p.Oscillators[0].VoicesDetune != 0.2 {
		t.Fatalf("oscillator 0 unison mismatch: %+v", p.Oscillators[0])
	}
	if p.Oscillators[1].Wave != synth.WaveSquare || p.Oscillators[1].FM != 0.3 {
		t.Fatalf("oscillator 1 mismatch: %+v", p.Oscillators[1])
	}
	if p.Oscillators[2].Wave != synth.WavePulse || p.Oscillators[2].PulseWidth != 1.57 {
		t.Fatalf("oscillator 2 mismatch: %+v", p.Oscillators[2])
	}
	if p.Filter.Model != synth.FilterLadder || p.Filter.CutoffHz != 1200 || p.Filter.Resonance != 2.5 {
		t.Fatalf("filter mismatch: %+v", p.Filter)
	}
	if p.Filter.CutoffEnvelope.AttackTime != 0.01 || p.Filter.CutoffEnvelope.SustainLevel != 0.6 {
		t.Fatalf("filter envelope mismatch: %+v", p.Filter.CutoffEnvelope)
	}
	if p.VolEnv.DecayTime != 0.1 || p.VolEnv.ReleaseTime != 0.4 {
		t.Fatalf("vol_env mismatch: %+v", p.VolEnv)
	}
	if p.Lfo.FreqHz != 6 || p.Lfo.Wave != synth.WaveTri || p.Lfo.Target != synth.LfoTargetOsc0 {
		t.Fatalf("lfo mismatch: %+v", p.Lfo)
	}
	if p.Global.Polyphony != synth.Legato || p.Global.PortamentoRate != 0.05 || p.Global.OutputGainLinear != 0.5 {
		t.Fatalf("global mismatch: %+v", p.Global)
	}
}

func TestLoadJSONRejectsInvalidWave(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	content := `{"oscillators": [{"wave": "hexagon"}, {}, {}]}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	if _, err := LoadJSON(presetPath); err == nil {
		t.Fatalf("expected error for invalid wave")
	}
}

func TestLoadJSONRejectsOutOfRangeResonance(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	content := `{"filter": {"resonance": -1}}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	if _, err := LoadJSON(presetPath); err == nil {
		t.Fatalf("expected error for non-positive resonance")
	}
}

func TestLoadJSONRejectsInvalidPolyphony(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	content := `{"global": {"polyphony": "chordal"}}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	if _, err := LoadJSON(presetPath); err == nil {
		t.Fatalf("expected error for invalid polyphony mode")
	}
}

func TestLoadJSONRejectsOutOfRangeVoiceCount(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	content := `{"oscillators": [{"voices": 0}, {}, {}]}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	if _, err := LoadJSON(presetPath); err == nil {
		t.Fatalf("expected error for zero voice count")
	}
}

func TestLoadJSONDefaultsWhenFieldsAbsent(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	if err := os.WriteFile(presetPath, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	defaults := synth.NewDefaultParams()
	if p.Global.Polyphony != defaults.Global.Polyphony {
		t.Fatalf("expected default polyphony, got %v", p.Global.Polyphony)
	}
	if p.Filter.Model != defaults.Filter.Model {
		t.Fatalf("expected default filter model, got %v", p.Filter.Model)
	}
}
