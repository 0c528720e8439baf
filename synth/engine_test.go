package synth

import (
	"math"
	"testing"
)

const testSampleRate = 48000.0

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testSampleRate)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// countZeroCrossings counts a steady tone's rising zero crossings and returns
// the indices of the first and last one, from which callers estimate its
// period in samples; the first skip samples are ignored to let any transient
// settle.
func countZeroCrossings(buf []float32, skip int) (crossings int, firstIdx, lastIdx int) {
	firstIdx, lastIdx = -1, -1
	for i := skip + 1; i < len(buf); i++ {
		if buf[i-1] <= 0 && buf[i] > 0 {
			if firstIdx < 0 {
				firstIdx = i
			}
			lastIdx = i
			crossings++
		}
	}
	return
}

// TestEngineSilentWhenIdle checks scenario 1: with no events and the
// default parameters, Process leaves the output buffers untouched (no
// voice is active, so nothing is added to them).
func TestEngineSilentWhenIdle(t *testing.T) {
	e := newTestEngine(t)
	outL := make([]float32, 512)
	outR := make([]float32, 512)
	e.Process(512, nil, outL, outR)
	for i, v := range outL {
		if v != 0 {
			t.Fatalf("outL[%d] = %v, want 0 with no notes active", i, v)
		}
	}
	for i, v := range outR {
		if v != 0 {
			t.Fatalf("outR[%d] = %v, want 0 with no notes active", i, v)
		}
	}
}

// TestEngineSineAtA4 checks scenario 2: a single sine oscillator at A4
// (MIDI 69) with full amplitude and unity velocity produces a ~440 Hz tone.
func TestEngineSineAtA4(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Oscillators[0].Wave = WaveSine
	p.Oscillators[0].Amp = 1
	p.Oscillators[1].Amp = 0
	p.Oscillators[2].Amp = 0
	p.Filter.Model = FilterNone
	p.Global.OutputGainLinear = 1

	const n = 4800
	outL := make([]float32, n)
	outR := make([]float32, n)
	e.Process(n, []Event{NoteOnEvent(69, 127)}, outL, outR)

	crossings, first, last := countZeroCrossings(outL, 200)
	if crossings < 2 {
		t.Fatalf("expected at least 2 rising zero crossings, got %d", crossings)
	}
	periodSamples := float64(last-first) / float64(crossings-1)
	freq := testSampleRate / periodSamples
	if math.Abs(freq-440) > 4 {
		t.Fatalf("measured frequency %.2f Hz, want ~440 Hz", freq)
	}
}

// TestOctaveDetuneAppliesOnce checks §4.B: global.octave_detune scales the
// semitone distance exactly once. A stray second multiplier (e.g. a frozen
// per-voice copy applied again outside the pitch exponent) would compound
// the stretch-tuning effect and land well outside tolerance.
func TestOctaveDetuneAppliesOnce(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Oscillators[0].Wave = WaveSine
	p.Oscillators[0].Amp = 1
	p.Oscillators[1].Amp = 0
	p.Oscillators[2].Amp = 0
	p.Filter.Model = FilterNone
	p.Global.OutputGainLinear = 1
	p.Global.OctaveDetune = 1.05

	const n = 4800
	outL := make([]float32, n)
	outR := make([]float32, n)
	e.Process(n, []Event{NoteOnEvent(81, 127)}, outL, outR) // one octave above A4

	crossings, first, last := countZeroCrossings(outL, 200)
	if crossings < 2 {
		t.Fatalf("expected at least 2 rising zero crossings, got %d", crossings)
	}
	periodSamples := float64(last-first) / float64(crossings-1)
	freq := testSampleRate / periodSamples

	want := 440.0 * math.Pow(2, 12.0*1.05/12.0)
	if math.Abs(freq-want) > want*0.02 {
		t.Fatalf("measured frequency %.2f Hz, want ~%.2f Hz (octave_detune applied once)", freq, want)
	}
}

// TestEngineVoiceReapedAtReleaseTime checks scenario 3 / P5: a voice is
// reaped no later than release_time seconds after release() is called.
func TestEngineVoiceReapedAtReleaseTime(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.VolEnv.ReleaseTime = 0.1 // 4800 samples at 48kHz
	p.Filter.Model = FilterNone

	outL := make([]float32, 1)
	outR := make([]float32, 1)
	e.Process(1, []Event{NoteOnEvent(60, 127)}, outL, outR)
	e.Process(1, []Event{NoteOffEvent(60, 0)}, outL, outR)

	const releaseSamples = 4800
	reapedAt := -1
	for i := 0; i < releaseSamples+10; i++ {
		e.Process(1, nil, outL, outR)
		if e.monoVoiceAnyPolicy() == nil {
			reapedAt = i
			break
		}
	}
	if reapedAt < 0 {
		t.Fatalf("voice was never reaped within %d samples of release", releaseSamples+10)
	}
	if reapedAt > releaseSamples+1 {
		t.Fatalf("voice reaped at sample %d after release, want <= %d", reapedAt, releaseSamples+1)
	}
}

// monoVoiceAnyPolicy returns any in-use voice regardless of the current
// polyphony policy, used only to observe reap timing from tests.
func (e *Engine) monoVoiceAnyPolicy() *Voice {
	for i := range e.voices {
		if e.voices[i].inUse {
			return &e.voices[i]
		}
	}
	return nil
}

// TestMonophonicRetriggerResetsEnvelope checks scenario 4: in Monophonic
// mode, a second NoteOn while the first is still held always retriggers,
// resetting the envelope's runtime index to 0.
func TestMonophonicRetriggerResetsEnvelope(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Global.Polyphony = Monophonic
	p.Filter.Model = FilterNone

	outL := make([]float32, 1)
	outR := make([]float32, 1)
	e.Process(1, []Event{NoteOnEvent(60, 127)}, outL, outR)
	for i := 0; i < 1000; i++ {
		e.Process(1, nil, outL, outR)
	}

	v := e.monoVoiceAnyPolicy()
	if v == nil {
		t.Fatalf("expected an active voice")
	}
	if v.runtime == 0 {
		t.Fatalf("voice runtime did not advance before retrigger")
	}

	e.Process(1, []Event{NoteOnEvent(64, 127)}, outL, outR)
	v = e.monoVoiceAnyPolicy()
	if v == nil {
		t.Fatalf("expected an active voice after retrigger")
	}
	if v.runtime != 0 {
		t.Fatalf("Monophonic retrigger should reset runtime to 0, got %d", v.runtime)
	}
	if v.noteID != 64 {
		t.Fatalf("expected retriggered voice to carry note 64, got %d", v.noteID)
	}
}

// TestLegatoHoldDoesNotResetEnvelope checks scenario 5: in Legato mode, a
// second NoteOn while the first is still held (not releasing) changes pitch
// without resetting the envelope's runtime index.
func TestLegatoHoldDoesNotResetEnvelope(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Global.Polyphony = Legato
	p.Filter.Model = FilterNone

	outL := make([]float32, 1)
	outR := make([]float32, 1)
	e.Process(1, []Event{NoteOnEvent(60, 127)}, outL, outR)
	for i := 0; i < 1000; i++ {
		e.Process(1, nil, outL, outR)
	}

	v := e.monoVoiceAnyPolicy()
	runtimeBefore := v.runtime
	if runtimeBefore == 0 {
		t.Fatalf("voice runtime did not advance before legato note-on")
	}

	e.Process(1, []Event{NoteOnEvent(64, 127)}, outL, outR)
	v = e.monoVoiceAnyPolicy()
	if v.runtime < runtimeBefore {
		t.Fatalf("Legato hold should not reset runtime, before=%d after=%d", runtimeBefore, v.runtime)
	}
	if v.noteID != 64 {
		t.Fatalf("expected legato voice to carry note 64, got %d", v.noteID)
	}
}

// TestPortamentoConvergesTowardZero checks P9: semitone_detune decays
// geometrically toward 0 at the cached per-sample rate.
func TestPortamentoConvergesTowardZero(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Global.Polyphony = Monophonic
	p.Global.PortamentoRate = 0.1 // small host-facing rate -> fast actual glide
	p.Filter.Model = FilterNone

	outL := make([]float32, 1)
	outR := make([]float32, 1)
	e.Process(1, []Event{NoteOnEvent(60, 127)}, outL, outR)
	e.Process(1, []Event{NoteOnEvent(72, 127)}, outL, outR) // retrigger 12 semitones away

	v := e.monoVoiceAnyPolicy()
	if v.semitoneDetune == 0 {
		t.Fatalf("expected nonzero semitone_detune right after a large pitch jump")
	}
	initial := v.semitoneDetune

	// At rate 0.1 and 48 kHz the per-sample lerp coefficient is about 0.005,
	// so convergence to within 1% takes roughly 920 samples; 20000 samples
	// leave a wide margin.
	for i := 0; i < 20000; i++ {
		e.Process(1, nil, outL, outR)
	}
	if math.Abs(float64(v.semitoneDetune)) >= math.Abs(float64(initial))*0.01 {
		t.Fatalf("semitone_detune did not converge toward 0: initial=%v after=%v", initial, v.semitoneDetune)
	}
}

// TestPitchBendShiftsAllOscillators checks §4.G "Pitch bend": a bend event
// writes the same semitone offset into every oscillator slot.
func TestPitchBendShiftsAllOscillators(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Global.BendRangeSemitones = 2.0

	e.PitchBend(16383) // max bend up
	for i := range p.Oscillators {
		if p.Oscillators[i].PitchBend <= 1.9 {
			t.Fatalf("oscillator %d pitch bend = %v, want close to +2 semitones", i, p.Oscillators[i].PitchBend)
		}
	}

	e.PitchBend(8192) // center, no bend
	for i := range p.Oscillators {
		if p.Oscillators[i].PitchBend != 0 {
			t.Fatalf("oscillator %d pitch bend = %v, want 0 at center", i, p.Oscillators[i].PitchBend)
		}
	}
}

// TestVoicePoolExhaustionStealsOldestReleasing checks §7's overflow policy:
// once every voice slot is in use, a new NoteOn steals the voice that has
// been releasing the longest rather than dropping the event.
func TestVoicePoolExhaustionStealsOldestReleasing(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.VolEnv.ReleaseTime = 10.0 // long enough that none reap mid-test
	p.Filter.Model = FilterNone

	outL := make([]float32, 1)
	outR := make([]float32, 1)

	for i := 0; i < maxVoices; i++ {
		e.Process(1, []Event{NoteOnEvent(40+i, 127)}, outL, outR)
	}
	e.Process(1, []Event{NoteOffEvent(40, 0)}, outL, outR) // oldest voice starts releasing
	for i := 0; i < 100; i++ {
		e.Process(1, nil, outL, outR)
	}

	e.Process(1, []Event{NoteOnEvent(110, 127)}, outL, outR)

	found := false
	lastHeld := false
	for i := range e.voices {
		if e.voices[i].inUse && e.voices[i].noteID == 110 {
			found = true
		}
		if e.voices[i].inUse && e.voices[i].noteID == 40 {
			t.Fatalf("releasing voice for note 40 should have been stolen")
		}
		if e.voices[i].inUse && e.voices[i].noteID == 40+maxVoices-1 {
			lastHeld = true
		}
	}
	if !found {
		t.Fatalf("expected the stolen voice to carry the new note 110")
	}
	if !lastHeld {
		t.Fatalf("held note %d in the last slot should not have been stolen", 40+maxVoices-1)
	}
}
