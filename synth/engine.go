package synth

// maxVoices is the fixed-capacity voice pool size (§3 Voice "typical cap
// 64").
const maxVoices = 64

// Engine owns parameters, the voice pool, the shared wavetables, and runs
// the per-block DSP (§2 component G).
type Engine struct {
	sampleRate float32
	params     *Params
	wavetables *WavetableSet

	voices [maxVoices]Voice
	ledger noteLedger
	diag   diagnostics

	seedCounter uint32
}

// NewEngine builds the wavetable set (the engine's only allocation-heavy,
// off-audio-path work, §5) and returns a ready-to-use Engine with default
// parameters.
func NewEngine(sampleRate float32) (*Engine, error) {
	wt, err := NewWavetableSet(float64(sampleRate))
	if err != nil {
		return nil, err
	}
	return &Engine{
		sampleRate: sampleRate,
		params:     NewDefaultParams(),
		wavetables: wt,
		diag:       newDiagnostics(),
	}, nil
}

// Params returns the engine's live parameter set for the host to mutate
// between Process calls (§3 "Parameter structs mutated exclusively from
// the host thread at block boundaries").
func (e *Engine) Params() *Params {
	return e.params
}

// Diagnostics returns the channel the host drains for non-fatal DSP
// diagnostics (§7, AMBIENT STACK).
func (e *Engine) Diagnostics() <-chan Diagnostic {
	return e.diag.ch
}

func (e *Engine) nextSeed() uint32 {
	e.seedCounter++
	return e.seedCounter*2654435761 + 1
}

// allocateVoice returns a free Voice slot, or steals one per §7 "Voice pool
// exhaustion ... overflow silently drops the oldest released voice (policy:
// replace last)": prefer the voice that has been releasing longest; with
// none releasing, fall back to the last slot.
func (e *Engine) allocateVoice() *Voice {
	for i := range e.voices {
		if !e.voices[i].inUse {
			return &e.voices[i]
		}
	}
	oldestIdx := -1
	oldestElapsed := -1
	for i := range e.voices {
		if e.voices[i].state != voiceReleasing {
			continue
		}
		elapsed := e.voices[i].runtime - e.voices[i].releaseSample
		if elapsed > oldestElapsed {
			oldestElapsed = elapsed
			oldestIdx = i
		}
	}
	if oldestIdx >= 0 {
		return &e.voices[oldestIdx]
	}
	return &e.voices[len(e.voices)-1]
}

// monoVoice returns the single active voice used by Monophonic/Legato
// policies, or nil if none is active (P7: "at most one voice exists at any
// time").
func (e *Engine) monoVoice() *Voice {
	for i := range e.voices {
		if e.voices[i].inUse {
			return &e.voices[i]
		}
	}
	return nil
}

// NoteOn applies a note-on immediately, following the polyphony policy
// currently selected (§4.G "Polyphony policies on note-on").
func (e *Engine) NoteOn(note, velocity int) {
	e.noteOn(note, velocity)
}

// NoteOff applies a note-off immediately (§4.G "Policies on note-off").
func (e *Engine) NoteOff(note int) {
	e.noteOff(note)
}

// PitchBend applies a 14-bit pitch bend value immediately (§4.G "Pitch
// bend").
func (e *Engine) PitchBend(value int) {
	e.setPitchBend(value)
}

func (e *Engine) noteOn(id, velocity int) {
	id = clampInt(id, 0, 127)
	velocity = clampInt(velocity, 0, 127)
	e.ledger.noteOn(id, velocity)
	portamentoOffset := e.params.Global.PortamentoOffsetSemitones

	switch e.params.Global.Polyphony {
	case Monophonic:
		if v := e.monoVoice(); v != nil {
			v.semitoneDetune = float32(v.noteID-id) + v.semitoneDetune
			v.retrigger(id, velocity, &e.params.Oscillators)
			v.semitoneDetune += portamentoOffset
			return
		}
		v := e.allocateVoice()
		v.activate(id, velocity, &e.params.Oscillators, e.params.Filter.Model, e.sampleRate, e.nextSeed())
		v.semitoneDetune += portamentoOffset
	case Legato:
		if v := e.monoVoice(); v != nil {
			wasReleasing := v.state == voiceReleasing
			v.semitoneDetune = float32(v.noteID-id) + v.semitoneDetune
			v.noteID = id
			v.velocity = velocity
			if wasReleasing {
				v.retrigger(id, velocity, &e.params.Oscillators)
			}
			v.semitoneDetune += portamentoOffset
			return
		}
		v := e.allocateVoice()
		v.activate(id, velocity, &e.params.Oscillators, e.params.Filter.Model, e.sampleRate, e.nextSeed())
		v.semitoneDetune += portamentoOffset
	default: // Polyphonic
		v := e.allocateVoice()
		v.activate(id, velocity, &e.params.Oscillators, e.params.Filter.Model, e.sampleRate, e.nextSeed())
		v.semitoneDetune += portamentoOffset
	}
}

func (e *Engine) noteOff(id int) {
	id = clampInt(id, 0, 127)
	e.ledger.noteOff(id)

	switch e.params.Global.Polyphony {
	case Monophonic, Legato:
		v := e.monoVoice()
		if v == nil {
			return
		}
		if latest, ok := e.ledger.latest(); ok {
			oldID := v.noteID
			v.noteID = latest.id
			v.semitoneDetune = float32(oldID-latest.id) + v.semitoneDetune
			if e.params.Global.Polyphony == Monophonic {
				v.retrigger(latest.id, latest.velocity, &e.params.Oscillators)
			}
			return
		}
		v.release(&e.params.VolEnv, &e.params.Filter.CutoffEnvelope, e.sampleRate)
	default: // Polyphonic
		for i := range e.voices {
			if e.voices[i].inUse && e.voices[i].noteID == id {
				e.voices[i].release(&e.params.VolEnv, &e.params.Filter.CutoffEnvelope, e.sampleRate)
			}
		}
	}
}

func (e *Engine) setPitchBend(value int) {
	value = clampInt(value, 0, 16383)
	semitones := (float32(value-8192) / 8192.0) * e.params.Global.BendRangeSemitones
	for i := range e.params.Oscillators {
		e.params.Oscillators[i].PitchBend = semitones
	}
}

// lfoTargetsSlot reports whether the LFO's routing reaches oscillator slot
// i (§3 LfoParams "target_osc in {None,0,1,2}"): None reaches every slot.
func lfoTargetsSlot(target LfoTarget, i int) bool {
	return target == LfoTargetNone || int(target) == i
}

// Process renders blockSize samples into outL/outR (which the caller must
// supply pre-zeroed and additively mixes into, §6 "Audio interface"),
// applying events at the start of the block (§5 ordering guarantees).
func (e *Engine) Process(blockSize int, events []Event, outL, outR []float32) {
	for _, ev := range events {
		e.dispatch(ev)
	}

	releaseTime := e.params.VolEnv.ReleaseTime
	for i := range e.voices {
		e.voices[i].reapIfDone(releaseTime, e.sampleRate)
	}

	e.params.refreshCaches(e.sampleRate)

	deltaLfo := twoPi * e.params.Lfo.FreqHz / e.sampleRate

	for i := range e.voices {
		v := &e.voices[i]
		if !v.inUse {
			continue
		}
		e.renderVoice(i, v, blockSize, deltaLfo, outL, outR)
	}

	gain := e.params.Global.OutputGainLinear
	for n := 0; n < blockSize; n++ {
		outL[n] *= gain
		outR[n] *= gain
	}
}

// renderVoice runs one voice's DSP graph across blockSize samples,
// implementing §4.G's per-block/per-sample sequence for a single voice.
func (e *Engine) renderVoice(voiceIdx int, v *Voice, blockSize int, deltaLfo float32, outL, outR []float32) {
	fc := &e.params.Filter
	if v.filter.model != fc.Model {
		v.filter.rebuild(fc.Model, e.sampleRate)
	}
	v.filter.setType(fc.Type)
	v.filter.setSlope(fc.Slope)
	drive := driveMultiplier(fc.Model, fc.Drive)
	portamentoRate := e.params.Global.actualPortamentoRate
	note := v.noteID

	for n := 0; n < blockSize; n++ {
		v.semitoneDetune = lerp(v.semitoneDetune, 0, portamentoRate)

		noteDistance := (float32(note) - 69 + v.semitoneDetune) * e.params.Global.OctaveDetune
		baseDelta := twoPi * 440.0 * pow2Approx(noteDistance/12.0) / e.sampleRate

		var slotDelta [3]float32
		for s := range e.params.Oscillators {
			slotDelta[s] = baseDelta * e.params.Oscillators[s].totalPitchMultiplier
		}

		lfoSample := v.lfo.advance(&e.params.Lfo, deltaLfo)
		for s := range slotDelta {
			if lfoTargetsSlot(e.params.Lfo.Target, s) {
				slotDelta[s] *= 1 + lfoSample*e.params.Lfo.FreqMod
			}
		}

		modulator := float32(0)
		var slotOut [3]float32
		modScale := lerp(1, (lfoSample+1)/2, e.params.Lfo.ModMod)
		for s := 2; s >= 0; s-- {
			p := &e.params.Oscillators[s]
			notes := e.wavetables.notesFor(p.Wave)

			fmDelta := euclidMod(slotDelta[s]*(1+modulator*p.FM*fmScale), twoPi)
			pmOffset := modulator * p.PM

			out := v.oscPhases[s].advance(p, notes, note, fmDelta, pmOffset)
			out *= lerp(1, (modulator+1)/2, p.AM)
			slotOut[s] = out

			if lfoTargetsSlot(e.params.Lfo.Target, s) {
				modulator = out * modScale
			} else {
				modulator = out
			}
		}

		velocityNorm := float32(v.velocity) / 127.0
		voiceSample := float32(0)
		for s := 0; s < 3; s++ {
			p := &e.params.Oscillators[s]
			ampScale := float32(1)
			if lfoTargetsSlot(e.params.Lfo.Target, s) {
				ampScale = lerp(1, (lfoSample+1)/2, e.params.Lfo.AmpMod)
			}
			voiceSample += p.Amp * slotOut[s] * velocityNorm * ampScale
		}

		filterEnvVal := v.filterEnvelopeValue(&fc.CutoffEnvelope, e.sampleRate)
		lfoFilterMod := lfoSample * e.params.Lfo.FilterMod
		cutoff := effectiveCutoff(fc, float32(note), filterEnvVal, lfoFilterMod)
		v.filter.setParams(e.sampleRate, cutoff, fc.Resonance)

		if !v.filter.finite() {
			v.filter.resetState()
			e.diag.report(voiceIdx, "non-finite filter state reset")
		}
		voiceSample = v.filter.process(voiceSample * drive)

		voiceSample *= v.ampEnvelopeValue(&e.params.VolEnv, e.sampleRate)

		outL[n] += voiceSample
		outR[n] += voiceSample

		v.runtime++
	}
}
