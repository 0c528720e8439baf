package synth

// voiceState is the Voice state machine (§4.E).
type voiceState int

const (
	voicePlaying voiceState = iota
	voiceReleasing
	voiceReaped
)

// Voice is one active note: oscillator phases, envelope runtime, owned
// filter, and portamento state (§3 Voice).
type Voice struct {
	inUse bool

	noteID   int
	velocity int

	runtime int // samples since note-on, monotonic
	state   voiceState

	releaseSample        int     // runtime value when release() was called
	ampLevelAtRelease    float32 // volume envelope level cached at release
	filterLevelAtRelease float32 // filter cutoff envelope level cached at release

	semitoneDetune float32 // portamento state, lerped toward 0 each sample

	oscPhases [3]superVoice
	lfo       lfoState
	filter    voiceFilter
	rng       detRand

	pitchBendSemitones float32
}

// activate (re)initializes the voice for a fresh note-on, seeding phases
// from the oscillator params and resetting runtime/envelope/portamento
// state. filterModel forces a filter rebuild only when the model changed.
func (v *Voice) activate(noteID, velocity int, oscParams *[3]OscillatorParams, filterModel FilterModel, sampleRate float32, seed uint32) {
	v.inUse = true
	v.noteID = noteID
	v.velocity = velocity
	v.runtime = 0
	v.state = voicePlaying
	v.releaseSample = 0
	v.ampLevelAtRelease = 0
	v.filterLevelAtRelease = 0
	v.semitoneDetune = 0
	v.lfo = lfoState{}
	v.rng = detRand{state: seed}

	for i := range v.oscPhases {
		v.oscPhases[i] = superVoice{}
		v.oscPhases[i].seedPhases(&oscParams[i], &v.rng)
	}

	if v.filter.model != filterModel {
		v.filter.rebuild(filterModel, sampleRate)
	}
}

// retrigger resets runtime/envelope/phase state without touching filter
// state, for the "always retrigger" Monophonic policy and for Legato
// retriggering while releasing (§4.G policy table).
func (v *Voice) retrigger(noteID, velocity int, oscParams *[3]OscillatorParams) {
	v.noteID = noteID
	v.velocity = velocity
	v.runtime = 0
	v.state = voicePlaying
	v.releaseSample = 0
	v.ampLevelAtRelease = 0
	v.filterLevelAtRelease = 0

	for i := range v.oscPhases {
		v.oscPhases[i].seedPhases(&oscParams[i], &v.rng)
	}
}

// release transitions the voice to Releasing, idempotently (§4.E "release()
// is idempotent: if already releasing, do nothing").
func (v *Voice) release(volEnv *EnvelopeParams, filterEnv *EnvelopeParams, sampleRate float32) {
	if v.state != voicePlaying {
		return
	}
	v.state = voiceReleasing
	v.releaseSample = v.runtime
	tHeld := float32(v.runtime) / sampleRate
	v.ampLevelAtRelease = sampleHeld(volEnv, tHeld)
	v.filterLevelAtRelease = sampleHeld(filterEnv, tHeld)
}

// reapIfDone marks the voice Reaped once its release completes (§4.E,
// P5: "release_time + release_time_seconds*SR is an upper bound on voice
// lifetime").
func (v *Voice) reapIfDone(releaseTime float32, sampleRate float32) {
	if v.state != voiceReleasing {
		return
	}
	elapsed := v.runtime - v.releaseSample
	if float32(elapsed) >= releaseTime*sampleRate {
		v.state = voiceReaped
		v.inUse = false
	}
}

// ampEnvelopeValue evaluates the volume envelope at the voice's current
// runtime (§4.C held/released branches).
func (v *Voice) ampEnvelopeValue(volEnv *EnvelopeParams, sampleRate float32) float32 {
	if v.state == voiceReleasing {
		elapsed := float32(v.runtime-v.releaseSample) / sampleRate
		return sampleReleased(volEnv, v.ampLevelAtRelease, elapsed)
	}
	return sampleHeld(volEnv, float32(v.runtime)/sampleRate)
}

// filterEnvelopeValue evaluates the filter's cutoff-modulation envelope at
// the voice's current runtime.
func (v *Voice) filterEnvelopeValue(filterEnv *EnvelopeParams, sampleRate float32) float32 {
	if v.state == voiceReleasing {
		elapsed := float32(v.runtime-v.releaseSample) / sampleRate
		return sampleReleased(filterEnv, v.filterLevelAtRelease, elapsed)
	}
	return sampleHeld(filterEnv, float32(v.runtime)/sampleRate)
}
