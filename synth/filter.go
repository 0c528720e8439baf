package synth

// filterCore is the per-model contract every filter DSP core implements
// (§4.D "All filters expose..."). Kept as a plain interface satisfied by
// value-free pointer receivers; voiceFilter below avoids paying its vtable
// cost on the hot path by dispatching through an explicit tag instead of
// calling through this interface at runtime (§9 "Filter polymorphism").
type filterCore interface {
	process(x float32) float32
	setParams(sampleRate, cutoffHz, resonance float32)
	setType(t FilterType)
	finite() bool
	reset()
}

// voiceFilter is the tagged-union Filter instance owned by each Voice (§3
// Voice "one owned Filter instance matching the current model", §9). Only
// the field matching model is live; Process switches on model directly so
// the audio path never performs an interface method call.
type voiceFilter struct {
	model FilterModel

	biquad biquadFilter
	svf    svfFilter
	rc     rcFilter
	moog   moogFilter
}

// rebuild resets the filter selected by model. Called when the Voice's
// filter model changes (§4.D "the engine owns one filter instance per
// voice, rebuilt when the model changes").
func (f *voiceFilter) rebuild(model FilterModel, sampleRate float32) {
	f.model = model
	switch model {
	case FilterBiquad:
		f.biquad = newBiquadFilter(sampleRate)
	case FilterSVF:
		f.svf = newSVFFilter(sampleRate)
	case FilterRC:
		f.rc = newRCFilter(sampleRate)
	case FilterLadder:
		f.moog = newMoogFilter(sampleRate)
	}
}

// setParams pushes sample rate / cutoff / resonance into the live model.
func (f *voiceFilter) setParams(sampleRate, cutoffHz, resonance float32) {
	switch f.model {
	case FilterBiquad:
		f.biquad.setParams(sampleRate, cutoffHz, resonance)
	case FilterSVF:
		f.svf.setParams(sampleRate, cutoffHz, resonance)
	case FilterRC:
		f.rc.setParams(sampleRate, cutoffHz, resonance)
	case FilterLadder:
		f.moog.setParams(sampleRate, cutoffHz, resonance)
	}
}

func (f *voiceFilter) setType(t FilterType) {
	switch f.model {
	case FilterBiquad:
		f.biquad.setType(t)
	case FilterSVF:
		f.svf.setType(t)
	case FilterRC:
		f.rc.setType(t)
	case FilterLadder:
		f.moog.setType(t)
	}
}

// setSlope applies the RC ladder's 12/24 dB slope selection (§4.D.3); a
// no-op for every other model.
func (f *voiceFilter) setSlope(s FilterSlope) {
	if f.model == FilterRC {
		f.rc.setSlope(s)
	}
}

// process runs one sample through the live model. FilterNone passes
// through unchanged.
func (f *voiceFilter) process(x float32) float32 {
	switch f.model {
	case FilterBiquad:
		return f.biquad.process(x)
	case FilterSVF:
		return f.svf.process(x)
	case FilterRC:
		return f.rc.process(x)
	case FilterLadder:
		return f.moog.process(x)
	default:
		return x
	}
}

// finite reports whether the live model's internal state is still finite
// (§7 "non-finite filter state ... detected before each filter step").
func (f *voiceFilter) finite() bool {
	switch f.model {
	case FilterBiquad:
		return f.biquad.finite()
	case FilterSVF:
		return f.svf.finite()
	case FilterRC:
		return f.rc.finite()
	case FilterLadder:
		return f.moog.finite()
	default:
		return true
	}
}

// resetState zeroes the live model's state variables in place, used after
// a non-finite detection (§7).
func (f *voiceFilter) resetState() {
	switch f.model {
	case FilterBiquad:
		f.biquad.reset()
	case FilterSVF:
		f.svf.reset()
	case FilterRC:
		f.rc.reset()
	case FilterLadder:
		f.moog.reset()
	}
}

// driveMultiplier returns the drive scaling applied before Process, per
// §4.G step 4 "clamped to <=1 for Biquad/SVF/None; halved for Ladder;
// passthrough otherwise".
func driveMultiplier(model FilterModel, drive float32) float32 {
	switch model {
	case FilterBiquad, FilterSVF, FilterNone:
		return minf(drive, 1)
	case FilterLadder:
		return drive * 0.5
	default:
		return drive
	}
}

// effectiveCutoff computes the per-sample modulated cutoff (§4.D.5
// FilterController): keytrack plus the cutoff envelope, with the LFO's
// filter_mod depth injected into the keytrack term (§4.G step 4 "Compute
// current filter cutoff from §4.D.5 (with LFO filter_mod injected into
// keytrack term)").
func effectiveCutoff(fc *FilterController, note float32, envelopeValue float32, lfoFilterMod float32) float32 {
	keytrackMult := pow2Approx((note - 69) / 12.0 * (fc.Keytrack + lfoFilterMod))
	base := fc.CutoffHz * keytrackMult
	eff := base + envelopeValue*fc.EnvelopeAmount*(440+base)*50
	return clampf(eff, 10, 22000)
}
