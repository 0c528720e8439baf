package synth

import "testing"

const envEps = 1e-4

// TestEnvelopeAttackReachesUnity checks P2: the held envelope reaches 1.0 at
// t == attack_time (before falling into decay).
func TestEnvelopeAttackReachesUnity(t *testing.T) {
	p := NewEnvelopeParams()
	p.AttackTime = 0.5
	p.DecayTime = 0
	p.SustainLevel = 1

	got := sampleHeld(&p, 0.5)
	if diff := got - 1.0; diff > envEps || diff < -envEps {
		t.Fatalf("sampleHeld at t=attack = %v, want 1.0", got)
	}
}

// TestEnvelopeZeroAttackSkipsToDecay checks §4.C: an attack of exactly 0
// jumps straight into the decay/sustain branch instead of dividing by zero.
func TestEnvelopeZeroAttackSkipsToDecay(t *testing.T) {
	p := NewEnvelopeParams()
	p.AttackTime = 0
	p.DecayTime = 1
	p.SustainLevel = 0.2

	got := sampleHeld(&p, 0)
	if diff := got - 1.0; diff > envEps || diff < -envEps {
		t.Fatalf("sampleHeld at t=0 with zero attack = %v, want 1.0 (decay start)", got)
	}
}

// TestEnvelopeDecayReachesSustain checks P3: the decay phase lands exactly
// on sustain_level once decay_time has fully elapsed.
func TestEnvelopeDecayReachesSustain(t *testing.T) {
	p := NewEnvelopeParams()
	p.AttackTime = 0
	p.DecayTime = 0.25
	p.SustainLevel = 0.3

	got := sampleHeld(&p, 0.25)
	if diff := got - 0.3; diff > envEps || diff < -envEps {
		t.Fatalf("sampleHeld at t=decay_end = %v, want sustain_level 0.3", got)
	}

	// Beyond decay_time the envelope holds flat at sustain_level.
	got = sampleHeld(&p, 10)
	if diff := got - 0.3; diff > envEps || diff < -envEps {
		t.Fatalf("sampleHeld well past decay = %v, want sustain_level 0.3", got)
	}
}

// TestEnvelopeReleaseDecaysToZero checks P4: released level starts at the
// level captured at release time and reaches exactly 0 at release_time.
func TestEnvelopeReleaseDecaysToZero(t *testing.T) {
	p := NewEnvelopeParams()
	p.ReleaseTime = 0.1

	levelAtRelease := float32(0.7)
	got := sampleReleased(&p, levelAtRelease, 0)
	if diff := got - levelAtRelease; diff > envEps || diff < -envEps {
		t.Fatalf("sampleReleased at elapsed=0 = %v, want level-at-release %v", got, levelAtRelease)
	}

	got = sampleReleased(&p, levelAtRelease, 0.1)
	if got != 0 {
		t.Fatalf("sampleReleased at elapsed=release_time = %v, want 0", got)
	}

	got = sampleReleased(&p, levelAtRelease, 5)
	if got != 0 {
		t.Fatalf("sampleReleased well past release_time = %v, want clamped to 0", got)
	}
}

// TestEnvelopeSlopeShapesAttack checks §4.C: with a positive slope the attack
// exponent is 2^(-slope/4) < 1, so mid-attack the curve rises above the
// linear ramp, and it stays strictly between 0 and 1 there. The decay side
// of the slope is checked by TestEnvelopeSlopeSignMatchesPunchyDirection.
func TestEnvelopeSlopeShapesAttack(t *testing.T) {
	linear := NewEnvelopeParams()
	linear.AttackTime = 1
	linear.DecayTime = 0
	linear.SustainLevel = 1

	curved := linear
	curved.SetSlope(4)

	mid := sampleHeld(&curved, 0.5)
	if mid <= 0 || mid >= 1 {
		t.Fatalf("sampleHeld mid-attack with slope = %v, want strictly between 0 and 1", mid)
	}
}

// TestEnvelopeSlopeSignMatchesPunchyDirection checks §3/§4.C: a positive
// slope must make the decay curve drop *faster* than a linear ramp (punchy),
// and a negative slope must make it drop *slower* (soft landing) — the two
// decay exponent branches must not be inverted relative to that intent.
func TestEnvelopeSlopeSignMatchesPunchyDirection(t *testing.T) {
	linear := NewEnvelopeParams()
	linear.AttackTime = 0
	linear.DecayTime = 1
	linear.SustainLevel = 0

	punchy := linear
	punchy.SetSlope(4)
	soft := linear
	soft.SetSlope(-4)

	const tMid = 0.5
	atLinear := sampleHeld(&linear, tMid)
	atPunchy := sampleHeld(&punchy, tMid)
	atSoft := sampleHeld(&soft, tMid)

	if atPunchy >= atLinear {
		t.Fatalf("positive slope decay at mid-decay = %v, want below the linear ramp's %v (punchy)", atPunchy, atLinear)
	}
	if atSoft <= atLinear {
		t.Fatalf("negative slope decay at mid-decay = %v, want above the linear ramp's %v (soft)", atSoft, atLinear)
	}
}

// TestVoiceReleaseIsIdempotent checks §4.E: calling release() twice leaves
// the captured release sample and level unchanged.
func TestVoiceReleaseIsIdempotent(t *testing.T) {
	var v Voice
	v.inUse = true
	v.state = voicePlaying
	v.runtime = 1000

	volEnv := NewEnvelopeParams()
	filterEnv := NewEnvelopeParams()
	v.release(&volEnv, &filterEnv, 48000)

	releaseSampleFirst := v.releaseSample
	ampLevelFirst := v.ampLevelAtRelease

	v.runtime = 2000 // advance time, then try to release again
	v.release(&volEnv, &filterEnv, 48000)

	if v.releaseSample != releaseSampleFirst {
		t.Fatalf("second release() changed releaseSample: %d -> %d", releaseSampleFirst, v.releaseSample)
	}
	if v.ampLevelAtRelease != ampLevelFirst {
		t.Fatalf("second release() changed ampLevelAtRelease: %v -> %v", ampLevelFirst, v.ampLevelAtRelease)
	}
}
