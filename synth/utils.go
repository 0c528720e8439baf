package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

const twoPi = 2 * math.Pi

// lerp linearly interpolates from `from` to `to` by `amount` (not clamped to [0,1]).
func lerp(from, to, amount float32) float32 {
	return from + (to-from)*amount
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func isFinite32(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func isFinite64(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// pow2Approx is a fast 2^x via algo-approx's exponential approximation.
func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

// euclidMod returns x mod m with a non-negative result, for m > 0.
func euclidMod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

// midiToFreq converts a MIDI note number (fractional, to allow pitch bend
// and semitone/octave offsets) to a frequency in Hz, A4 (69) = 440 Hz.
func midiToFreq(note float32) float32 {
	const a4Freq = 440.0
	const a4Note = 69.0
	return a4Freq * pow2Approx((note-a4Note)/12.0)
}
