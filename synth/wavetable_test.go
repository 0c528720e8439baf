package synth

import (
	"math"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

// TestWavetableHasNoAliasingAboveNyquist checks P1: for a representative
// spread of MIDI notes, the generated table's own spectrum has no bin above
// sample_rate/2 with magnitude exceeding -60 dBFS relative to the
// fundamental. Since buildWavetable zeroes every FFT bin above maxHarmonic
// before the inverse transform, this is mostly a construction sanity check.
func TestWavetableHasNoAliasingAboveNyquist(t *testing.T) {
	const sampleRate = 48000.0

	for _, note := range []int{0, 21, 45, 60, 69, 90, 108, 127, 137} {
		f := float64(midiToFreq(float32(note)))
		var maxHarmonic int
		if f > 0 {
			maxHarmonic = int(sampleRate / (2 * f))
		}
		if maxHarmonic > maxTableLength/2 {
			maxHarmonic = maxTableLength / 2
		}
		n := tableLength(maxHarmonic, maxTableLength)

		wt, err := buildWavetable(sawSpectrum, maxHarmonic, n)
		if err != nil {
			t.Fatalf("note %d: buildWavetable: %v", note, err)
		}

		plan, err := algofft.NewPlanReal64(n)
		if err != nil {
			t.Fatalf("note %d: fft plan: %v", note, err)
		}
		src := make([]float64, n)
		for i, v := range wt.samples {
			src[i] = float64(v)
		}
		spec := make([]complex128, n/2+1)
		if err := plan.Forward(spec, src); err != nil {
			t.Fatalf("note %d: forward fft: %v", note, err)
		}

		// Bin 0 (DC) and bins above the harmonic content should carry no
		// meaningful energy; find the fundamental peak to normalize against.
		fundamentalMag := 0.0
		for k := 1; k <= maxHarmonic && k < len(spec); k++ {
			m := cmplxAbs(spec[k])
			if m > fundamentalMag {
				fundamentalMag = m
			}
		}
		if fundamentalMag == 0 {
			continue // note 0 degenerates to a silent table; nothing to check
		}

		nyquistBin := n / 2
		for k := maxHarmonic + 1; k <= nyquistBin; k++ {
			m := cmplxAbs(spec[k])
			ratio := m / fundamentalMag
			if ratio > 0.001 { // -60 dBFS
				t.Fatalf("note %d: bin %d above maxHarmonic carries %.6f of fundamental (> -60dBFS)", note, k, ratio)
			}
		}
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func TestTableLengthBounds(t *testing.T) {
	if got := tableLength(0, maxTableLength); got != 64 {
		t.Fatalf("expected floor 64 for maxHarmonic 0, got %d", got)
	}
	if got := tableLength(2000, maxTableLength); got != maxTableLength {
		t.Fatalf("expected ceiling %d for large maxHarmonic, got %d", maxTableLength, got)
	}
	if got := tableLength(10, maxTableLength); got < 64 || got > maxTableLength {
		t.Fatalf("tableLength(10) out of bounds: %d", got)
	}
}

func TestWavetableSetSawMapsPulseToSaw(t *testing.T) {
	set, err := NewWavetableSet(48000)
	if err != nil {
		t.Fatalf("NewWavetableSet: %v", err)
	}
	if set.notesFor(WavePulse) != set.Saw {
		t.Fatalf("expected Pulse to share the Saw table")
	}
	if set.notesFor(WaveSine) != set.Sine {
		t.Fatalf("expected Sine to map to its own table")
	}
}
