package synth

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// Wavetable is a bandlimited, real-valued waveform sampled at its
// construction sample rate, looked up by phase via linear interpolation
// (§3 Wavetable, §4.A).
type Wavetable struct {
	samples []float32
}

// generate returns the interpolated sample at phase (wrapped to [0,2pi)).
func (w *Wavetable) generate(phase float32) float32 {
	n := len(w.samples)
	if n == 0 {
		return 0
	}
	phase = euclidMod(phase, twoPi)
	pos := phase / twoPi * float32(n)
	i0 := int(pos)
	if i0 >= n {
		i0 = 0
	}
	i1 := i0 + 1
	if i1 >= n {
		i1 = 0
	}
	frac := pos - float32(i0)
	return lerp(w.samples[i0], w.samples[i1], frac)
}

// spectrumFunc returns the real amplitude of harmonic k (k >= 1) for a base
// waveform (§4.A "Standard waveform spectra").
type spectrumFunc func(k int) float64

func sineSpectrum(k int) float64 {
	if k == 1 {
		return 1
	}
	return 0
}

func sawSpectrum(k int) float64 {
	return 1.0 / float64(k)
}

func squareSpectrum(k int) float64 {
	if k%2 == 1 {
		return 1.0 / float64(k)
	}
	return 0
}

func triangleSpectrum(k int) float64 {
	if k%2 == 0 {
		return 0
	}
	sign := 1.0
	if ((k-1)/2)%2 == 1 {
		sign = -1.0
	}
	return sign / float64(k*k)
}

func expSpectrum(k int) float64 {
	return 1.0 / float64(k*k)
}

// tableLength picks a table size for a note whose maximum preserved
// harmonic is maxHarmonic: large enough to hold 2x oversampling of the
// highest harmonic, never below a practical interpolation floor, never
// above the ceiling (§4.A recommends 2048; SUPPLEMENTED FEATURES scales it
// down for high notes instead of paying 2048 samples for a handful of
// harmonics).
func tableLength(maxHarmonic, ceiling int) int {
	const floor = 64
	want := 2 * (maxHarmonic + 1)
	n := floor
	for n < want && n < ceiling {
		n <<= 1
	}
	if n > ceiling {
		n = ceiling
	}
	return n
}

// buildWavetable synthesizes one bandlimited table via inverse real FFT
// (§4.A): place amplitude[k] at bin k as the imaginary part (sine phase),
// zero above maxHarmonic and above N/2, inverse-transform, keep the real
// part.
func buildWavetable(spectrum spectrumFunc, maxHarmonic, n int) (*Wavetable, error) {
	if maxHarmonic > n/2 {
		maxHarmonic = n / 2
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, fmt.Errorf("wavetable fft plan (n=%d): %w", n, err)
	}
	spec := make([]complex128, n/2+1)
	for k := 1; k <= maxHarmonic; k++ {
		a := spectrum(k)
		if a == 0 {
			continue
		}
		spec[k] = complex(0, -a)
	}
	buf := make([]float64, n)
	if err := plan.Inverse(buf, spec); err != nil {
		return nil, fmt.Errorf("wavetable inverse fft (n=%d): %w", n, err)
	}
	peak := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	samples := make([]float32, n)
	if peak > 0 {
		for i, v := range buf {
			samples[i] = float32(v / peak)
		}
	}
	return &Wavetable{samples: samples}, nil
}

// numMidiNotes is 138: MIDI 0..127 plus headroom past 127 for ultrasonic
// pitch-bent fundamentals (§3 WavetableNotes).
const numMidiNotes = 138

// maxTableLength is the ceiling table size (§4.A "recommended 2048").
const maxTableLength = 2048

// WavetableNotes holds one bandlimited Wavetable per MIDI index for a
// single base spectrum, shared read-only across every voice.
type WavetableNotes struct {
	notes [numMidiNotes]*Wavetable
}

func buildWavetableNotes(spectrum spectrumFunc, sampleRate float64) (*WavetableNotes, error) {
	wn := &WavetableNotes{}
	for i := 0; i < numMidiNotes; i++ {
		f := float64(midiToFreq(float32(i)))
		var maxHarmonic int
		if f > 0 {
			maxHarmonic = int(sampleRate / (2 * f))
		}
		if maxHarmonic > maxTableLength/2 {
			maxHarmonic = maxTableLength / 2
		}
		if maxHarmonic < 0 {
			maxHarmonic = 0
		}
		n := tableLength(maxHarmonic, maxTableLength)
		wt, err := buildWavetable(spectrum, maxHarmonic, n)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		wn.notes[i] = wt
	}
	return wn, nil
}

// lookup samples the table for MIDI note (clamped to the valid range) at
// phase.
func (wn *WavetableNotes) lookup(note int, phase float32) float32 {
	if note < 0 {
		note = 0
	}
	if note >= numMidiNotes {
		note = numMidiNotes - 1
	}
	return wn.notes[note].generate(phase)
}

// WavetableSet is one WavetableNotes per base waveform (§3 WavetableSet).
// Pulse has no table of its own: it is synthesized from two phase-shifted
// lookups of Saw (§4.A, §4.G).
type WavetableSet struct {
	Sine   *WavetableNotes
	Tri    *WavetableNotes
	Saw    *WavetableNotes
	Exp    *WavetableNotes
	Square *WavetableNotes
}

// NewWavetableSet builds every base-waveform table at the given sample
// rate. This is the only allocation-heavy, FFT-heavy work in the engine;
// it runs once at construction, off the audio path (§5).
func NewWavetableSet(sampleRate float64) (*WavetableSet, error) {
	type job struct {
		name     string
		spectrum spectrumFunc
		dst      **WavetableNotes
	}
	set := &WavetableSet{}
	jobs := []job{
		{"sine", sineSpectrum, &set.Sine},
		{"tri", triangleSpectrum, &set.Tri},
		{"saw", sawSpectrum, &set.Saw},
		{"exp", expSpectrum, &set.Exp},
		{"square", squareSpectrum, &set.Square},
	}
	for _, j := range jobs {
		wn, err := buildWavetableNotes(j.spectrum, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%s wavetable: %w", j.name, err)
		}
		*j.dst = wn
	}
	return set, nil
}

// notesFor returns the WavetableNotes backing a base waveform; Pulse maps
// to Saw since its second phase-shifted lookup is applied by the caller.
func (s *WavetableSet) notesFor(wave OscWave) *WavetableNotes {
	switch wave {
	case WaveSine:
		return s.Sine
	case WaveTri:
		return s.Tri
	case WaveSaw, WavePulse:
		return s.Saw
	case WaveExp:
		return s.Exp
	case WaveSquare:
		return s.Square
	default:
		return s.Sine
	}
}
