package synth

import "math"

// moogOversample is the fixed oversampling factor for the nonlinear ladder
// (§4.D.4 "integrated at 3x oversampling").
const moogOversample = 3

// moogDecimatorOrder is the Butterworth decimation filter's order (§4.D.4
// "16th-order Butterworth IIR lowpass").
const moogDecimatorOrder = 16

// moogDecimatorBandwidth is the passthrough bandwidth fraction of the
// decimator's cutoff relative to SR/2 (§4.D.4 "cutoff at 0.9*SR/2").
const moogDecimatorBandwidth = 0.9

// moogOutputGain compensates the ladder core's naturally-low output level;
// grounded on original_source's LadderFilter::process (`output() * 1.8`)
// rather than invented, since §4.D.4's per-type tap formulas describe the
// unscaled core.
const moogOutputGain = 1.8

// tanhPade32 is the Pade-3/2 tanh approximant used for every saturating
// stage in the ladder (§4.D.4, grounded on original_source's tanh_pade32).
func tanhPade32(x float64) float64 {
	if x > 3 {
		x = 3
	} else if x < -3 {
		x = -3
	}
	return x * (15 + x*x) / (15 + 6*x*x)
}

// moogIntegrationRate computes the fixed per-step integration delta Δ
// (§4.D.4 "Integration step Δ = clamp(44100/(SR·OS)·cutoff_norm, 0, 0.6)").
func moogIntegrationRate(sampleRate float64, oversamplingFactor int, cutoffNorm float64) float64 {
	dt := 44100.0 / (sampleRate * float64(oversamplingFactor)) * cutoffNorm
	return clampf64(dt, 0, 0.6)
}

func clampf64(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// moogFilter is the nonlinear, 3x-oversampled Moog ladder (§4.D.4), using a
// predictor-corrector tanh integration scheme and a 16th-order Butterworth
// IIR decimator after oversampling.
type moogFilter struct {
	cutoffNorm float64
	resonance  float64
	typ        FilterType
	sampleRate float64
	dt         float64

	p0, p1, p2, p3 float64
	ut1            float64
	out            float64

	decimator moogDecimator
}

func newMoogFilter(sampleRate float32) moogFilter {
	f := moogFilter{}
	f.setParams(sampleRate, 1000, 0.5)
	return f
}

func (f *moogFilter) setType(t FilterType) {
	f.typ = t
}

// setParams applies the uniform controller mapping (§4.D.4 "Cutoff/resonance
// mapping from the uniform controller interface").
func (f *moogFilter) setParams(sampleRate, cutoffHz, resonance float32) {
	f.cutoffNorm = float64(cutoffHz)/7000.0 + 0.0001
	f.resonance = float64(resonance) / 16.6
	f.setSampleRate(float64(sampleRate))
}

func (f *moogFilter) setSampleRate(sampleRate float64) {
	f.sampleRate = sampleRate
	f.dt = moogIntegrationRate(sampleRate, moogOversample, f.cutoffNorm)
	f.decimator.configure(
		sampleRate*moogOversample,
		moogDecimatorBandwidth*sampleRate/2,
		moogDecimatorOrder,
	)
}

func (f *moogFilter) process(x float32) float32 {
	input := float64(x)
	feedback := 8.0 * f.resonance

	for i := 0; i < moogOversample; i++ {
		p0prime := f.p0 + f.dt*(tanhPade32(f.ut1-feedback*f.p3)-tanhPade32(f.p0))
		p1prime := f.p1 + f.dt*(tanhPade32(f.p0)-tanhPade32(f.p1))
		p2prime := f.p2 + f.dt*(tanhPade32(f.p1)-tanhPade32(f.p2))
		p3prime := f.p3 + f.dt*(tanhPade32(f.p2)-tanhPade32(f.p3))

		p3t1 := f.p3
		f.p3 = f.p3 + 0.5*f.dt*((tanhPade32(f.p2)-tanhPade32(f.p3))+(tanhPade32(p2prime)-tanhPade32(p3prime)))
		f.p2 = f.p2 + 0.5*f.dt*((tanhPade32(f.p1)-tanhPade32(f.p2))+(tanhPade32(p1prime)-tanhPade32(p2prime)))
		f.p1 = f.p1 + 0.5*f.dt*((tanhPade32(f.p0)-tanhPade32(f.p1))+(tanhPade32(p0prime)-tanhPade32(p1prime)))
		f.p0 = f.p0 + 0.5*f.dt*((tanhPade32(f.ut1-feedback*p3t1)-tanhPade32(f.p0))+(tanhPade32(input-feedback*f.p3)-tanhPade32(p0prime)))
	}

	f.ut1 = input

	switch f.typ {
	case Bandpass:
		f.out = f.p1 - f.p3
	case Highpass:
		f.out = tanhPade32(input - f.p0 - feedback*f.p3)
	default: // Lowpass
		f.out = f.p3
	}

	f.out = f.decimator.filter(f.out)

	if !isFinite64(f.out) {
		f.reset()
		return 0
	}
	return float32(f.out * moogOutputGain)
}

func (f *moogFilter) finite() bool {
	return isFinite64(f.p0) && isFinite64(f.p1) && isFinite64(f.p2) && isFinite64(f.p3) &&
		isFinite64(f.ut1) && isFinite64(f.out) && f.decimator.finite()
}

func (f *moogFilter) reset() {
	f.p0, f.p1, f.p2, f.p3 = 0, 0, 0, 0
	f.ut1, f.out = 0, 0
	f.decimator.reset()
}

var _ filterCore = (*moogFilter)(nil)

// moogDecimatorMaxStages is the max number of cascaded biquads (order/2 for
// the supported order of 16).
const moogDecimatorMaxStages = moogDecimatorOrder / 2

// moogDecimator is the 16th-order Butterworth IIR lowpass used to decimate
// the oversampled ladder output back down (§4.D.4, grounded on
// original_source's `iir::IirFilter`): Butterworth analog poles, prewarped
// and bilinear-transformed to the z-plane, run as a cascade of 2-pole
// sections.
type moogDecimator struct {
	sampleRate float64
	cutoff     float64
	order      int

	a1, a2, k [moogDecimatorMaxStages]float64
	z         [moogDecimatorOrder]float64
}

func (d *moogDecimator) configure(sampleRate, cutoff float64, order int) {
	d.sampleRate = sampleRate
	d.cutoff = cutoff
	d.order = order
	d.reset()
	d.computeCoefficients()
}

func (d *moogDecimator) reset() {
	for i := range d.z {
		d.z[i] = 0
	}
}

func (d *moogDecimator) finite() bool {
	for _, v := range d.z {
		if !isFinite64(v) {
			return false
		}
	}
	return true
}

func (d *moogDecimator) computeCoefficients() {
	stages := d.order / 2
	var paReal, paImag, pReal, pImag [moogDecimatorMaxStages]float64

	for ii := 0; ii < stages; ii++ {
		k := stages - ii
		theta := (2*float64(k) - 1) * math.Pi / (2 * float64(d.order))
		paReal[ii] = -math.Sin(theta)
		paImag[ii] = math.Cos(theta)
	}

	fc := d.sampleRate / math.Pi * math.Tan(math.Pi*d.cutoff/d.sampleRate)
	for ii := 0; ii < stages; ii++ {
		paReal[ii] *= 2 * math.Pi * fc
		paImag[ii] *= 2 * math.Pi * fc
	}

	for ii := 0; ii < stages; ii++ {
		u := (2*d.sampleRate + paReal[ii]) / (2 * d.sampleRate)
		v := paImag[ii] / (2 * d.sampleRate)
		x := (2*d.sampleRate - paReal[ii]) / (2 * d.sampleRate)
		y := -paImag[ii] / (2 * d.sampleRate)

		c := 1.0 / (x*x + y*y)
		pReal[ii] = c * (u*x + v*y)
		pImag[ii] = c * (v*x - u*y)
	}

	for ii := 0; ii < stages; ii++ {
		d.a1[ii] = -2 * pReal[ii]
		d.a2[ii] = pReal[ii]*pReal[ii] + pImag[ii]*pImag[ii]
		d.k[ii] = (1 + d.a1[ii] + d.a2[ii]) / 4
	}
}

// filter runs one sample through the cascaded biquad decimator.
func (d *moogDecimator) filter(input float64) float64 {
	out := input
	stages := d.order / 2
	for i := 0; i < stages; i++ {
		z0 := d.z[2*i]
		z1 := d.z[2*i+1]
		biquadIn := d.k[i]*out - d.a1[i]*z0 - d.a2[i]*z1
		out = biquadIn + 2*z0 + z1
		d.z[2*i+1] = z0
		d.z[2*i] = biquadIn
	}
	return out
}
