package analysis

// ResampleCubic resamples mono samples from sourceRate to targetRate using a
// fixed-input cubic (Catmull-Rom) interpolation, mirroring rubato's
// FastFixedIn with PolynomialDegree::Cubic: the output length is sized from
// the resample ratio up front (fixed input, not a streaming/adaptive
// resampler), and each output sample is interpolated from its four nearest
// source neighbours, clamping at the edges of the source buffer.
func ResampleCubic(samples []float64, sourceRate, targetRate int) []float64 {
	if len(samples) == 0 || sourceRate == targetRate {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}

	ratio := float64(targetRate) / float64(sourceRate)
	outLen := int(float64(len(samples)) * ratio)
	out := make([]float64, outLen)

	step := float64(sourceRate) / float64(targetRate)
	for i := 0; i < outLen; i++ {
		srcPos := float64(i) * step
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		p0 := sampleAt(samples, idx-1)
		p1 := sampleAt(samples, idx)
		p2 := sampleAt(samples, idx+1)
		p3 := sampleAt(samples, idx+2)

		out[i] = catmullRom(p0, p1, p2, p3, frac)
	}
	return out
}

func sampleAt(samples []float64, i int) float64 {
	if i < 0 {
		return samples[0]
	}
	if i >= len(samples) {
		return samples[len(samples)-1]
	}
	return samples[i]
}

// catmullRom evaluates the Catmull-Rom cubic spline through p0..p3 at
// fractional offset t in [0,1) between p1 and p2.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	a0 := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	a1 := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	a2 := -0.5*p0 + 0.5*p2
	a3 := p1

	return ((a0*t+a1)*t+a2)*t + a3
}
