package analysis

// chromaWindowSize/chromaHopSize are the STFT parameters for the constant-Q
// pitch-class chromagram; a longer window than the timbral descriptors gives
// better low-frequency resolution for pitch estimation.
const (
	chromaWindowSize = 8192
	chromaHopSize    = 4096

	chromaBinsPerOctave = 12
	// chromaFeatures is the dimensionality of the Chroma1..10 feature slots;
	// the raw 12-bin pitch-class chromagram is resized down to this count.
	chromaFeatures = 10

	chromaMinFreq = 32.70 // C1
	chromaTuning  = 0.0
)

// chromaDescriptor computes a pitch-class chromagram over samples via
// constant-Q-style binning (STFT bins folded onto semitone classes using
// HzToOctsInplace) and resizes the resulting 12-bin vector down to 10
// components by linear interpolation, matching the Chroma1..10 feature slots
// left native-range (unnormalised) per spec.md's table.
func chromaDescriptor(samples []float64) ([]float64, error) {
	if len(samples) <= chromaWindowSize {
		return nil, ErrEmptySamples
	}

	spectrum := STFT(samples, chromaWindowSize, chromaHopSize)
	nBins := len(spectrum)
	nFrames := len(spectrum[0])

	pitchClasses := make([]float64, chromaBinsPerOctave)
	freqs := make([]float64, nBins)
	for b := 0; b < nBins; b++ {
		freqs[b] = binToFreq(float64(b), SampleRate, chromaWindowSize)
	}

	octs := make([]float64, nBins)
	copy(octs, freqs)
	for i, f := range freqs {
		if f < chromaMinFreq {
			octs[i] = 0
		}
	}
	HzToOctsInplace(octs, chromaTuning, chromaBinsPerOctave)

	for f := 0; f < nFrames; f++ {
		for b := 1; b < nBins; b++ {
			if freqs[b] < chromaMinFreq {
				continue
			}
			pc := int(octs[b]*float64(chromaBinsPerOctave)) % chromaBinsPerOctave
			if pc < 0 {
				pc += chromaBinsPerOctave
			}
			pitchClasses[pc] += spectrum[b][f]
		}
	}

	total := 0.0
	for _, v := range pitchClasses {
		total += v
	}
	if total > 0 {
		for i := range pitchClasses {
			pitchClasses[i] /= total
		}
	}

	return resizeLinear(pitchClasses, chromaFeatures), nil
}

// resizeLinear resizes a cyclic (periodic) vector from its native length to
// outLen by linear interpolation.
func resizeLinear(values []float64, outLen int) []float64 {
	n := len(values)
	out := make([]float64, outLen)
	for i := 0; i < outLen; i++ {
		pos := float64(i) * float64(n) / float64(outLen)
		lo := int(pos)
		hi := (lo + 1) % n
		frac := pos - float64(lo)
		out[i] = values[lo%n]*(1-frac) + values[hi]*frac
	}
	return out
}
