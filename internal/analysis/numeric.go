package analysis

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// ReflectPad mirrors the first and last pad samples of array onto its edges,
// e.g. ReflectPad([0,1,2,3,4], 2) == [2,1,0,1,2,3,4,3,2]. pad must be smaller
// than len(array).
func ReflectPad(array []float64, pad int) []float64 {
	n := len(array)
	out := make([]float64, 0, n+2*pad)

	for i := pad; i >= 1; i-- {
		out = append(out, array[i])
	}
	out = append(out, array...)
	for i := n - 2; i >= n-1-pad; i-- {
		out = append(out, array[i])
	}
	return out
}

// hannWindow returns a periodic Hann window of the given length, i.e. the
// first `length` samples of a window of length+1.
func hannWindow(length int) []float64 {
	w := make([]float64, length)
	for n := 0; n < length; n++ {
		w[n] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(length))
	}
	return w
}

// STFT computes the magnitude short-time Fourier transform of signal using
// the given window and hop length, after reflect-padding by windowLength/2.
// The result is indexed [frequencyBin][frame], matching the original's
// permuted-axes layout: len(result) == windowLength/2+1.
func STFT(signal []float64, windowLength, hopLength int) [][]float64 {
	padded := ReflectPad(signal, windowLength/2)
	window := hannWindow(windowLength)

	nFrames := (len(signal) + hopLength - 1) / hopLength
	nBins := windowLength/2 + 1

	out := make([][]float64, nBins)
	for b := range out {
		out[b] = make([]float64, nFrames)
	}

	frame := make([]complex128, windowLength)
	for f := 0; f < nFrames; f++ {
		start := f * hopLength
		if start+windowLength > len(padded) {
			break
		}
		for i := 0; i < windowLength; i++ {
			frame[i] = complex(padded[start+i]*window[i], 0)
		}
		spectrum := fft.FFT(frame)
		for b := 0; b < nBins; b++ {
			out[b][f] = math.Hypot(real(spectrum[b]), imag(spectrum[b]))
		}
	}
	return out
}

// Mean returns the arithmetic mean of input, or 0 for an empty slice.
func Mean(input []float64) float64 {
	if len(input) == 0 {
		return 0
	}
	var sum float64
	for _, x := range input {
		sum += x
	}
	return sum / float64(len(input))
}

// normalizer maps a bounded descriptor range onto [-1, 1].
type normalizer struct {
	min, max float64
}

func (n normalizer) normalize(value float64) float64 {
	return 2*(value-n.min)/(n.max-n.min) - 1
}

// NumberCrossings counts zero-axis sign changes, matching Essentia's
// ZeroCrossingRate algorithm: a sample exactly at 0 does not itself count as
// positive, so it only causes a crossing when the sign actually flips.
func NumberCrossings(input []float64) int {
	if len(input) == 0 {
		return 0
	}

	crossings := 0
	wasPositive := input[0] > 0

	for _, sample := range input {
		isPositive := sample > 0
		if wasPositive != isPositive {
			crossings++
			wasPositive = isPositive
		}
	}
	return crossings
}

// twoPow500 is 2^500, used by GeometricMean to keep partial products away
// from float64 underflow/denormal range.
const twoPow500 = 3.273390607896142e150

// GeometricMean computes the geometric mean of input using the scaled
// log-space accumulation trick (credited to Jacques-Henri Jourdan): groups of
// 8 values are multiplied in pairs, scaled by 2^500, and folded into a
// running exponent/mantissa pair via their raw float64 bit patterns, which
// avoids overflow for the extreme feature magnitudes seen across a track.
// len(input) must be a multiple of 8.
func GeometricMean(input []float64) float64 {
	if len(input) == 0 {
		return 0
	}

	var exponents int64
	mantissas := 1.0

	for i := 0; i+8 <= len(input); i += 8 {
		ch := input[i : i+8]
		m := (ch[0] * ch[1]) * (ch[2] * ch[3])
		m *= twoPow500
		m *= (ch[4] * ch[5]) * (ch[6] * ch[7])
		if m == 0 {
			return 0
		}
		bits := math.Float64bits(m)
		exponents += int64(bits >> 52)
		mantissas *= math.Float64frombits((bits & 0x000FFFFFFFFFFFFF) | 0x3FF0000000000000)
	}

	n := float64(len(input))
	return math.Exp2((math.Log2(mantissas)+float64(exponents))/n - (1023.0+500.0)/8.0)
}

// HzToOctsInplace converts frequencies (in Hz) to octave units relative to a
// tuning offset, matching librosa's hz_to_octs: a440 is shifted by `tuning`
// fractional semitones spread over bins_per_octave bins, and C0 (a440/16) is
// octave zero.
func HzToOctsInplace(frequencies []float64, tuning float64, binsPerOctave int) {
	a440 := 440.0 * math.Exp2(tuning/float64(binsPerOctave))
	base := a440 / 16.0
	for i, f := range frequencies {
		frequencies[i] = math.Log2(f / base)
	}
}
