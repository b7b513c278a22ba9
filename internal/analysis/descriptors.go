package analysis

import (
	"math"

	"github.com/pkg/errors"
)

// windowSize/hopSize are the STFT parameters shared by the spectral
// centroid/rolloff/flatness descriptors, taken from the original project's
// SpectralDesc::WINDOW_SIZE / HOP_SIZE.
const (
	windowSize = 512
	hopSize    = windowSize / 4
)

// ErrEmptySamples is returned by a descriptor when the sample buffer is
// shorter than the window its analysis needs.
var ErrEmptySamples = errors.New("sample buffer too short for this descriptor")

var spectralNorm = normalizer{min: 0, max: SampleRate / 2}
var flatnessNorm = normalizer{min: 0, max: 1}
var zcrNorm = normalizer{min: 0, max: 1}

// binToFreq converts an STFT bin index to its centre frequency in Hz.
func binToFreq(bin float64, sampleRate, windowLen int) float64 {
	return bin * float64(sampleRate) / float64(windowLen)
}

// spectralDescriptors computes the mean/σ of spectral centroid, rolloff
// (95% energy point) and flatness over the STFT of samples, normalized per
// spec.md's table: centroid/rolloff to [0, SR/2], flatness to [0, 1].
func spectralDescriptors(samples []float64) (centroidMean, centroidStd, rolloffMean, rolloffStd, flatnessMean, flatnessStd float64, err error) {
	if len(samples) <= windowSize {
		err = ErrEmptySamples
		return
	}

	spectrum := STFT(samples, windowSize, hopSize)
	nBins := len(spectrum)
	nFrames := len(spectrum[0])

	centroids := make([]float64, 0, nFrames)
	rolloffs := make([]float64, 0, nFrames)
	flatnesses := make([]float64, 0, nFrames)

	frame := make([]float64, nBins)
	for f := 0; f < nFrames; f++ {
		var energySum, weightedSum float64
		for b := 0; b < nBins; b++ {
			mag := spectrum[b][f]
			frame[b] = mag
			energySum += mag
			weightedSum += mag * binToFreq(float64(b), SampleRate, windowSize)
		}

		if energySum > 0 {
			centroids = append(centroids, weightedSum/energySum)
		} else {
			centroids = append(centroids, 0)
		}

		rolloffs = append(rolloffs, rolloffBin(frame, energySum))
		flatnesses = append(flatnesses, flatnessOf(frame))
	}

	centroidMean = spectralNorm.normalize(Mean(centroids))
	centroidStd = spectralNorm.normalize(stdDev(centroids))
	rolloffMean = spectralNorm.normalize(Mean(rolloffs))
	rolloffStd = spectralNorm.normalize(stdDev(rolloffs))
	flatnessMean = flatnessNorm.normalize(Mean(flatnesses))
	flatnessStd = flatnessNorm.normalize(stdDev(flatnesses))
	return
}

// rolloffBin finds the bin frequency below which 95% of the frame's spectral
// energy lies, clamped to the Nyquist bin as the original aubio-derived code
// does ("until aubio PR #318 is in").
func rolloffBin(frame []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	threshold := 0.95 * total
	var acc float64
	for b, mag := range frame {
		acc += mag
		if acc >= threshold {
			return binToFreq(float64(b), SampleRate, windowSize)
		}
	}
	return binToFreq(float64(len(frame)-1), SampleRate, windowSize)
}

// flatnessOf is the ratio of the geometric mean to the arithmetic mean of a
// magnitude spectrum frame (0 if the geometric mean underflows to 0). Both
// means are taken over the frame's leading bins in a multiple of 8, the only
// lengths GeometricMean accepts; for a 512-sample window's 257 bins that
// leaves out the Nyquist bin.
func flatnessOf(frame []float64) float64 {
	body := frame[:len(frame)-len(frame)%8]
	geo := GeometricMean(body)
	if geo == 0 {
		return 0
	}
	return geo / Mean(body)
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// zeroCrossingRate returns the normalized crossing rate over the whole
// signal, matching ZeroCrossingRateDesc::get_value.
func zeroCrossingRate(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptySamples
	}
	rate := float64(NumberCrossings(samples)) / float64(len(samples))
	return zcrNorm.normalize(rate), nil
}

// loudnessChunkSize is the fixed window the loudness descriptor computes RMS
// energy over; spec.md leaves the exact size extractor-defined, so it's
// pinned to one STFT window's worth of samples to share the same granularity
// as the spectral descriptors.
const loudnessChunkSize = windowSize

// loudness RMS range used for normalization: full-scale digital audio peaks
// at amplitude 1, giving an RMS dBFS floor of -96dB (16-bit noise floor) to
// 0dB as the practical descriptor range.
const (
	loudnessMinDB = -96.0
	loudnessMaxDB = 0.0
)

var loudnessNorm = normalizer{min: loudnessMinDB, max: loudnessMaxDB}

// loudnessStdNorm maps the σ of per-chunk dB values onto [-1, 1]: values
// confined to [loudnessMinDB, loudnessMaxDB] have a σ between 0 and half
// that range.
var loudnessStdNorm = normalizer{min: 0, max: (loudnessMaxDB - loudnessMinDB) / 2}

// loudnessDescriptor computes mean/σ of per-chunk RMS loudness in dBFS,
// normalized to [-1, 1].
func loudnessDescriptor(samples []float64) (mean, std float64, err error) {
	if len(samples) < loudnessChunkSize {
		err = ErrEmptySamples
		return
	}

	values := make([]float64, 0, len(samples)/loudnessChunkSize)
	for start := 0; start+loudnessChunkSize <= len(samples); start += loudnessChunkSize {
		chunk := samples[start : start+loudnessChunkSize]
		var sumSq float64
		for _, s := range chunk {
			sumSq += s * s
		}
		rms := math.Sqrt(sumSq / float64(len(chunk)))
		db := loudnessMinDB
		if rms > 0 {
			db = 20 * math.Log10(rms)
			if db < loudnessMinDB {
				db = loudnessMinDB
			}
		}
		values = append(values, db)
	}

	mean = loudnessNorm.normalize(Mean(values))
	std = loudnessStdNorm.normalize(stdDev(values))
	return
}
