package analysis

import "math"

// tempoWindowSize/tempoHopSize drive the onset-envelope STFT for BPM
// estimation; a longer window than the timbral descriptors is needed to
// resolve the autocorrelation lags corresponding to musically useful tempi.
const (
	tempoWindowSize = 1024
	tempoHopSize    = 512
)

var tempoNorm = normalizer{min: tempoMinBPM, max: tempoMaxBPM}

const (
	tempoMinBPM = 40.0
	tempoMaxBPM = 250.0
)

// tempoDescriptor estimates the track's tempo in BPM via spectral-flux onset
// detection followed by autocorrelation of the onset envelope, then
// normalizes the estimate to [-1, 1] over [tempoMinBPM, tempoMaxBPM].
func tempoDescriptor(samples []float64) (float64, error) {
	if len(samples) <= tempoWindowSize {
		return 0, ErrEmptySamples
	}

	spectrum := STFT(samples, tempoWindowSize, tempoHopSize)
	nBins := len(spectrum)
	nFrames := len(spectrum[0])
	if nFrames < 2 {
		return 0, ErrEmptySamples
	}

	onset := make([]float64, nFrames)
	for f := 1; f < nFrames; f++ {
		var flux float64
		for b := 0; b < nBins; b++ {
			d := spectrum[b][f] - spectrum[b][f-1]
			if d > 0 {
				flux += d
			}
		}
		onset[f] = flux
	}

	mean := Mean(onset)
	for i := range onset {
		onset[i] -= mean
	}

	frameRate := float64(SampleRate) / float64(tempoHopSize)
	minLag := int(frameRate * 60.0 / tempoMaxBPM)
	maxLag := int(frameRate * 60.0 / tempoMinBPM)
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}
	if minLag < 1 {
		minLag = 1
	}
	if minLag >= maxLag {
		return tempoNorm.normalize((tempoMinBPM + tempoMaxBPM) / 2), nil
	}

	bestLag := minLag
	bestScore := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		var score float64
		for i := 0; i+lag < len(onset); i++ {
			score += onset[i] * onset[i+lag]
		}
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	bpm := frameRate * 60.0 / float64(bestLag)
	if bpm < tempoMinBPM {
		bpm = tempoMinBPM
	}
	if bpm > tempoMaxBPM {
		bpm = tempoMaxBPM
	}
	return tempoNorm.normalize(bpm), nil
}
