package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / SampleRate)
	}
	return out
}

func TestZeroCrossingRateBoundaries(t *testing.T) {
	silence := make([]float64, 1024)
	v, err := zeroCrossingRate(silence)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, v, 1e-9)
}

func TestSpectralDescriptorsBounds(t *testing.T) {
	signal := sineWave(440, 22050)
	centroidMean, centroidStd, rolloffMean, rolloffStd, flatnessMean, flatnessStd, err := spectralDescriptors(signal)
	require.NoError(t, err)

	for _, v := range []float64{centroidMean, centroidStd, rolloffMean, rolloffStd, flatnessMean, flatnessStd} {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestSpectralDescriptorsTooShort(t *testing.T) {
	_, _, _, _, _, _, err := spectralDescriptors(make([]float64, 10))
	assert.ErrorIs(t, err, ErrEmptySamples)
}

func TestLoudnessDescriptorSilence(t *testing.T) {
	silence := make([]float64, loudnessChunkSize*4)
	mean, std, err := loudnessDescriptor(silence)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, mean, 1e-9)
	assert.InDelta(t, -1.0, std, 1e-9)
}

func TestTempoDescriptorRange(t *testing.T) {
	signal := sineWave(220, SampleRate*3)
	v, err := tempoDescriptor(signal)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, -1.0)
	assert.LessOrEqual(t, v, 1.0)
}

func TestChromaDescriptorShape(t *testing.T) {
	signal := sineWave(261.63, SampleRate*2)
	chroma, err := chromaDescriptor(signal)
	require.NoError(t, err)
	assert.Len(t, chroma, chromaFeatures)
}
