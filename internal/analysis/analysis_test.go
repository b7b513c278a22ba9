package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeProducesBoundedVector(t *testing.T) {
	samples := make([]float64, SampleRate*5)
	for i := range samples {
		samples[i] = math.Sin(2*math.Pi*220*float64(i)/SampleRate) * 0.5
	}

	out, err := Analyze(ResampledAudio{Path: "sine.wav", Samples: samples})
	require.NoError(t, err)

	for i := 0; i < NumberFeatures; i++ {
		if i >= IndexChroma1 {
			continue // chroma is left in its native (unnormalised) range
		}
		assert.GreaterOrEqual(t, out[i], -1.0001, "feature %d", i)
		assert.LessOrEqual(t, out[i], 1.0001, "feature %d", i)
	}
}

func TestAnalyzeEmptySamples(t *testing.T) {
	_, err := Analyze(ResampledAudio{Path: "empty.wav", Samples: make([]float64, 10)})
	assert.ErrorIs(t, err, ErrEmptySamples)
}

func TestAnalyzePathsEmpty(t *testing.T) {
	ch := AnalyzePaths(context.Background(), nil, 4)
	_, ok := <-ch
	assert.False(t, ok)
}
