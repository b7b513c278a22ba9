package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResampleCubicNoOp(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5}
	out := ResampleCubic(samples, SampleRate, SampleRate)
	assert.Equal(t, samples, out)
}

func TestResampleCubicLength(t *testing.T) {
	samples := make([]float64, 44100)
	out := ResampleCubic(samples, 44100, 22050)
	assert.InDelta(t, 22050, len(out), 2)
}

func TestResampleCubicUpsample(t *testing.T) {
	samples := make([]float64, 22050)
	out := ResampleCubic(samples, 22050, 44100)
	assert.InDelta(t, 44100, len(out), 2)
}
