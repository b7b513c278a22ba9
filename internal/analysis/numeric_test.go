package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.0, Mean([]float64{0, 1, 2, 3, 4}), 1e-9)
	assert.Equal(t, 0.0, Mean(nil))
}

func TestReflectPad(t *testing.T) {
	array := make([]float64, 100_000)
	for i := range array {
		array[i] = float64(i)
	}

	out := ReflectPad(array, 3)
	assert.Equal(t, []float64{3, 2, 1, 0}, out[:4])
	assert.Equal(t, array, out[3:100_003])
	assert.Equal(t, []float64{99998, 99997, 99996}, out[100_003:100_006])
}

func TestGeometricMean(t *testing.T) {
	assert.InDelta(t, 0.0, GeometricMean([]float64{0, 1, 2, 3, 4, 5, 6, 7}), 1e-6)
	assert.InDelta(t, 2.0, GeometricMean([]float64{4, 2, 1, 4, 2, 1, 2, 2}), 1e-4)
	assert.InDelta(t, 3.6680162, GeometricMean([]float64{256, 4, 2, 1, 4, 2, 1, 2}), 1e-4)

	subnormal := []float64{4, 2, 1, 4, 2, 1, 2, 1.0e-40}
	assert.InDelta(t, 1.834008e-5, GeometricMean(subnormal), 1e-4)
}

func TestHzToOctsInplace(t *testing.T) {
	frequencies := []float64{32, 64, 128, 256}
	expected := []float64{0.16864029, 1.16864029, 2.16864029, 3.16864029}

	HzToOctsInplace(frequencies, 0.5, 10)
	for i := range frequencies {
		assert.InDelta(t, expected[i], frequencies[i], 1e-4)
	}
}

func TestNumberCrossings(t *testing.T) {
	chunk := make([]float64, 1024)
	assert.Equal(t, 0, NumberCrossings(chunk))

	one := []float64{-1, 1}
	chunk = make([]float64, 0, 1024)
	for i := 0; i < 512; i++ {
		chunk = append(chunk, one...)
	}
	assert.Equal(t, 1023, NumberCrossings(chunk))
}

func TestSTFTShape(t *testing.T) {
	signal := make([]float64, 4096)
	for i := range signal {
		signal[i] = math.Sin(float64(i) * 0.1)
	}

	out := STFT(signal, 512, 128)
	assert.Len(t, out, 512/2+1)
	assert.NotEmpty(t, out[0])
}
