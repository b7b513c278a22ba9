package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func twoBlobData() *mat.Dense {
	// Two well-separated blobs of 2-D points.
	rows := [][]float64{
		{0, 0}, {0.1, 0.1}, {-0.1, 0.1}, {0.1, -0.1},
		{10, 10}, {10.1, 10.1}, {9.9, 10.1}, {10.1, 9.9},
	}
	m := mat.NewDense(len(rows), 2, nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

func TestKMeansDeterministic(t *testing.T) {
	data := twoBlobData()
	a := kMeans(data, 2, 42)
	b := kMeans(data, 2, 42)
	assert.Equal(t, a, b, "same seed must produce the same labels")

	// The first four points should share a label distinct from the last four.
	assert.Equal(t, a[0], a[1])
	assert.Equal(t, a[0], a[2])
	assert.Equal(t, a[0], a[3])
	assert.Equal(t, a[4], a[5])
	assert.NotEqual(t, a[0], a[4])
}

func TestSelectKFindsTwoBlobs(t *testing.T) {
	data := twoBlobData()
	k, err := selectK(data, 5, 20, 42)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, k, 2)
}

func TestGMMDeterministic(t *testing.T) {
	data := twoBlobData()
	a := gmm(data, 2, 42)
	b := gmm(data, 2, 42)
	assert.Equal(t, a, b)
}

func TestTSNEShape(t *testing.T) {
	data := twoBlobData()
	y := tSNE(data, 3, 0.5, 42)
	n, d := y.Dims()
	assert.Equal(t, 8, n)
	assert.Equal(t, 2, d)
}
