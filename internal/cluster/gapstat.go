package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

// selectK picks k in [2, maxK] by the gap statistic (Tibshirani, Walther &
// Hastie 2001): compare the within-cluster dispersion of data's own k-means
// fit against referenceDatasets uniform-random reference sets drawn from
// data's bounding box, and pick the smallest k whose gap is within one
// standard error of the next k's gap (spec.md §4.3). When no k below maxK
// meets that criterion, maxK itself is returned. ErrClusteringNotConverged
// is returned only when maxK, after clamping to data's row count, is below 2.
func selectK(data *mat.Dense, maxK, referenceDatasets int, seed int64) (int, error) {
	n, d := data.Dims()
	if maxK > n {
		maxK = n
	}
	if maxK < 2 {
		return 0, merrors.ErrClusteringNotConverged
	}

	mins := make([]float64, d)
	maxs := make([]float64, d)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, data)
		mins[j] = floatMin(col)
		maxs[j] = floatMax(col)
	}

	rng := rand.New(rand.NewSource(seed))

	gaps := make([]float64, maxK+1)   // gaps[k]
	stderrs := make([]float64, maxK+1)
	for k := 1; k <= maxK; k++ {
		labels := kMeans(data, k, seed)
		logWk := math.Log(withinClusterDispersion(data, labels, k) + 1e-12)

		refLogWk := make([]float64, referenceDatasets)
		for b := 0; b < referenceDatasets; b++ {
			ref := mat.NewDense(n, d, nil)
			for i := 0; i < n; i++ {
				for j := 0; j < d; j++ {
					ref.Set(i, j, mins[j]+rng.Float64()*(maxs[j]-mins[j]))
				}
			}
			refLabels := kMeans(ref, k, seed+int64(b)+1)
			refLogWk[b] = math.Log(withinClusterDispersion(ref, refLabels, k) + 1e-12)
		}

		meanRef := stat.Mean(refLogWk, nil)
		gaps[k] = meanRef - logWk

		sdk := stat.StdDev(refLogWk, nil)
		stderrs[k] = sdk * math.Sqrt(1+1/float64(referenceDatasets))
	}

	for k := 2; k <= maxK; k++ {
		if k == maxK {
			return k, nil
		}
		if gaps[k] >= gaps[k+1]-stderrs[k+1] {
			return k, nil
		}
	}
	return 0, merrors.ErrClusteringNotConverged
}

func floatMin(xs []float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		if x < m {
			m = x
		}
	}
	return m
}

func floatMax(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
