package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const kmeansMaxIterations = 300

// kMeans clusters the rows of data (N x D) into k clusters via Lloyd's
// algorithm, seeded deterministically (spec.md §4.3 "Determinism") by
// sampling k distinct initial centroids from data itself (k-means++ is
// overkill at the embedding's 2-D scale; plain random init with a fixed
// seed already satisfies the determinism requirement).
func kMeans(data *mat.Dense, k int, seed int64) []int {
	n, d := data.Dims()
	if k > n {
		k = n
	}
	if k <= 0 {
		return make([]int, n)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	centroids := mat.NewDense(k, d, nil)
	for c := 0; c < k; c++ {
		centroids.SetRow(c, data.RawRowView(perm[c]))
	}

	labels := make([]int, n)
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i := 0; i < n; i++ {
			best, bestDist := 0, math.Inf(1)
			row := data.RawRowView(i)
			for c := 0; c < k; c++ {
				dist := squaredDist(row, centroids.RawRowView(c))
				if dist < bestDist {
					best, bestDist = c, dist
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		sums := mat.NewDense(k, d, nil)
		counts := make([]int, k)
		for i := 0; i < n; i++ {
			c := labels[i]
			counts[c]++
			row := data.RawRowView(i)
			for j := 0; j < d; j++ {
				sums.Set(c, j, sums.At(c, j)+row[j])
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := 0; j < d; j++ {
				centroids.Set(c, j, sums.At(c, j)/float64(counts[c]))
			}
		}

		if !changed && iter > 0 {
			break
		}
	}
	return labels
}

func squaredDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// withinClusterDispersion computes the gap-statistic's W_k: the sum, over
// clusters, of the sum of squared pairwise distances within the cluster
// divided by twice the cluster's size (Tibshirani, Walther & Hastie 2001).
func withinClusterDispersion(data *mat.Dense, labels []int, k int) float64 {
	n, _ := data.Dims()
	var wk float64
	for c := 0; c < k; c++ {
		var members []int
		for i := 0; i < n; i++ {
			if labels[i] == c {
				members = append(members, i)
			}
		}
		if len(members) < 2 {
			continue
		}
		var sum float64
		for _, i := range members {
			for _, j := range members {
				sum += squaredDist(data.RawRowView(i), data.RawRowView(j))
			}
		}
		wk += sum / float64(2*len(members))
	}
	return wk
}
