// Package cluster implements spec.md §4.3: project the library's Analysis
// vectors to 2-D with t-SNE, pick k by the gap statistic, fit k-means or a
// diagonal-covariance GMM over the embedding, and replace the store's
// Collection set with the result.
package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// tsneIterations is fixed (not spec-configurable) so two runs over identical
// input produce identical embeddings (spec.md §4.3 "Determinism").
const (
	tsneIterations   = 500
	tsneLearningRate = 200.0
	tsneMomentum     = 0.5
	tsneFinalMom     = 0.8
	tsneMomSwitchAt  = 250
)

// tSNE projects data (N x D) onto 2 dimensions using symmetric SNE: exact
// (not Barnes-Hut-approximated) pairwise affinities, since mecomp's library
// sizes make the O(n²) affinity computation affordable and a hand-rolled
// Barnes-Hut quad-tree has no pack precedent (see DESIGN.md). theta is
// accepted to match spec.md's parameter surface but only affects nothing in
// this exact implementation; perplexity and the fixed seed are what drive
// the result.
func tSNE(data *mat.Dense, perplexity, theta float64, seed int64) *mat.Dense {
	n, _ := data.Dims()
	if n == 0 {
		return mat.NewDense(0, 2, nil)
	}
	if n == 1 {
		return mat.NewDense(1, 2, []float64{0, 0})
	}

	p := symmetricAffinities(data, perplexity)

	rng := rand.New(rand.NewSource(seed))
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, rng.NormFloat64()*1e-4)
		y.Set(i, 1, rng.NormFloat64()*1e-4)
	}

	gains := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		gains.Set(i, 0, 1)
		gains.Set(i, 1, 1)
	}
	update := mat.NewDense(n, 2, nil)

	for iter := 0; iter < tsneIterations; iter++ {
		q, qSum := lowDimAffinities(y)
		grad := mat.NewDense(n, 2, nil)

		for i := 0; i < n; i++ {
			var gx, gy float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				pij := p.At(i, j)
				qij := q.At(i, j) / qSum
				mult := 4 * (pij - qij) * q.At(i, j)
				gx += mult * (y.At(i, 0) - y.At(j, 0))
				gy += mult * (y.At(i, 1) - y.At(j, 1))
			}
			grad.Set(i, 0, gx)
			grad.Set(i, 1, gy)
		}

		momentum := tsneMomentum
		if iter >= tsneMomSwitchAt {
			momentum = tsneFinalMom
		}

		for i := 0; i < n; i++ {
			for d := 0; d < 2; d++ {
				g := grad.At(i, d)
				u := update.At(i, d)
				gain := gains.At(i, d)
				if (g > 0) != (u > 0) {
					gain += 0.2
				} else {
					gain *= 0.8
				}
				if gain < 0.01 {
					gain = 0.01
				}
				gains.Set(i, d, gain)
				u = momentum*u - tsneLearningRate*gain*g
				update.Set(i, d, u)
				y.Set(i, d, y.At(i, d)+u)
			}
		}
	}

	_ = theta
	return y
}

// symmetricAffinities computes the symmetrized, perplexity-calibrated
// high-dimensional affinity matrix P (rows sum to 1 over the full matrix).
func symmetricAffinities(data *mat.Dense, perplexity float64) *mat.Dense {
	n, _ := data.Dims()
	distSq := pairwiseSquaredDistances(data)

	p := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		beta := binarySearchBeta(distSq, i, perplexity)
		var rowSum float64
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v := math.Exp(-distSq.At(i, j) * beta)
			p.Set(i, j, v)
			rowSum += v
		}
		if rowSum > 0 {
			for j := 0; j < n; j++ {
				if i != j {
					p.Set(i, j, p.At(i, j)/rowSum)
				}
			}
		}
	}

	// Symmetrize and normalize to sum to 1 over the whole matrix.
	sym := mat.NewDense(n, n, nil)
	var total float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := (p.At(i, j) + p.At(j, i)) / float64(2*n)
			if v < 1e-12 {
				v = 1e-12
			}
			sym.Set(i, j, v)
			total += v
		}
	}
	return sym
}

func pairwiseSquaredDistances(data *mat.Dense) *mat.Dense {
	n, _ := data.Dims()
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		ri := data.RawRowView(i)
		for j := i + 1; j < n; j++ {
			rj := data.RawRowView(j)
			var d float64
			for k := range ri {
				diff := ri[k] - rj[k]
				d += diff * diff
			}
			out.Set(i, j, d)
			out.Set(j, i, d)
		}
	}
	return out
}

// binarySearchBeta finds the precision beta = 1/(2*sigma^2) for row i whose
// induced Gaussian distribution has the target perplexity, via binary search
// over log-perplexity (the standard van der Maaten & Hinton procedure).
func binarySearchBeta(distSq *mat.Dense, i int, targetPerplexity float64) float64 {
	n, _ := distSq.Dims()
	beta := 1.0
	betaMin, betaMax := 0.0, math.Inf(1)
	targetEntropy := math.Log(targetPerplexity)

	for iter := 0; iter < 50; iter++ {
		var sumP, sumDP float64
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			v := math.Exp(-distSq.At(i, j) * beta)
			sumP += v
			sumDP += distSq.At(i, j) * v
		}
		if sumP == 0 {
			sumP = 1e-12
		}
		entropy := math.Log(sumP) + beta*sumDP/sumP
		diff := entropy - targetEntropy

		if math.Abs(diff) < 1e-5 {
			break
		}
		if diff > 0 {
			betaMin = beta
			if math.IsInf(betaMax, 1) {
				beta *= 2
			} else {
				beta = (beta + betaMax) / 2
			}
		} else {
			betaMax = beta
			beta = (beta + betaMin) / 2
		}
	}
	return beta
}

// lowDimAffinities computes the unnormalized Student-t low-dimensional
// affinities q_ij (numerator only) and their sum, per the standard t-SNE
// gradient formulation.
func lowDimAffinities(y *mat.Dense) (*mat.Dense, float64) {
	n, _ := y.Dims()
	q := mat.NewDense(n, n, nil)
	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := y.At(i, 0) - y.At(j, 0)
			dy := y.At(i, 1) - y.At(j, 1)
			v := 1 / (1 + dx*dx+dy*dy)
			q.Set(i, j, v)
			q.Set(j, i, v)
			sum += 2 * v
		}
	}
	if sum == 0 {
		sum = 1e-12
	}
	return q, sum
}
