package cluster

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const gmmMaxIterations = 100

// diagonalGaussian is a 2-D Gaussian component with a diagonal covariance,
// matching the "(diagonal-covariance) GMM" SPEC_FULL calls for - full
// covariance offers little for a 2-D embedding and costs a matrix inverse
// per component per iteration.
type diagonalGaussian struct {
	mean [2]float64
	varX float64
	varY float64
	mix  float64
}

func (g diagonalGaussian) density(x, y float64) float64 {
	if g.varX <= 0 {
		g.varX = 1e-6
	}
	if g.varY <= 0 {
		g.varY = 1e-6
	}
	dx, dy := x-g.mean[0], y-g.mean[1]
	norm := 1 / (2 * math.Pi * math.Sqrt(g.varX*g.varY))
	return norm * math.Exp(-0.5*(dx*dx/g.varX+dy*dy/g.varY))
}

// gmm fits a diagonal-covariance Gaussian mixture with k components over
// data's rows via EM, initialized from a k-means pass (seeded
// deterministically, spec.md §4.3 "Determinism"), and returns each row's
// maximum-responsibility component index.
func gmm(data *mat.Dense, k int, seed int64) []int {
	n, _ := data.Dims()
	if k > n {
		k = n
	}
	if k <= 0 {
		return make([]int, n)
	}

	init := kMeans(data, k, seed)
	comps := make([]diagonalGaussian, k)
	for c := 0; c < k; c++ {
		var sx, sy float64
		var count int
		for i := 0; i < n; i++ {
			if init[i] == c {
				sx += data.At(i, 0)
				sy += data.At(i, 1)
				count++
			}
		}
		if count == 0 {
			count = 1
		}
		comps[c] = diagonalGaussian{mean: [2]float64{sx / float64(count), sy / float64(count)}, varX: 1, varY: 1, mix: 1 / float64(k)}
	}

	resp := mat.NewDense(n, k, nil)
	for iter := 0; iter < gmmMaxIterations; iter++ {
		// E-step.
		for i := 0; i < n; i++ {
			x, y := data.At(i, 0), data.At(i, 1)
			var total float64
			row := make([]float64, k)
			for c := 0; c < k; c++ {
				v := comps[c].mix * comps[c].density(x, y)
				row[c] = v
				total += v
			}
			if total == 0 {
				total = 1e-12
			}
			for c := 0; c < k; c++ {
				resp.Set(i, c, row[c]/total)
			}
		}

		// M-step.
		for c := 0; c < k; c++ {
			var nk, sx, sy float64
			for i := 0; i < n; i++ {
				r := resp.At(i, c)
				nk += r
				sx += r * data.At(i, 0)
				sy += r * data.At(i, 1)
			}
			if nk < 1e-9 {
				continue
			}
			meanX, meanY := sx/nk, sy/nk
			var vx, vy float64
			for i := 0; i < n; i++ {
				r := resp.At(i, c)
				dx := data.At(i, 0) - meanX
				dy := data.At(i, 1) - meanY
				vx += r * dx * dx
				vy += r * dy * dy
			}
			comps[c] = diagonalGaussian{
				mean: [2]float64{meanX, meanY},
				varX: vx / nk,
				varY: vy / nk,
				mix:  nk / float64(n),
			}
		}
	}

	labels := make([]int, n)
	for i := 0; i < n; i++ {
		best, bestResp := 0, -1.0
		for c := 0; c < k; c++ {
			if r := resp.At(i, c); r > bestResp {
				best, bestResp = c, r
			}
		}
		labels[i] = best
	}
	return labels
}
