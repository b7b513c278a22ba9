// Package analysis implements the acoustic feature-extraction pipeline:
// decode -> down-mix -> resample -> a fixed-order 20-dimensional feature
// vector, plus the numerical kernels the descriptors share.
package analysis

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// NumberFeatures is the length of an Analysis vector.
const NumberFeatures = 20

// Feature vector slot indices, in the fixed order spec.md §4.1 mandates.
const (
	IndexTempo = iota
	IndexZCR
	IndexMeanSpectralCentroid
	IndexStdDeviationSpectralCentroid
	IndexMeanSpectralRolloff
	IndexStdDeviationSpectralRolloff
	IndexMeanSpectralFlatness
	IndexStdDeviationSpectralFlatness
	IndexMeanLoudness
	IndexStdDeviationLoudness
	IndexChroma1
	IndexChroma2
	IndexChroma3
	IndexChroma4
	IndexChroma5
	IndexChroma6
	IndexChroma7
	IndexChroma8
	IndexChroma9
	IndexChroma10
)

// Analysis is a track's 20-dimensional feature vector, in the fixed order
// [tempo, zcr, centroid_μ, centroid_σ, rolloff_μ, rolloff_σ, flatness_μ,
// flatness_σ, loudness_μ, loudness_σ, chroma_1..10].
type Analysis [NumberFeatures]float64

// largestWindow is the minimum sample count every descriptor needs; Analyze
// fails fast with ErrEmptySamples below this.
func largestWindow() int {
	largest := tempoWindowSize
	for _, w := range []int{chromaWindowSize, windowSize, loudnessChunkSize} {
		if w > largest {
			largest = w
		}
	}
	return largest
}

// Analyze runs the five descriptor families over audio.Samples in parallel
// and assembles the fixed-order feature vector, mirroring
// Analysis::from_samples's std::thread::scope fan-out.
func Analyze(audio ResampledAudio) (Analysis, error) {
	var out Analysis

	if len(audio.Samples) < largestWindow() {
		return out, errors.Wrapf(ErrEmptySamples, "%s", audio.Path)
	}

	type result struct {
		tempo                               float64
		zcr                                 float64
		centroidMean, centroidStd           float64
		rolloffMean, rolloffStd             float64
		flatnessMean, flatnessStd           float64
		loudnessMean, loudnessStd           float64
		chroma                              []float64
	}

	var (
		res    result
		errs   [5]error
		wg     sync.WaitGroup
	)
	wg.Add(5)

	go func() {
		defer wg.Done()
		res.tempo, errs[0] = tempoDescriptor(audio.Samples)
	}()
	go func() {
		defer wg.Done()
		res.chroma, errs[1] = chromaDescriptor(audio.Samples)
	}()
	go func() {
		defer wg.Done()
		res.centroidMean, res.centroidStd, res.rolloffMean, res.rolloffStd, res.flatnessMean, res.flatnessStd, errs[2] = spectralDescriptors(audio.Samples)
	}()
	go func() {
		defer wg.Done()
		res.zcr, errs[3] = zeroCrossingRate(audio.Samples)
	}()
	go func() {
		defer wg.Done()
		res.loudnessMean, res.loudnessStd, errs[4] = loudnessDescriptor(audio.Samples)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return out, errors.Wrapf(err, "%s", audio.Path)
		}
	}

	out[IndexTempo] = res.tempo
	out[IndexZCR] = res.zcr
	out[IndexMeanSpectralCentroid] = res.centroidMean
	out[IndexStdDeviationSpectralCentroid] = res.centroidStd
	out[IndexMeanSpectralRolloff] = res.rolloffMean
	out[IndexStdDeviationSpectralRolloff] = res.rolloffStd
	out[IndexMeanSpectralFlatness] = res.flatnessMean
	out[IndexStdDeviationSpectralFlatness] = res.flatnessStd
	out[IndexMeanLoudness] = res.loudnessMean
	out[IndexStdDeviationLoudness] = res.loudnessStd
	for i, c := range res.chroma {
		out[IndexChroma1+i] = c
	}

	return out, nil
}

// AnalyzePath decodes and analyzes the track at path in one call.
func AnalyzePath(path string) (Analysis, error) {
	audio, err := Decode(path)
	if err != nil {
		return Analysis{}, err
	}
	return Analyze(audio)
}

// PathResult pairs a path with the outcome of analyzing it, for
// AnalyzePaths' completion-order stream.
type PathResult struct {
	Path     string
	Analysis Analysis
	Err      error
}

// AnalyzePaths analyzes paths across parallelism worker goroutines (clamped
// to [1, runtime.NumCPU()] and to len(paths)), streaming results on the
// returned channel in completion order. It mirrors
// Decoder::analyze_paths_with_cores's chunked-thread-pool shape, adapted to
// Go's goroutine/channel idiom (muserv's procUpdates worker-pool pattern)
// instead of Rust's chunk-per-thread model, since a worker-pool degrades
// more gracefully when individual files take wildly different times to
// decode.
func AnalyzePaths(ctx context.Context, paths []string, parallelism int) <-chan PathResult {
	out := make(chan PathResult)

	cores := runtime.NumCPU()
	if parallelism > 0 && parallelism < cores {
		cores = parallelism
	}
	if cores > len(paths) {
		cores = len(paths)
	}
	if cores < 1 {
		cores = 1
	}

	go func() {
		defer close(out)
		if len(paths) == 0 {
			return
		}

		work := make(chan string)
		var wg sync.WaitGroup
		wg.Add(cores)
		for i := 0; i < cores; i++ {
			go func() {
				defer wg.Done()
				for path := range work {
					analysis, err := AnalyzePath(path)
					select {
					case out <- PathResult{Path: path, Analysis: analysis, Err: err}:
					case <-ctx.Done():
						return
					}
				}
			}()
		}

	feed:
		for _, p := range paths {
			select {
			case work <- p:
			case <-ctx.Done():
				break feed
			}
		}
		close(work)
		wg.Wait()
	}()

	return out
}
