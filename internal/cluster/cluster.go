package cluster

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/AnthonyMichaelTDM/mecomp/internal/analysis"
	"github.com/AnthonyMichaelTDM/mecomp/internal/config"
	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// deterministicSeed is fixed so two reclusters over identical inputs produce
// identical Collections (spec.md §4.3 "Determinism").
const deterministicSeed = 0xC0FFEE

// tsnePerplexity and tsneTheta are the spec-mandated t-SNE parameters
// (spec.md §4.3: "embedding size 2, perplexity 61, approx threshold 0.5").
const (
	tsnePerplexity = 61
	tsneTheta      = 0.5
)

// Engine runs the recluster operation against a library store, serializing
// concurrent attempts behind an in_progress flag (spec.md §5 "the daemon
// serialises long-running library operations ... by an in_progress flag per
// operation").
type Engine struct {
	store *store.Store
	log   *logrus.Entry

	mu         sync.Mutex
	inProgress bool
}

// New returns a clustering Engine bound to s.
func New(s *store.Store, log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{store: s, log: log.WithField("component", "cluster")}
}

// InProgress reports whether a recluster is currently running.
func (e *Engine) InProgress() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inProgress
}

// Recluster implements spec.md §4.3: fetch every Analysis, project to 2-D
// with t-SNE, pick k in [2, maxK] by the gap statistic, fit the chosen
// algorithm, and atomically replace the store's Collection set. At most one
// recluster runs at a time (spec.md §5); a concurrent call returns
// merrors.ErrReclusterInProgress immediately. A failed recluster leaves the
// existing Collections untouched (spec.md §4.3 "Failure").
func (e *Engine) Recluster(maxK, referenceDatasets int, algorithm config.ClusterAlgorithm) ([]store.Collection, error) {
	e.mu.Lock()
	if e.inProgress {
		e.mu.Unlock()
		return nil, merrors.ErrReclusterInProgress
	}
	e.inProgress = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inProgress = false
		e.mu.Unlock()
	}()

	analyses, err := e.store.AllAnalyses()
	if err != nil {
		return nil, errors.Wrap(err, "fetching analyses")
	}
	if len(analyses) < 2 {
		return nil, merrors.ErrInsufficientAnalyses
	}

	data := mat.NewDense(len(analyses), analysis.NumberFeatures, nil)
	for i, a := range analyses {
		data.SetRow(i, a.Features[:])
	}

	e.log.WithField("n", len(analyses)).Debug("projecting analyses to 2-D with t-SNE")
	embedding := tSNE(data, tsnePerplexity, tsneTheta, deterministicSeed)

	k, err := selectK(embedding, maxK, referenceDatasets, deterministicSeed)
	if err != nil {
		return nil, err
	}
	e.log.WithField("k", k).Debug("selected cluster count via gap statistic")

	var labels []int
	switch algorithm {
	case config.AlgorithmGMM:
		labels = gmm(embedding, k, deterministicSeed)
	default:
		labels = kMeans(embedding, k, deterministicSeed)
	}

	memberSets := make([][]store.Thing, k)
	for i, label := range labels {
		songID, err := e.store.SongIDForAnalysis(analyses[i].ID)
		if err != nil {
			return nil, err
		}
		memberSets[label] = append(memberSets[label], songID)
	}
	// Drop any empty cluster slots (can happen when k-means/GMM collapses a
	// component) rather than creating an empty Collection.
	var nonEmpty [][]store.Thing
	for _, members := range memberSets {
		if len(members) > 0 {
			nonEmpty = append(nonEmpty, members)
		}
	}

	return e.store.ReplaceCollections(nonEmpty)
}
