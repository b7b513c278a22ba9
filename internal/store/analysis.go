package store

import (
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

func analysisKey(id Thing) []byte { return []byte(id.String()) }

// CreateAnalysis binds a 20-float feature vector to songID via an
// analysis->song edge (invariant 1: exactly one outgoing edge per Analysis,
// at most one incoming per Song). Rejects a second Analysis for a Song
// that already has one.
func (s *Store) CreateAnalysis(songID Thing, features [20]float64) (Analysis, error) {
	a := Analysis{ID: NewThing(TableAnalysis), Features: features}

	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := edgesTo(txn, songID, EdgeAnalysisToSong)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errors.Wrapf(merrors.ErrDuplicateName, "song %s already has an analysis", songID)
		}
		if err := putJSON(txn, analysisKey(a.ID), a); err != nil {
			return err
		}
		_, err = addEdge(txn, EdgeAnalysisToSong, a.ID, songID)
		return err
	})
	if err != nil {
		return Analysis{}, err
	}

	s.cacheMu.Lock()
	s.analysisCache[a.ID] = a
	s.analysisSongOf[a.ID] = songID
	s.cacheMu.Unlock()
	return a, nil
}

// GetAnalysis fetches an Analysis by its own id.
func (s *Store) GetAnalysis(id Thing) (Analysis, error) {
	var a Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, analysisKey(id), &a)
	})
	return a, err
}

// GetAnalysisForSong returns the Analysis bound to songID, if any
// ("Analysis.read_for_song", spec.md Testable Property 1).
func (s *Store) GetAnalysisForSong(songID Thing) (Analysis, error) {
	var a Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		edges, err := edgesTo(txn, songID, EdgeAnalysisToSong)
		if err != nil {
			return err
		}
		if len(edges) == 0 {
			return wrapNotFound("no analysis bound to song %s", songID)
		}
		return getJSON(txn, analysisKey(edges[0].From), &a)
	})
	return a, err
}

// AllAnalyses returns every Analysis currently stored, for the clustering
// engine's matrix assembly step (spec.md §4.3 step 1).
func (s *Store) AllAnalyses() ([]Analysis, error) {
	var out []Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TableAnalysis+":"), func(_ []byte, value []byte) error {
			var a Analysis
			if err := jsonUnmarshalInto(value, &a); err != nil {
				return err
			}
			out = append(out, a)
			return nil
		})
	})
	return out, err
}

// SongIDForAnalysis returns the Song an Analysis is bound to.
func (s *Store) SongIDForAnalysis(analysisID Thing) (Thing, error) {
	var song Thing
	err := s.db.View(func(txn *badger.Txn) error {
		edges, err := edgesFrom(txn, analysisID, EdgeAnalysisToSong)
		if err != nil {
			return err
		}
		if len(edges) == 0 {
			return wrapNotFound("analysis %s has no bound song", analysisID)
		}
		song = edges[0].To
		return nil
	})
	return song, err
}

// NearestNeighbors returns the n Analyses with the smallest Euclidean
// distance to anchorID's feature vector, excluding the anchor itself
// (spec.md §4.2). NearestNeighbors(id, 0) == [].
func (s *Store) NearestNeighbors(anchorID Thing, n int) ([]Analysis, error) {
	if n <= 0 {
		return nil, nil
	}
	anchor, err := s.GetAnalysis(anchorID)
	if err != nil {
		return nil, err
	}
	all, err := s.AllAnalyses()
	if err != nil {
		return nil, err
	}
	return nearestTo(anchor.Features[:], all, map[Thing]bool{anchorID: true}, n), nil
}

// NearestNeighborsToMany queries with the mean feature vector of ids,
// excluding all of ids from the result (spec.md §4.2).
// NearestNeighborsToMany([], n) == [].
func (s *Store) NearestNeighborsToMany(ids []Thing, n int) ([]Analysis, error) {
	if n <= 0 || len(ids) == 0 {
		return nil, nil
	}

	mean := make([]float64, 20)
	for _, id := range ids {
		a, err := s.GetAnalysis(id)
		if err != nil {
			return nil, err
		}
		floats.Add(mean, a.Features[:])
	}
	floats.Scale(1/float64(len(ids)), mean)

	all, err := s.AllAnalyses()
	if err != nil {
		return nil, err
	}
	excluded := make(map[Thing]bool, len(ids))
	for _, id := range ids {
		excluded[id] = true
	}
	return nearestTo(mean, all, excluded, n), nil
}

// nearestTo ranks candidates by Euclidean distance to query, dropping any
// id in excluded, and returns the nearest n.
func nearestTo(query []float64, candidates []Analysis, excluded map[Thing]bool, n int) []Analysis {
	type scored struct {
		a    Analysis
		dist float64
	}
	var ranked []scored
	for _, c := range candidates {
		if excluded[c.ID] {
			continue
		}
		ranked = append(ranked, scored{a: c, dist: floats.Distance(query, c.Features[:], 2)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].dist < ranked[j].dist
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]Analysis, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].a
	}
	return out
}

// deleteAnalysis removes analysis and its index/cache entries. Called when
// its bound song is deleted (invariant 1 would otherwise be violated by a
// dangling, edge-less Analysis).
func deleteAnalysis(s *Store, txn *badger.Txn, id Thing) error {
	if err := deleteKey(txn, analysisKey(id)); err != nil {
		return err
	}
	s.cacheMu.Lock()
	delete(s.analysisCache, id)
	delete(s.analysisSongOf, id)
	s.cacheMu.Unlock()
	return nil
}
