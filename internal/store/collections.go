package store

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func collectionKey(id Thing) []byte { return []byte(id.String()) }

// GetCollection fetches a Collection by id.
func (s *Store) GetCollection(id Thing) (Collection, error) {
	var c Collection
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, collectionKey(id), &c)
	})
	return c, err
}

// ListCollections returns every Collection currently in the library.
func (s *Store) ListCollections() ([]Collection, error) {
	var out []Collection
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TableCollection+":"), func(_ []byte, value []byte) error {
			var c Collection
			if err := jsonUnmarshalInto(value, &c); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
	})
	return out, err
}

// ReplaceCollections atomically deletes every existing Collection (and its
// collection->song edges) and creates one Collection per memberSet, naming
// each by its index (spec.md §4.3 step 5-6: "connect each member song...
// Replace previous Collections atomically"). It is the clustering engine's
// only write path into the store.
func (s *Store) ReplaceCollections(memberSets [][]Thing) ([]Collection, error) {
	var created []Collection
	err := s.db.Update(func(txn *badger.Txn) error {
		var old []Collection
		if err := scanPrefix(txn, []byte(TableCollection+":"), func(_ []byte, value []byte) error {
			var c Collection
			if err := jsonUnmarshalInto(value, &c); err != nil {
				return err
			}
			old = append(old, c)
			return nil
		}); err != nil {
			return err
		}
		for _, c := range old {
			edges, err := edgesFrom(txn, c.ID, EdgeCollectionToSong)
			if err != nil {
				return err
			}
			for _, e := range edges {
				if err := removeEdge(txn, e); err != nil {
					return err
				}
			}
			if err := deleteKey(txn, collectionKey(c.ID)); err != nil {
				return err
			}
		}

		for i, members := range memberSets {
			c := Collection{ID: NewThing(TableCollection), Name: fmt.Sprintf("cluster-%d", i)}
			var runtime time.Duration
			for _, songID := range members {
				var song Song
				if err := getJSON(txn, songKey(songID), &song); err != nil {
					return err
				}
				if _, err := addEdge(txn, EdgeCollectionToSong, c.ID, songID); err != nil {
					return err
				}
				runtime += song.Duration
			}
			c.SongCount = len(members)
			c.Runtime = runtime
			if err := putJSON(txn, collectionKey(c.ID), c); err != nil {
				return err
			}
			created = append(created, c)
		}
		return nil
	})
	return created, err
}

// FreezeCollection converts a Collection into a user Playlist under newName,
// preserving its current song membership and leaving the Collection itself
// untouched (spec.md §3 "freezable into a Playlist").
func (s *Store) FreezeCollection(id Thing, newName string) (Playlist, error) {
	var p Playlist
	err := s.db.Update(func(txn *badger.Txn) error {
		var c Collection
		if err := getJSON(txn, collectionKey(id), &c); err != nil {
			return err
		}
		p = Playlist{ID: NewThing(TablePlaylist), Name: newName, SongCount: c.SongCount, Runtime: c.Runtime}
		if err := putJSON(txn, playlistKey(p.ID), p); err != nil {
			return err
		}

		edges, err := edgesFrom(txn, id, EdgeCollectionToSong)
		if err != nil {
			return err
		}
		for _, e := range edges {
			if _, err := addEdge(txn, EdgePlaylistToSong, p.ID, e.To); err != nil {
				return err
			}
		}
		return nil
	})
	return p, err
}

// recomputeCollectionDerived recomputes Collection.SongCount/Runtime and
// deletes it if left empty by a song deletion (invariant 5). Reclustering
// itself goes through ReplaceCollections, not this path.
func recomputeCollectionDerived(txn *badger.Txn, id Thing) error {
	var c Collection
	if err := getJSON(txn, collectionKey(id), &c); err != nil {
		return err
	}

	edges, err := edgesFrom(txn, id, EdgeCollectionToSong)
	if err != nil {
		return err
	}
	if len(edges) == 0 {
		return deleteKey(txn, collectionKey(id))
	}

	var runtime time.Duration
	for _, e := range edges {
		var song Song
		if err := getJSON(txn, songKey(e.To), &song); err != nil {
			return err
		}
		runtime += song.Duration
	}
	c.SongCount = len(edges)
	c.Runtime = runtime
	return putJSON(txn, collectionKey(c.ID), c)
}
