package store

import (
	"time"

	"github.com/dgraph-io/badger/v4"
)

func artistKey(id Thing) []byte { return []byte(id.String()) }

// getOrCreateArtist finds the Artist by name (unique identity, spec.md §3)
// or creates and indexes it.
func getOrCreateArtist(s *Store, txn *badger.Txn, name string) (Artist, error) {
	var found *Artist
	err := scanPrefix(txn, []byte(TableArtist+":"), func(_ []byte, value []byte) error {
		if found != nil {
			return nil
		}
		var a Artist
		if err := jsonUnmarshalInto(value, &a); err != nil {
			return err
		}
		if a.Name == name {
			found = &a
		}
		return nil
	})
	if err != nil {
		return Artist{}, err
	}
	if found != nil {
		return *found, nil
	}

	artist := Artist{ID: NewThing(TableArtist), Name: name}
	if err := putJSON(txn, artistKey(artist.ID), artist); err != nil {
		return Artist{}, err
	}
	if err := s.index.indexArtist(artist); err != nil {
		return Artist{}, err
	}
	return artist, nil
}

// GetArtist fetches an Artist by id.
func (s *Store) GetArtist(id Thing) (Artist, error) {
	var a Artist
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, artistKey(id), &a)
	})
	return a, err
}

// getOrCreateArtistAlbumEdge creates the artist->album edge if one doesn't
// already exist between the two, maintaining invariant 2's symmetric
// counterpart for albums.
func getOrCreateArtistAlbumEdge(txn *badger.Txn, artistID, albumID Thing) (Edge, error) {
	existing, err := edgesFrom(txn, artistID, EdgeArtistToAlbum)
	if err != nil {
		return Edge{}, err
	}
	for _, e := range existing {
		if e.To == albumID {
			return e, nil
		}
	}
	return addEdge(txn, EdgeArtistToAlbum, artistID, albumID)
}

// recomputeArtistDerived recomputes Artist.SongCount/AlbumCount/Runtime over
// the union of direct artist->song edges and two-hop artist->album->song
// edges (spec.md Testable Property 2), and deletes the Artist if it is left
// orphaned: no albums AND no songs (spec.md §3 "Artist", §4.2 "Orphan
// policy").
func recomputeArtistDerived(s *Store, txn *badger.Txn, artistID Thing) error {
	var artist Artist
	if err := getJSON(txn, artistKey(artistID), &artist); err != nil {
		return err
	}

	albumEdges, err := edgesFrom(txn, artistID, EdgeArtistToAlbum)
	if err != nil {
		return err
	}

	seen := map[Thing]bool{}
	var runtime time.Duration

	directEdges, err := edgesFrom(txn, artistID, EdgeArtistToSong)
	if err != nil {
		return err
	}
	for _, e := range directEdges {
		if seen[e.To] {
			continue
		}
		seen[e.To] = true
		var song Song
		if err := getJSON(txn, songKey(e.To), &song); err != nil {
			return err
		}
		runtime += song.Duration
	}
	for _, ae := range albumEdges {
		songEdges, err := edgesFrom(txn, ae.To, EdgeAlbumToSong)
		if err != nil {
			return err
		}
		for _, se := range songEdges {
			if seen[se.To] {
				continue
			}
			seen[se.To] = true
			var song Song
			if err := getJSON(txn, songKey(se.To), &song); err != nil {
				return err
			}
			runtime += song.Duration
		}
	}

	if len(albumEdges) == 0 && len(seen) == 0 {
		return deleteArtist(s, txn, artist)
	}

	artist.SongCount = len(seen)
	artist.AlbumCount = len(albumEdges)
	artist.Runtime = runtime
	return putJSON(txn, artistKey(artist.ID), artist)
}

// ListArtists returns every Artist in the library.
func (s *Store) ListArtists() ([]Artist, error) {
	return s.allArtists()
}

// allArtists returns every Artist in the library.
func (s *Store) allArtists() ([]Artist, error) {
	var out []Artist
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TableArtist+":"), func(_ []byte, value []byte) error {
			var a Artist
			if err := jsonUnmarshalInto(value, &a); err != nil {
				return err
			}
			out = append(out, a)
			return nil
		})
	})
	return out, err
}

// deleteArtist removes artist and its search-index entry. Its outgoing
// edges are assumed already removed by the caller (DeleteSong/deleteAlbum
// remove the specific edge that triggered the recompute).
func deleteArtist(s *Store, txn *badger.Txn, artist Artist) error {
	if err := deleteKey(txn, artistKey(artist.ID)); err != nil {
		return err
	}
	return s.index.deleteArtist(artist.ID)
}
