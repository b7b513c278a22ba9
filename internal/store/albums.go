package store

import (
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func albumKey(id Thing) []byte { return []byte(id.String()) }

// getOrCreateAlbum finds the Album identified by (title, artist set) - its
// identity per spec.md §3 - or creates and indexes it. Lazily created the
// same way getOrCreateArtist is: the first song that references it brings it
// into existence.
func getOrCreateAlbum(s *Store, txn *badger.Txn, title string, artists []string, releaseYear *int32, genres []string) (Album, error) {
	wanted := sortedCopy(artists)

	var found *Album
	err := scanPrefix(txn, []byte(TableAlbum+":"), func(_ []byte, value []byte) error {
		if found != nil {
			return nil
		}
		var a Album
		if err := jsonUnmarshalInto(value, &a); err != nil {
			return err
		}
		if a.Title == title && stringSliceEqual(sortedCopy(a.Artist), wanted) {
			found = &a
		}
		return nil
	})
	if err != nil {
		return Album{}, err
	}
	if found != nil {
		return *found, nil
	}

	album := Album{
		ID:          NewThing(TableAlbum),
		Title:       title,
		Artist:      artists,
		ReleaseYear: releaseYear,
		Genre:       genres,
	}
	if err := putJSON(txn, albumKey(album.ID), album); err != nil {
		return Album{}, err
	}
	if err := s.index.indexAlbum(album); err != nil {
		return Album{}, err
	}
	return album, nil
}

// GetAlbum fetches an Album by id.
func (s *Store) GetAlbum(id Thing) (Album, error) {
	var a Album
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, albumKey(id), &a)
	})
	return a, err
}

// recomputeAlbumDerived recomputes Album.SongCount/Runtime/Discs/Genre from
// its outgoing album->song edges (spec.md §4.2 "Derived-field policy") and
// deletes the Album if it is left orphaned (no songs; spec.md §4.2 "Orphan
// policy", invariant 5).
func recomputeAlbumDerived(s *Store, txn *badger.Txn, albumID Thing) error {
	var album Album
	if err := getJSON(txn, albumKey(albumID), &album); err != nil {
		return err
	}

	edges, err := edgesFrom(txn, albumID, EdgeAlbumToSong)
	if err != nil {
		return err
	}

	if len(edges) == 0 {
		return deleteAlbum(s, txn, album)
	}

	var (
		runtime   time.Duration
		discs     int
		genreSeen = map[string]bool{}
		genres    []string
	)
	for _, e := range edges {
		var song Song
		if err := getJSON(txn, songKey(e.To), &song); err != nil {
			return err
		}
		runtime += song.Duration
		if song.Disc != nil && int(*song.Disc) > discs {
			discs = int(*song.Disc)
		}
		for _, g := range song.Genre {
			if !genreSeen[g] {
				genreSeen[g] = true
				genres = append(genres, g)
			}
		}
	}
	if discs == 0 {
		discs = 1
	}

	album.SongCount = len(edges)
	album.Runtime = runtime
	album.Discs = discs
	album.Genre = genres
	return putJSON(txn, albumKey(album.ID), album)
}

// deleteAlbum removes album, its remaining incoming artist->album edges, and
// its search-index entry.
func deleteAlbum(s *Store, txn *badger.Txn, album Album) error {
	incoming, err := edgesTo(txn, album.ID, EdgeArtistToAlbum)
	if err != nil {
		return err
	}
	var touched []Thing
	for _, e := range incoming {
		touched = append(touched, e.From)
		if err := removeEdge(txn, e); err != nil {
			return err
		}
	}
	if err := deleteKey(txn, albumKey(album.ID)); err != nil {
		return err
	}
	if err := s.index.deleteAlbum(album.ID); err != nil {
		return err
	}
	for _, artistID := range touched {
		if err := recomputeArtistDerived(s, txn, artistID); err != nil {
			return err
		}
	}
	return nil
}

// ListAlbums returns every Album in the library.
func (s *Store) ListAlbums() ([]Album, error) {
	return s.allAlbums()
}

// allAlbums returns every Album in the library.
func (s *Store) allAlbums() ([]Album, error) {
	var out []Album
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TableAlbum+":"), func(_ []byte, value []byte) error {
			var a Album
			if err := jsonUnmarshalInto(value, &a); err != nil {
				return err
			}
			out = append(out, a)
			return nil
		})
	})
	return out, err
}

// albumHasDuplicateTrackNumbers reports whether two or more of albumID's
// songs share the same non-nil track number.
func (s *Store) albumHasDuplicateTrackNumbers(albumID Thing) (bool, error) {
	seen := map[uint16]bool{}
	dup := false
	err := s.db.View(func(txn *badger.Txn) error {
		edges, err := edgesFrom(txn, albumID, EdgeAlbumToSong)
		if err != nil {
			return err
		}
		for _, e := range edges {
			var song Song
			if err := getJSON(txn, songKey(e.To), &song); err != nil {
				return err
			}
			if song.Track == nil {
				continue
			}
			if seen[*song.Track] {
				dup = true
			}
			seen[*song.Track] = true
		}
		return nil
	})
	return dup, err
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
