package store

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

func songKey(id Thing) []byte { return []byte(id.String()) }

// CreateSong inserts song (generating its ID if unset), wires up
// artist->song and album->song edges (creating the Artist/Album records
// lazily if they don't already exist by name/title), and maintains derived
// counts on those records, all within one transaction (spec.md invariants
// 2-4). Duplicate paths are rejected with ErrDuplicateName.
func (s *Store) CreateSong(song Song) (Song, error) {
	if song.ID.IsZero() {
		song.ID = NewThing(TableSong)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if dup, err := findSongByPath(txn, song.Path); err == nil && !dup.IsZero() {
			return errors.Wrapf(merrors.ErrDuplicateName, "song at path %s already exists", song.Path)
		}

		if err := putJSON(txn, songKey(song.ID), song); err != nil {
			return err
		}
		if err := s.index.indexSong(song); err != nil {
			return err
		}

		album, err := getOrCreateAlbum(s, txn, song.Album, song.AlbumArtist, song.ReleaseYear, song.Genre)
		if err != nil {
			return err
		}
		if _, err := addEdge(txn, EdgeAlbumToSong, album.ID, song.ID); err != nil {
			return err
		}
		if err := recomputeAlbumDerived(s, txn, album.ID); err != nil {
			return err
		}

		for _, name := range song.Artist {
			artist, err := getOrCreateArtist(s, txn, name)
			if err != nil {
				return err
			}
			if _, err := addEdge(txn, EdgeArtistToSong, artist.ID, song.ID); err != nil {
				return err
			}
			if _, err := getOrCreateArtistAlbumEdge(txn, artist.ID, album.ID); err != nil {
				return err
			}
			if err := recomputeArtistDerived(s, txn, artist.ID); err != nil {
				return err
			}
		}

		return nil
	})
	return song, err
}

// GetSong fetches a Song by id.
func (s *Store) GetSong(id Thing) (Song, error) {
	var song Song
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, songKey(id), &song)
	})
	return song, err
}

// SongByPath looks up the Song whose canonical Path equals path, used to
// re-resolve playlist entries read back from an M3U file (spec.md §6
// "Playlist export/import").
func (s *Store) SongByPath(path string) (Song, error) {
	var song Song
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := findSongByPath(txn, path)
		if err != nil {
			return err
		}
		if id.IsZero() {
			return errors.Wrapf(merrors.ErrNotFound, "no song with path %q", path)
		}
		return getJSON(txn, songKey(id), &song)
	})
	return song, err
}

// findSongByPath scans for a song whose Path matches, returning the zero
// Thing if none is found. Linear in library size; it backs both
// CreateSong's duplicate-path check and the SongByPath lookup.
func findSongByPath(txn *badger.Txn, path string) (Thing, error) {
	var found Thing
	err := scanPrefix(txn, []byte(TableSong+":"), func(_ []byte, value []byte) error {
		if !found.IsZero() {
			return nil
		}
		var s Song
		if err := jsonUnmarshalInto(value, &s); err != nil {
			return err
		}
		if s.Path == path {
			found = s.ID
		}
		return nil
	})
	return found, err
}

// DeleteSong removes song and every edge touching it, then runs the orphan
// GC over the Artists/Album it was connected to (spec.md §4.2 "Orphan
// policy").
func (s *Store) DeleteSong(id Thing) error {
	return s.db.Update(func(txn *badger.Txn) error {
		incoming, err := edgesTo(txn, id, "")
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

		if err := deleteKey(txn, songKey(id)); err != nil {
			return err
		}
		if err := s.index.deleteSong(id); err != nil {
			return err
		}

		for _, t := range touched {
			if err := recomputeDerivedAndGC(s, txn, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateSong replaces an existing Song's metadata (title/artists/album/
// genre/track/disc/year), rewiring its artist->song and album->song edges
// to match the new metadata and recomputing every touched Artist/Album's
// derived fields (spec.md §3 "Song ... mutated by metadata re-scan").
func (s *Store) UpdateSong(updated Song) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var old Song
		if err := getJSON(txn, songKey(updated.ID), &old); err != nil {
			return err
		}

		oldEdges, err := edgesTo(txn, updated.ID, EdgeAlbumToSong)
		if err != nil {
			return err
		}
		oldEdges2, err := edgesTo(txn, updated.ID, EdgeArtistToSong)
		if err != nil {
			return err
		}

		var touched []Thing
		for _, e := range append(oldEdges, oldEdges2...) {
			touched = append(touched, e.From)
			if err := removeEdge(txn, e); err != nil {
				return err
			}
		}

		if err := putJSON(txn, songKey(updated.ID), updated); err != nil {
			return err
		}
		if err := s.index.indexSong(updated); err != nil {
			return err
		}

		album, err := getOrCreateAlbum(s, txn, updated.Album, updated.AlbumArtist, updated.ReleaseYear, updated.Genre)
		if err != nil {
			return err
		}
		if _, err := addEdge(txn, EdgeAlbumToSong, album.ID, updated.ID); err != nil {
			return err
		}
		touched = append(touched, album.ID)

		for _, name := range updated.Artist {
			artist, err := getOrCreateArtist(s, txn, name)
			if err != nil {
				return err
			}
			if _, err := addEdge(txn, EdgeArtistToSong, artist.ID, updated.ID); err != nil {
				return err
			}
			if _, err := getOrCreateArtistAlbumEdge(txn, artist.ID, album.ID); err != nil {
				return err
			}
			touched = append(touched, artist.ID)
		}

		for _, t := range touched {
			if err := recomputeDerivedAndGC(s, txn, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// AllSongs returns every Song in the library. Used by the dynamic-playlist
// query engine (which evaluates predicates over the full Song set on every
// read, spec.md §4.4) and by diagnostic reports.
func (s *Store) AllSongs() ([]Song, error) {
	var out []Song
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TableSong+":"), func(_ []byte, value []byte) error {
			var song Song
			if err := jsonUnmarshalInto(value, &song); err != nil {
				return err
			}
			out = append(out, song)
			return nil
		})
	})
	return out, err
}

// SongsOfArtist returns the union of the direct artist->song edges and the
// two-hop artist->album->song edges (spec.md §4.2 "songs of artist").
func (s *Store) SongsOfArtist(artistID Thing) ([]Song, error) {
	var songs []Song
	seen := map[string]bool{}

	err := s.db.View(func(txn *badger.Txn) error {
		direct, err := edgesFrom(txn, artistID, EdgeArtistToSong)
		if err != nil {
			return err
		}
		for _, e := range direct {
			if seen[e.To.String()] {
				continue
			}
			seen[e.To.String()] = true
			var song Song
			if err := getJSON(txn, songKey(e.To), &song); err != nil {
				return err
			}
			songs = append(songs, song)
		}

		albumEdges, err := edgesFrom(txn, artistID, EdgeArtistToAlbum)
		if err != nil {
			return err
		}
		for _, ae := range albumEdges {
			songEdges, err := edgesFrom(txn, ae.To, EdgeAlbumToSong)
			if err != nil {
				return err
			}
			for _, se := range songEdges {
				if seen[se.To.String()] {
					continue
				}
				seen[se.To.String()] = true
				var song Song
				if err := getJSON(txn, songKey(se.To), &song); err != nil {
					return err
				}
				songs = append(songs, song)
			}
		}
		return nil
	})
	return songs, err
}
