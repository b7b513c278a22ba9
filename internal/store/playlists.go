package store

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

func playlistKey(id Thing) []byte { return []byte(id.String()) }

// CreatePlaylist creates a new, empty, user-named Playlist. Names are unique
// (spec.md §3).
func (s *Store) CreatePlaylist(name string) (Playlist, error) {
	p := Playlist{ID: NewThing(TablePlaylist), Name: name}
	err := s.db.Update(func(txn *badger.Txn) error {
		if dup, err := findPlaylistByName(txn, name); err == nil && !dup.IsZero() {
			return errors.Wrapf(merrors.ErrDuplicateName, "playlist %q already exists", name)
		}
		return putJSON(txn, playlistKey(p.ID), p)
	})
	return p, err
}

func findPlaylistByName(txn *badger.Txn, name string) (Thing, error) {
	var found Thing
	err := scanPrefix(txn, []byte(TablePlaylist+":"), func(_ []byte, value []byte) error {
		if !found.IsZero() {
			return nil
		}
		var p Playlist
		if err := jsonUnmarshalInto(value, &p); err != nil {
			return err
		}
		if p.Name == name {
			found = p.ID
		}
		return nil
	})
	return found, err
}

// GetPlaylist fetches a Playlist by id.
func (s *Store) GetPlaylist(id Thing) (Playlist, error) {
	var p Playlist
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, playlistKey(id), &p)
	})
	return p, err
}

// ListPlaylists returns every Playlist in the library.
func (s *Store) ListPlaylists() ([]Playlist, error) {
	var out []Playlist
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TablePlaylist+":"), func(_ []byte, value []byte) error {
			var p Playlist
			if err := jsonUnmarshalInto(value, &p); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

// RenamePlaylist changes a Playlist's name, rejecting a name collision.
func (s *Store) RenamePlaylist(id Thing, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if dup, err := findPlaylistByName(txn, name); err == nil && !dup.IsZero() && dup != id {
			return errors.Wrapf(merrors.ErrDuplicateName, "playlist %q already exists", name)
		}
		var p Playlist
		if err := getJSON(txn, playlistKey(id), &p); err != nil {
			return err
		}
		p.Name = name
		return putJSON(txn, playlistKey(id), p)
	})
}

// DeletePlaylist removes playlist and all of its playlist->song edges. Songs
// themselves are untouched (a Playlist never owns a Song).
func (s *Store) DeletePlaylist(id Thing) error {
	return s.db.Update(func(txn *badger.Txn) error {
		edges, err := edgesFrom(txn, id, EdgePlaylistToSong)
		if err != nil {
			return err
		}
		for _, e := range edges {
			if err := removeEdge(txn, e); err != nil {
				return err
			}
		}
		return deleteKey(txn, playlistKey(id))
	})
}

// ClonePlaylist duplicates playlist under a new name, copying its current
// song membership.
func (s *Store) ClonePlaylist(id Thing, newName string) (Playlist, error) {
	var clone Playlist
	err := s.db.Update(func(txn *badger.Txn) error {
		var src Playlist
		if err := getJSON(txn, playlistKey(id), &src); err != nil {
			return err
		}
		if dup, err := findPlaylistByName(txn, newName); err == nil && !dup.IsZero() {
			return errors.Wrapf(merrors.ErrDuplicateName, "playlist %q already exists", newName)
		}

		clone = Playlist{ID: NewThing(TablePlaylist), Name: newName, SongCount: src.SongCount, Runtime: src.Runtime}
		if err := putJSON(txn, playlistKey(clone.ID), clone); err != nil {
			return err
		}

		edges, err := edgesFrom(txn, id, EdgePlaylistToSong)
		if err != nil {
			return err
		}
		for _, e := range edges {
			if _, err := addEdge(txn, EdgePlaylistToSong, clone.ID, e.To); err != nil {
				return err
			}
		}
		return nil
	})
	return clone, err
}

// AddSongToPlaylist appends songID to playlist, then recomputes its derived
// fields.
func (s *Store) AddSongToPlaylist(playlistID, songID Thing) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := getOrFetchSong(txn, songID); err != nil {
			return err
		}
		if _, err := addEdge(txn, EdgePlaylistToSong, playlistID, songID); err != nil {
			return err
		}
		return recomputePlaylistDerived(s, txn, playlistID)
	})
}

// RemoveSongFromPlaylist removes the playlist->song edge to songID, then
// recomputes (and, if now empty, deletes) the playlist (invariant 5).
func (s *Store) RemoveSongFromPlaylist(playlistID, songID Thing) error {
	return s.db.Update(func(txn *badger.Txn) error {
		edges, err := edgesFrom(txn, playlistID, EdgePlaylistToSong)
		if err != nil {
			return err
		}
		for _, e := range edges {
			if e.To == songID {
				if err := removeEdge(txn, e); err != nil {
					return err
				}
				break
			}
		}
		return recomputePlaylistDerived(s, txn, playlistID)
	})
}

func getOrFetchSong(txn *badger.Txn, id Thing) (Song, error) {
	var song Song
	err := getJSON(txn, songKey(id), &song)
	return song, err
}

// recomputePlaylistDerived recomputes Playlist.SongCount/Runtime from its
// outgoing playlist->song edges and deletes it if left empty (spec.md §4.2
// "Orphan policy", invariant 5: "No orphaned ... Playlists/Collections
// persist past the transaction that orphaned them").
func recomputePlaylistDerived(s *Store, txn *badger.Txn, id Thing) error {
	var p Playlist
	if err := getJSON(txn, playlistKey(id), &p); err != nil {
		return err
	}

	edges, err := edgesFrom(txn, id, EdgePlaylistToSong)
	if err != nil {
		return err
	}
	if len(edges) == 0 {
		return deleteKey(txn, playlistKey(id))
	}

	var runtime time.Duration
	for _, e := range edges {
		var song Song
		if err := getJSON(txn, songKey(e.To), &song); err != nil {
			return err
		}
		runtime += song.Duration
	}
	p.SongCount = len(edges)
	p.Runtime = runtime
	return putJSON(txn, playlistKey(p.ID), p)
}
