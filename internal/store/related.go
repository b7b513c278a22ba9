package store

import "github.com/dgraph-io/badger/v4"

// songsOfEdge returns the Songs reachable from id via a single hop of kind.
// It backs the exported per-entity "get-related songs" accessors the RPC
// facade exposes (spec.md §6 "per-entity get/get-related").
func (s *Store) songsOfEdge(id Thing, kind EdgeKind) ([]Song, error) {
	var songs []Song
	err := s.db.View(func(txn *badger.Txn) error {
		edges, err := edgesFrom(txn, id, kind)
		if err != nil {
			return err
		}
		for _, e := range edges {
			var song Song
			if err := getJSON(txn, songKey(e.To), &song); err != nil {
				return err
			}
			songs = append(songs, song)
		}
		return nil
	})
	return songs, err
}

// SongsOfAlbum returns the songs on album.
func (s *Store) SongsOfAlbum(albumID Thing) ([]Song, error) {
	return s.songsOfEdge(albumID, EdgeAlbumToSong)
}

// SongsOfPlaylist returns the songs in a user Playlist, in no particular
// persisted order (the Playlist itself carries no ordering field beyond
// insertion, spec.md §3).
func (s *Store) SongsOfPlaylist(playlistID Thing) ([]Song, error) {
	return s.songsOfEdge(playlistID, EdgePlaylistToSong)
}

// SongsOfCollection returns the songs the clustering engine assigned to
// collectionID.
func (s *Store) SongsOfCollection(collectionID Thing) ([]Song, error) {
	return s.songsOfEdge(collectionID, EdgeCollectionToSong)
}
