package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// EdgeKind names one of the six directed relations spec.md §3 defines.
type EdgeKind string

const (
	EdgeArtistToAlbum     EdgeKind = "artist_to_album"
	EdgeArtistToSong      EdgeKind = "artist_to_song"
	EdgeAlbumToSong       EdgeKind = "album_to_song"
	EdgePlaylistToSong    EdgeKind = "playlist_to_song"
	EdgeCollectionToSong  EdgeKind = "collection_to_song"
	EdgeAnalysisToSong    EdgeKind = "analysis_to_song"
)

// Edge is a relation between two entities, stored as its own record (with
// its own Thing id) so it can be deleted independently of either endpoint.
type Edge struct {
	ID   Thing
	Kind EdgeKind
	From Thing
	To   Thing
}

const edgeTable = TableEdge

func edgeKey(id Thing) []byte {
	return []byte("edge:" + id.String())
}

func edgeFromIndexKey(from Thing, edgeID Thing) []byte {
	return []byte(fmt.Sprintf("eidx:from:%s:%s", from.String(), edgeID.String()))
}

func edgeFromIndexPrefix(from Thing) []byte {
	return []byte(fmt.Sprintf("eidx:from:%s:", from.String()))
}

func edgeToIndexKey(to Thing, edgeID Thing) []byte {
	return []byte(fmt.Sprintf("eidx:to:%s:%s", to.String(), edgeID.String()))
}

func edgeToIndexPrefix(to Thing) []byte {
	return []byte(fmt.Sprintf("eidx:to:%s:", to.String()))
}

// addEdge creates a new Edge(kind, from, to) record and both of its
// traversal indices within txn.
func addEdge(txn *badger.Txn, kind EdgeKind, from, to Thing) (Edge, error) {
	e := Edge{ID: NewThing(edgeTable), Kind: kind, From: from, To: to}
	if err := putJSON(txn, edgeKey(e.ID), e); err != nil {
		return Edge{}, err
	}
	if err := txn.Set(edgeFromIndexKey(from, e.ID), []byte(e.ID.String())); err != nil {
		return Edge{}, err
	}
	if err := txn.Set(edgeToIndexKey(to, e.ID), []byte(e.ID.String())); err != nil {
		return Edge{}, err
	}
	return e, nil
}

// removeEdge deletes an Edge record and both its traversal indices.
func removeEdge(txn *badger.Txn, e Edge) error {
	if err := deleteKey(txn, edgeFromIndexKey(e.From, e.ID)); err != nil {
		return err
	}
	if err := deleteKey(txn, edgeToIndexKey(e.To, e.ID)); err != nil {
		return err
	}
	return deleteKey(txn, edgeKey(e.ID))
}

// edgesFrom returns every edge whose From endpoint is from, optionally
// filtered to a single kind (pass "" for all kinds).
func edgesFrom(txn *badger.Txn, from Thing, kind EdgeKind) ([]Edge, error) {
	var edges []Edge
	err := scanPrefix(txn, edgeFromIndexPrefix(from), func(_ []byte, value []byte) error {
		id, err := ParseThing(string(value))
		if err != nil {
			return err
		}
		var e Edge
		if err := getJSON(txn, edgeKey(id), &e); err != nil {
			return err
		}
		if kind == "" || e.Kind == kind {
			edges = append(edges, e)
		}
		return nil
	})
	return edges, err
}

// edgesTo returns every edge whose To endpoint is to, optionally filtered to
// a single kind.
func edgesTo(txn *badger.Txn, to Thing, kind EdgeKind) ([]Edge, error) {
	var edges []Edge
	err := scanPrefix(txn, edgeToIndexPrefix(to), func(_ []byte, value []byte) error {
		id, err := ParseThing(string(value))
		if err != nil {
			return err
		}
		var e Edge
		if err := getJSON(txn, edgeKey(id), &e); err != nil {
			return err
		}
		if kind == "" || e.Kind == kind {
			edges = append(edges, e)
		}
		return nil
	})
	return edges, err
}

// outDegree counts edges of kind leaving from.
func outDegree(txn *badger.Txn, from Thing, kind EdgeKind) (int, error) {
	edges, err := edgesFrom(txn, from, kind)
	if err != nil {
		return 0, err
	}
	return len(edges), nil
}
