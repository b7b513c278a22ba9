package store

import "github.com/dgraph-io/badger/v4"

// recomputeDerivedAndGC dispatches to the derived-field recompute (and, if
// now orphaned, delete) routine for id's table. Called for each "from"
// endpoint touched by a removed edge (spec.md §4.2 "Derived-field policy" /
// "Orphan policy"); an endpoint may repeat, and an id already deleted earlier
// in the same transaction (for example an artist removed by deleteAlbum's
// cascade) is skipped.
func recomputeDerivedAndGC(s *Store, txn *badger.Txn, id Thing) error {
	if _, err := txn.Get(id.key()); err == badger.ErrKeyNotFound {
		return nil
	}
	switch id.Table {
	case TableAlbum:
		return recomputeAlbumDerived(s, txn, id)
	case TableArtist:
		return recomputeArtistDerived(s, txn, id)
	case TablePlaylist:
		return recomputePlaylistDerived(s, txn, id)
	case TableCollection:
		return recomputeCollectionDerived(txn, id)
	case TableAnalysis:
		return deleteAnalysis(s, txn, id)
	default:
		return nil
	}
}
