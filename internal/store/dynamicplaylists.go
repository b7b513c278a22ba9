package store

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

func dynamicKey(id Thing) []byte { return []byte(id.String()) }

// CreateDynamicPlaylist stores a named, compiled query AST in its canonical
// string form (spec.md §3 "DynamicPlaylist"; the AST itself lives in
// internal/query - the store only ever sees its serialised form, per
// spec.md §9 "Query AST vs stored string").
func (s *Store) CreateDynamicPlaylist(name, query string) (DynamicPlaylist, error) {
	dp := DynamicPlaylist{ID: NewThing(TableDynamicPlaylist), Name: name, Query: query}
	err := s.db.Update(func(txn *badger.Txn) error {
		if dup, err := findDynamicByName(txn, name); err == nil && !dup.IsZero() {
			return errors.Wrapf(merrors.ErrDuplicateName, "dynamic playlist %q already exists", name)
		}
		return putJSON(txn, dynamicKey(dp.ID), dp)
	})
	return dp, err
}

func findDynamicByName(txn *badger.Txn, name string) (Thing, error) {
	var found Thing
	err := scanPrefix(txn, []byte(TableDynamicPlaylist+":"), func(_ []byte, value []byte) error {
		if !found.IsZero() {
			return nil
		}
		var dp DynamicPlaylist
		if err := jsonUnmarshalInto(value, &dp); err != nil {
			return err
		}
		if dp.Name == name {
			found = dp.ID
		}
		return nil
	})
	return found, err
}

// GetDynamicPlaylist fetches a DynamicPlaylist by id.
func (s *Store) GetDynamicPlaylist(id Thing) (DynamicPlaylist, error) {
	var dp DynamicPlaylist
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, dynamicKey(id), &dp)
	})
	return dp, err
}

// ListDynamicPlaylists returns every stored DynamicPlaylist.
func (s *Store) ListDynamicPlaylists() ([]DynamicPlaylist, error) {
	var out []DynamicPlaylist
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TableDynamicPlaylist+":"), func(_ []byte, value []byte) error {
			var dp DynamicPlaylist
			if err := jsonUnmarshalInto(value, &dp); err != nil {
				return err
			}
			out = append(out, dp)
			return nil
		})
	})
	return out, err
}

// UpdateDynamicPlaylist replaces the stored query string for id.
func (s *Store) UpdateDynamicPlaylist(id Thing, query string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var dp DynamicPlaylist
		if err := getJSON(txn, dynamicKey(id), &dp); err != nil {
			return err
		}
		dp.Query = query
		return putJSON(txn, dynamicKey(id), dp)
	})
}

// DeleteDynamicPlaylist removes a DynamicPlaylist. It has no edges to clean
// up: its "contents" are never stored (spec.md §3).
func (s *Store) DeleteDynamicPlaylist(id Thing) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return deleteKey(txn, dynamicKey(id))
	})
}
