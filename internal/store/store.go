package store

import (
	"encoding/json"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

// Store is the library's embedded-KV-backed record graph: Song/Artist/
// Album/Playlist/Collection/DynamicPlaylist/Analysis entities, directed
// relation edges as first-class records, and a full-text search index over
// them. It exclusively owns every persistent record (spec.md §3
// "Ownership").
type Store struct {
	db    *badger.DB
	index *searchIndex
	log   *logrus.Entry

	// cacheMu protects the in-process Analysis bookkeeping kept alongside
	// Badger: each Analysis and the Song it is bound to, loaded at Open and
	// kept current by CreateAnalysis and deleteAnalysis. Nearest-neighbor
	// queries do not read it; they scan Badger directly (AllAnalyses).
	cacheMu        sync.RWMutex
	analysisCache  map[Thing]Analysis
	analysisSongOf map[Thing]Thing
}

// Open opens (or creates) the library database at dir, mirroring how
// muserv's content package is handed a directory at startup, generalized
// from an in-memory object tree to a durable embedded KV store.
func Open(dir string, log *logrus.Entry) (*Store, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogAdapter{log})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening library database at %s", dir)
	}

	idx, err := openSearchIndex(dir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:             db,
		index:          idx,
		log:            log,
		analysisCache:  map[Thing]Analysis{},
		analysisSongOf: map[Thing]Thing{},
	}
	if err := s.loadAnalysisCache(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// loadAnalysisCache populates the in-process Analysis bookkeeping from
// Badger at startup.
func (s *Store) loadAnalysisCache() error {
	return s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TableAnalysis+":"), func(_ []byte, value []byte) error {
			var a Analysis
			if err := jsonUnmarshalInto(value, &a); err != nil {
				return err
			}
			s.analysisCache[a.ID] = a
			if edges, err := edgesFrom(txn, a.ID, EdgeAnalysisToSong); err == nil && len(edges) > 0 {
				s.analysisSongOf[a.ID] = edges[0].To
			}
			return nil
		})
	})
}

// Close releases the database and search index.
func (s *Store) Close() error {
	if err := s.index.Close(); err != nil {
		return err
	}
	return s.db.Close()
}

// badgerLogAdapter routes Badger's internal logging through logrus, the
// teacher's logging library (internal/server/log.go).
type badgerLogAdapter struct{ log *logrus.Entry }

func (l badgerLogAdapter) Errorf(f string, v ...interface{})   { l.log.Errorf(f, v...) }
func (l badgerLogAdapter) Warningf(f string, v ...interface{}) { l.log.Warnf(f, v...) }
func (l badgerLogAdapter) Infof(f string, v ...interface{})    { l.log.Infof(f, v...) }
func (l badgerLogAdapter) Debugf(f string, v ...interface{})   { l.log.Debugf(f, v...) }

// putJSON marshals v and writes it under key within txn.
func putJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling record")
	}
	return txn.Set(key, data)
}

// getJSON reads the record at key within txn and unmarshals it into v.
// Returns merrors.ErrNotFound (wrapped) if the key doesn't exist.
func getJSON(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return errors.Wrapf(merrors.ErrNotFound, "%s", key)
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// deleteKey deletes key within txn, ignoring a not-found (idempotent
// delete).
func deleteKey(txn *badger.Txn, key []byte) error {
	err := txn.Delete(key)
	if err != nil && err != badger.ErrKeyNotFound {
		return err
	}
	return nil
}

// scanPrefix iterates every key with the given prefix within txn, calling fn
// with each item's value. Iteration stops if fn returns an error.
func scanPrefix(txn *badger.Txn, prefix []byte, fn func(key, value []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}

func wrapNotFound(format string, a ...interface{}) error {
	return errors.Wrapf(merrors.ErrNotFound, format, a...)
}

// jsonUnmarshalInto unmarshals data (already read out of a txn.Item) into v.
func jsonUnmarshalInto(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
