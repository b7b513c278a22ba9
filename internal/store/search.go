package store

import (
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/pkg/errors"
)

// searchDoc is the flattened document indexed for free-text search over
// "song.title | album.title | artist.name" (spec.md §4.2).
type searchDoc struct {
	Kind string // "song" | "album" | "artist"
	Text string
}

// searchIndex is the Bleve-backed full-text index kept alongside the Badger
// store. It is updated within the same logical operation as the triggering
// write (spec.md §4.2 "Derived-field policy" - "no background reconciler" -
// applied here to the search index as well, not just derived counts).
type searchIndex struct {
	idx bleve.Index
}

// openSearchIndex opens (or creates) the Bleve index at <dir>/fts.bleve.
func openSearchIndex(dir string) (*searchIndex, error) {
	path := filepath.Join(dir, "fts.bleve")

	idx, err := bleve.Open(path)
	if err == nil {
		return &searchIndex{idx: idx}, nil
	}

	mapping := bleve.NewIndexMapping()
	idx, err = bleve.New(path, mapping)
	if err != nil {
		return nil, errors.Wrapf(err, "creating search index at %s", path)
	}
	return &searchIndex{idx: idx}, nil
}

// Close releases the index.
func (si *searchIndex) Close() error {
	if si == nil || si.idx == nil {
		return nil
	}
	return si.idx.Close()
}

func (si *searchIndex) indexSong(s Song) error {
	return si.idx.Index(s.ID.String(), searchDoc{Kind: "song", Text: s.Title})
}

func (si *searchIndex) deleteSong(id Thing) error {
	return si.idx.Delete(id.String())
}

func (si *searchIndex) indexAlbum(a Album) error {
	return si.idx.Index(a.ID.String(), searchDoc{Kind: "album", Text: a.Title})
}

func (si *searchIndex) deleteAlbum(id Thing) error {
	return si.idx.Delete(id.String())
}

func (si *searchIndex) indexArtist(a Artist) error {
	return si.idx.Index(a.ID.String(), searchDoc{Kind: "artist", Text: a.Name})
}

func (si *searchIndex) deleteArtist(id Thing) error {
	return si.idx.Delete(id.String())
}

// SearchHit is one ranked match from Search.
type SearchHit struct {
	ID    Thing
	Kind  string
	Score float64
}

// Search runs a free-form query against song/album/artist text (spec.md
// §4.2), returning up to limit hits ranked by Bleve's relevance score.
func (s *Store) Search(query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 25
	}
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	res, err := s.index.idx.Search(req)
	if err != nil {
		return nil, errors.Wrap(err, "full-text search")
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := ParseThing(h.ID)
		if err != nil {
			continue
		}
		hits = append(hits, SearchHit{ID: id, Kind: id.Table, Score: h.Score})
	}
	return hits, nil
}
