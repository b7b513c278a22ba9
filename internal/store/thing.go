// Package store implements the graph-structured library: typed entities
// (Song, Artist, Album, Playlist, Collection, DynamicPlaylist, Analysis),
// directed relation edges as first-class records, orphan GC, full-text
// search, and vector nearest-neighbor lookup, all on an embedded KV engine.
package store

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Table names, used both as Thing prefixes and as Badger key prefixes.
const (
	TableSong            = "song"
	TableArtist          = "artist"
	TableAlbum           = "album"
	TablePlaylist        = "playlist"
	TableCollection      = "collection"
	TableDynamicPlaylist = "dynamic"
	TableAnalysis        = "analysis"
	// TableEdge is the internal table for relation-edge records; it has no
	// spec.md-visible entity type, it exists only so edges get their own
	// deletable Thing identity (spec.md §3 "Relations").
	TableEdge = "edge"
)

var knownTables = map[string]bool{
	TableSong:            true,
	TableArtist:          true,
	TableAlbum:           true,
	TablePlaylist:        true,
	TableCollection:      true,
	TableDynamicPlaylist: true,
	TableAnalysis:        true,
	TableEdge:            true,
}

// Thing is a table-qualified record identifier, serialized as
// "<table>:<ULID>" (mirrors the original project's SurrealDB Thing type,
// minus SurrealDB itself).
type Thing struct {
	Table string
	ID    string
}

// NewThing mints a new Thing in table with a freshly generated ULID.
func NewThing(table string) Thing {
	return Thing{Table: table, ID: ulid.Make().String()}
}

// String renders the Thing in its canonical "<table>:<id>" form.
func (t Thing) String() string {
	return fmt.Sprintf("%s:%s", t.Table, t.ID)
}

// IsZero reports whether t is the zero Thing (used as a "no value" sentinel
// in optional reference fields).
func (t Thing) IsZero() bool {
	return t.Table == "" && t.ID == ""
}

// ParseThing parses a "<table>:<26-char ULID>" string, ignoring any text
// after a second colon. Returns an error if the table name is unknown or the
// id isn't a 26-character uppercase-alphanumeric ULID body.
func ParseThing(s string) (Thing, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 3)
	if len(parts) < 2 {
		return Thing{}, fmt.Errorf("not a valid Thing: %q", s)
	}
	table, id := parts[0], parts[1]

	if !knownTables[table] {
		return Thing{}, fmt.Errorf("unknown table %q in Thing %q", table, s)
	}
	if len(id) != 26 || !isULIDBody(id) {
		return Thing{}, fmt.Errorf("invalid id %q in Thing %q", id, s)
	}
	return Thing{Table: table, ID: id}, nil
}

func isULIDBody(s string) bool {
	for _, c := range s {
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// key returns the Badger key this Thing is stored under.
func (t Thing) key() []byte {
	return []byte(t.String())
}
