package store

import "time"

// Song holds all the metadata about one track on disk. Created by a library
// scan, mutated by a metadata re-scan, destroyed when the file disappears or
// the user deletes it. Path is canonicalised and unique (invariant 6).
type Song struct {
	ID           Thing
	Title        string
	Artist       []string
	AlbumArtist  []string
	Album        string
	Genre        []string
	Duration     time.Duration
	Track        *uint16
	Disc         *uint16
	ReleaseYear  *int32
	Extension    string
	Path         string
}

// SongBrief is the non-owning projection of a Song the audio kernel is
// allowed to hold in its queue (spec.md §3 "Ownership").
type SongBrief struct {
	ID          Thing
	Title       string
	Artist      []string
	Album       string
	AlbumArtist []string
	ReleaseYear *int32
	Duration    time.Duration
	Path        string
}

// Brief projects a Song down to the fields a SongBrief is allowed to carry.
func (s Song) Brief() SongBrief {
	return SongBrief{
		ID:          s.ID,
		Title:       s.Title,
		Artist:      s.Artist,
		Album:       s.Album,
		AlbumArtist: s.AlbumArtist,
		ReleaseYear: s.ReleaseYear,
		Duration:    s.Duration,
		Path:        s.Path,
	}
}

// Artist is identified by name (unique); runtime/album/song counts are
// derived from its outgoing edges and maintained in-transaction. Created
// lazily when a song referencing it is added; destroyed when it has neither
// albums nor songs (orphan policy, spec.md §4.2).
type Artist struct {
	ID         Thing
	Name       string
	Runtime    time.Duration
	AlbumCount int
	SongCount  int
}

// Album's identity is (Title, artist set); destroyed when it has no songs.
type Album struct {
	ID          Thing
	Title       string
	Artist      []string
	ReleaseYear *int32
	Runtime     time.Duration
	SongCount   int
	Discs       int
	Genre       []string
}

// Playlist is user-created; songs are added/removed explicitly. A Playlist
// left with no songs by a song removal or deletion is deleted (orphan
// policy, spec.md §4.2); a newly created one starts empty and is kept.
type Playlist struct {
	ID        Thing
	Name      string
	SongCount int
	Runtime   time.Duration
}

// Collection is machine-assigned by the clustering engine; the entire set is
// replaced on every recluster. It can be frozen into a user Playlist.
type Collection struct {
	ID        Thing
	Name      string
	SongCount int
	Runtime   time.Duration
}

// DynamicPlaylist stores a compiled query; its membership is evaluated on
// read and never itself persisted.
type DynamicPlaylist struct {
	ID    Thing
	Name  string
	Query string // canonical storage form of the query AST (see internal/query)
}

// Analysis is the persisted counterpart of analysis.Analysis: 20 64-bit
// floats bound 1:1 to a Song via a directed edge.
type Analysis struct {
	ID       Thing
	Features [20]float64
}
