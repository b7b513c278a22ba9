// Package playlistio implements the two on-disk exchange formats spec.md §6
// names: extended M3U for ordinary playlists and a two-column CSV for
// dynamic playlists. Import of M3U is grounded on
// _teacher_ref/content/playlist.go's use of github.com/ushis/m3u
// (m3u.Parse(io.Reader) -> []m3u.Track{Path, Title}); export is hand-written
// since the pack only exercises m3u's read side and the extended tags
// (#PLAYLIST, #EXTGENRE, #EXTALB) spec.md §6 requires are outside what that
// library parses or writes.
package playlistio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/ushis/m3u"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

const fieldJoin = "; "

// Entry is one playlist item as read back from an M3U file: its Path line
// and the display text of its #EXTINF line as Title.
type Entry struct {
	Path  string
	Title string
}

// ExportM3U writes songs as an extended M3U playlist named name, following
// the grammar of spec.md §6 ("Playlist export/import -- M3U extended").
func ExportM3U(w io.Writer, name string, songs []store.Song) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "#EXTM3U")
	fmt.Fprintf(bw, "#PLAYLIST:%s\n", name)

	for _, s := range songs {
		fmt.Fprintf(bw, "#EXTINF:%d,%s - %s\n", int(s.Duration.Seconds()), s.Title, strings.Join(s.Artist, fieldJoin))
		if len(s.Genre) > 0 {
			fmt.Fprintf(bw, "#EXTGENRE:%s\n", strings.Join(s.Genre, fieldJoin))
		}
		if len(s.AlbumArtist) > 0 {
			fmt.Fprintf(bw, "#EXTALB:%s\n", strings.Join(s.AlbumArtist, fieldJoin))
		}
		fmt.Fprintln(bw, s.Path)
	}

	return bw.Flush()
}

// ImportM3U reads an extended M3U playlist, returning its declared name (the
// #PLAYLIST: line, empty if absent) and its ordered song entries.
func ImportM3U(r io.Reader) (name string, entries []Entry, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", nil, errors.Wrap(err, "reading playlist")
	}

	name = scanPlaylistName(raw)

	playlist, err := m3u.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", nil, errors.Wrap(err, "parsing m3u playlist")
	}

	entries = make([]Entry, 0, len(playlist))
	for _, item := range playlist {
		path := strings.TrimSpace(item.Path)
		if path == "" {
			continue
		}
		entries = append(entries, Entry{Path: path, Title: item.Title})
	}
	return name, entries, nil
}

// scanPlaylistName extracts a "#PLAYLIST:<name>" header line, if present.
// m3u.Parse does not recognise this tag, so it is scanned for separately;
// m3u.Parse simply ignores the line as an unrecognised comment.
func scanPlaylistName(raw []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#PLAYLIST:") {
			return strings.TrimPrefix(line, "#PLAYLIST:")
		}
	}
	return ""
}

// dynamicHeader is the fixed CSV header row for dynamic-playlist exchange
// (spec.md §6 "Dynamic-playlist export/import -- CSV with header `dynamic
// playlist name,query`").
var dynamicHeader = []string{"dynamic playlist name", "query"}

// DynamicEntry is one row of the dynamic-playlist CSV: a playlist name and
// its query in canonical storage form (see internal/query).
type DynamicEntry struct {
	Name  string
	Query string
}

// ExportDynamicPlaylistsCSV writes entries as the two-column CSV spec.md §6
// defines.
func ExportDynamicPlaylistsCSV(w io.Writer, entries []DynamicEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dynamicHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Name, e.Query}); err != nil {
			return errors.Wrapf(err, "writing row for %q", e.Name)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportDynamicPlaylistsCSV reads the two-column CSV format
// ExportDynamicPlaylistsCSV produces, validating the header.
func ImportDynamicPlaylistsCSV(r io.Reader) ([]DynamicEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv header")
	}
	if len(header) != 2 || header[0] != dynamicHeader[0] || header[1] != dynamicHeader[1] {
		return nil, errors.Errorf("unexpected csv header %v, want %v", header, dynamicHeader)
	}

	var entries []DynamicEntry
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading csv row")
		}
		entries = append(entries, DynamicEntry{Name: row[0], Query: row[1]})
	}
	return entries, nil
}
