package playlistio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

func TestExportImportM3URoundTrip(t *testing.T) {
	songs := []store.Song{
		{
			ID: store.NewThing(store.TableSong), Title: "Clair de Lune", Artist: []string{"Debussy"},
			Genre: []string{"Classical"}, AlbumArtist: []string{"Debussy"},
			Duration: 4*time.Minute + 30*time.Second, Path: "/music/debussy/clair.flac",
		},
		{
			ID: store.NewThing(store.TableSong), Title: "Reverie", Artist: []string{"Debussy"},
			Duration: 3 * time.Minute, Path: "/music/debussy/reverie.flac",
		},
	}

	var buf bytes.Buffer
	if err := ExportM3U(&buf, "Evening Piano", songs); err != nil {
		t.Fatalf("ExportM3U: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "#EXTM3U\n") {
		t.Fatalf("expected #EXTM3U header, got:\n%s", out)
	}
	if !strings.Contains(out, "#PLAYLIST:Evening Piano\n") {
		t.Fatalf("expected #PLAYLIST line, got:\n%s", out)
	}
	if !strings.Contains(out, "#EXTINF:270,Clair de Lune - Debussy\n") {
		t.Fatalf("expected EXTINF line for first song, got:\n%s", out)
	}
	if !strings.Contains(out, "#EXTGENRE:Classical\n") {
		t.Fatalf("expected EXTGENRE line, got:\n%s", out)
	}

	name, entries, err := ImportM3U(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ImportM3U: %v", err)
	}
	if name != "Evening Piano" {
		t.Fatalf("expected name %q, got %q", "Evening Piano", name)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Path != songs[0].Path || entries[1].Path != songs[1].Path {
		t.Fatalf("path round-trip mismatch: %+v", entries)
	}
}

func TestImportM3UIgnoresEmptyPathLines(t *testing.T) {
	input := "#EXTM3U\n#PLAYLIST:Test\n\n#EXTINF:120,Some Song - Someone\n   \n/music/a.flac\n\n"
	_, entries, err := ImportM3U(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportM3U: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/music/a.flac" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestDynamicPlaylistCSVRoundTrip(t *testing.T) {
	entries := []DynamicEntry{
		{Name: "Chill", Query: `genre = "ambient"`},
		{Name: "Upbeat", Query: `genre = "pop" and duration < 240`},
	}

	var buf bytes.Buffer
	if err := ExportDynamicPlaylistsCSV(&buf, entries); err != nil {
		t.Fatalf("ExportDynamicPlaylistsCSV: %v", err)
	}

	got, err := ImportDynamicPlaylistsCSV(&buf)
	if err != nil {
		t.Fatalf("ImportDynamicPlaylistsCSV: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d mismatch: got %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestImportDynamicPlaylistsCSVRejectsBadHeader(t *testing.T) {
	_, err := ImportDynamicPlaylistsCSV(strings.NewReader("name,q\nfoo,bar\n"))
	if err == nil {
		t.Fatalf("expected error for mismatched header")
	}
}
