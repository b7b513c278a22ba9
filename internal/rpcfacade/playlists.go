package rpcfacade

import (
	"bytes"
	"strings"

	"github.com/AnthonyMichaelTDM/mecomp/internal/playlistio"
	"github.com/AnthonyMichaelTDM/mecomp/internal/query"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// --- Playlist CRUD ---

type NewPlaylistArgs struct{ Name string }

func (f *Facade) NewPlaylist(args *NewPlaylistArgs, reply *PlaylistReply) error {
	p, err := f.Store.CreatePlaylist(args.Name)
	if err != nil {
		return err
	}
	reply.Playlist = p
	return nil
}

func (f *Facade) DeletePlaylist(args *IDArgs, _ *struct{}) error {
	return f.Store.DeletePlaylist(args.ID)
}

type CloneArgs struct {
	ID      store.Thing
	NewName string
}

func (f *Facade) ClonePlaylist(args *CloneArgs, reply *PlaylistReply) error {
	p, err := f.Store.ClonePlaylist(args.ID, args.NewName)
	if err != nil {
		return err
	}
	reply.Playlist = p
	return nil
}

type RenameArgs struct {
	ID      store.Thing
	NewName string
}

func (f *Facade) RenamePlaylist(args *RenameArgs, _ *struct{}) error {
	return f.Store.RenamePlaylist(args.ID, args.NewName)
}

type PlaylistSongArgs struct {
	PlaylistID store.Thing
	SongID     store.Thing
}

func (f *Facade) PlaylistAddSong(args *PlaylistSongArgs, _ *struct{}) error {
	return f.Store.AddSongToPlaylist(args.PlaylistID, args.SongID)
}

func (f *Facade) PlaylistRemoveSong(args *PlaylistSongArgs, _ *struct{}) error {
	return f.Store.RemoveSongFromPlaylist(args.PlaylistID, args.SongID)
}

// PlaylistPipeExportArgs/Reply implement "playlist pipe" in its export
// direction: render playlistID as the extended-M3U text of spec.md §6.
type PlaylistPipeExportArgs struct{ ID store.Thing }

type PlaylistPipeExportReply struct{ M3U string }

func (f *Facade) PlaylistPipeExport(args *PlaylistPipeExportArgs, reply *PlaylistPipeExportReply) error {
	p, err := f.Store.GetPlaylist(args.ID)
	if err != nil {
		return err
	}
	songs, err := f.Store.SongsOfPlaylist(args.ID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := playlistio.ExportM3U(&buf, p.Name, songs); err != nil {
		return err
	}
	reply.M3U = buf.String()
	return nil
}

// PlaylistPipeImportArgs is the CLI's "pipe M3U text in" direction: parse it
// and create a new Playlist named by its #PLAYLIST line, adding each Entry's
// song as resolved by exact Path (spec.md §6 round-trip, §8 "Playlist
// export -> import on the same library reconstructs the exact name and song
// list"). An existing playlist of that name is not overwritten: CreatePlaylist
// returns ErrDuplicateName. There is no title-based lookup; the first entry
// whose path matches no Song ends the import with that error.
type PlaylistPipeImportArgs struct{ M3U string }

func (f *Facade) PlaylistPipeImport(args *PlaylistPipeImportArgs, reply *PlaylistReply) error {
	name, entries, err := playlistio.ImportM3U(strings.NewReader(args.M3U))
	if err != nil {
		return err
	}
	playlist, err := f.Store.CreatePlaylist(name)
	if err != nil {
		return err
	}
	for _, e := range entries {
		song, err := f.Store.SongByPath(e.Path)
		if err != nil {
			return err
		}
		if err := f.Store.AddSongToPlaylist(playlist.ID, song.ID); err != nil {
			return err
		}
	}
	reply.Playlist = playlist
	return nil
}

// --- Collections ---

type FreezeArgs struct {
	ID      store.Thing
	NewName string
}

// FreezeCollection converts a Collection to a user-owned Playlist (spec.md
// §3 "freezable into a Playlist").
func (f *Facade) FreezeCollection(args *FreezeArgs, reply *PlaylistReply) error {
	p, err := f.Store.FreezeCollection(args.ID, args.NewName)
	if err != nil {
		return err
	}
	reply.Playlist = p
	return nil
}

// --- Dynamic playlists ---

type NewDynamicPlaylistArgs struct {
	Name  string
	Query string // canonical storage form; must parse (spec.md §4.4)
}

func (f *Facade) CreateDynamicPlaylist(args *NewDynamicPlaylistArgs, reply *DynamicPlaylistReply) error {
	if _, err := query.Parse(args.Query); err != nil {
		return err
	}
	d, err := f.Store.CreateDynamicPlaylist(args.Name, args.Query)
	if err != nil {
		return err
	}
	reply.DynamicPlaylist = d
	return nil
}

type UpdateDynamicPlaylistArgs struct {
	ID    store.Thing
	Query string
}

func (f *Facade) UpdateDynamicPlaylist(args *UpdateDynamicPlaylistArgs, _ *struct{}) error {
	if _, err := query.Parse(args.Query); err != nil {
		return err
	}
	return f.Store.UpdateDynamicPlaylist(args.ID, args.Query)
}

func (f *Facade) DeleteDynamicPlaylist(args *IDArgs, _ *struct{}) error {
	return f.Store.DeleteDynamicPlaylist(args.ID)
}

// DynamicPlaylistSongs evaluates the stored query AST against the current
// library (spec.md §4.4 "Evaluated on read; its contents are never
// stored").
func (f *Facade) DynamicPlaylistSongs(args *IDArgs, reply *SongListReply) error {
	songs, err := f.evaluateDynamicPlaylist(args.ID)
	if err != nil {
		return err
	}
	reply.Songs = songs
	return nil
}

func (f *Facade) evaluateDynamicPlaylist(id store.Thing) ([]store.Song, error) {
	dp, err := f.Store.GetDynamicPlaylist(id)
	if err != nil {
		return nil, err
	}
	clause, err := query.Parse(dp.Query)
	if err != nil {
		return nil, err
	}
	predicate, err := query.Compile(clause)
	if err != nil {
		return nil, err
	}
	all, err := f.Store.AllSongs()
	if err != nil {
		return nil, err
	}
	matched := make([]store.Song, 0, len(all))
	for _, s := range all {
		if predicate(s) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// DynamicPlaylistGrammarReply implements "dynamic show-BNF".
type DynamicPlaylistGrammarReply struct{ BNF string }

func (f *Facade) DynamicPlaylistGrammar(_ *struct{}, reply *DynamicPlaylistGrammarReply) error {
	reply.BNF = query.Grammar
	return nil
}

// --- Dynamic-playlist CSV export/import (spec.md §6) ---

type DynamicPlaylistsExportReply struct{ CSV string }

func (f *Facade) ExportDynamicPlaylists(_ *struct{}, reply *DynamicPlaylistsExportReply) error {
	dps, err := f.Store.ListDynamicPlaylists()
	if err != nil {
		return err
	}
	entries := make([]playlistio.DynamicEntry, len(dps))
	for i, d := range dps {
		entries[i] = playlistio.DynamicEntry{Name: d.Name, Query: d.Query}
	}
	var buf bytes.Buffer
	if err := playlistio.ExportDynamicPlaylistsCSV(&buf, entries); err != nil {
		return err
	}
	reply.CSV = buf.String()
	return nil
}

type DynamicPlaylistsImportArgs struct{ CSV string }

type DynamicPlaylistsImportReply struct{ DynamicPlaylists []store.DynamicPlaylist }

func (f *Facade) ImportDynamicPlaylists(args *DynamicPlaylistsImportArgs, reply *DynamicPlaylistsImportReply) error {
	entries, err := playlistio.ImportDynamicPlaylistsCSV(strings.NewReader(args.CSV))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := query.Parse(e.Query); err != nil {
			return err
		}
		d, err := f.Store.CreateDynamicPlaylist(e.Name, e.Query)
		if err != nil {
			return err
		}
		reply.DynamicPlaylists = append(reply.DynamicPlaylists, d)
	}
	return nil
}
