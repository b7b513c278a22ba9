package rpcfacade

import (
	"github.com/AnthonyMichaelTDM/mecomp/internal/kernel"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// --- per-entity get ---

type IDArgs struct{ ID store.Thing }

type SongReply struct{ Song store.Song }

func (f *Facade) GetSong(args *IDArgs, reply *SongReply) error {
	s, err := f.Store.GetSong(args.ID)
	if err != nil {
		return err
	}
	reply.Song = s
	return nil
}

type ArtistReply struct{ Artist store.Artist }

func (f *Facade) GetArtist(args *IDArgs, reply *ArtistReply) error {
	a, err := f.Store.GetArtist(args.ID)
	if err != nil {
		return err
	}
	reply.Artist = a
	return nil
}

type AlbumReply struct{ Album store.Album }

func (f *Facade) GetAlbum(args *IDArgs, reply *AlbumReply) error {
	a, err := f.Store.GetAlbum(args.ID)
	if err != nil {
		return err
	}
	reply.Album = a
	return nil
}

type PlaylistReply struct{ Playlist store.Playlist }

func (f *Facade) GetPlaylist(args *IDArgs, reply *PlaylistReply) error {
	p, err := f.Store.GetPlaylist(args.ID)
	if err != nil {
		return err
	}
	reply.Playlist = p
	return nil
}

type CollectionReply struct{ Collection store.Collection }

func (f *Facade) GetCollection(args *IDArgs, reply *CollectionReply) error {
	c, err := f.Store.GetCollection(args.ID)
	if err != nil {
		return err
	}
	reply.Collection = c
	return nil
}

type DynamicPlaylistReply struct{ DynamicPlaylist store.DynamicPlaylist }

func (f *Facade) GetDynamicPlaylist(args *IDArgs, reply *DynamicPlaylistReply) error {
	d, err := f.Store.GetDynamicPlaylist(args.ID)
	if err != nil {
		return err
	}
	reply.DynamicPlaylist = d
	return nil
}

// --- get-related ---

type SongListReply struct{ Songs []store.Song }

// GetArtistSongs implements "songs of artist": the union of direct and
// two-hop artist->album->song edges (spec.md §4.2).
func (f *Facade) GetArtistSongs(args *IDArgs, reply *SongListReply) error {
	songs, err := f.Store.SongsOfArtist(args.ID)
	if err != nil {
		return err
	}
	reply.Songs = songs
	return nil
}

func (f *Facade) GetAlbumSongs(args *IDArgs, reply *SongListReply) error {
	songs, err := f.Store.SongsOfAlbum(args.ID)
	if err != nil {
		return err
	}
	reply.Songs = songs
	return nil
}

func (f *Facade) GetPlaylistSongs(args *IDArgs, reply *SongListReply) error {
	songs, err := f.Store.SongsOfPlaylist(args.ID)
	if err != nil {
		return err
	}
	reply.Songs = songs
	return nil
}

func (f *Facade) GetCollectionSongs(args *IDArgs, reply *SongListReply) error {
	songs, err := f.Store.SongsOfCollection(args.ID)
	if err != nil {
		return err
	}
	reply.Songs = songs
	return nil
}

// ListPlaylistsReply is the "playlist list" verb.
type ListPlaylistsReply struct{ Playlists []store.Playlist }

func (f *Facade) ListPlaylists(_ *struct{}, reply *ListPlaylistsReply) error {
	ps, err := f.Store.ListPlaylists()
	if err != nil {
		return err
	}
	reply.Playlists = ps
	return nil
}

type ListCollectionsReply struct{ Collections []store.Collection }

func (f *Facade) ListCollections(_ *struct{}, reply *ListCollectionsReply) error {
	cs, err := f.Store.ListCollections()
	if err != nil {
		return err
	}
	reply.Collections = cs
	return nil
}

type ListDynamicPlaylistsReply struct{ DynamicPlaylists []store.DynamicPlaylist }

func (f *Facade) ListDynamicPlaylists(_ *struct{}, reply *ListDynamicPlaylistsReply) error {
	ds, err := f.Store.ListDynamicPlaylists()
	if err != nil {
		return err
	}
	reply.DynamicPlaylists = ds
	return nil
}

// --- current/random artist/album/song ---

// CurrentSongReply is the "current song" verb: the song the audio kernel is
// presently on, re-derived from a live ReportStatus snapshot rather than
// cached, per spec.md §3's "a brief never outlives a round-trip through the
// RPC layer without the store being consulted again."
type CurrentSongReply struct {
	Song  *store.Song
	Brief *store.SongBrief
}

func (f *Facade) CurrentSong(_ *struct{}, reply *CurrentSongReply) error {
	status := f.reportStatus()
	if status.CurrentSong == nil {
		return nil
	}
	reply.Brief = status.CurrentSong
	song, err := f.Store.GetSong(status.CurrentSong.ID)
	if err != nil {
		return err
	}
	reply.Song = &song
	return nil
}

// reportStatus round-trips a ReportStatus command through the kernel's
// command channel and blocks for the one-shot reply (spec.md §4.5
// "ReportStatus(reply_channel)").
func (f *Facade) reportStatus() kernel.StateAudio {
	reply := make(chan kernel.StateAudio, 1)
	f.Kernel.Send(kernel.ReportStatus(reply))
	return <-reply
}

type RandomArtistReply struct{ Artist store.Artist }

func (f *Facade) RandomArtist(_ *struct{}, reply *RandomArtistReply) error {
	artists, err := f.Store.ListArtists()
	if err != nil {
		return err
	}
	a, ok := pickRandom(artists)
	if !ok {
		return errNoSongsInLibrary("artists")
	}
	reply.Artist = a
	return nil
}

type RandomAlbumReply struct{ Album store.Album }

func (f *Facade) RandomAlbum(_ *struct{}, reply *RandomAlbumReply) error {
	albums, err := f.Store.ListAlbums()
	if err != nil {
		return err
	}
	a, ok := pickRandom(albums)
	if !ok {
		return errNoSongsInLibrary("albums")
	}
	reply.Album = a
	return nil
}

type RandomSongReply struct{ Song store.Song }

func (f *Facade) RandomSong(_ *struct{}, reply *RandomSongReply) error {
	songs, err := f.Store.AllSongs()
	if err != nil {
		return err
	}
	s, ok := pickRandom(songs)
	if !ok {
		return errNoSongsInLibrary("songs")
	}
	reply.Song = s
	return nil
}
