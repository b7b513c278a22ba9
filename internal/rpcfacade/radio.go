package rpcfacade

import "github.com/AnthonyMichaelTDM/mecomp/internal/store"

// RadioArgs seeds a similarity search: exactly one of SongID, ArtistID,
// AlbumID, PlaylistID, or Paths should be set. N is the result count
// (spec.md GLOSSARY "Radio": "given a seed ..., return the n most
// acoustically similar songs").
type RadioArgs struct {
	SongID     *store.Thing
	ArtistID   *store.Thing
	AlbumID    *store.Thing
	PlaylistID *store.Thing
	Paths      []string // the "pipe" seed: paths read from stdin by the CLI
	N          int
}

type RadioReply struct{ Songs []store.Song }

// Radio resolves args to a set of seed songs, looks up each one's Analysis,
// and returns the N nearest songs by Euclidean distance over the combined
// (or single) feature vector, excluding every seed song from the result
// (spec.md §4.2 "Analysis.nearest_neighbors_to_many ... excluding all ids").
func (f *Facade) Radio(args *RadioArgs, reply *RadioReply) error {
	var seeds []store.Song
	var err error

	switch {
	case args.SongID != nil:
		s, e := f.Store.GetSong(*args.SongID)
		err = e
		seeds = []store.Song{s}
	case args.ArtistID != nil:
		seeds, err = f.Store.SongsOfArtist(*args.ArtistID)
	case args.AlbumID != nil:
		seeds, err = f.Store.SongsOfAlbum(*args.AlbumID)
	case args.PlaylistID != nil:
		seeds, err = f.Store.SongsOfPlaylist(*args.PlaylistID)
	case len(args.Paths) > 0:
		for _, p := range args.Paths {
			s, e := f.Store.SongByPath(p)
			if e != nil {
				return e
			}
			seeds = append(seeds, s)
		}
	default:
		return errNoSongsInLibrary("radio seeds")
	}
	if err != nil {
		return err
	}

	analysisIDs := make([]store.Thing, 0, len(seeds))
	for _, s := range seeds {
		a, err := f.Store.GetAnalysisForSong(s.ID)
		if err != nil {
			return err
		}
		analysisIDs = append(analysisIDs, a.ID)
	}

	var neighbors []store.Analysis
	if len(analysisIDs) == 1 {
		neighbors, err = f.Store.NearestNeighbors(analysisIDs[0], args.N)
	} else {
		neighbors, err = f.Store.NearestNeighborsToMany(analysisIDs, args.N)
	}
	if err != nil {
		return err
	}

	songs := make([]store.Song, 0, len(neighbors))
	for _, n := range neighbors {
		songID, err := f.Store.SongIDForAnalysis(n.ID)
		if err != nil {
			return err
		}
		song, err := f.Store.GetSong(songID)
		if err != nil {
			return err
		}
		songs = append(songs, song)
	}
	reply.Songs = songs
	return nil
}
