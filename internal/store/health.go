package store

// HealthReport is a library-wide consistency summary, adapted from muserv's
// content diagnostics (internal/content/content.go's inconsistency reports)
// to the entities of spec.md §3.
type HealthReport struct {
	SongCount            int
	ArtistCount          int
	AlbumCount           int
	PlaylistCount        int
	CollectionCount      int
	DynamicPlaylistCount int
	AnalysisCount        int
	// SongsMissingAnalysis lists songs with no bound Analysis - a rescan or
	// analyze pass hasn't reached them yet, or their analysis failed.
	SongsMissingAnalysis []Thing
	// AlbumsWithoutYear lists albums with no known release year.
	AlbumsWithoutYear []Thing
	// InconsistentTrackNumbering lists albums where two or more songs share
	// the same (non-nil) track number.
	InconsistentTrackNumbering []Thing
}

// Health walks the library and produces a HealthReport, mirroring the
// teacher's diagnostic-report style (content.go computes similar summaries
// over its in-memory object graph; here it's a read-only scan over the
// store).
func (s *Store) Health() (HealthReport, error) {
	var report HealthReport

	songs, err := s.AllSongs()
	if err != nil {
		return report, err
	}
	report.SongCount = len(songs)

	for _, song := range songs {
		if _, err := s.GetAnalysisForSong(song.ID); err != nil {
			report.SongsMissingAnalysis = append(report.SongsMissingAnalysis, song.ID)
		}
	}

	albums, err := s.allAlbums()
	if err != nil {
		return report, err
	}
	report.AlbumCount = len(albums)
	for _, a := range albums {
		if a.ReleaseYear == nil {
			report.AlbumsWithoutYear = append(report.AlbumsWithoutYear, a.ID)
		}
		if inconsistent, err := s.albumHasDuplicateTrackNumbers(a.ID); err == nil && inconsistent {
			report.InconsistentTrackNumbering = append(report.InconsistentTrackNumbering, a.ID)
		}
	}

	artists, err := s.allArtists()
	if err != nil {
		return report, err
	}
	report.ArtistCount = len(artists)

	playlists, err := s.ListPlaylists()
	if err != nil {
		return report, err
	}
	report.PlaylistCount = len(playlists)

	collections, err := s.ListCollections()
	if err != nil {
		return report, err
	}
	report.CollectionCount = len(collections)

	dynamics, err := s.ListDynamicPlaylists()
	if err != nil {
		return report, err
	}
	report.DynamicPlaylistCount = len(dynamics)

	analyses, err := s.AllAnalyses()
	if err != nil {
		return report, err
	}
	report.AnalysisCount = len(analyses)

	return report, nil
}
