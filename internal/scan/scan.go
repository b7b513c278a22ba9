// Package scan discovers audio files under the configured library paths,
// extracts their tags, and writes the resulting Song/Artist/Album records
// into the store. It plays the role muserv's internal/content scanner and
// notifier play (diff-based full scan plus an inotify-driven incremental
// watch), generalized from muserv's in-memory object tree to store-backed
// writes against internal/store, and from muserv's "track" to mecomp's
// "Song" entity.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/pkg/errors"
	"github.com/rjeczalik/notify"
	"github.com/sirupsen/logrus"

	"github.com/AnthonyMichaelTDM/mecomp/internal/fsutil"
	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// SupportedExtensions are the file extensions the tag/decoder stack
// recognizes (mirrors internal/analysis/decoder.go's switch).
var SupportedExtensions = []string{"mp3", "flac", "ogg", "wav"}

// IsSupportedAudioFile reports whether path has one of SupportedExtensions.
func IsSupportedAudioFile(path string) bool {
	return fsutil.HasExtension(path, SupportedExtensions...)
}

// Result is the per-file outcome of a scan or rescan, mirroring the
// spec.md §7 "fail-fast per item, continue per batch" propagation rule.
type Result struct {
	Path    string
	Created bool
	Updated bool
	Err     error
}

// Summary aggregates a batch of Results, the shape RPC returns for
// "library rescan" (spec.md §6).
type Summary struct {
	Scanned int
	Created int
	Updated int
	Removed int
	Errors  []Result
}

// Scanner walks library paths, extracts tags, and writes Songs to store. A
// Scanner is safe for one in-flight FullScan at a time; callers enforce the
// "in_progress" serialization rule of spec.md §5 (see rpcfacade's Rescan).
type Scanner struct {
	store           *store.Store
	log             *logrus.Entry
	artistSeparator string
	genreSeparator  string
	conflict        ConflictResolution
}

// ConflictResolution mirrors config.ConflictResolution without an import
// cycle; callers pass config.Cfg.Daemon.ConflictResolution's string value.
type ConflictResolution string

const (
	ConflictOverwrite ConflictResolution = "overwrite"
	ConflictSkip      ConflictResolution = "skip"
)

// New creates a Scanner. log defaults to the standard logger if nil.
func New(st *store.Store, artistSeparator, genreSeparator string, conflict ConflictResolution, log *logrus.Entry) *Scanner {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scanner{
		store:           st,
		log:             log,
		artistSeparator: artistSeparator,
		genreSeparator:  genreSeparator,
		conflict:        conflict,
	}
}

// FullScan walks every root, diffing discovered files against the store's
// existing Song paths: new files are created, every known file is re-read
// and its Song updated (counted in Updated) whether or not the file changed,
// and store Songs whose file vanished are deleted. No modification time is
// compared; under ConflictSkip known files are left as they are. It
// checks interrupt periodically (spec.md §5 "Cancellation") and completes
// the current file before returning if interrupt fires.
func (s *Scanner) FullScan(ctx context.Context, roots []string, interrupt <-chan struct{}) (Summary, error) {
	found, walkErrs := walkAll(roots)

	existing, err := s.store.AllSongs()
	if err != nil {
		return Summary{}, errors.Wrap(err, "listing existing songs")
	}
	byPath := make(map[string]store.Song, len(existing))
	for _, song := range existing {
		byPath[song.Path] = song
	}

	var sum Summary
	sum.Errors = append(sum.Errors, walkErrs...)

	for _, path := range found {
		select {
		case <-interrupt:
			return sum, nil
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		sum.Scanned++

		if old, ok := byPath[path]; ok {
			delete(byPath, path)
			if s.conflict == ConflictSkip {
				continue
			}
			updated, err := s.rescanOne(old, path)
			if err != nil {
				sum.Errors = append(sum.Errors, Result{Path: path, Err: err})
				continue
			}
			if updated {
				sum.Updated++
			}
			continue
		}

		if err := s.createOne(path); err != nil {
			sum.Errors = append(sum.Errors, Result{Path: path, Err: err})
			continue
		}
		sum.Created++
	}

	// anything left in byPath no longer exists on disk (spec.md §3 "Song ...
	// destroyed when the file is gone").
	for _, gone := range byPath {
		if err := s.store.DeleteSong(gone.ID); err != nil {
			sum.Errors = append(sum.Errors, Result{Path: gone.Path, Err: err})
			continue
		}
		sum.Removed++
	}

	return sum, nil
}

func (s *Scanner) createOne(path string) error {
	song, err := s.songFromFile(path)
	if err != nil {
		return err
	}
	_, err = s.store.CreateSong(song)
	return err
}

func (s *Scanner) rescanOne(old store.Song, path string) (bool, error) {
	fresh, err := s.songFromFile(path)
	if err != nil {
		return false, err
	}
	fresh.ID = old.ID
	if err := s.store.UpdateSong(fresh); err != nil {
		return false, err
	}
	return true, nil
}

// songFromFile extracts tags from path and builds a store.Song, mirroring
// muserv's trackInfo.metadata + splitMultipleEntries.
func (s *Scanner) songFromFile(path string) (store.Song, error) {
	canon, err := filepath.Abs(path)
	if err != nil {
		return store.Song{}, errors.Wrapf(err, "canonicalizing %s", path)
	}

	if !IsSupportedAudioFile(canon) {
		return store.Song{}, errors.Wrapf(merrors.ErrWrongExtension, "%s", canon)
	}

	f, err := os.Open(canon)
	if err != nil {
		return store.Song{}, errors.Wrapf(merrors.ErrFileNotFound, "%s: %v", canon, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return store.Song{}, errors.Wrapf(merrors.ErrDecodeError, "reading tags from %s: %v", canon, err)
	}

	artists := splitMultipleEntries(m.Artist(), s.artistSeparator)
	albumArtists := splitMultipleEntries(m.AlbumArtist(), s.artistSeparator)
	if len(albumArtists) == 0 {
		albumArtists = artists
	}
	genres := splitMultipleEntries(m.Genre(), s.genreSeparator)

	trackNo, _ := m.Track()
	discNo, _ := m.Disc()

	var trackPtr, discPtr *uint16
	if trackNo > 0 {
		v := uint16(trackNo)
		trackPtr = &v
	}
	if discNo > 0 {
		v := uint16(discNo)
		discPtr = &v
	}

	var yearPtr *int32
	if y := m.Year(); y > 0 {
		v := int32(y)
		yearPtr = &v
	}

	duration, err := probeDuration(canon)
	if err != nil {
		s.log.Warnf("could not determine duration for %s: %v", canon, err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(canon)), ".")

	return store.Song{
		Title:       firstNonEmpty(m.Title(), strings.TrimSuffix(filepath.Base(canon), filepath.Ext(canon))),
		Artist:      artists,
		AlbumArtist: albumArtists,
		Album:       m.Album(),
		Genre:       genres,
		Duration:    duration,
		Track:       trackPtr,
		Disc:        discPtr,
		ReleaseYear: yearPtr,
		Extension:   ext,
		Path:        canon,
	}, nil
}

// firstNonEmpty returns the first non-empty string among candidates.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// splitMultipleEntries splits a tag value on sep, trimming whitespace and
// dropping empty parts (mirrors muserv's content.splitMultipleEntries).
func splitMultipleEntries(value, sep string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if sep == "" {
		return []string{strings.TrimSpace(value)}
	}
	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// walkAll walks every root collecting supported audio file paths, in sorted
// order so FullScan's diff is deterministic.
func walkAll(roots []string) ([]string, []Result) {
	var found []string
	var errs []Result

	for _, root := range roots {
		isDir, err := fsutil.IsDir(root)
		if err != nil {
			errs = append(errs, Result{Path: root, Err: err})
			continue
		}
		if !isDir {
			errs = append(errs, Result{Path: root, Err: errors.Wrapf(merrors.ErrPathIsDirectory, "library path %s is not a directory", root)})
			continue
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				errs = append(errs, Result{Path: path, Err: err})
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if IsSupportedAudioFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, Result{Path: root, Err: err})
		}
	}

	sort.Strings(found)
	return found, errs
}

// probeDuration opens path through the same decoder switch
// internal/analysis/decoder.go uses, reading only the stream's declared
// length (not the samples), to populate Song.Duration at scan time. The
// analysis pipeline is the source of truth for acoustic features; this is
// advisory metadata shown to users before a song has been analyzed.
func probeDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	default:
		return 0, errors.Wrapf(merrors.ErrWrongExtension, "%s", path)
	}
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	n := stream.Len()
	if n <= 0 || format.SampleRate == 0 {
		return 0, nil
	}
	return format.SampleRate.D(n), nil
}

// Watcher drives an inotify-based incremental scan, generalizing muserv's
// notifier.run from updating its in-memory object tree to store writes. It
// only adds files that appear: a changed file already in the store fails
// CreateSong's duplicate-path check and is logged at debug level, and a
// removed file is skipped, so its Song stays until the next FullScan.
type Watcher struct {
	scanner *Scanner
	roots   []string
	log     *logrus.Entry

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWatcher creates a Watcher over roots, using scanner to apply changes.
func NewWatcher(scanner *Scanner, roots []string, log *logrus.Entry) *Watcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Watcher{scanner: scanner, roots: roots, log: log, pending: map[string]struct{}{}}
}

// Run watches roots for filesystem events and, every debounce interval,
// scans the new supported files among the paths they named (see Watcher),
// until ctx is canceled. Mirrors muserv's
// notifier.run ticker+mutex-buffered-changes shape.
func (w *Watcher) Run(ctx context.Context, debounce time.Duration, wg *sync.WaitGroup) {
	defer wg.Done()

	events := make(chan notify.EventInfo, 64)
	for _, root := range w.roots {
		if err := notify.Watch(filepath.Join(root, "..."), events, notify.All); err != nil {
			w.log.Errorf("cannot watch %s: %v", root, err)
			continue
		}
	}
	defer notify.Stop(events)

	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			w.mu.Lock()
			w.pending[ev.Path()] = struct{}{}
			w.mu.Unlock()

		case <-ticker.C:
			w.flush()

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = map[string]struct{}{}
	w.mu.Unlock()

	for _, path := range paths {
		exists, err := fsutil.Exists(path)
		if err != nil {
			w.log.Errorf("checking %s: %v", path, err)
			continue
		}
		if !exists {
			continue
		}
		isDir, err := fsutil.IsDir(path)
		if err != nil || isDir {
			continue
		}
		if !IsSupportedAudioFile(path) {
			continue
		}
		if err := w.scanner.createOne(path); err != nil {
			w.log.Debugf("applying change for %s: %v (may already be scanned)", path, err)
		}
	}
}
