// Package rpcfacade exposes the external RPC surface spec.md §6 names as
// plain Go methods on net/rpc argument/reply pairs. Transport, connection
// setup, and wire serialization are the excluded collaborator spec.md §1
// names ("RPC transport (connection setup, serialization format)"); this
// package is the thin glue muserv's internal/server.Run plays between
// content and upnp, here composing the library store, audio kernel, state
// fabric, clustering engine, scanner, and query engine into one callable
// surface a net/rpc.Server can register.
package rpcfacade

import (
	"context"
	"math/rand"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AnthonyMichaelTDM/mecomp/internal/analysis"
	"github.com/AnthonyMichaelTDM/mecomp/internal/cluster"
	"github.com/AnthonyMichaelTDM/mecomp/internal/config"
	"github.com/AnthonyMichaelTDM/mecomp/internal/fabric"
	"github.com/AnthonyMichaelTDM/mecomp/internal/kernel"
	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
	"github.com/AnthonyMichaelTDM/mecomp/internal/scan"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// Facade is the RPC-registerable surface. Every method has the
// (args, reply *T) error shape net/rpc requires. Construct with New once at
// daemon startup and pass the same instance to the RPC server and the
// daemon's signal/shutdown plumbing (spec.md §9 "initialise once at
// startup; pass explicit handles thereafter").
type Facade struct {
	Store   *store.Store
	Kernel  *kernel.Kernel
	Fabric  *fabric.Fabric
	Cluster *cluster.Engine
	Scanner *scan.Scanner
	Cfg     config.Cfg
	log     *logrus.Entry

	// mu guards rescanning/analyzing: net/rpc dispatches each call on its
	// own goroutine, so the in_progress flags spec.md §5 requires need the
	// same mutex protection cluster.Engine gives its own inProgress flag.
	mu         sync.Mutex
	rescanning bool
	analyzing  bool
}

// New builds a Facade over already-constructed subsystems. Each subsystem
// is itself responsible for its own lifecycle (Store.Close, Fabric.Close,
// Kernel.Send(kernel.Exit())); Facade only routes calls to them.
func New(st *store.Store, k *kernel.Kernel, fb *fabric.Fabric, cl *cluster.Engine, sc *scan.Scanner, cfg config.Cfg, log *logrus.Entry) *Facade {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Facade{Store: st, Kernel: k, Fabric: fb, Cluster: cl, Scanner: sc, Cfg: cfg, log: log.WithField("component", "rpcfacade")}
}

// translate maps an internal error to the stable discriminant form spec.md
// §7 requires ("RPC translates every internal error into a serialisable
// variant with a stable discriminant"). Callers that need the discriminant
// on the wire should call this at the RPC transport boundary; Facade
// methods themselves just return the underlying error.
func translate(err error) (discriminant string, message string) {
	if err == nil {
		return "", ""
	}
	return merrors.Discriminant(err), err.Error()
}

// --- Ping ---

type PingReply struct{ OK bool }

// Ping always succeeds; it's the liveness probe the RPC surface's "ping"
// verb implements.
func (f *Facade) Ping(_ *struct{}, reply *PingReply) error {
	reply.OK = true
	return nil
}

// --- Library: rescan ---

type RescanArgs struct {
	Roots []string // defaults to f.Cfg.Daemon.LibraryPaths when empty
}

type RescanReply struct {
	Summary scan.Summary
}

// Rescan runs a full library scan, refusing to start a second one
// concurrently (spec.md §5 "in_progress flag per operation").
func (f *Facade) Rescan(args *RescanArgs, reply *RescanReply) error {
	f.mu.Lock()
	if f.rescanning {
		f.mu.Unlock()
		return merrors.ErrRescanInProgress
	}
	f.rescanning = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.rescanning = false
		f.mu.Unlock()
	}()

	roots := args.Roots
	if len(roots) == 0 {
		roots = f.Cfg.Daemon.LibraryPaths
	}

	summary, err := f.Scanner.FullScan(context.Background(), roots, nil)
	if err != nil {
		return err
	}
	f.log.Info(formatScanSummary(summary))
	reply.Summary = summary
	return nil
}

type InProgressReply struct{ InProgress bool }

// RescanInProgress reports whether a Rescan call is currently running.
func (f *Facade) RescanInProgress(_ *struct{}, reply *InProgressReply) error {
	f.mu.Lock()
	reply.InProgress = f.rescanning
	f.mu.Unlock()
	return nil
}

// --- Library: analyze ---

type AnalyzeArgs struct {
	Paths       []string
	Parallelism int
}

type AnalyzeReply struct {
	Analyzed int
	Failed   map[string]string // path -> error message, per spec.md §7 "fail-fast per item, continue per batch"
}

// Analyze runs the feature extractor over args.Paths and binds the result to
// each path's Song via store.CreateAnalysis, continuing past per-file
// failures (spec.md §4.1 "Per-file failures in a batch do not abort the
// batch").
func (f *Facade) Analyze(args *AnalyzeArgs, reply *AnalyzeReply) error {
	f.mu.Lock()
	if f.analyzing {
		f.mu.Unlock()
		return merrors.ErrAnalyzeInProgress
	}
	f.analyzing = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.analyzing = false
		f.mu.Unlock()
	}()

	reply.Failed = make(map[string]string)

	for res := range analysis.AnalyzePaths(context.Background(), args.Paths, args.Parallelism) {
		if res.Err != nil {
			reply.Failed[res.Path] = res.Err.Error()
			continue
		}
		song, err := f.Store.SongByPath(res.Path)
		if err != nil {
			reply.Failed[res.Path] = errors.Wrap(err, "no matching song").Error()
			continue
		}
		if _, err := f.Store.CreateAnalysis(song.ID, [20]float64(res.Analysis)); err != nil {
			reply.Failed[res.Path] = err.Error()
			continue
		}
		reply.Analyzed++
	}
	return nil
}

// AnalyzeInProgress reports whether an Analyze call is currently running.
func (f *Facade) AnalyzeInProgress(_ *struct{}, reply *InProgressReply) error {
	f.mu.Lock()
	reply.InProgress = f.analyzing
	f.mu.Unlock()
	return nil
}

// --- Library: recluster ---

type ReclusterArgs struct {
	MaxK              int
	ReferenceDatasets int
	Algorithm         config.ClusterAlgorithm
}

type ReclusterReply struct {
	Collections []store.Collection
}

// Recluster replaces the library's Collection set (spec.md §4.3). At most
// one recluster runs at a time; Cluster.Engine enforces that itself.
func (f *Facade) Recluster(args *ReclusterArgs, reply *ReclusterReply) error {
	maxK := args.MaxK
	if maxK <= 0 {
		maxK = f.Cfg.Reclustering.MaxClusters
	}
	refs := args.ReferenceDatasets
	if refs <= 0 {
		refs = f.Cfg.Reclustering.GapStatisticReferenceDatasets
	}
	alg := args.Algorithm
	if alg == "" {
		alg = f.Cfg.Reclustering.Algorithm
	}

	cols, err := f.Cluster.Recluster(maxK, refs, alg)
	if err != nil {
		return err
	}
	reply.Collections = cols
	return nil
}

// ReclusterInProgress reports whether a Recluster call is currently running.
func (f *Facade) ReclusterInProgress(_ *struct{}, reply *InProgressReply) error {
	reply.InProgress = f.Cluster.InProgress()
	return nil
}

// --- Library: brief/full/health ---

// LibraryBriefReply is the lightweight library summary the RPC surface's
// "library brief" verb returns: counts only, no entity bodies.
type LibraryBriefReply struct {
	Songs       int
	Artists     int
	Albums      int
	Playlists   int
	Collections int
	Dynamics    int
	Analyses    int
}

func (f *Facade) LibraryBrief(_ *struct{}, reply *LibraryBriefReply) error {
	h, err := f.Store.Health()
	if err != nil {
		return err
	}
	reply.Songs = h.SongCount
	reply.Artists = h.ArtistCount
	reply.Albums = h.AlbumCount
	reply.Playlists = h.PlaylistCount
	reply.Collections = h.CollectionCount
	reply.Dynamics = h.DynamicPlaylistCount
	reply.Analyses = h.AnalysisCount
	return nil
}

// LibraryFullReply is the "library full" verb: every Song in the library.
type LibraryFullReply struct {
	Songs []store.Song
}

func (f *Facade) LibraryFull(_ *struct{}, reply *LibraryFullReply) error {
	songs, err := f.Store.AllSongs()
	if err != nil {
		return err
	}
	reply.Songs = songs
	return nil
}

// LibraryHealthReply wraps store.HealthReport for the "library health" verb.
type LibraryHealthReply struct {
	Report store.HealthReport
}

func (f *Facade) LibraryHealth(_ *struct{}, reply *LibraryHealthReply) error {
	report, err := f.Store.Health()
	if err != nil {
		return err
	}
	reply.Report = report
	return nil
}

// --- Search ---

type SearchArgs struct {
	Query string
	Limit int
}

type SearchReply struct {
	Hits []store.SearchHit
}

func (f *Facade) Search(args *SearchArgs, reply *SearchReply) error {
	hits, err := f.Store.Search(args.Query, args.Limit)
	if err != nil {
		return err
	}
	reply.Hits = hits
	return nil
}

// --- State fabric subscription ---

type RegisterUDPListenerArgs struct{ Addr string }

// RegisterUDPListener implements the "register-udp-listener(addr)" verb:
// addr starts receiving every subsequent StateChange broadcast.
func (f *Facade) RegisterUDPListener(args *RegisterUDPListenerArgs, _ *struct{}) error {
	return f.Fabric.Subscribe(args.Addr)
}

// pickRandom returns a uniformly random element of xs, or the zero value and
// false if xs is empty.
func pickRandom[T any](xs []T) (T, bool) {
	var zero T
	if len(xs) == 0 {
		return zero, false
	}
	return xs[rand.Intn(len(xs))], true
}

func errNoSongsInLibrary(kind string) error {
	return errors.Wrapf(merrors.ErrNotFound, "no %s in library", kind)
}

// formatScanSummary renders a Rescan outcome with thousands separators,
// matching the teacher's use of golang.org/x/text/message for human-facing
// counters (_teacher_ref/content/content.go's diagnostic printer).
func formatScanSummary(sum scan.Summary) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("rescan complete: %d scanned, %d created, %d updated, %d removed, %d errors",
		sum.Scanned, sum.Created, sum.Updated, sum.Removed, len(sum.Errors))
}
