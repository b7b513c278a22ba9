// Package daemonrun wires the mecompd subsystems together into one running
// process: it owns the main control loop, OS signal handling with a
// force-quit escape hatch, and the queue-persistence save/restore cycle
// spec.md §4.6 describes, mirroring _teacher_ref/server/server.go's
// "compose everything, select over channels, stop on signal or subsystem
// error" shape generalized from muserv's content+upnp pair to mecomp's
// store+kernel+fabric+cluster+scanner+facade set.
package daemonrun

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/AnthonyMichaelTDM/mecomp/internal/cluster"
	"github.com/AnthonyMichaelTDM/mecomp/internal/config"
	"github.com/AnthonyMichaelTDM/mecomp/internal/fabric"
	"github.com/AnthonyMichaelTDM/mecomp/internal/kernel"
	"github.com/AnthonyMichaelTDM/mecomp/internal/rpcfacade"
	"github.com/AnthonyMichaelTDM/mecomp/internal/scan"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

var log = logrus.WithField("component", "daemonrun")

// forceQuitThreshold is spec.md §5's FORCE_QUIT_THRESHOLD: this many
// termination signals in one session triggers an immediate os.Exit rather
// than the graceful shutdown path.
const forceQuitThreshold = 3

// setupLogging configures the process-wide logrus logger, mirroring
// _teacher_ref/server/log.go's level-from-config behaviour without the
// private gitlab.com/go-utilities file-ownership dance (dropped per
// DESIGN.md; mecompd logs to stderr rather than managing a log file's unix
// owner).
func setupLogging(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log_level %q", level)
	}
	logrus.SetLevel(l)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Daemon bundles the subsystems and file paths one running mecompd process
// needs to shut down cleanly.
type Daemon struct {
	Cfg     config.Cfg
	Store   *store.Store
	Kernel  *kernel.Kernel
	Fabric  *fabric.Fabric
	Cluster *cluster.Engine
	Scanner *scan.Scanner
	Facade  *rpcfacade.Facade

	libraryDir     string
	queueStatePath string
}

// Run loads configuration, brings up every subsystem, replays any saved
// queue state, serves the RPC facade, and blocks until a termination signal
// arrives; only then is the kernel told to exit. version is logged at
// startup; libraryDir is where the store's on-disk database and the
// queue-persistence file live.
func Run(version, cfgDir, libraryDir string) (err error) {
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return errors.Wrap(err, "cannot run mecompd")
	}
	if err = cfg.Validate(); err != nil {
		return errors.Wrap(err, "cannot run mecompd")
	}
	if err = setupLogging(cfg.Daemon.LogLevel); err != nil {
		return errors.Wrap(err, "cannot run mecompd")
	}

	log.Infof("mecompd %s starting", version)

	d, err := newDaemon(cfg, libraryDir)
	if err != nil {
		return errors.Wrap(err, "cannot run mecompd")
	}
	defer d.close()

	d.restoreQueueState()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Daemon.RPCPort))
	if err != nil {
		return errors.Wrap(err, "cannot run mecompd")
	}
	defer ln.Close()

	server := rpc.NewServer()
	if err := server.RegisterName("mecomp", d.Facade); err != nil {
		return errors.Wrap(err, "cannot run mecompd")
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Kernel.Run()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		serveRPC(ctx, server, ln)
	}()

	stopSignals := d.watchSignals(cancel)
	defer stopSignals()

	<-ctx.Done()
	d.Kernel.Send(kernel.Exit())
	wg.Wait()

	d.saveQueueState()
	return nil
}

// newDaemon constructs every subsystem in dependency order (store first,
// since the kernel's emit callback feeds the fabric and the facade wires
// all of them together last).
func newDaemon(cfg config.Cfg, libraryDir string) (*Daemon, error) {
	st, err := store.Open(libraryDir, logrus.WithField("component", "store"))
	if err != nil {
		return nil, errors.Wrap(err, "opening library store")
	}

	fb, err := fabric.New(logrus.WithField("component", "fabric"))
	if err != nil {
		st.Close()
		return nil, errors.Wrap(err, "starting state fabric")
	}

	k := kernel.New(fb.Broadcast, logrus.WithField("component", "kernel"))

	cl := cluster.New(st, logrus.WithField("component", "cluster"))

	sc := scan.New(
		st,
		cfg.Daemon.ArtistSeparator,
		cfg.Daemon.GenreSeparator,
		scan.ConflictResolution(cfg.Daemon.ConflictResolution),
		logrus.WithField("component", "scan"),
	)

	fc := rpcfacade.New(st, k, fb, cl, sc, cfg, logrus.WithField("component", "rpcfacade"))

	return &Daemon{
		Cfg:            cfg,
		Store:          st,
		Kernel:         k,
		Fabric:         fb,
		Cluster:        cl,
		Scanner:        sc,
		Facade:         fc,
		libraryDir:     libraryDir,
		queueStatePath: filepath.Join(libraryDir, queueStateFilename),
	}, nil
}

func (d *Daemon) close() {
	if err := d.Fabric.Close(); err != nil {
		log.Warnf("closing state fabric: %v", err)
	}
	if err := d.Store.Close(); err != nil {
		log.Warnf("closing library store: %v", err)
	}
}

// restoreQueueState replays queue.json into the kernel at startup, if one
// exists (spec.md §4.6 "on startup it replays that state into the kernel").
func (d *Daemon) restoreQueueState() {
	rs, ok, err := loadQueueState(d.queueStatePath)
	if err != nil {
		log.Warnf("loading saved queue state: %v", err)
		return
	}
	if !ok {
		return
	}
	d.Kernel.Send(kernel.Restore(rs))
}

// saveQueueState snapshots the kernel and writes queue.json (spec.md §4.6
// "On graceful shutdown the daemon serialises the full queue ...").
func (d *Daemon) saveQueueState() {
	reply := make(chan kernel.StateAudio, 1)
	d.Kernel.Send(kernel.ReportStatus(reply))
	status := <-reply

	if err := saveQueueState(d.queueStatePath, status); err != nil {
		log.Errorf("saving queue state: %v", err)
	}
}

func serveRPC(ctx context.Context, server *rpc.Server, ln net.Listener) {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Warnf("rpc accept: %v", err)
				return
			}
		}
		go server.ServeConn(conn)
	}
}

// watchSignals installs handlers for SIGINT/SIGTERM/SIGQUIT. Each received
// signal cancels ctx (triggering graceful shutdown); forceQuitThreshold
// signals within the same session instead exit the process immediately
// (spec.md §5 "Signals"). The goroutine keeps running across the whole
// shutdown sequence so a third signal fired while the daemon is still
// draining in-flight work still forces an exit. Callers stop it by invoking
// the returned func once shutdown has finished.
func (d *Daemon) watchSignals(cancel context.CancelFunc) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		count := 0
		for {
			select {
			case sig := <-sigCh:
				count++
				log.Infof("received signal %v (%d/%d)", sig, count, forceQuitThreshold)
				if count >= forceQuitThreshold {
					log.Warn("force-quit threshold reached, exiting immediately")
					os.Exit(1)
				}
				cancel()
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		signal.Stop(sigCh)
	}
}
