package kernel

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// Kernel is the single-owner audio playback engine of spec.md §4.5. All
// mutable state (queue.songs/current/repeatMode, muted, volume, the
// underlying sink) is touched only from Run's goroutine; every other
// component talks to it exclusively by sending a Command (spec.md §9
// "centralise all mutation in the kernel thread; everything else sends a
// command").
type Kernel struct {
	commands chan Command
	emit     func(StateChange)
	log      *logrus.Entry

	sink   *sink
	q      *queue
	status PlaybackStatus
	muted  bool
	volume float32
}

// New creates a Kernel. emit is called once per observable state change
// (spec.md §4.5 "Emission"); it is invoked from the Run goroutine, so it
// must not block — callers typically hand it a channel send or
// fabric.Fabric.Broadcast. log defaults to the standard logger if nil.
func New(emit func(StateChange), log *logrus.Entry) *Kernel {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if emit == nil {
		emit = func(StateChange) {}
	}
	return &Kernel{
		commands: make(chan Command, 32),
		emit:     emit,
		log:      log,
		sink:     newSink(),
		q:        newQueue(),
		volume:   1.0,
	}
}

// Send enqueues cmd for the kernel to process. Commands are totally ordered
// by the channel FIFO (spec.md §5 "Ordering").
func (k *Kernel) Send(cmd Command) {
	k.commands <- cmd
}

// Run is the kernel's main control loop: it blocks on recv() from the
// command channel, the only suspension point in the kernel (spec.md §5
// "The audio kernel's loop blocks on recv() from its command channel — this
// is the only place it waits"). It returns when it processes CmdExit.
func (k *Kernel) Run() {
	for cmd := range k.commands {
		if k.handle(cmd) {
			return
		}
	}
}

// handle executes one command, returning true iff the kernel should exit.
func (k *Kernel) handle(cmd Command) (exit bool) {
	switch cmd.Kind {
	case CmdPlay:
		k.doPlay()
	case CmdPause:
		k.doPause()
	case CmdStop, CmdClearPlayer:
		k.doStop()
	case CmdTogglePlayback:
		k.doToggle()
	case CmdRestartSong:
		k.doRestartSong()
	case CmdQueue:
		k.handleQueue(cmd.Queue)
	case CmdVolume:
		k.handleVolume(cmd.Volume)
	case CmdSeek:
		k.doSeek(cmd.SeekKind, cmd.SeekDuration)
	case CmdReportStatus:
		k.doReportStatus(cmd.Reply)
	case CmdRestore:
		k.doRestore(cmd.Restore)
	case CmdExit:
		k.sink.clear()
		return true
	default:
		k.log.Warnf("kernel: unknown command kind %v", cmd.Kind)
	}
	return false
}

func (k *Kernel) setStatus(s PlaybackStatus) {
	if k.status == s {
		return
	}
	k.status = s
	k.emit(StateChange{Kind: ChangeStatusChanged, Status: s})
}

func (k *Kernel) doPlay() {
	if k.q.isEmpty() {
		return // boundary: empty-queue Play is a no-op (spec.md §8)
	}
	if k.status == StatusStopped {
		k.loadCurrent()
	}
	k.sink.play()
	k.setStatus(StatusPlaying)
}

func (k *Kernel) doPause() {
	if k.status != StatusPlaying {
		return
	}
	k.sink.pause()
	k.setStatus(StatusPaused)
}

func (k *Kernel) doToggle() {
	switch k.status {
	case StatusPlaying:
		k.doPause()
	case StatusPaused:
		k.sink.play()
		k.setStatus(StatusPlaying)
	case StatusStopped:
		k.doPlay()
	}
}

func (k *Kernel) doStop() {
	k.sink.clear()
	k.setStatus(StatusStopped)
}

func (k *Kernel) doRestartSong() {
	if k.q.currentSong() == nil {
		return
	}
	wasPlaying := k.status == StatusPlaying
	k.loadCurrent()
	if !wasPlaying {
		k.sink.pause()
	}
	k.emit(StateChange{Kind: ChangeSeeked, SeekAmount: 0})
}

// loadCurrent loads the queue's current song into the sink and emits
// TrackChanged, wiring the sink's completion callback to re-enqueue
// Queue(PlayNextSong) (spec.md §4.5 "internal 'song finished' transition").
func (k *Kernel) loadCurrent() {
	song := k.q.currentSong()
	if song == nil {
		k.sink.clear()
		k.emitTrackChanged(nil)
		return
	}
	if err := k.sink.append(song.Path, func() { k.Send(QueuePlayNextSongCommand()) }); err != nil {
		k.log.Errorf("kernel: failed to load %s: %v", song.Path, err)
		// spec.md §7 "a failed decode on a queue item emits
		// TrackChanged(None) and advances".
		k.q.songs = append(k.q.songs[:k.q.current], k.q.songs[k.q.current+1:]...)
		if k.q.current >= len(k.q.songs) {
			k.q.current = len(k.q.songs) - 1
		}
		k.emitTrackChanged(nil)
		return
	}
	k.sink.setVolume(k.volume)
	k.sink.setMuted(k.muted)
	k.emitTrackChanged(&song.ID)
}

func (k *Kernel) emitTrackChanged(id *store.Thing) {
	k.emit(StateChange{Kind: ChangeTrackChanged, TrackID: id})
}

func (k *Kernel) handleQueue(qc QueueCommand) {
	switch qc.Kind {
	case QueueAdd:
		if len(qc.Songs) == 0 {
			return
		}
		started := k.q.add(qc.Songs)
		k.emit(StateChange{Kind: ChangeQueueChanged})
		if started {
			k.loadCurrent()
			k.sink.play()
			k.setStatus(StatusPlaying)
		}

	case QueueSkipForward:
		before := k.q.current
		k.q.skipForward(qc.N)
		if k.q.current != before {
			k.reloadForNewPosition()
		}

	case QueueSkipBackward:
		before := k.q.current
		k.q.skipBackward(qc.N)
		if k.q.current != before {
			k.reloadForNewPosition()
		}

	case QueueSetPosition:
		before := k.q.current
		k.q.setPosition(qc.N)
		if k.q.current != before {
			k.reloadForNewPosition()
		}

	case QueueRemoveRange:
		beforeSong := k.q.currentSong()
		k.q.removeRange(qc.RangeStart, qc.RangeEnd)
		k.emit(StateChange{Kind: ChangeQueueChanged})
		after := k.q.currentSong()
		if !sameSong(beforeSong, after) {
			if after == nil {
				k.sink.clear()
				k.emitTrackChanged(nil)
				k.setStatus(StatusStopped)
			} else {
				wasPlaying := k.status == StatusPlaying
				k.loadCurrent()
				if wasPlaying {
					k.sink.play()
				} else {
					k.sink.pause()
				}
			}
		}

	case QueueClear:
		k.q.clear()
		k.sink.clear()
		k.emit(StateChange{Kind: ChangeQueueChanged})
		k.emitTrackChanged(nil)
		k.setStatus(StatusStopped)

	case QueueShuffle:
		if k.q.isEmpty() {
			return
		}
		k.q.shuffle()
		k.emit(StateChange{Kind: ChangeQueueChanged})
		k.loadCurrent()
		k.sink.play()
		k.setStatus(StatusPlaying)

	case QueueSetRepeatMode:
		if k.q.repeatMode == qc.RepeatMode {
			return
		}
		k.q.setRepeatMode(qc.RepeatMode)
		k.emit(StateChange{Kind: ChangeRepeatModeChanged, RepeatMode: qc.RepeatMode})

	case QueuePlayNextSong:
		k.doPlayNextSong()
	}
}

// reloadForNewPosition loads the queue's (new) current song into the sink,
// preserving the kernel's playing/paused status, after a skip/set-position
// (which changes neither the queue's contents nor its count, hence no
// QueueChanged -- only the current song, hence TrackChanged via
// loadCurrent).
func (k *Kernel) reloadForNewPosition() {
	wasPlaying := k.status == StatusPlaying
	k.loadCurrent()
	if wasPlaying {
		k.sink.play()
	}
}

func (k *Kernel) doPlayNextSong() {
	next, stopped := k.q.playNext()
	if stopped {
		k.sink.clear()
		k.emitTrackChanged(nil)
		k.setStatus(StatusStopped)
		return
	}
	if k.q.repeatMode == RepeatOne {
		// restart without advancing: reload the same song from position 0.
		k.loadCurrent()
		k.sink.play()
		k.setStatus(StatusPlaying)
		return
	}
	_ = next
	k.loadCurrent()
	k.sink.play()
	k.setStatus(StatusPlaying)
}

func (k *Kernel) handleVolume(vc VolumeCommand) {
	switch vc.Kind {
	case VolumeUp:
		k.setVolume(k.volume + vc.Amount)
	case VolumeDown:
		k.setVolume(k.volume - vc.Amount)
	case VolumeSet:
		k.setVolume(vc.Amount)
	case VolumeMute:
		k.setMuted(true)
	case VolumeUnmute:
		k.setMuted(false)
	case VolumeToggleMute:
		k.setMuted(!k.muted)
	}
}

func clampVolume(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (k *Kernel) setVolume(v float32) {
	v = clampVolume(v)
	if v == k.volume {
		return
	}
	k.volume = v
	k.sink.setVolume(v)
	k.emit(StateChange{Kind: ChangeVolumeChanged, Volume: v})
}

// doRestore replays a saved queue/volume/mute/repeat/seek snapshot into the
// kernel in one step, in the fixed order of spec.md §4.6 ("Persistence
// boundary"): repeat, mute, volume, queue load, pause, set position, seek.
// Playback is always restored paused (spec.md §4.6), and the resulting event
// sequence is unconditional -- not diffed against prior state -- matching
// spec.md §8 scenario 5 exactly.
func (k *Kernel) doRestore(rs RestoreState) {
	k.q.repeatMode = rs.RepeatMode
	k.emit(StateChange{Kind: ChangeRepeatModeChanged, RepeatMode: rs.RepeatMode})

	k.muted = rs.Muted
	k.sink.setMuted(rs.Muted)
	if rs.Muted {
		k.emit(StateChange{Kind: ChangeMuted})
	} else {
		k.emit(StateChange{Kind: ChangeUnmuted})
	}

	k.volume = clampVolume(rs.Volume)
	k.sink.setVolume(k.volume)
	k.emit(StateChange{Kind: ChangeVolumeChanged, Volume: k.volume})

	k.q.songs = append([]store.SongBrief(nil), rs.Queue...)
	if len(k.q.songs) == 0 {
		k.q.current = -1
	} else {
		idx := 0
		if rs.QueuePosition != nil && *rs.QueuePosition >= 0 && *rs.QueuePosition < len(k.q.songs) {
			idx = *rs.QueuePosition
		}
		k.q.current = idx
	}
	k.emit(StateChange{Kind: ChangeQueueChanged})

	k.status = StatusPaused
	k.emit(StateChange{Kind: ChangeStatusChanged, Status: StatusPaused})

	if song := k.q.currentSong(); song != nil {
		if err := k.sink.append(song.Path, func() { k.Send(QueuePlayNextSongCommand()) }); err != nil {
			k.log.Errorf("kernel: restore failed to load %s: %v", song.Path, err)
		} else {
			k.sink.pause()
			k.sink.setVolume(k.volume)
			k.sink.setMuted(k.muted)
		}
		k.emitTrackChanged(&song.ID)
	}

	if rs.SeekPosition != nil {
		if err := k.sink.seekTo(*rs.SeekPosition); err != nil {
			k.log.Errorf("kernel: restore seek failed: %v", err)
		}
		k.emit(StateChange{Kind: ChangeSeeked, SeekAmount: *rs.SeekPosition})
	}
}

func (k *Kernel) setMuted(muted bool) {
	if muted == k.muted {
		return
	}
	k.muted = muted
	k.sink.setMuted(muted)
	if muted {
		k.emit(StateChange{Kind: ChangeMuted})
	} else {
		k.emit(StateChange{Kind: ChangeUnmuted})
	}
}

func (k *Kernel) doSeek(kind SeekType, d time.Duration) {
	if k.q.currentSong() == nil {
		return
	}
	var target time.Duration
	switch kind {
	case SeekAbsolute:
		target = d
	case SeekRelativeForwards:
		target = k.sink.position() + d
	case SeekRelativeBackwards:
		target = k.sink.position() - d
	}
	if target < 0 {
		target = 0
	}
	if err := k.sink.seekTo(target); err != nil {
		k.log.Errorf("kernel: seek failed: %v", err)
		return
	}
	k.emit(StateChange{Kind: ChangeSeeked, SeekAmount: d})
}

func (k *Kernel) doReportStatus(reply chan<- StateAudio) {
	if reply == nil {
		return
	}
	state := StateAudio{
		Queue:         append([]store.SongBrief(nil), k.q.songs...),
		QueuePosition: k.q.queuePosition(),
		CurrentSong:   k.q.currentSong(),
		RepeatMode:    k.q.repeatMode,
		Status:        k.status,
		Muted:         k.muted,
		Volume:        k.volume,
	}
	if cur := k.q.currentSong(); cur != nil {
		pos := k.sink.position()
		dur := k.sink.duration()
		var pct float64
		if dur > 0 {
			pct = float64(pos) / float64(dur)
		}
		state.Runtime = &StateRuntime{SeekPosition: pos, SeekPercent: pct, Duration: dur}
	}
	reply <- state
}

func sameSong(a, b *store.SongBrief) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
