package kernel

import (
	"fmt"
	"time"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// CommandKind discriminates the top-level Command sent to the kernel
// (spec.md §4.5 "Commands" table).
type CommandKind int

const (
	CmdPlay CommandKind = iota
	CmdPause
	CmdStop
	CmdTogglePlayback
	CmdRestartSong
	CmdClearPlayer
	CmdQueue
	CmdVolume
	CmdSeek
	CmdReportStatus
	CmdExit
	CmdRestore
)

// Command is the single channel message type the kernel goroutine consumes.
// Only the fields relevant to Kind are populated, mirroring
// original_source/core/src/audio/commands.rs's AudioCommand enum collapsed
// into one tagged struct (spec.md §9 "model as sum types ... not trait
// objects").
type Command struct {
	Kind CommandKind

	Queue  QueueCommand  // valid when Kind == CmdQueue
	Volume VolumeCommand // valid when Kind == CmdVolume

	SeekKind     SeekType      // valid when Kind == CmdSeek
	SeekDuration time.Duration // valid when Kind == CmdSeek

	Reply chan<- StateAudio // valid when Kind == CmdReportStatus

	Restore RestoreState // valid when Kind == CmdRestore
}

// RestoreState is the payload of Command{Kind: CmdRestore}: the saved queue
// snapshot replayed into a fresh kernel at startup (spec.md §4.6
// "Persistence boundary"). Unlike every other command, restoring does not
// walk through the kernel's normal per-step command dispatch (which would
// emit a noisy, implementation-visible sequence of transient Playing/Stopped
// events); it applies the whole snapshot in one step and emits exactly the
// curated event sequence spec.md §8 scenario 5 names.
type RestoreState struct {
	RepeatMode    RepeatMode
	Muted         bool
	Volume        float32
	Queue         []store.SongBrief
	QueuePosition *int          // index into Queue; nil or out of range defaults to 0 when Queue is non-empty
	SeekPosition  *time.Duration // nil means "do not seek"
}

func (c Command) String() string {
	switch c.Kind {
	case CmdPlay:
		return "Play"
	case CmdPause:
		return "Pause"
	case CmdStop:
		return "Stop"
	case CmdTogglePlayback:
		return "Toggle Playback"
	case CmdRestartSong:
		return "Restart Song"
	case CmdClearPlayer:
		return "Clear Player"
	case CmdQueue:
		return fmt.Sprintf("Queue: %s", c.Queue)
	case CmdVolume:
		return fmt.Sprintf("Volume: %s", c.Volume)
	case CmdSeek:
		return fmt.Sprintf("Seek: %s %s (HH:MM:SS)", c.SeekKind, formatDuration(c.SeekDuration))
	case CmdReportStatus:
		return "Report Status"
	case CmdExit:
		return "Exit"
	case CmdRestore:
		return "Restore"
	default:
		return "Unknown"
	}
}

// QueueKind discriminates QueueCommand's shape.
type QueueKind int

const (
	QueueAdd QueueKind = iota
	QueueSkipForward
	QueueSkipBackward
	QueueSetPosition
	QueueRemoveRange
	QueueClear
	QueueShuffle
	QueueSetRepeatMode
	QueuePlayNextSong
)

// QueueCommand is the payload of Command{Kind: CmdQueue}.
type QueueCommand struct {
	Kind QueueKind

	Songs []store.SongBrief // QueueAdd

	N int // QueueSkipForward / QueueSkipBackward / QueueSetPosition

	RangeStart int // QueueRemoveRange
	RangeEnd   int // QueueRemoveRange (exclusive)

	RepeatMode RepeatMode // QueueSetRepeatMode
}

func (c QueueCommand) String() string {
	switch c.Kind {
	case QueueAdd:
		switch len(c.Songs) {
		case 0:
			return "Add nothing"
		case 1:
			return fmt.Sprintf("Add %q", c.Songs[0].Title)
		default:
			titles := make([]string, len(c.Songs))
			for i, s := range c.Songs {
				titles[i] = s.Title
			}
			return fmt.Sprintf("Add %v", titles)
		}
	case QueueSkipForward:
		return fmt.Sprintf("Skip Forward by %d", c.N)
	case QueueSkipBackward:
		return fmt.Sprintf("Skip Backward by %d", c.N)
	case QueueSetPosition:
		return fmt.Sprintf("Set Position to %d", c.N)
	case QueueRemoveRange:
		return fmt.Sprintf("Remove items %d..%d", c.RangeStart, c.RangeEnd)
	case QueueClear:
		return "Clear"
	case QueueShuffle:
		return "Shuffle"
	case QueueSetRepeatMode:
		return fmt.Sprintf("Set Repeat Mode to %s", c.RepeatMode)
	case QueuePlayNextSong:
		return "Play Next Song"
	default:
		return "Unknown"
	}
}

// VolumeKind discriminates VolumeCommand's shape.
type VolumeKind int

const (
	VolumeUp VolumeKind = iota
	VolumeDown
	VolumeSet
	VolumeMute
	VolumeUnmute
	VolumeToggleMute
)

// VolumeCommand is the payload of Command{Kind: CmdVolume}.
type VolumeCommand struct {
	Kind   VolumeKind
	Amount float32 // VolumeUp / VolumeDown / VolumeSet, in [0, 1]
}

func (c VolumeCommand) String() string {
	switch c.Kind {
	case VolumeUp:
		return fmt.Sprintf("+%.0f%%", c.Amount*100)
	case VolumeDown:
		return fmt.Sprintf("-%.0f%%", c.Amount*100)
	case VolumeSet:
		return fmt.Sprintf("=%.0f%%", c.Amount*100)
	case VolumeMute:
		return "Mute"
	case VolumeUnmute:
		return "Unmute"
	case VolumeToggleMute:
		return "Toggle Mute"
	default:
		return "Unknown"
	}
}

// Constructors. These mirror the teacher's preference for small named
// helpers over positional struct literals at call sites (e.g. muserv's
// newTrackInfo/newPlaylistInfo).

func Play() Command           { return Command{Kind: CmdPlay} }
func Pause() Command          { return Command{Kind: CmdPause} }
func Stop() Command           { return Command{Kind: CmdStop} }
func TogglePlayback() Command { return Command{Kind: CmdTogglePlayback} }
func RestartSong() Command    { return Command{Kind: CmdRestartSong} }
func ClearPlayer() Command    { return Command{Kind: CmdClearPlayer} }
func Exit() Command           { return Command{Kind: CmdExit} }

func ReportStatus(reply chan<- StateAudio) Command {
	return Command{Kind: CmdReportStatus, Reply: reply}
}

func Restore(state RestoreState) Command {
	return Command{Kind: CmdRestore, Restore: state}
}

func Seek(kind SeekType, d time.Duration) Command {
	return Command{Kind: CmdSeek, SeekKind: kind, SeekDuration: d}
}

func QueueAddCommand(songs []store.SongBrief) Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueueAdd, Songs: songs}}
}

func QueueSkipForwardCommand(n int) Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueueSkipForward, N: n}}
}

func QueueSkipBackwardCommand(n int) Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueueSkipBackward, N: n}}
}

func QueueSetPositionCommand(n int) Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueueSetPosition, N: n}}
}

func QueueRemoveRangeCommand(start, end int) Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueueRemoveRange, RangeStart: start, RangeEnd: end}}
}

func QueueClearCommand() Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueueClear}}
}

func QueueShuffleCommand() Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueueShuffle}}
}

func QueueSetRepeatModeCommand(mode RepeatMode) Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueueSetRepeatMode, RepeatMode: mode}}
}

func QueuePlayNextSongCommand() Command {
	return Command{Kind: CmdQueue, Queue: QueueCommand{Kind: QueuePlayNextSong}}
}

func VolumeUpCommand(amount float32) Command {
	return Command{Kind: CmdVolume, Volume: VolumeCommand{Kind: VolumeUp, Amount: amount}}
}

func VolumeDownCommand(amount float32) Command {
	return Command{Kind: CmdVolume, Volume: VolumeCommand{Kind: VolumeDown, Amount: amount}}
}

func VolumeSetCommand(amount float32) Command {
	return Command{Kind: CmdVolume, Volume: VolumeCommand{Kind: VolumeSet, Amount: amount}}
}

func VolumeMuteCommand() Command       { return Command{Kind: CmdVolume, Volume: VolumeCommand{Kind: VolumeMute}} }
func VolumeUnmuteCommand() Command     { return Command{Kind: CmdVolume, Volume: VolumeCommand{Kind: VolumeUnmute}} }
func VolumeToggleMuteCommand() Command { return Command{Kind: CmdVolume, Volume: VolumeCommand{Kind: VolumeToggleMute}} }

// formatDuration renders d as HH:MM:SS.hh, matching
// original_source's format_duration used in AudioCommand's Display impl.
func formatDuration(d time.Duration) string {
	total := d.Seconds()
	h := int(total) / 3600
	m := (int(total) % 3600) / 60
	s := total - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}
