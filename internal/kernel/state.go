// Package kernel implements the single-owner audio playback engine of
// spec.md §4.5: one goroutine holds all transport/queue/volume/seek state,
// mutated only in response to Commands read off a channel, mirroring
// original_source/core/src/audio/{commands.rs,mod.rs}'s AudioCommand enum
// and single-consumer run loop translated from a dedicated OS thread +
// std::sync::mpsc::Receiver to a Go goroutine + channel. Sum types (Command,
// QueueCommand, VolumeCommand, StateChange) are modeled as tagged structs
// with a Kind discriminant and switch dispatch, following the
// "static-dispatch sum type" idiom internal/query/ast.go's Value/ValueKind
// already establishes in this codebase (spec.md §9 design note).
package kernel

import (
	"time"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// RepeatMode controls what PlayNextSong does at the end of the queue.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatOne
	RepeatAll
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "None"
	case RepeatOne:
		return "One"
	case RepeatAll:
		return "All"
	default:
		return "Unknown"
	}
}

// PlaybackStatus is the kernel's top-level transport state (spec.md §4.5
// "State machine").
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPlaying
	StatusPaused
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "Stopped"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// SeekType discriminates the three ways a Seek command can move playback
// position.
type SeekType int

const (
	SeekAbsolute SeekType = iota
	SeekRelativeForwards
	SeekRelativeBackwards
)

func (t SeekType) String() string {
	switch t {
	case SeekAbsolute:
		return "Absolute"
	case SeekRelativeForwards:
		return "Forwards"
	case SeekRelativeBackwards:
		return "Backwards"
	default:
		return "Unknown"
	}
}

// StateRuntime describes where playback is within the current song.
type StateRuntime struct {
	SeekPosition time.Duration
	SeekPercent  float64
	Duration     time.Duration
}

// StateAudio is the snapshot ReportStatus replies with (spec.md §4.5
// "Status snapshot").
type StateAudio struct {
	Queue        []store.SongBrief
	QueuePosition *int
	CurrentSong  *store.SongBrief
	RepeatMode   RepeatMode
	Runtime      *StateRuntime
	Status       PlaybackStatus
	Muted        bool
	Volume       float32
}

// ChangeKind discriminates the shape of a StateChange event.
type ChangeKind int

const (
	ChangeMuted ChangeKind = iota
	ChangeUnmuted
	ChangeVolumeChanged
	ChangeTrackChanged
	ChangeQueueChanged
	ChangeRepeatModeChanged
	ChangeSeeked
	ChangeStatusChanged
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeMuted:
		return "Muted"
	case ChangeUnmuted:
		return "Unmuted"
	case ChangeVolumeChanged:
		return "VolumeChanged"
	case ChangeTrackChanged:
		return "TrackChanged"
	case ChangeQueueChanged:
		return "QueueChanged"
	case ChangeRepeatModeChanged:
		return "RepeatModeChanged"
	case ChangeSeeked:
		return "Seeked"
	case ChangeStatusChanged:
		return "StatusChanged"
	default:
		return "Unknown"
	}
}

// StateChange is the event every observable kernel state transition emits
// exactly one of (spec.md §4.5 "Emission"). Subscribers over the state
// fabric decode these and, for Track/Queue changes, re-query the kernel for
// a full snapshot rather than trust the event payload (spec.md §4.6
// "idempotent").
type StateChange struct {
	Kind       ChangeKind
	Volume     float32          // ChangeVolumeChanged
	TrackID    *store.Thing     // ChangeTrackChanged; nil means "no current song"
	RepeatMode RepeatMode       // ChangeRepeatModeChanged
	SeekAmount time.Duration    // ChangeSeeked
	Status     PlaybackStatus   // ChangeStatusChanged
}
