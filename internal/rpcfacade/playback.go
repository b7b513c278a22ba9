package rpcfacade

import (
	"time"

	"github.com/AnthonyMichaelTDM/mecomp/internal/kernel"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// Every playback verb is a one-way Send into the kernel's command channel
// (spec.md §9 "everything else sends a command"); the facade never touches
// kernel state directly. Status-returning verbs round-trip a ReportStatus.

func (f *Facade) Play(_ *struct{}, _ *struct{}) error           { f.Kernel.Send(kernel.Play()); return nil }
func (f *Facade) Pause(_ *struct{}, _ *struct{}) error          { f.Kernel.Send(kernel.Pause()); return nil }
func (f *Facade) TogglePlayback(_ *struct{}, _ *struct{}) error { f.Kernel.Send(kernel.TogglePlayback()); return nil }
func (f *Facade) Stop(_ *struct{}, _ *struct{}) error           { f.Kernel.Send(kernel.Stop()); return nil }
func (f *Facade) RestartSong(_ *struct{}, _ *struct{}) error    { f.Kernel.Send(kernel.RestartSong()); return nil }
func (f *Facade) ClearPlayer(_ *struct{}, _ *struct{}) error    { f.Kernel.Send(kernel.ClearPlayer()); return nil }

// Next and Previous are the CLI-level names for the queue-skip-by-one
// verbs spec.md §6 lists as "playback ... next/previous".
func (f *Facade) Next(_ *struct{}, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueSkipForwardCommand(1))
	return nil
}

func (f *Facade) Previous(_ *struct{}, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueSkipBackwardCommand(1))
	return nil
}

type SkipArgs struct{ N int }

func (f *Facade) SkipForward(args *SkipArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueSkipForwardCommand(args.N))
	return nil
}

func (f *Facade) SkipBackward(args *SkipArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueSkipBackwardCommand(args.N))
	return nil
}

type SeekArgs struct {
	Kind     kernel.SeekType
	Duration time.Duration
}

func (f *Facade) Seek(args *SeekArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.Seek(args.Kind, args.Duration))
	return nil
}

type RepeatArgs struct{ Mode kernel.RepeatMode }

func (f *Facade) SetRepeatMode(args *RepeatArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueSetRepeatModeCommand(args.Mode))
	return nil
}

func (f *Facade) Shuffle(_ *struct{}, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueShuffleCommand())
	return nil
}

type VolumeArgs struct{ Amount float32 }

func (f *Facade) VolumeUp(args *VolumeArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.VolumeUpCommand(args.Amount))
	return nil
}

func (f *Facade) VolumeDown(args *VolumeArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.VolumeDownCommand(args.Amount))
	return nil
}

func (f *Facade) VolumeSet(args *VolumeArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.VolumeSetCommand(args.Amount))
	return nil
}

func (f *Facade) Mute(_ *struct{}, _ *struct{}) error {
	f.Kernel.Send(kernel.VolumeMuteCommand())
	return nil
}

func (f *Facade) Unmute(_ *struct{}, _ *struct{}) error {
	f.Kernel.Send(kernel.VolumeUnmuteCommand())
	return nil
}

func (f *Facade) ToggleMute(_ *struct{}, _ *struct{}) error {
	f.Kernel.Send(kernel.VolumeToggleMuteCommand())
	return nil
}

// StatusReply mirrors kernel.StateAudio for the "ReportStatus" verb.
type StatusReply struct{ Status kernel.StateAudio }

func (f *Facade) Status(_ *struct{}, reply *StatusReply) error {
	reply.Status = f.reportStatus()
	return nil
}

// --- Queue mutation ---

type RemoveRangeArgs struct{ Start, End int }

func (f *Facade) QueueRemoveRange(args *RemoveRangeArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueRemoveRangeCommand(args.Start, args.End))
	return nil
}

func (f *Facade) QueueClear(_ *struct{}, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueClearCommand())
	return nil
}

type SetPositionArgs struct{ Index int }

func (f *Facade) QueueSetPosition(args *SetPositionArgs, _ *struct{}) error {
	f.Kernel.Send(kernel.QueueSetPositionCommand(args.Index))
	return nil
}

// --- Queue add: song/list/album/artist/playlist/collection/dynamic/random ---

func (f *Facade) enqueue(songs []store.Song) {
	briefs := make([]store.SongBrief, len(songs))
	for i, s := range songs {
		briefs[i] = s.Brief()
	}
	f.Kernel.Send(kernel.QueueAddCommand(briefs))
}

func (f *Facade) QueueAddSong(args *IDArgs, _ *struct{}) error {
	s, err := f.Store.GetSong(args.ID)
	if err != nil {
		return err
	}
	f.enqueue([]store.Song{s})
	return nil
}

type IDListArgs struct{ IDs []store.Thing }

func (f *Facade) QueueAddList(args *IDListArgs, _ *struct{}) error {
	songs := make([]store.Song, 0, len(args.IDs))
	for _, id := range args.IDs {
		s, err := f.Store.GetSong(id)
		if err != nil {
			return err
		}
		songs = append(songs, s)
	}
	f.enqueue(songs)
	return nil
}

func (f *Facade) QueueAddAlbum(args *IDArgs, _ *struct{}) error {
	songs, err := f.Store.SongsOfAlbum(args.ID)
	if err != nil {
		return err
	}
	f.enqueue(songs)
	return nil
}

func (f *Facade) QueueAddArtist(args *IDArgs, _ *struct{}) error {
	songs, err := f.Store.SongsOfArtist(args.ID)
	if err != nil {
		return err
	}
	f.enqueue(songs)
	return nil
}

func (f *Facade) QueueAddPlaylist(args *IDArgs, _ *struct{}) error {
	songs, err := f.Store.SongsOfPlaylist(args.ID)
	if err != nil {
		return err
	}
	f.enqueue(songs)
	return nil
}

func (f *Facade) QueueAddCollection(args *IDArgs, _ *struct{}) error {
	songs, err := f.Store.SongsOfCollection(args.ID)
	if err != nil {
		return err
	}
	f.enqueue(songs)
	return nil
}

func (f *Facade) QueueAddDynamic(args *IDArgs, _ *struct{}) error {
	songs, err := f.evaluateDynamicPlaylist(args.ID)
	if err != nil {
		return err
	}
	f.enqueue(songs)
	return nil
}

func (f *Facade) QueueAddRandom(_ *struct{}, _ *struct{}) error {
	songs, err := f.Store.AllSongs()
	if err != nil {
		return err
	}
	s, ok := pickRandom(songs)
	if !ok {
		return errNoSongsInLibrary("songs")
	}
	f.enqueue([]store.Song{s})
	return nil
}

// QueueAddPathsArgs is the "queue add ... pipe-from-stdin" verb: the CLI
// reads a newline-separated list of file paths off stdin and forwards them
// here to be resolved against the library and enqueued in order.
type QueueAddPathsArgs struct{ Paths []string }

func (f *Facade) QueueAddPaths(args *QueueAddPathsArgs, _ *struct{}) error {
	songs := make([]store.Song, 0, len(args.Paths))
	for _, p := range args.Paths {
		s, err := f.Store.SongByPath(p)
		if err != nil {
			return err
		}
		songs = append(songs, s)
	}
	f.enqueue(songs)
	return nil
}
