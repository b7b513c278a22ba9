package kernel

import (
	"testing"
	"time"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

func newTestKernel() (*Kernel, chan StateChange) {
	events := make(chan StateChange, 64)
	k := New(func(sc StateChange) { events <- sc }, nil)
	return k, events
}

func drain(t *testing.T, events chan StateChange) []StateChange {
	t.Helper()
	var out []StateChange
	for {
		select {
		case e := <-events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestEmptyQueuePlayIsNoOpAndEmitsNothing(t *testing.T) {
	k, events := newTestKernel()

	k.handle(Play())

	if got := drain(t, events); len(got) != 0 {
		t.Fatalf("expected no events from Play() on empty queue, got %v", got)
	}
	if k.status != StatusStopped {
		t.Fatalf("expected status to remain Stopped, got %v", k.status)
	}
}

func TestEmptyQueuePauseIsNoOp(t *testing.T) {
	k, events := newTestKernel()

	k.handle(Pause())

	if got := drain(t, events); len(got) != 0 {
		t.Fatalf("expected no events from Pause() when not playing, got %v", got)
	}
}

func TestVolumeSetClampsAndEmitsOnlyOnChange(t *testing.T) {
	k, events := newTestKernel()

	// move off the default volume of 1.0 so the clamped set is a real change.
	k.handle(VolumeSetCommand(0.5))
	drain(t, events)

	k.handle(VolumeSetCommand(2.0)) // out of range, clamps to 1.0
	got := drain(t, events)
	if len(got) != 1 || got[0].Kind != ChangeVolumeChanged || got[0].Volume != 1.0 {
		t.Fatalf("expected single VolumeChanged(1.0) event, got %v", got)
	}

	// setting to the same clamped value again must not emit.
	k.handle(VolumeSetCommand(5.0))
	if got := drain(t, events); len(got) != 0 {
		t.Fatalf("expected no event for redundant volume set, got %v", got)
	}
}

func TestMuteUnmuteToggleEmitsCorrespondingEvent(t *testing.T) {
	k, events := newTestKernel()

	k.handle(VolumeMuteCommand())
	got := drain(t, events)
	if len(got) != 1 || got[0].Kind != ChangeMuted {
		t.Fatalf("expected Muted event, got %v", got)
	}

	// muting again is a no-op.
	k.handle(VolumeMuteCommand())
	if got := drain(t, events); len(got) != 0 {
		t.Fatalf("expected no event for redundant mute, got %v", got)
	}

	k.handle(VolumeToggleMuteCommand())
	got = drain(t, events)
	if len(got) != 1 || got[0].Kind != ChangeUnmuted {
		t.Fatalf("expected Unmuted event from toggle, got %v", got)
	}
}

func TestReportStatusReflectsQueueAndVolume(t *testing.T) {
	k, _ := newTestKernel()
	k.handle(VolumeSetCommand(0.5))

	reply := make(chan StateAudio, 1)
	k.handle(ReportStatus(reply))

	state := <-reply
	if state.Volume != 0.5 {
		t.Fatalf("expected reported volume 0.5, got %v", state.Volume)
	}
	if state.Status != StatusStopped {
		t.Fatalf("expected reported status Stopped, got %v", state.Status)
	}
	if state.QueuePosition != nil {
		t.Fatalf("expected nil queue position on empty queue, got %v", *state.QueuePosition)
	}
	if state.Runtime != nil {
		t.Fatalf("expected nil runtime with no current song, got %v", state.Runtime)
	}
}

func TestSeekWithNoCurrentSongIsNoOp(t *testing.T) {
	k, events := newTestKernel()

	k.handle(Seek(SeekAbsolute, 10*time.Second))

	if got := drain(t, events); len(got) != 0 {
		t.Fatalf("expected no Seeked event with empty queue, got %v", got)
	}
}

func TestRepeatModeChangeEmitsOnlyOnActualChange(t *testing.T) {
	k, events := newTestKernel()

	k.handle(QueueSetRepeatModeCommand(RepeatAll))
	got := drain(t, events)
	if len(got) != 1 || got[0].Kind != ChangeRepeatModeChanged || got[0].RepeatMode != RepeatAll {
		t.Fatalf("expected RepeatModeChanged(All), got %v", got)
	}

	k.handle(QueueSetRepeatModeCommand(RepeatAll))
	if got := drain(t, events); len(got) != 0 {
		t.Fatalf("expected no event for redundant repeat mode set, got %v", got)
	}
}

func TestRestoreEmitsExactCuratedEventSequence(t *testing.T) {
	k, events := newTestKernel()

	songs := []store.SongBrief{songBrief("a"), songBrief("b"), songBrief("c"), songBrief("d")}
	pos := 1
	seek := 10 * time.Second

	k.handle(Restore(RestoreState{
		RepeatMode:    RepeatAll,
		Muted:         true,
		Volume:        0.5,
		Queue:         songs,
		QueuePosition: &pos,
		SeekPosition:  &seek,
	}))

	got := drain(t, events)
	wantKinds := []ChangeKind{
		ChangeRepeatModeChanged,
		ChangeMuted,
		ChangeVolumeChanged,
		ChangeQueueChanged,
		ChangeStatusChanged,
		ChangeTrackChanged,
		ChangeSeeked,
	}
	if len(got) != len(wantKinds) {
		t.Fatalf("expected %d events, got %d: %v", len(wantKinds), len(got), got)
	}
	for i, want := range wantKinds {
		if got[i].Kind != want {
			t.Fatalf("event %d: got Kind=%v, want %v (full: %v)", i, got[i].Kind, want, got)
		}
	}
	if got[4].Status != StatusPaused {
		t.Fatalf("expected restored status to be Paused, got %v", got[4].Status)
	}
	if got[5].TrackID == nil || *got[5].TrackID != songs[1].ID {
		t.Fatalf("expected TrackChanged(songs[1]), got %v", got[5].TrackID)
	}
	if got[6].SeekAmount != seek {
		t.Fatalf("expected Seeked(%v), got %v", seek, got[6].SeekAmount)
	}
}

func TestExitStopsRunLoop(t *testing.T) {
	k, _ := newTestKernel()

	done := make(chan struct{})
	go func() {
		k.Run()
		close(done)
	}()

	k.Send(Exit())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Exit command")
	}
}
