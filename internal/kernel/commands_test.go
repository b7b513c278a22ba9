package kernel

import (
	"testing"
	"time"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

func TestCommandStringMatchesReferenceFormat(t *testing.T) {
	cases := []struct {
		cmd  Command
		want string
	}{
		{Play(), "Play"},
		{Pause(), "Pause"},
		{Stop(), "Stop"},
		{TogglePlayback(), "Toggle Playback"},
		{RestartSong(), "Restart Song"},
		{ClearPlayer(), "Clear Player"},
		{Exit(), "Exit"},
		{Seek(SeekAbsolute, 10 * time.Second), "Seek: Absolute 00:00:10.00 (HH:MM:SS)"},
		{Seek(SeekRelativeForwards, 20 * time.Second), "Seek: Forwards 00:00:20.00 (HH:MM:SS)"},
	}
	for _, c := range cases {
		if got := c.cmd.String(); got != c.want {
			t.Errorf("Command.String() = %q, want %q", got, c.want)
		}
	}
}

func TestQueueCommandStringFormats(t *testing.T) {
	song := store.SongBrief{Title: "Nocturne"}

	cases := []struct {
		cmd  QueueCommand
		want string
	}{
		{QueueCommand{Kind: QueueSkipForward, N: 3}, "Skip Forward by 3"},
		{QueueCommand{Kind: QueueSkipBackward, N: 2}, "Skip Backward by 2"},
		{QueueCommand{Kind: QueueSetPosition, N: 5}, "Set Position to 5"},
		{QueueCommand{Kind: QueueShuffle}, "Shuffle"},
		{QueueCommand{Kind: QueueAdd}, "Add nothing"},
		{QueueCommand{Kind: QueueAdd, Songs: []store.SongBrief{song}}, `Add "Nocturne"`},
		{QueueCommand{Kind: QueueRemoveRange, RangeStart: 1, RangeEnd: 4}, "Remove items 1..4"},
		{QueueCommand{Kind: QueueClear}, "Clear"},
		{QueueCommand{Kind: QueueSetRepeatMode, RepeatMode: RepeatAll}, "Set Repeat Mode to All"},
		{QueueCommand{Kind: QueuePlayNextSong}, "Play Next Song"},
	}
	for _, c := range cases {
		if got := c.cmd.String(); got != c.want {
			t.Errorf("QueueCommand.String() = %q, want %q", got, c.want)
		}
	}
}

func TestVolumeCommandStringFormats(t *testing.T) {
	cases := []struct {
		cmd  VolumeCommand
		want string
	}{
		{VolumeCommand{Kind: VolumeUp, Amount: 0.1}, "+10%"},
		{VolumeCommand{Kind: VolumeDown, Amount: 0.05}, "-5%"},
		{VolumeCommand{Kind: VolumeSet, Amount: 0.5}, "=50%"},
		{VolumeCommand{Kind: VolumeMute}, "Mute"},
		{VolumeCommand{Kind: VolumeUnmute}, "Unmute"},
		{VolumeCommand{Kind: VolumeToggleMute}, "Toggle Mute"},
	}
	for _, c := range cases {
		if got := c.cmd.String(); got != c.want {
			t.Errorf("VolumeCommand.String() = %q, want %q", got, c.want)
		}
	}
}

func TestFormatDurationHoursMinutesSeconds(t *testing.T) {
	d := time.Hour + 2*time.Minute + 3*time.Second + 400*time.Millisecond
	if got := formatDuration(d); got != "01:02:03.40" {
		t.Errorf("formatDuration(%v) = %q, want %q", d, got, "01:02:03.40")
	}
}
