package daemonrun

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnthonyMichaelTDM/mecomp/internal/kernel"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

func sampleStatus() kernel.StateAudio {
	pos := 1
	return kernel.StateAudio{
		RepeatMode:    kernel.RepeatAll,
		Muted:         true,
		Volume:        0.42,
		QueuePosition: &pos,
		Queue: []store.SongBrief{
			{ID: store.Thing{Table: store.TableSong, ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV"}, Title: "a"},
			{ID: store.Thing{Table: store.TableSong, ID: "01ARZ3NDEKTSV4RRFFQ69G5FAW"}, Title: "b"},
		},
		Runtime: &kernel.StateRuntime{SeekPosition: 90 * time.Second},
	}
}

func TestSaveLoadQueueStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	status := sampleStatus()

	if err := saveQueueState(path, status); err != nil {
		t.Fatalf("saveQueueState: %v", err)
	}

	rs, ok, err := loadQueueState(path)
	if err != nil {
		t.Fatalf("loadQueueState: %v", err)
	}
	if !ok {
		t.Fatalf("expected a saved state to load")
	}

	if rs.RepeatMode != status.RepeatMode {
		t.Errorf("RepeatMode = %v, want %v", rs.RepeatMode, status.RepeatMode)
	}
	if rs.Muted != status.Muted {
		t.Errorf("Muted = %v, want %v", rs.Muted, status.Muted)
	}
	if rs.Volume != status.Volume {
		t.Errorf("Volume = %v, want %v", rs.Volume, status.Volume)
	}
	if len(rs.Queue) != len(status.Queue) {
		t.Fatalf("Queue length = %d, want %d", len(rs.Queue), len(status.Queue))
	}
	if rs.QueuePosition == nil || *rs.QueuePosition != *status.QueuePosition {
		t.Errorf("QueuePosition = %v, want %v", rs.QueuePosition, status.QueuePosition)
	}
	if rs.SeekPosition == nil || *rs.SeekPosition != status.Runtime.SeekPosition {
		t.Errorf("SeekPosition = %v, want %v", rs.SeekPosition, status.Runtime.SeekPosition)
	}
}

// TestSaveQueueStateDeterministic covers the determinism half of spec.md
// §8's "save -> load -> save yields byte-identical files": saving the same
// status twice must produce identical bytes. It does not re-save a loaded
// RestoreState.
func TestSaveQueueStateDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	status := sampleStatus()

	if err := saveQueueState(first, status); err != nil {
		t.Fatalf("saveQueueState(first): %v", err)
	}
	if err := saveQueueState(second, status); err != nil {
		t.Fatalf("saveQueueState(second): %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("reading first: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("reading second: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("saving identical status twice produced different bytes")
	}
}

func TestLoadQueueStateMissingFileIsNotAnError(t *testing.T) {
	rs, ok, err := loadQueueState(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("loadQueueState on missing file: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a missing file")
	}
	if rs.Queue != nil {
		t.Fatalf("expected zero-value RestoreState, got %+v", rs)
	}
}

func TestLoadQueueStateNoSeekPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	status := sampleStatus()
	status.Runtime = nil

	if err := saveQueueState(path, status); err != nil {
		t.Fatalf("saveQueueState: %v", err)
	}
	rs, ok, err := loadQueueState(path)
	if err != nil {
		t.Fatalf("loadQueueState: %v", err)
	}
	if !ok {
		t.Fatalf("expected a saved state to load")
	}
	if rs.SeekPosition != nil {
		t.Errorf("SeekPosition = %v, want nil", rs.SeekPosition)
	}
}
