package daemonrun

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/AnthonyMichaelTDM/mecomp/internal/kernel"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// queueStateFilename is the queue-persistence file spec.md §6 names,
// written next to the library database directory.
const queueStateFilename = "queue.json"

// persistedState is the on-disk JSON shape spec.md §6 mandates verbatim:
// `{ repeat_mode, muted, volume, queue: [SongBrief], queue_position:
// Option<u64>, seek_position: Option<Duration> }`.
type persistedState struct {
	RepeatMode    kernel.RepeatMode `json:"repeat_mode"`
	Muted         bool              `json:"muted"`
	Volume        float32           `json:"volume"`
	Queue         []store.SongBrief `json:"queue"`
	QueuePosition *int              `json:"queue_position"`
	SeekPosition  *int64            `json:"seek_position"` // milliseconds; nil means "no seek"
}

// saveQueueState serialises status to path, implementing spec.md §4.6
// "On graceful shutdown the daemon serialises the full queue + position +
// seek + repeat + volume + mute to a JSON file." Saving is byte-for-byte
// deterministic given identical input (spec.md §8 "Queue-state save -> load
// -> save yields byte-identical files"): json.Marshal's field order follows
// struct declaration order and is stable across runs.
func saveQueueState(path string, status kernel.StateAudio) error {
	ps := persistedState{
		RepeatMode:    status.RepeatMode,
		Muted:         status.Muted,
		Volume:        status.Volume,
		Queue:         status.Queue,
		QueuePosition: status.QueuePosition,
	}
	if status.Runtime != nil {
		ms := status.Runtime.SeekPosition.Milliseconds()
		ps.SeekPosition = &ms
	}

	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshalling queue state")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "writing queue state")
}

// loadQueueState reads path back into a kernel.RestoreState. A missing file
// is not an error: it just means there's nothing to restore (first run).
func loadQueueState(path string) (kernel.RestoreState, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kernel.RestoreState{}, false, nil
	}
	if err != nil {
		return kernel.RestoreState{}, false, errors.Wrap(err, "reading queue state")
	}

	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return kernel.RestoreState{}, false, errors.Wrap(err, "parsing queue state")
	}

	rs := kernel.RestoreState{
		RepeatMode:    ps.RepeatMode,
		Muted:         ps.Muted,
		Volume:        ps.Volume,
		Queue:         ps.Queue,
		QueuePosition: ps.QueuePosition,
	}
	if ps.SeekPosition != nil {
		d := time.Duration(*ps.SeekPosition) * time.Millisecond
		rs.SeekPosition = &d
	}
	return rs, true, nil
}
