package kernel

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/pkg/errors"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

// outputSampleRate is the rate the shared speaker device is opened at;
// tracks at other rates are resampled on append, mirroring amp's
// beep.Resample-on-mismatch pattern (other_examples/.../internal-audio-
// player.go.go).
const outputSampleRate = beep.SampleRate(44100)

// sink is the kernel's decoding/playback device: one speaker pipeline,
// volume control, and pause gate, modeled on the
// Alexander-D-Karpov-amp Player (beep.Ctrl + effects.Volume + speaker.Play)
// adapted from that project's streaming-URL player to mecomp's
// local-file-by-SongBrief usage.
type sink struct {
	mu sync.Mutex

	initOnce sync.Once
	initErr  error

	stream beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	vol    *effects.Volume

	startedAt time.Duration // reset to 0 by append; seekTo does not update it and nothing reads it
}

func newSink() *sink {
	return &sink{}
}

func (s *sink) ensureSpeaker() error {
	s.initOnce.Do(func() {
		s.initErr = speaker.Init(outputSampleRate, outputSampleRate.N(time.Millisecond*200))
	})
	return s.initErr
}

func decoderFor(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrapf(merrors.ErrFileNotFound, "%s: %v", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		_ = f.Close()
		return nil, beep.Format{}, errors.Wrapf(merrors.ErrWrongExtension, "unsupported extension for %s", path)
	}
}

// clear stops and releases whatever is currently loaded, without touching
// volume/mute state (spec.md §4.5 "ClearPlayer").
func (s *sink) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *sink) clearLocked() {
	speaker.Clear()
	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
	s.ctrl = nil
}

// append loads path and starts it playing, replacing whatever was loaded.
// onDone fires exactly once, from the speaker's mixing goroutine, when the
// track runs to completion (never on an explicit Stop/Clear) so the kernel
// can re-enqueue QueuePlayNextSongCommand itself, keeping the kernel's
// recv() loop as the one suspension point (spec.md §5 "Suspension points").
func (s *sink) append(path string, onDone func()) error {
	if err := s.ensureSpeaker(); err != nil {
		return errors.Wrap(err, "initializing audio output")
	}

	stream, format, err := decoderFor(path)
	if err != nil {
		return err
	}

	var streamer beep.Streamer = stream
	if format.SampleRate != outputSampleRate {
		streamer = beep.Resample(4, format.SampleRate, outputSampleRate, stream)
	}

	s.mu.Lock()
	s.clearLocked()

	ctrl := &beep.Ctrl{Streamer: streamer, Paused: false}
	vol := s.vol
	if vol == nil {
		vol = &effects.Volume{Streamer: ctrl, Base: 2}
	} else {
		vol.Streamer = ctrl
	}

	s.stream = stream
	s.format = format
	s.ctrl = ctrl
	s.vol = vol
	s.startedAt = 0
	s.mu.Unlock()

	done := make(chan struct{})
	seq := beep.Seq(vol, beep.Callback(func() {
		close(done)
		if onDone != nil {
			onDone()
		}
	}))
	speaker.Play(seq)

	return nil
}

func (s *sink) play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

func (s *sink) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *sink) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl == nil || s.ctrl.Paused
}

func (s *sink) setVolume(percent float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vol == nil {
		s.vol = &effects.Volume{Base: 2}
	}
	speaker.Lock()
	if percent <= 0 {
		s.vol.Silent = true
		s.vol.Volume = -5
	} else {
		s.vol.Silent = false
		// maps [0,1] onto the Volume effect's logarithmic scale, following
		// amp's Player.mkVolume: 1.0 => unity gain (Volume == 0).
		s.vol.Volume = (float64(percent) - 1) * 5
	}
	speaker.Unlock()
}

func (s *sink) setMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vol == nil {
		s.vol = &effects.Volume{Base: 2}
	}
	speaker.Lock()
	s.vol.Silent = muted
	speaker.Unlock()
}

// position returns how far into the current track playback has progressed.
func (s *sink) position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil || s.format.SampleRate == 0 {
		return 0
	}
	return s.format.SampleRate.D(s.stream.Position())
}

// duration returns the current track's total length.
func (s *sink) duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil || s.format.SampleRate == 0 {
		return 0
	}
	return s.format.SampleRate.D(s.stream.Len())
}

// seekTo moves the current track to absolute position d, clamped to
// [0, duration()].
func (s *sink) seekTo(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil
	}
	if d < 0 {
		d = 0
	}
	maxSample := s.stream.Len()
	sample := s.format.SampleRate.N(d)
	if sample > maxSample {
		sample = maxSample
	}
	speaker.Lock()
	err := s.stream.Seek(sample)
	speaker.Unlock()
	return err
}
