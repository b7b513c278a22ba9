package kernel

import (
	"math/rand"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// queue is the kernel's ordered song list plus a "current index", private
// to this package: only the kernel goroutine touches it (spec.md §3
// "Ownership" / §4.5 "Queue semantics").
type queue struct {
	songs      []store.SongBrief
	current    int // -1 means "no current song" (empty queue)
	repeatMode RepeatMode
}

func newQueue() *queue {
	return &queue{current: -1}
}

func (q *queue) isEmpty() bool { return len(q.songs) == 0 }

func (q *queue) currentSong() *store.SongBrief {
	if q.current < 0 || q.current >= len(q.songs) {
		return nil
	}
	s := q.songs[q.current]
	return &s
}

// add appends songs; if the queue was empty, playback starts at index 0
// (spec.md §4.5 "Queue(Add(...))... if queue was empty, start playback").
// Returns whether the queue transitioned from empty to non-empty.
func (q *queue) add(songs []store.SongBrief) bool {
	wasEmpty := q.isEmpty()
	q.songs = append(q.songs, songs...)
	if wasEmpty && len(q.songs) > 0 {
		q.current = 0
		return true
	}
	return false
}

// stepForward advances current by one song per repeatMode, the same switch
// playNext uses for a natural song-end advance: RepeatOne holds on the
// current song, RepeatAll wraps to the start, anything else stops at the
// last index. Returns whether the step hit the end without wrapping.
func (q *queue) stepForward() (stopped bool) {
	switch q.repeatMode {
	case RepeatOne:
		return false
	case RepeatAll:
		q.current++
		if q.current >= len(q.songs) {
			q.current = 0
		}
		return false
	default:
		if q.current+1 >= len(q.songs) {
			q.current = len(q.songs) - 1
			return true
		}
		q.current++
		return false
	}
}

// stepBackward is stepForward's mirror image for skipping backward.
func (q *queue) stepBackward() (stopped bool) {
	switch q.repeatMode {
	case RepeatOne:
		return false
	case RepeatAll:
		q.current--
		if q.current < 0 {
			q.current = len(q.songs) - 1
		}
		return false
	default:
		if q.current-1 < 0 {
			q.current = 0
			return true
		}
		q.current--
		return false
	}
}

// skipForward moves current forward by n songs, one repeat-mode-aware step
// at a time: it stops at the end or wraps around depending on repeatMode
// (spec.md §8 "SkipForward(n) with n > remaining: stops at end or wraps per
// repeat mode"), mirroring playNext's overflow handling instead of a plain
// clamp. An explicit skip always moves: under RepeatOne it steps the way
// RepeatNone does, so RepeatOne holds on the current song only in playNext.
func (q *queue) skipForward(n int) {
	if q.isEmpty() {
		return
	}
	if q.repeatMode == RepeatOne {
		q.repeatMode = RepeatNone
		defer q.setRepeatMode(RepeatOne)
	}
	for i := 0; i < n; i++ {
		if stopped := q.stepForward(); stopped {
			return
		}
	}
}

// skipBackward is skipForward's mirror image.
func (q *queue) skipBackward(n int) {
	if q.isEmpty() {
		return
	}
	if q.repeatMode == RepeatOne {
		q.repeatMode = RepeatNone
		defer q.setRepeatMode(RepeatOne)
	}
	for i := 0; i < n; i++ {
		if stopped := q.stepBackward(); stopped {
			return
		}
	}
}

// setPosition jumps directly to index i, clamped into range.
func (q *queue) setPosition(i int) {
	if q.isEmpty() {
		q.current = -1
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(q.songs) {
		i = len(q.songs) - 1
	}
	q.current = i
}

// removeRange deletes songs[start:end), snapping current to the nearest
// surviving position, or to -1 if the queue is emptied (spec.md §4.5
// "removal that contains the current index snaps the current index to the
// nearest surviving position (or stops if queue emptied)").
func (q *queue) removeRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(q.songs) {
		end = len(q.songs)
	}
	if start >= end {
		return
	}

	removedCurrent := q.current >= start && q.current < end
	shiftBy := end - start

	q.songs = append(q.songs[:start], q.songs[end:]...)

	switch {
	case q.isEmpty():
		q.current = -1
	case removedCurrent:
		if start >= len(q.songs) {
			q.current = len(q.songs) - 1
		} else {
			q.current = start
		}
	case q.current >= end:
		q.current -= shiftBy
	}
}

func (q *queue) clear() {
	q.songs = nil
	q.current = -1
}

// shuffle reorders the queue (Fisher-Yates) then resets current to 0
// (spec.md §4.5 "Shuffle reorders the queue then resets current index to 0
// and begins playback").
func (q *queue) shuffle() {
	if len(q.songs) < 2 {
		if !q.isEmpty() {
			q.current = 0
		}
		return
	}
	rand.Shuffle(len(q.songs), func(i, j int) {
		q.songs[i], q.songs[j] = q.songs[j], q.songs[i]
	})
	q.current = 0
}

// playNext advances on "song finished", per RepeatMode (spec.md §4.5
// "Repeat behaviour on PlayNextSong"). Returns the new current song (nil if
// playback should stop) and whether the queue stopped.
func (q *queue) playNext() (next *store.SongBrief, stopped bool) {
	if q.isEmpty() {
		return nil, true
	}
	if q.stepForward() {
		return nil, true
	}
	return q.currentSong(), false
}

func (q *queue) setRepeatMode(mode RepeatMode) {
	q.repeatMode = mode
}

// queuePosition returns the current index as a spec.md "Option" style
// pointer: nil when the queue is empty.
func (q *queue) queuePosition() *int {
	if q.current < 0 {
		return nil
	}
	i := q.current
	return &i
}
