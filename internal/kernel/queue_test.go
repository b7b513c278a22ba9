package kernel

import (
	"testing"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

func songBrief(title string) store.SongBrief {
	return store.SongBrief{ID: store.NewThing(store.TableSong), Title: title, Path: "/music/" + title + ".mp3"}
}

func TestQueueAddStartsPlaybackOnlyWhenEmpty(t *testing.T) {
	q := newQueue()

	if started := q.add([]store.SongBrief{songBrief("a"), songBrief("b")}); !started {
		t.Fatalf("add into empty queue should report started=true")
	}
	if q.current != 0 {
		t.Fatalf("expected current=0 after first add, got %d", q.current)
	}

	if started := q.add([]store.SongBrief{songBrief("c")}); started {
		t.Fatalf("add into non-empty queue should report started=false")
	}
	if len(q.songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(q.songs))
	}
}

func TestQueueSkipClampsAtBoundsRepeatNone(t *testing.T) {
	q := newQueue()
	q.add([]store.SongBrief{songBrief("a"), songBrief("b"), songBrief("c")})
	q.setRepeatMode(RepeatNone)

	q.skipForward(100)
	if q.current != 2 {
		t.Fatalf("skipForward should clamp to last index, got %d", q.current)
	}

	q.skipBackward(100)
	if q.current != 0 {
		t.Fatalf("skipBackward should clamp to 0, got %d", q.current)
	}
}

func TestQueueSkipWrapsRepeatAll(t *testing.T) {
	q := newQueue()
	q.add([]store.SongBrief{songBrief("a"), songBrief("b"), songBrief("c")})
	q.setRepeatMode(RepeatAll)

	q.skipForward(4) // 0 -> 1 -> 2 -> 0 -> 1
	if q.current != 1 {
		t.Fatalf("skipForward should wrap around under RepeatAll, got %d", q.current)
	}

	q.skipBackward(4) // 1 -> 0 -> 2 -> 1 -> 0
	if q.current != 0 {
		t.Fatalf("skipBackward should wrap around under RepeatAll, got %d", q.current)
	}
}

func TestQueueRemoveRangeSnapsCurrent(t *testing.T) {
	q := newQueue()
	q.add([]store.SongBrief{songBrief("a"), songBrief("b"), songBrief("c"), songBrief("d")})
	q.setPosition(2) // "c"

	q.removeRange(1, 3) // removes "b", "c" -- current index was inside the range

	if q.isEmpty() {
		t.Fatalf("queue should not be empty after partial removal")
	}
	if q.currentSong().Title != "d" {
		t.Fatalf("expected current to snap to 'd', got %q", q.currentSong().Title)
	}
}

func TestQueueRemoveRangeEmptiesQueue(t *testing.T) {
	q := newQueue()
	q.add([]store.SongBrief{songBrief("a"), songBrief("b")})

	q.removeRange(0, 2)

	if !q.isEmpty() {
		t.Fatalf("expected queue to be empty")
	}
	if q.currentSong() != nil {
		t.Fatalf("expected no current song after emptying queue")
	}
	if q.queuePosition() != nil {
		t.Fatalf("expected nil queue position after emptying queue")
	}
}

func TestQueuePlayNextRepeatNoneStopsAtEnd(t *testing.T) {
	q := newQueue()
	q.add([]store.SongBrief{songBrief("a"), songBrief("b")})
	q.setRepeatMode(RepeatNone)
	q.setPosition(1)

	next, stopped := q.playNext()
	if !stopped || next != nil {
		t.Fatalf("expected RepeatNone to stop at end of queue, got next=%v stopped=%v", next, stopped)
	}
}

func TestQueuePlayNextRepeatAllWraps(t *testing.T) {
	q := newQueue()
	q.add([]store.SongBrief{songBrief("a"), songBrief("b")})
	q.setRepeatMode(RepeatAll)
	q.setPosition(1)

	next, stopped := q.playNext()
	if stopped {
		t.Fatalf("RepeatAll should not stop")
	}
	if next == nil || next.Title != "a" {
		t.Fatalf("expected RepeatAll to wrap to first song, got %v", next)
	}
}

func TestQueuePlayNextRepeatOneRestartsSameSong(t *testing.T) {
	q := newQueue()
	q.add([]store.SongBrief{songBrief("a"), songBrief("b")})
	q.setRepeatMode(RepeatOne)
	q.setPosition(0)

	next, stopped := q.playNext()
	if stopped {
		t.Fatalf("RepeatOne should not stop")
	}
	if next == nil || next.Title != "a" || q.current != 0 {
		t.Fatalf("expected RepeatOne to restart same song, got %v (current=%d)", next, q.current)
	}
}

func TestQueueShuffleResetsCurrentToZero(t *testing.T) {
	q := newQueue()
	q.add([]store.SongBrief{songBrief("a"), songBrief("b"), songBrief("c")})
	q.setPosition(2)

	q.shuffle()

	if q.current != 0 {
		t.Fatalf("shuffle should reset current to 0, got %d", q.current)
	}
	if len(q.songs) != 3 {
		t.Fatalf("shuffle must not drop songs")
	}
}
