package music

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestQueueEnqueueOrder(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 3; i++ {
		item := QueueItem{Track: testTrack(fmt.Sprintf("t%d", i), time.Minute), RequesterID: "u1"}
		if err := q.Enqueue(item, false); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	first, err := q.DequeueFirst()
	if err != nil {
		t.Fatalf("DequeueFirst: %v", err)
	}
	if first.Track.ID != "t0" {
		t.Errorf("got %q, want t0", first.Track.ID)
	}
	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2", q.Len())
	}
}

func TestQueueEnqueueFront(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueueItem{Track: testTrack("back", time.Minute)}, false)
	q.Enqueue(QueueItem{Track: testTrack("front", time.Minute)}, true)

	first, _ := q.DequeueFirst()
	if first.Track.ID != "front" {
		t.Errorf("got %q, want front", first.Track.ID)
	}
}

func TestQueueLimit(t *testing.T) {
	q := NewQueue()
	for i := 0; i < QueueLimit; i++ {
		if err := q.Enqueue(QueueItem{Track: testTrack(fmt.Sprintf("t%d", i), time.Minute)}, false); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}
	err := q.Enqueue(QueueItem{Track: testTrack("overflow", time.Minute)}, false)
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("got %v, want ErrQueueFull", err)
	}
	if q.Len() != QueueLimit {
		t.Errorf("Len = %d, want %d", q.Len(), QueueLimit)
	}
}

func TestQueueDequeueEmpty(t *testing.T) {
	q := NewQueue()
	if _, err := q.DequeueFirst(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("got %v, want ErrQueueEmpty", err)
	}
}

func TestQueueContainsCaseInsensitive(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueueItem{Track: testTrack("AbCdEf", time.Minute)}, false)

	for _, id := range []string{"AbCdEf", "abcdef", "ABCDEF"} {
		if !q.Contains(id) {
			t.Errorf("Contains(%q) = false, want true", id)
		}
	}
	if q.Contains("other") {
		t.Error("Contains(other) = true, want false")
	}
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueueItem{Track: testTrack("a", time.Minute)}, false)
	q.Enqueue(QueueItem{Track: testTrack("b", time.Minute)}, false)

	q.Remove("a")
	if q.Contains("a") {
		t.Error("a still present after Remove")
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1", q.Len())
	}

	// Removing an absent id is a no-op.
	q.Remove("missing")
	if q.Len() != 1 {
		t.Errorf("Len = %d after no-op remove, want 1", q.Len())
	}
}

func TestQueueRemoveAt(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueueItem{Track: testTrack("a", time.Minute)}, false)
	q.Enqueue(QueueItem{Track: testTrack("b", time.Minute)}, false)

	item, err := q.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if item.Track.ID != "b" {
		t.Errorf("got %q, want b", item.Track.ID)
	}

	for _, i := range []int{-1, 5} {
		if _, err := q.RemoveAt(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("RemoveAt(%d) = %v, want ErrIndexOutOfRange", i, err)
		}
	}
}

func TestQueueDuration(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueueItem{Track: testTrack("a", 2*time.Minute)}, false)
	q.Enqueue(QueueItem{Track: testTrack("b", 3*time.Minute)}, false)

	if got := q.Duration(); got != 5*time.Minute {
		t.Errorf("Duration = %v, want 5m", got)
	}
}

func TestQueueShuffleKeepsItems(t *testing.T) {
	q := NewQueue()
	want := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("t%d", i)
		want[id] = true
		q.Enqueue(QueueItem{Track: testTrack(id, time.Minute)}, false)
	}

	q.Shuffle()

	items := q.Items()
	if len(items) != 20 {
		t.Fatalf("Len = %d after shuffle, want 20", len(items))
	}
	for _, item := range items {
		if !want[item.Track.ID] {
			t.Errorf("unexpected item %q after shuffle", item.Track.ID)
		}
	}
}

func TestQueueItemsIsCopy(t *testing.T) {
	q := NewQueue()
	q.Enqueue(QueueItem{Track: testTrack("a", time.Minute)}, false)

	items := q.Items()
	items[0] = QueueItem{Track: testTrack("mutated", time.Minute)}

	if !q.Contains("a") {
		t.Error("mutating the snapshot changed the queue")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{42 * time.Second, "0:42"},
		{3 * time.Minute, "3:00"},
		{61 * time.Minute, "1:01:00"},
		{3*time.Hour + 5*time.Second, "3:00:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
