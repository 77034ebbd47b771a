package music

import (
	"math/rand"
	"sync"
	"time"
)

// QueueLimit is the maximum number of items one session may hold.
const QueueLimit = 100

// Queue is the ordered collection of pending items for one session.
// Insertion order is playback order except for explicit front-insertion
// and shuffling. Every exported method acquires the owning session's
// mutex for its whole read-modify-write; the session itself uses the
// unexported *Locked variants while already holding that mutex.
type Queue struct {
	mu    *sync.Mutex
	items []QueueItem
}

// NewQueue returns a standalone queue guarding itself with its own mutex.
func NewQueue() *Queue {
	return &Queue{mu: &sync.Mutex{}}
}

// newSessionQueue returns a queue sharing the session's mutex, so that
// queue state and session state mutate under one lock.
func newSessionQueue(mu *sync.Mutex) *Queue {
	return &Queue{mu: mu}
}

// Enqueue appends the item, or prepends it when front is set. Returns
// ErrQueueFull when the queue already holds QueueLimit items.
func (q *Queue) Enqueue(item QueueItem, front bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enqueueLocked(item, front)
}

func (q *Queue) enqueueLocked(item QueueItem, front bool) error {
	if len(q.items) >= QueueLimit {
		return ErrQueueFull
	}
	if front {
		q.items = append([]QueueItem{item}, q.items...)
	} else {
		q.items = append(q.items, item)
	}
	return nil
}

// DequeueFirst removes and returns the head of the queue.
func (q *Queue) DequeueFirst() (QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dequeueFirstLocked()
}

func (q *Queue) dequeueFirstLocked() (QueueItem, error) {
	if len(q.items) == 0 {
		return QueueItem{}, ErrQueueEmpty
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

// Remove deletes the first item whose media identifier matches. Removing
// an absent identifier is a no-op.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(id)
}

func (q *Queue) removeLocked(id string) {
	for i, item := range q.items {
		if SameTrack(item.Track.ID, id) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// RemoveAt deletes and returns the item at the given position.
func (q *Queue) RemoveAt(i int) (QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeAtLocked(i)
}

func (q *Queue) removeAtLocked(i int) (QueueItem, error) {
	if i < 0 || i >= len(q.items) {
		return QueueItem{}, ErrIndexOutOfRange
	}
	item := q.items[i]
	q.items = append(q.items[:i], q.items[i+1:]...)
	return item, nil
}

// Contains reports whether a queued item matches the media identifier.
func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.containsLocked(id)
}

func (q *Queue) containsLocked(id string) bool {
	for _, item := range q.items {
		if SameTrack(item.Track.ID, id) {
			return true
		}
	}
	return false
}

// Shuffle randomises the order of the remaining items in place.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shuffleLocked()
}

func (q *Queue) shuffleLocked() {
	rand.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
}

// Duration sums the durations of all queued items.
func (q *Queue) Duration() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.durationLocked()
}

func (q *Queue) durationLocked() time.Duration {
	var total time.Duration
	for _, item := range q.items {
		total += item.Track.Duration
	}
	return total
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) lenLocked() int {
	return len(q.items)
}

// Items returns a copy of the queue for safe iteration.
func (q *Queue) Items() []QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.itemsLocked()
}

func (q *Queue) itemsLocked() []QueueItem {
	out := make([]QueueItem, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) clearLocked() {
	q.items = nil
}
