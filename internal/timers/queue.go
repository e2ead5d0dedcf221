package timers

import (
	"sort"
	"sync"
	"time"

	"github.com/warpdl/warpjs/internal/clock"
)

// Queue holds pending timers. It is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	clock  clock.Clock
	h      entryHeap
	nextID int64
	// inflight tracks repeating entries that were popped and are being run;
	// the value is true once the entry was canceled during its own turn.
	inflight map[int64]bool
}

// NewQueue returns an empty queue reading time from c.
func NewQueue(c clock.Clock) *Queue {
	if c == nil {
		c = clock.NewReal()
	}
	return &Queue{
		clock:    c,
		inflight: make(map[int64]bool),
	}
}

// Schedule adds a one-shot timer firing delay from now.
func (q *Queue) Schedule(delay time.Duration, callback any) (int64, error) {
	if delay < 0 {
		return 0, ErrInvalidDelay
	}
	return q.push(delay, 0, callback), nil
}

// ScheduleRepeating adds a timer firing every interval, first after one
// interval. Intervals below MinInterval are raised to it.
func (q *Queue) ScheduleRepeating(interval time.Duration, callback any) (int64, error) {
	if interval < 0 {
		return 0, ErrInvalidDelay
	}
	if interval < MinInterval {
		interval = MinInterval
	}
	return q.push(interval, interval, callback), nil
}

func (q *Queue) push(delay, interval time.Duration, callback any) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	heapPush(&q.h, Entry{
		ID:       q.nextID,
		FireAt:   q.clock.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	})
	return q.nextID
}

// Cancel removes a pending timer. Unknown or already fired ids are a no-op
// returning false. Canceling a repeating timer from inside its own callback
// prevents it from being rescheduled.
func (q *Queue) Cancel(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if heapRemoveByID(&q.h, id) {
		return true
	}
	if canceled, ok := q.inflight[id]; ok && !canceled {
		q.inflight[id] = true
		return true
	}
	return false
}

// NextDue returns the earliest pending entry without removing it.
func (q *Queue) NextDue() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return Entry{}, false
	}
	return q.h[0], true
}

// Pop removes and returns the earliest pending entry regardless of its
// fire time.
func (q *Queue) Pop() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// PopDue removes and returns the earliest entry if its fire time is not
// after now.
func (q *Queue) PopDue(now time.Time) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 || q.h[0].FireAt.After(now) {
		return Entry{}, false
	}
	return q.popLocked()
}

func (q *Queue) popLocked() (Entry, bool) {
	if len(q.h) == 0 {
		return Entry{}, false
	}
	e := heapPop(&q.h)
	if e.Repeating() {
		q.inflight[e.ID] = false
	}
	return e, true
}

// Done must be called once the callback of a popped repeating entry has
// completed. The entry is pushed back one interval after its previous fire
// time unless it was canceled meanwhile. Calling Done for a one-shot entry
// is a no-op.
func (q *Queue) Done(e Entry) {
	if !e.Repeating() {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	canceled, ok := q.inflight[e.ID]
	delete(q.inflight, e.ID)
	if !ok || canceled {
		return
	}
	next := e.FireAt.Add(e.Interval)
	if now := q.clock.Now(); next.Before(now) {
		// missed ticks are coalesced into one
		next = now
	}
	e.FireAt = next
	heapPush(&q.h, e)
}

// Len returns the number of pending timers.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// Snapshot returns the pending entries in firing order.
func (q *Queue) Snapshot() []Entry {
	q.mu.Lock()
	out := make([]Entry, len(q.h))
	copy(out, q.h)
	q.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].before(out[j]) })
	return out
}
