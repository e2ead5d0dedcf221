package httpbind

import "sync"

// DefaultQueueSize is the capacity used when a Queue is created with a
// non-positive size.
const DefaultQueueSize = 64

// Queue is a bounded FIFO of requests waiting for the script thread.
type Queue struct {
	mu    sync.Mutex
	buf   []*PendingRequest
	head  int
	n     int
	ready chan struct{}
}

// NewQueue returns a queue holding at most size requests.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		buf:   make([]*PendingRequest, size),
		ready: make(chan struct{}, 1),
	}
}

// Push appends r. It returns false without queuing when the queue is full.
func (q *Queue) Push(r *PendingRequest) bool {
	q.mu.Lock()
	if q.n == len(q.buf) {
		q.mu.Unlock()
		return false
	}
	q.buf[(q.head+q.n)%len(q.buf)] = r
	q.n++
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Peek returns the oldest request without removing it.
func (q *Queue) Peek() (*PendingRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n == 0 {
		return nil, false
	}
	return q.buf[q.head], true
}

// Pop removes and returns the oldest request.
func (q *Queue) Pop() (*PendingRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n == 0 {
		return nil, false
	}
	r := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return r, true
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Ready is signaled after every successful Push. A receive does not imply
// the queue is still non-empty.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}
