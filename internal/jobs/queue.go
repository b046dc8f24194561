package jobs

import "sync"

// fifo is an unbounded FIFO of job identifiers. Enqueue never blocks;
// Dequeue blocks until an item arrives or the queue is closed.
type fifo struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []string
	closed bool
}

func newFIFO() *fifo {
	q := &fifo{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an id. Pushing to a closed queue is a no-op.
func (q *fifo) Enqueue(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, id)
	q.cond.Signal()
}

// Dequeue removes the oldest id, blocking while the queue is empty.
// Returns false once the queue is closed.
func (q *fifo) Dequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return "", false
	}
	id := q.items[0]
	q.items = q.items[1:]
	return id, true
}

// Close wakes all blocked consumers; pending items are discarded
func (q *fifo) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Len reports the number of queued ids
func (q *fifo) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
