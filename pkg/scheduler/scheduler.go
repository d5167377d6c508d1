// Package scheduler maintains a queue of entries ordered by monotonic
// deadline and releases the ones that have come due.
package scheduler

import (
	"container/heap"
	"sync"

	"github.com/google/uuid"
	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/timespan"
)

// Entry is a scheduled item.
type Entry struct {
	ID       string
	Deadline timespan.Instant
	Payload  interface{}

	seq int64 // FIFO tiebreak within equal deadlines
	idx int
}

type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Deadline != h[j].Deadline {
		return h[i].Deadline.Before(h[j].Deadline)
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].idx = i
	h[j].idx = j
}

func (h *entryHeap) Push(x interface{}) {
	e := x.(*Entry)
	e.idx = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Queue is a deadline queue backed by a min-heap.
type Queue struct {
	mu      sync.Mutex
	clk     clock.Clock
	entries entryHeap
	byID    map[string]*Entry
	nextSeq int64
}

// NewQueue creates an empty deadline queue.
func NewQueue(clk clock.Clock) *Queue {
	if clk == nil {
		clk = clock.System()
	}
	return &Queue{clk: clk, byID: make(map[string]*Entry)}
}

// ScheduleAt enqueues a payload to come due at the given instant, returning
// the entry's ID.
func (q *Queue) ScheduleAt(deadline timespan.Instant, payload interface{}) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := &Entry{
		ID:       uuid.New().String(),
		Deadline: deadline,
		Payload:  payload,
		seq:      q.nextSeq,
	}
	q.nextSeq++
	heap.Push(&q.entries, e)
	q.byID[e.ID] = e
	return e.ID
}

// ScheduleAfter enqueues a payload to come due after d from now. A negative
// or zero d makes the entry immediately due.
func (q *Queue) ScheduleAfter(d timespan.Duration, payload interface{}) string {
	return q.ScheduleAt(q.clk.Now().Add(d), payload)
}

// Cancel removes an entry by ID, reporting whether it was still queued.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&q.entries, e.idx)
	delete(q.byID, id)
	return true
}

// Due pops and returns every entry whose deadline is at or before the
// clock's current instant, earliest first, FIFO within equal deadlines.
func (q *Queue) Due() []*Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clk.Now()
	var due []*Entry
	for len(q.entries) > 0 && !q.entries[0].Deadline.After(now) {
		e := heap.Pop(&q.entries).(*Entry)
		delete(q.byID, e.ID)
		due = append(due, e)
	}
	return due
}

// Next returns the duration until the earliest deadline and true, or Zero
// and false when the queue is empty. An already-due entry yields a negative
// or zero duration.
func (q *Queue) Next() (timespan.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return timespan.Zero, false
	}
	return q.entries[0].Deadline.Sub(q.clk.Now()), true
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
