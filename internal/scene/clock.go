package scene

import (
	"sync"
	"time"
)

// Clock supplies wall-clock time to the driver.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// SecondsSinceMidnight returns the seconds elapsed since local midnight of t.
// Windows started at different times share this time base, so their cubes
// rotate in phase.
func SecondsSinceMidnight(t time.Time) float64 {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return t.Sub(midnight).Seconds()
}

// FrameQueue is a Scheduler whose callbacks run when the owner flushes it,
// once per host tick. Tests flush it by hand to step frames.
type FrameQueue struct {
	mu      sync.Mutex
	pending []func()
}

// RequestFrame queues fn for the next flush.
func (q *FrameQueue) RequestFrame(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Flush runs the callbacks queued before the call. Callbacks queued while
// flushing wait for the next flush. It returns the number run.
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Pending reports the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
