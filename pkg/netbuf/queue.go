package netbuf

import (
	"context"
	"sync/atomic"
)

// Queue is a FIFO handing buffers from exactly one producer to exactly
// one consumer.
//
// Put never blocks, so the producer may run in interrupt context. Get
// blocks until a buffer arrives.
type Queue struct {
	slots  []*Buffer
	mask   uint64
	head   atomic.Uint64 // next slot to consume, written by consumer
	tail   atomic.Uint64 // next slot to fill, written by producer
	notify chan struct{}
}

// NewQueue creates a Queue holding at least capacity buffers.
func NewQueue(capacity int) *Queue {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Queue{
		slots:  make([]*Buffer, size),
		mask:   uint64(size - 1),
		notify: make(chan struct{}, 1),
	}
}

// Cap returns the number of slots.
func (q *Queue) Cap() int {
	return len(q.slots)
}

// Len returns the number of queued buffers.
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Put appends a buffer. It returns false if the queue is full.
func (q *Queue) Put(buf *Buffer) bool {
	t := q.tail.Load()
	if t-q.head.Load() >= uint64(len(q.slots)) {
		return false
	}
	q.slots[t&q.mask] = buf
	q.tail.Store(t + 1)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// TryGet removes the oldest buffer, or returns nil if the queue is empty.
func (q *Queue) TryGet() *Buffer {
	h := q.head.Load()
	if h == q.tail.Load() {
		return nil
	}
	slot := &q.slots[h&q.mask]
	buf := *slot
	*slot = nil
	q.head.Store(h + 1)
	return buf
}

// Get removes the oldest buffer, waiting as long as it takes for one.
// It only fails when ctx is done.
func (q *Queue) Get(ctx context.Context) (*Buffer, error) {
	for {
		if buf := q.TryGet(); buf != nil {
			return buf, nil
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
