// Package queue provides the unbounded FIFO that connects input transports,
// capture loops, schedulers and output transports.
package queue

import "sync"

const minCapacity = 16

// Queue is an unbounded, multi-producer/multi-consumer FIFO.
// Push and Pop never block; an empty queue is a normal state.
// The zero value is ready to use.
type Queue[T any] struct {
	mu    sync.Mutex
	buf   []T
	head  int
	count int

	once   sync.Once
	notify chan struct{}
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends item at the tail and wakes one idle consumer.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	if q.count == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.count)%len(q.buf)] = item
	q.count++
	q.mu.Unlock()

	select {
	case q.signal() <- struct{}{}:
	default:
	}
}

// Pop removes and returns the head item. ok is false when the queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return item, false
	}
	var zero T
	item = q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return item, true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Notify returns a channel that receives a signal after pushes. At most one
// signal is buffered, so a consumer must drain the queue after waking.
func (q *Queue[T]) Notify() <-chan struct{} {
	return q.signal()
}

// Drain pops every queued item in order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, 0, q.count)
	var zero T
	for q.count > 0 {
		out = append(out, q.buf[q.head])
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
		q.count--
	}
	return out
}

func (q *Queue[T]) signal() chan struct{} {
	q.once.Do(func() {
		q.notify = make(chan struct{}, 1)
	})
	return q.notify
}

// grow doubles the ring, unwrapping it so head becomes 0. Caller holds mu.
func (q *Queue[T]) grow() {
	size := len(q.buf) * 2
	if size < minCapacity {
		size = minCapacity
	}
	buf := make([]T, size)
	for i := 0; i < q.count; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
