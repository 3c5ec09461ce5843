package termdb

// fifo is an unbounded FIFO queue.
//
// It is single-threaded: the unifier owns its queue for the duration of one
// call. Items can be rewritten in place with Each, which the unifier uses to
// apply a new binding to every pending equation.
type fifo[T any] struct {
	items []T
}

func newFIFO[T any](capacity int) *fifo[T] {
	return &fifo[T]{items: make([]T, 0, capacity)}
}

// Enqueue adds an item to the back of the queue.
func (q *fifo[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// TryDequeue removes and returns the front item.
// Returns false if the queue is empty.
func (q *fifo[T]) TryDequeue() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	item := q.items[0]
	// Clear the slot so the backing array does not retain the item.
	q.items[0] = zero

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return item, true
}

// Each replaces every queued item with fn(item), front to back.
func (q *fifo[T]) Each(fn func(T) T) {
	for i := range q.items {
		q.items[i] = fn(q.items[i])
	}
}

// Len returns the current queue length.
func (q *fifo[T]) Len() int {
	return len(q.items)
}
