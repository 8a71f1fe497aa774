package pq

import (
	"fmt"
	"strings"

	"github.com/millelog/pq/internal/dynarray"
)

// DefaultInitialCapacity is the heap capacity allocated by New.
const DefaultInitialCapacity = 16

// Queue is a binary min-heap of items keyed by integer priority. The item with
// the numerically lowest priority is always at the root.
//
// A Queue is not safe for concurrent use; see SynchronousQueue.
type Queue[T any] struct {
	heap *dynarray.Array[element[T]]
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		heap: dynarray.New[element[T]](DefaultInitialCapacity),
	}
}

// NewQueue creates an empty queue sized by config. A nil config uses the
// defaults.
func NewQueue[T any](config *QueueConfig) (*Queue[T], error) {
	if config == nil {
		return New[T](), nil
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Queue[T]{
		heap: dynarray.New[element[T]](config.InitialCapacity),
	}, nil
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	if q == nil || q.heap == nil {
		return 0
	}
	return q.heap.Size()
}

// IsEmpty reports whether the queue holds no items.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Insert adds item to the queue under priority.
func (q *Queue[T]) Insert(item T, priority int) error {
	if q == nil || q.heap == nil {
		return ErrNilQueue
	}
	q.heap.Append(element[T]{priority: priority, item: item})
	q.percolateUp(q.heap.Size() - 1)
	return nil
}

// First returns the item with the lowest priority without removing it.
func (q *Queue[T]) First() (T, error) {
	root, err := q.root()
	return root.item, err
}

// FirstPriority returns the priority of the item First would return.
func (q *Queue[T]) FirstPriority() (int, error) {
	root, err := q.root()
	return root.priority, err
}

// RemoveFirst removes and returns the item with the lowest priority.
func (q *Queue[T]) RemoveFirst() (T, error) {
	root, err := q.root()
	if err != nil {
		return root.item, err
	}

	// the last element takes the root slot and sinks from there
	last := q.heap.Size() - 1
	if last > 0 {
		q.heap.Set(0, q.heap.Get(last))
	}
	q.heap.Remove(last)
	if last > 1 {
		q.percolateDown(0)
	}
	return root.item, nil
}

// Free releases the heap storage. Items are left untouched; the caller still
// owns them. Any later call on q reports ErrNilQueue or behaves as empty.
func (q *Queue[T]) Free() {
	if q == nil || q.heap == nil {
		return
	}
	q.heap.Free()
	q.heap = nil
}

// String renders every heap slot with its priority, in array order.
func (q *Queue[T]) String() string {
	var sb strings.Builder
	for i := 0; i < q.Len(); i++ {
		fmt.Fprintf(&sb, "index: %d priority: %d\n", i, q.heap.Get(i).priority)
	}
	return sb.String()
}

func (q *Queue[T]) root() (element[T], error) {
	if q == nil || q.heap == nil {
		return element[T]{}, ErrNilQueue
	}
	if q.heap.Size() == 0 {
		return element[T]{}, ErrEmptyQueue
	}
	return q.heap.Get(0), nil
}

func (q *Queue[T]) less(i, j int) bool {
	return q.heap.Get(i).priority < q.heap.Get(j).priority
}

// percolateUp moves the element at index i towards the root while it is
// strictly smaller than its parent.
func (q *Queue[T]) percolateUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			return
		}
		q.heap.Swap(i, parent)
		i = parent
	}
}

// percolateDown moves the element at index i towards the leaves, always
// trading places with the smaller child, until neither child is smaller.
func (q *Queue[T]) percolateDown(i int) {
	n := q.heap.Size()
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && q.less(left, smallest) {
			smallest = left
		}
		if right < n && q.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}

		q.heap.Swap(i, smallest)
		i = smallest
	}
}
