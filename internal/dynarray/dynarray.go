// Package dynarray provides the resizable, index-addressable storage that the
// priority queue keeps its heap in. It has no ordering semantics of its own.
package dynarray

import "fmt"

// IndexError is the panic value for an out-of-range access.
type IndexError struct {
	Op    string
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("dynarray: %s index %d out of range [0, %d)", e.Op, e.Index, e.Size)
}

// Array is a zero-indexed growable sequence of T.
type Array[T any] struct {
	data []T
}

// New creates an empty array with room for capacity elements before growing.
func New[T any](capacity int) *Array[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Array[T]{
		data: make([]T, 0, capacity),
	}
}

// Size returns the number of elements in the array.
func (a *Array[T]) Size() int {
	return len(a.data)
}

// Capacity returns how many elements fit before the next growth.
func (a *Array[T]) Capacity() int {
	return cap(a.data)
}

// Get returns the element at index i.
func (a *Array[T]) Get(i int) T {
	a.check("get", i, len(a.data))
	return a.data[i]
}

// Set overwrites the element at index i.
func (a *Array[T]) Set(i int, v T) {
	a.check("set", i, len(a.data))
	a.data[i] = v
}

// Insert places v at index i, shifting every element at or after i one slot
// right. Inserting at Size() appends.
func (a *Array[T]) Insert(i int, v T) {
	a.check("insert", i, len(a.data)+1)
	if i == len(a.data) {
		a.data = append(a.data, v)
		return
	}

	var zero T
	a.data = append(a.data, zero)
	copy(a.data[i+1:], a.data[i:])
	a.data[i] = v
}

// Append adds v after the last element.
func (a *Array[T]) Append(v T) {
	a.data = append(a.data, v)
}

// Remove deletes the element at index i, shifting every element after i one
// slot left.
func (a *Array[T]) Remove(i int) {
	a.check("remove", i, len(a.data))
	n := len(a.data)
	copy(a.data[i:], a.data[i+1:])

	var zero T
	a.data[n-1] = zero // avoid memory leak
	a.data = a.data[:n-1]
}

// Swap exchanges the elements at indices i and j.
func (a *Array[T]) Swap(i, j int) {
	a.check("swap", i, len(a.data))
	a.check("swap", j, len(a.data))
	a.data[i], a.data[j] = a.data[j], a.data[i]
}

// Free drops the backing storage. The array is empty afterwards and may be
// reused.
func (a *Array[T]) Free() {
	clear(a.data)
	a.data = nil
}

func (a *Array[T]) check(op string, i, limit int) {
	if i < 0 || i >= limit {
		panic(&IndexError{Op: op, Index: i, Size: len(a.data)})
	}
}
