package pq

import "errors"

var (
	// ErrEmptyQueue is returned by First and RemoveFirst on an empty queue.
	// Callers are expected to check IsEmpty before asking for the first item.
	ErrEmptyQueue = errors.New("priority queue is empty")
	// ErrNilQueue is returned when a method is called on a nil or freed queue.
	ErrNilQueue = errors.New("priority queue is nil or has been freed")
)
