package pq

import (
	"sync"
)

// SynchronousQueue guards a Queue with a mutex so it can be shared between
// goroutines. Every call holds the lock for its whole duration.
type SynchronousQueue[T any] struct {
	pq *Queue[T]

	mux sync.Mutex
}

// NewSynchronousQueue wraps pq. The caller must not use pq directly afterwards.
func NewSynchronousQueue[T any](pq *Queue[T]) *SynchronousQueue[T] {
	return &SynchronousQueue[T]{
		pq: pq,
	}
}

func (s *SynchronousQueue[T]) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.pq.Len()
}

func (s *SynchronousQueue[T]) IsEmpty() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.pq.IsEmpty()
}

func (s *SynchronousQueue[T]) Insert(item T, priority int) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.pq.Insert(item, priority)
}

func (s *SynchronousQueue[T]) First() (T, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.pq.First()
}

func (s *SynchronousQueue[T]) RemoveFirst() (T, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.pq.RemoveFirst()
}

func (s *SynchronousQueue[T]) Free() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.pq.Free()
}
