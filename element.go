package pq

// element pairs an item with the priority it was inserted under. The queue
// carries item but never inspects it.
type element[T any] struct {
	priority int
	item     T
}
