package pq

import (
	"github.com/google/uuid"
)

// Message is a payload submitted to a Dispatcher
// `Priority` orders dispatch, lowest first
// `Payload` is the content of the message
type Message[T any] struct {
	ID       uuid.UUID
	Priority int
	Payload  T
}

// NewMessage creates a Message with a random ID
func NewMessage[T any](payload T, priority int) *Message[T] {
	return &Message[T]{
		ID:       uuid.New(),
		Priority: priority,
		Payload:  payload,
	}
}
