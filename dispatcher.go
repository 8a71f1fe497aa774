package pq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// dispatcherState represents state for a Dispatcher
type dispatcherState int

const (
	Paused dispatcherState = iota
	Processing
	Shutdown
)

func (s dispatcherState) String() string {
	switch s {
	case Paused:
		return "paused"
	case Processing:
		return "processing"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

var (
	ErrDispatcherRunning  = errors.New("dispatcher is already running")
	ErrDispatcherPaused   = errors.New("dispatcher is already paused")
	ErrDispatcherShutdown = errors.New("dispatcher is shutting down")
	ErrShutdownDeadline   = errors.New("failed to gracefully drain and shutdown dispatcher within deadline")
)

// Dispatcher buffers messages from its ingress channel and hands them to its
// dispatch channel lowest priority first. A single goroutine owns the
// underlying queue while processing.
type Dispatcher[T any] struct {
	mux         sync.Mutex
	state       dispatcherState
	maxMessages int

	pq     *SynchronousQueue[*Message[T]]
	logger *slog.Logger

	ingressChannel  chan *Message[T]
	dispatchChannel chan *Message[T]
	drained         chan struct{}
	stopProcess     chan struct{}
	stopped         chan struct{}
}

// NewDispatcher creates a new instance of a Dispatcher
func NewDispatcher[T any](config *DispatcherConfig) (*Dispatcher[T], error) {
	if config == nil {
		return nil, errors.New("config should not be nil")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	queue, err := NewQueue[*Message[T]](&config.Queue)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Dispatcher[T]{
		maxMessages:     config.MaxMessages,
		pq:              NewSynchronousQueue(queue),
		logger:          logger.With("component", "dispatcher"),
		ingressChannel:  make(chan *Message[T], config.IngressChannelSize),
		dispatchChannel: make(chan *Message[T], config.DispatchChannelSize),
		drained:         make(chan struct{}),
	}, nil
}

// Start processes messages until the Dispatcher is paused or has drained
// after Shutdown. It blocks, so callers normally run it in its own goroutine.
func (d *Dispatcher[T]) Start() error {
	d.mux.Lock()
	switch d.state {
	case Shutdown:
		d.mux.Unlock()
		return ErrDispatcherShutdown
	case Processing:
		d.mux.Unlock()
		return ErrDispatcherRunning
	}

	d.state = Processing
	stop, stopped := d.newRun()
	d.mux.Unlock()

	d.logger.Debug("processing started", "buffered", d.pq.Len())
	d.process(stop, stopped)
	return nil
}

// Pause stops processing and returns once the processing goroutine has
// exited. Buffered messages are kept.
func (d *Dispatcher[T]) Pause() error {
	d.mux.Lock()
	switch d.state {
	case Shutdown:
		d.mux.Unlock()
		return fmt.Errorf("%w and cannot be paused", ErrDispatcherShutdown)
	case Paused:
		d.mux.Unlock()
		return ErrDispatcherPaused
	}

	d.state = Paused
	close(d.stopProcess)
	stopped := d.stopped
	d.mux.Unlock()

	<-stopped
	d.logger.Debug("processing paused", "buffered", d.pq.Len())
	return nil
}

// Resume restarts processing after Pause. Like Start, it blocks.
func (d *Dispatcher[T]) Resume() error {
	return d.Start()
}

// Shutdown closes the ingress channel and waits for every buffered message to
// be dispatched, then closes the dispatch channel. If ctx ends first the
// remaining messages are abandoned and ErrShutdownDeadline is returned.
//
// No message may be sent on the ingress channel once Shutdown is called.
func (d *Dispatcher[T]) Shutdown(ctx context.Context) error {
	d.mux.Lock()
	if d.state == Shutdown {
		d.mux.Unlock()
		return ErrDispatcherShutdown
	}

	// a paused dispatcher has no processing goroutine to drain with
	wasPaused := d.state == Paused
	d.state = Shutdown
	close(d.ingressChannel)

	stop, stopped := d.stopProcess, d.stopped
	if wasPaused {
		stop, stopped = d.newRun()
	}
	d.mux.Unlock()

	if wasPaused {
		go d.process(stop, stopped)
	}
	d.logger.Debug("shutting down", "buffered", d.pq.Len())

	defer d.pq.Free()
	defer close(d.dispatchChannel)

	select {
	case <-d.drained:
		<-stopped
		return nil
	case <-ctx.Done():
		close(stop)
		<-stopped
	}

	select {
	case <-d.drained:
		return nil
	default:
	}

	abandoned := d.pq.Len() + len(d.ingressChannel)
	d.logger.Warn("abandoned messages at shutdown", "count", abandoned, "error", ctx.Err())
	return fmt.Errorf("%w: %d messages abandoned", ErrShutdownDeadline, abandoned)
}

// Len returns the number of messages buffered in the queue.
func (d *Dispatcher[T]) Len() int {
	return d.pq.Len()
}

// IngressChannel returns the send-only channel of type `*Message`
func (d *Dispatcher[T]) IngressChannel() chan<- *Message[T] {
	return d.ingressChannel
}

// DispatchChannel returns the receive-only channel of type `*Message`
func (d *Dispatcher[T]) DispatchChannel() <-chan *Message[T] {
	return d.dispatchChannel
}

// newRun allocates the signals for one processing goroutine. Callers hold mux.
func (d *Dispatcher[T]) newRun() (chan struct{}, chan struct{}) {
	d.stopProcess = make(chan struct{})
	d.stopped = make(chan struct{})
	return d.stopProcess, d.stopped
}

// process handles the ingress and dispatching of messages
func (d *Dispatcher[T]) process(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ingress := d.ingressChannel
	for {
		select {
		case <-stop:
			return
		default:
		}

		// skip ingest to prevent the queue from exceeding maxMessages
		in := ingress
		if d.pq.Len() >= d.maxMessages {
			in = nil
		}

		// take everything already submitted before choosing what to dispatch
		select {
		case msg, ok := <-in:
			if !ok {
				ingress = nil
			} else {
				d.enqueue(msg)
			}
			continue
		default:
		}

		if ingress == nil && d.pq.IsEmpty() {
			close(d.drained)
			return
		}

		var (
			out  chan<- *Message[T]
			next *Message[T]
		)
		if !d.pq.IsEmpty() {
			next, _ = d.pq.First()
			out = d.dispatchChannel
		}

		select {
		case <-stop:
			return
		case msg, ok := <-in:
			if !ok {
				ingress = nil
			} else {
				d.enqueue(msg)
			}
		case out <- next:
			_, _ = d.pq.RemoveFirst()
		}
	}
}

func (d *Dispatcher[T]) enqueue(msg *Message[T]) {
	if msg == nil {
		return
	}
	if err := d.pq.Insert(msg, msg.Priority); err != nil {
		d.logger.Error("failed to buffer message", "id", msg.ID, "error", err)
	}
}
