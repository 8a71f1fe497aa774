package pq

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (d *Dispatcher[T]) currentState() dispatcherState {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.state
}

func waitForState[T any](t *testing.T, d *Dispatcher[T], want dispatcherState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return d.currentState() == want
	}, time.Second, time.Millisecond)
}

func receive[T any](t *testing.T, d *Dispatcher[T]) *Message[T] {
	t.Helper()
	select {
	case msg, ok := <-d.DispatchChannel():
		require.True(t, ok, "dispatch channel closed")
		return msg
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for a dispatched message")
		return nil
	}
}

func TestNewDispatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *DispatcherConfig
		wantErr bool
	}{
		{"valid", &DispatcherConfig{MaxMessages: 1}, false},
		{"buffered", &DispatcherConfig{IngressChannelSize: 10, DispatchChannelSize: 10, MaxMessages: 10}, false},
		{"nil", nil, true},
		{"zeroMaxMessages", &DispatcherConfig{}, true},
		{"negativeIngress", &DispatcherConfig{IngressChannelSize: -1, MaxMessages: 1}, true},
		{"negativeCapacity", &DispatcherConfig{MaxMessages: 1, Queue: QueueConfig{InitialCapacity: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDispatcher[string](tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Paused, d.currentState())
			assert.Equal(t, 0, d.Len())
		})
	}
}

func TestDispatcher_PriorityOrder(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher[string](&DispatcherConfig{
		IngressChannelSize: 10,
		MaxMessages:        100,
	})
	require.NoError(t, err)

	for _, p := range []int{5, 1, 4, 2, 3} {
		d.IngressChannel() <- NewMessage("message", p)
	}
	go func() { _ = d.Start() }()

	var got []int
	for i := 0; i < 5; i++ {
		got = append(got, receive(t, d).Priority)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)

	require.NoError(t, d.Shutdown(context.Background()))
	_, ok := <-d.DispatchChannel()
	assert.False(t, ok)
}

func TestDispatcher_MaxMessages(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher[int](&DispatcherConfig{
		IngressChannelSize: 10,
		MaxMessages:        2,
	})
	require.NoError(t, err)

	for _, p := range []int{5, 4, 3, 2, 1} {
		d.IngressChannel() <- NewMessage(p, p)
	}
	go func() { _ = d.Start() }()

	// only two messages are buffered at a time, so later arrivals cannot
	// overtake what has already been chosen
	var got []int
	for i := 0; i < 5; i++ {
		msg := receive(t, d)
		assert.LessOrEqual(t, d.Len(), 2)
		got = append(got, msg.Payload)
	}
	assert.Equal(t, []int{4, 3, 2, 1, 5}, got)

	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_PauseResume(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher[string](&DispatcherConfig{
		IngressChannelSize: 10,
		MaxMessages:        10,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, d.Pause(), ErrDispatcherPaused)

	go func() { _ = d.Start() }()
	waitForState(t, d, Processing)
	assert.ErrorIs(t, d.Start(), ErrDispatcherRunning)
	assert.ErrorIs(t, d.Resume(), ErrDispatcherRunning)

	require.NoError(t, d.Pause())
	assert.ErrorIs(t, d.Pause(), ErrDispatcherPaused)

	msg := NewMessage("held", 1)
	d.IngressChannel() <- msg
	select {
	case <-d.DispatchChannel():
		require.FailNow(t, "message dispatched while paused")
	case <-time.After(50 * time.Millisecond):
	}

	go func() { _ = d.Resume() }()
	got := receive(t, d)
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, "held", got.Payload)

	require.NoError(t, d.Shutdown(context.Background()))
	assert.ErrorIs(t, d.Start(), ErrDispatcherShutdown)
	assert.ErrorIs(t, d.Pause(), ErrDispatcherShutdown)
	assert.ErrorIs(t, d.Shutdown(context.Background()), ErrDispatcherShutdown)
}

func TestDispatcher_ShutdownDrainsWhilePaused(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher[string](&DispatcherConfig{
		IngressChannelSize: 10,
		MaxMessages:        10,
	})
	require.NoError(t, err)

	for _, p := range []int{3, 1, 2} {
		d.IngressChannel() <- NewMessage("message", p)
	}

	done := make(chan []int)
	go func() {
		var got []int
		for msg := range d.DispatchChannel() {
			got = append(got, msg.Priority)
		}
		done <- got
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))

	assert.Equal(t, []int{1, 2, 3}, <-done)
	assert.Equal(t, 0, d.Len())
}

func TestDispatcher_ShutdownDeadline(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	d, err := NewDispatcher[string](&DispatcherConfig{
		IngressChannelSize: 10,
		MaxMessages:        10,
		Logger:             slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
	require.NoError(t, err)

	for _, p := range []int{3, 1, 2} {
		d.IngressChannel() <- NewMessage("unread", p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = d.Shutdown(ctx)
	require.ErrorIs(t, err, ErrShutdownDeadline)
	assert.Contains(t, err.Error(), "3 messages abandoned")
	assert.Contains(t, logs.String(), "abandoned messages at shutdown")

	_, ok := <-d.DispatchChannel()
	assert.False(t, ok)
}

func TestDispatcher_NilMessageIgnored(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher[string](&DispatcherConfig{
		IngressChannelSize: 10,
		MaxMessages:        10,
	})
	require.NoError(t, err)

	d.IngressChannel() <- nil
	d.IngressChannel() <- NewMessage("real", 0)
	go func() { _ = d.Start() }()

	assert.Equal(t, "real", receive(t, d).Payload)
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestNewMessage(t *testing.T) {
	t.Parallel()

	a := NewMessage("a", 1)
	b := NewMessage("b", 1)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 1, a.Priority)
	assert.Equal(t, "a", a.Payload)
}
