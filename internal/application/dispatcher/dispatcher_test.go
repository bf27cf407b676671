package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procurement-hub/internal/domain/event"
)

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, fmt.Sprint(append([]interface{}{msg}, keysAndValues...)...))
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func newEvent(t event.Type) *event.Event {
	return event.NewEvent(t, "RFQ-2023-1286", map[string]interface{}{})
}

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string
	d.Subscribe(event.TypeStatusChanged, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(event.TypeStatusChanged, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second")
		return nil
	})
	d.Subscribe(event.TypeRequestCreated, "other", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "other")
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), newEvent(event.TypeStatusChanged)))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatch_WildcardReceivesEverything(t *testing.T) {
	d := NewDispatcher()
	var seen []event.Type
	d.Subscribe(AnyType, "audit", func(ctx context.Context, evt *event.Event) error {
		seen = append(seen, evt.Type)
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), newEvent(event.TypeRequestCreated)))
	require.NoError(t, d.Dispatch(context.Background(), newEvent(event.TypeStepDecided)))

	assert.Equal(t, []event.Type{event.TypeRequestCreated, event.TypeStepDecided}, seen)
	assert.Len(t, d.Handlers(event.TypeRequestReturned), 1)
}

func TestDispatch_JoinsErrorsAndKeepsGoing(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	boom := errors.New("boom")
	var ran atomic.Int32

	d.Subscribe(event.TypeStatusChanged, "failing", func(ctx context.Context, evt *event.Event) error {
		ran.Add(1)
		return boom
	})
	d.Subscribe(event.TypeStatusChanged, "panicking", func(ctx context.Context, evt *event.Event) error {
		ran.Add(1)
		panic("bad handler")
	})
	d.Subscribe(event.TypeStatusChanged, "ok", func(ctx context.Context, evt *event.Event) error {
		ran.Add(1)
		return nil
	})

	err := d.Dispatch(context.Background(), newEvent(event.TypeStatusChanged))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "handler panic")
	assert.Equal(t, int32(3), ran.Load())
	assert.Equal(t, 2, logger.ErrorCount())
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	noop := func(ctx context.Context, evt *event.Event) error { return nil }
	d.Subscribe(event.TypeStatusChanged, "metrics", noop)
	d.Subscribe(AnyType, "metrics", noop)
	d.Subscribe(event.TypeStatusChanged, "audit", noop)

	d.Unsubscribe("metrics")

	handlers := d.Handlers(event.TypeStatusChanged)
	require.Len(t, handlers, 1)
	assert.Equal(t, "audit", handlers[0].Name)
}

func TestDispatchAsync_SurvivesCallerCancellation(t *testing.T) {
	d := NewDispatcher()
	done := make(chan error, 1)
	d.Subscribe(event.TypeStatusChanged, "slow", func(ctx context.Context, evt *event.Event) error {
		time.Sleep(10 * time.Millisecond)
		done <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, newEvent(event.TypeStatusChanged))
	cancel()

	require.NoError(t, d.Close())
	assert.NoError(t, <-done)
}

func TestClose(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	require.NoError(t, d.Close())
	assert.Error(t, d.Close())
	assert.ErrorIs(t, d.Dispatch(context.Background(), newEvent(event.TypeStatusChanged)), ErrClosed)

	d.DispatchAsync(context.Background(), newEvent(event.TypeStatusChanged))
	assert.Equal(t, 1, logger.ErrorCount())
}
