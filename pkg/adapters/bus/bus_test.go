package bus_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jsondo/pkg/adapters/bus"
	"github.com/aretw0/jsondo/pkg/core"
)

type recorder struct {
	mu     sync.Mutex
	events []core.Event
}

func (r *recorder) handle(ctx context.Context, e core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestBus_DispatchMatching(t *testing.T) {
	b := bus.New(0, nil)
	ctx := context.Background()

	exact, family := &recorder{}, &recorder{}
	b.Listen(core.EventJSONDo, exact.handle)
	b.Listen("json_storage_*", family.handle)

	b.Dispatch(ctx, core.Event{Type: core.EventJSONDo})
	b.Dispatch(ctx, core.Event{Type: core.EventUpdated})
	b.Dispatch(ctx, core.Event{Type: core.EventChanged})
	b.Dispatch(ctx, core.Event{Type: "other"})

	assert.Equal(t, 1, exact.len())
	assert.Equal(t, 2, family.len())
}

func TestBus_Remove(t *testing.T) {
	b := bus.New(0, nil)
	rec := &recorder{}
	remove := b.Listen(core.EventJSONDo, rec.handle)
	keep := b.Listen(core.EventJSONDo, func(ctx context.Context, e core.Event) {})
	defer keep()

	remove()
	remove()
	assert.Equal(t, 1, b.Listeners())

	b.Dispatch(context.Background(), core.Event{Type: core.EventJSONDo})
	assert.Equal(t, 0, rec.len())
}

func TestBus_SequentialDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.New(10, nil)
	var (
		mu      sync.Mutex
		active  int
		overlap bool
		order   []string
	)
	b.Listen(core.EventJSONDo, func(ctx context.Context, e core.Event) {
		mu.Lock()
		active++
		if active > 1 {
			overlap = true
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active--
		order = append(order, e.Data["path"].(string))
		mu.Unlock()
	})
	require.NoError(t, b.Start(ctx))

	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, b.Fire(ctx, core.Event{Type: core.EventJSONDo, Data: map[string]any{"path": p}}))
	}
	require.NoError(t, b.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, overlap)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestBus_CancelDrainsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.New(10, nil)
	var handled atomic.Int32
	b.Listen(core.EventJSONDo, func(ctx context.Context, e core.Event) {
		time.Sleep(10 * time.Millisecond)
		handled.Add(1)
	})
	require.NoError(t, b.Start(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Fire(ctx, core.Event{Type: core.EventJSONDo}))
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, b.Stop(stopCtx))

	assert.Equal(t, int32(5), handled.Load())
	assert.ErrorIs(t, b.Fire(context.Background(), core.Event{Type: core.EventJSONDo}), bus.ErrStopped)
}

func TestBus_FireErrors(t *testing.T) {
	b := bus.New(1, nil)
	ctx := context.Background()

	require.NoError(t, b.Fire(ctx, core.Event{Type: "x"}))
	assert.ErrorIs(t, b.Fire(ctx, core.Event{Type: "x"}), bus.ErrFull)

	require.NoError(t, b.Stop(ctx))
	assert.ErrorIs(t, b.Fire(ctx, core.Event{Type: "x"}), bus.ErrStopped)
}

func TestBus_ListenerPanicIsContained(t *testing.T) {
	b := bus.New(0, nil)
	rec := &recorder{}
	b.Listen("*", func(ctx context.Context, e core.Event) { panic("boom") })
	b.Listen("*", rec.handle)

	assert.NotPanics(t, func() {
		b.Dispatch(context.Background(), core.Event{Type: core.EventJSONDo})
	})
	assert.Equal(t, 1, rec.len())

	state := b.State().(bus.BusState)
	assert.Equal(t, 1, state.Delivered)
	assert.Equal(t, 2, state.Listeners)
}
