// Package bus is an in-process event bus with a single dispatcher.
//
// Events are queued by Fire and delivered one at a time: every listener
// finishes with an event before the next event is looked at. Listener
// patterns are doublestar globs matched against the event type, so
// "json_do" matches exactly and "json_storage_*" matches a family.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/jsondo/pkg/core"
)

// DefaultBufferSize is the queue length used when none is configured.
const DefaultBufferSize = 100

var (
	// ErrFull is returned by Fire when the queue has no room.
	ErrFull = errors.New("event queue is full")
	// ErrStopped is returned by Fire after Stop.
	ErrStopped = errors.New("event bus is stopped")
)

type listener struct {
	id      uint64
	pattern string
	handler core.Handler
}

// Bus implements core.Bus.
type Bus struct {
	logger *slog.Logger
	queue  chan queued

	mu        sync.RWMutex
	listeners []listener
	nextID    uint64
	stopped   bool
	started   bool
	done      chan struct{}
	dispatch  sync.Mutex // one event at a time
	delivered int
}

type queued struct {
	ctx   context.Context
	event core.Event
}

// New creates a bus with the given queue size (0 means DefaultBufferSize).
func New(size int, logger *slog.Logger) *Bus {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger,
		queue:  make(chan queued, size),
		done:   make(chan struct{}),
	}
}

// Listen registers h for every event type matching pattern.
func (b *Bus) Listen(pattern string, h core.Handler) func() {
	if !doublestar.ValidatePattern(pattern) {
		b.logger.Warn("invalid listener pattern, matching literally", "pattern", pattern)
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener{id: id, pattern: pattern, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, l := range b.listeners {
				if l.id == id {
					b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Fire queues e for the dispatcher. It never blocks: a full queue is an error.
func (b *Bus) Fire(ctx context.Context, e core.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		return ErrStopped
	}
	select {
	case b.queue <- queued{ctx: context.WithoutCancel(ctx), event: e}:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s", ErrFull, e)
	}
}

// Dispatch delivers e synchronously to every matching listener.
func (b *Bus) Dispatch(ctx context.Context, e core.Event) {
	b.dispatch.Lock()
	defer b.dispatch.Unlock()

	for _, l := range b.matching(e.Type) {
		b.deliver(ctx, l, e)
	}

	b.mu.Lock()
	b.delivered++
	b.mu.Unlock()
}

// Start runs the dispatcher until ctx is done or Stop is called. Either way
// the bus stops accepting events and the dispatcher delivers what is still
// queued before it exits.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return errors.New("event bus already started")
	}
	b.started = true
	b.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(b.done)
		for {
			select {
			case <-ctx.Done():
				b.closeQueue()
				for q := range b.queue {
					b.Dispatch(q.ctx, q.event)
				}
				return nil
			case q, ok := <-b.queue:
				if !ok {
					return nil
				}
				b.Dispatch(q.ctx, q.event)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		b.logger.Error("event dispatcher failed", "error", err)
	}))
	return nil
}

// Stop refuses new events and waits for the dispatcher to drain the queue.
func (b *Bus) Stop(ctx context.Context) error {
	if !b.closeQueue() {
		return nil
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// closeQueue marks the bus stopped and closes the queue once. It reports
// whether a dispatcher was started.
func (b *Bus) closeQueue() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.stopped {
		b.stopped = true
		close(b.queue)
	}
	return b.started
}

// Listeners returns the number of registered listeners.
func (b *Bus) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func (b *Bus) matching(eventType string) []listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []listener
	for _, l := range b.listeners {
		if match(l.pattern, eventType) {
			out = append(out, l)
		}
	}
	return out
}

func match(pattern, eventType string) bool {
	if pattern == eventType {
		return true
	}
	ok, err := doublestar.Match(pattern, eventType)
	return err == nil && ok
}

// deliver runs one handler, containing any panic so one bad listener
// cannot take the host down.
func (b *Bus) deliver(ctx context.Context, l listener, e core.Event) {
	defer func() {
		if r := recover(); r != nil {
			if b.logger.Enabled(ctx, slog.LevelDebug) {
				b.logger.Error("listener panic", "event", e.String(), "pattern", l.pattern, "error", r, "stack", string(debug.Stack()))
			} else {
				b.logger.Error("listener panic", "event", e.String(), "pattern", l.pattern, "error", r)
			}
		}
	}()
	l.handler(ctx, e)
}
