package jsondo

import (
	"log/slog"

	"github.com/aretw0/jsondo/internal/platform"
	"github.com/aretw0/jsondo/pkg/adapters/bus"
	"github.com/aretw0/jsondo/pkg/core"
)

// --- Types ---

// Document is a public alias for the stored document.
type Document = core.Document

// Action is a public alias for a mutation request.
type Action = core.Action

// Event is a public alias for a bus event.
type Event = core.Event

// --- Configuration ---

// Option defines a functional option for configuring jsondo.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithStrict decodes YAML numbers as json.Number, as JSON files always are.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithNotify publishes json_storage_updated events on b after each change.
func WithNotify(b core.Bus) Option {
	return platform.WithNotify(b)
}

// WithFileMode sets the permissions of the storage file.
func WithFileMode(mode uint32) Option {
	return platform.WithFileMode(mode)
}

// --- Factory ---

// New creates a Service for the document at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init prepares the store for the document at path.
func Init(path string, opts ...Option) (core.Store, error) {
	return platform.Init(path, opts...)
}

// NewBus creates an in-process event bus.
func NewBus(size int, logger *slog.Logger) *bus.Bus {
	return bus.New(size, logger)
}

// ParseAction builds an Action from event data.
func ParseAction(data map[string]any) (Action, error) {
	return core.ParseAction(data)
}
