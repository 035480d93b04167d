package core

import "context"

// Store defines the contract for loading and persisting the document.
// Adhering to this interface keeps the core independent of where the
// document lives (a local file, an object store, a database row).
type Store interface {
	// Initialize ensures the underlying storage is ready, creating an empty
	// document if none exists.
	Initialize(ctx context.Context) error

	// Load reads the whole document. A document that cannot be parsed is
	// returned as an empty one.
	Load(ctx context.Context) (Document, error)

	// Save replaces the whole document.
	Save(ctx context.Context, doc Document) error
}

// Watchable defines an interface for stores that can report external changes.
type Watchable interface {
	// Watch emits an event whenever the stored document changes outside this process.
	Watch(ctx context.Context) (<-chan Event, error)
}

// Handler consumes one event.
type Handler func(ctx context.Context, e Event)

// Bus is the event subscription surface offered by the host.
type Bus interface {
	// Listen registers h for events whose type matches pattern.
	// The returned func removes the listener and is safe to call more than once.
	Listen(pattern string, h Handler) (remove func())

	// Fire publishes an event.
	Fire(ctx context.Context, e Event) error
}
