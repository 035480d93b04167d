package platform

import (
	"log/slog"

	"github.com/aretw0/jsondo/pkg/core"
)

// options holds the internal configuration for jsondo.
type options struct {
	store  core.Store
	logger *slog.Logger
	bus    core.Bus
	config map[string]interface{}
}

// Option defines a functional option for configuring jsondo.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore allows injecting a custom storage adapter.
// If provided, the file store is skipped and the path argument is ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithStrict decodes YAML numbers as json.Number. JSON files always keep
// their numbers exact.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.config["strict"] = strict
	}
}

// WithNotify makes the service fire json_storage_updated on b after every
// persisted change.
func WithNotify(b core.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithFileMode sets the permissions of the storage file. Defaults to 0644.
func WithFileMode(mode uint32) Option {
	return func(o *options) {
		o.config["file_mode"] = mode
	}
}
