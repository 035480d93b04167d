package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/jsondo/pkg/adapters/fs"
	"github.com/aretw0/jsondo/pkg/core"
)

// ErrAlreadySetUp is returned when an entry id is set up twice.
var ErrAlreadySetUp = errors.New("entry already set up")

// StoreFactory builds the store backing an entry.
type StoreFactory func(e Entry, logger *slog.Logger) core.Store

// FileStore is the default StoreFactory.
func FileStore(strict bool) StoreFactory {
	return func(e Entry, logger *slog.Logger) core.Store {
		return fs.NewStore(fs.Config{Path: e.StoragePath(), Strict: strict, Logger: logger})
	}
}

type instance struct {
	entry   Entry
	service *core.Service
	remove  func()
}

// Registry owns the listeners of every set-up entry, keyed by entry id.
type Registry struct {
	bus      core.Bus
	logger   *slog.Logger
	newStore StoreFactory
	notify   bool

	mu        sync.Mutex
	instances map[string]instance
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger handed to every entry.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithStoreFactory replaces the file store.
func WithStoreFactory(f StoreFactory) RegistryOption {
	return func(r *Registry) {
		r.newStore = f
	}
}

// WithNotify makes every entry fire update events on the bus.
func WithNotify(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.notify = enabled
	}
}

// NewRegistry creates a registry that subscribes entries on b.
func NewRegistry(b core.Bus, opts ...RegistryOption) *Registry {
	r := &Registry{
		bus:       b,
		logger:    slog.Default(),
		newStore:  FileStore(false),
		instances: make(map[string]instance),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup ensures the entry's storage file exists and starts listening for
// json_do events on its behalf.
func (r *Registry) Setup(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySetUp, e.ID)
	}

	logger := r.logger.With("entry_id", e.ID)
	store := r.newStore(e, logger)
	if err := store.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage for %s: %w", e.ID, err)
	}

	svc := core.NewService(store, logger)
	if r.notify {
		svc.Notify(r.bus)
	}
	r.instances[e.ID] = instance{entry: e, service: svc, remove: svc.Listen(r.bus)}

	logger.Info("entry set up", "storage_path", e.StoragePath())
	return nil
}

// Unload stops listening for the entry. It reports whether the entry was set up.
func (r *Registry) Unload(id string) bool {
	r.mu.Lock()
	inst, ok := r.instances[id]
	delete(r.instances, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	inst.remove()
	r.logger.Info("entry unloaded", "entry_id", id)
	return true
}

// UnloadAll unloads every entry.
func (r *Registry) UnloadAll() {
	for _, id := range r.Entries() {
		r.Unload(id)
	}
}

// Service returns the service of a set-up entry.
func (r *Registry) Service(id string) (*core.Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	return inst.service, ok
}

// Entries returns the ids of set-up entries in sorted order.
func (r *Registry) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
