package platform

import (
	"context"
	"errors"
	"os"

	"github.com/aretw0/jsondo/pkg/adapters/fs"
	"github.com/aretw0/jsondo/pkg/core"
)

// Init prepares the store for the document at path, creating it as an
// empty document when absent.
func Init(path string, opts ...Option) (core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initStore(path, o)
}

// New creates a Service for the document at path.
//
//	svc, err := jsondo.New("/config/json_storage.json", jsondo.WithStrict(true))
func New(path string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	store, err := initStore(path, o)
	if err != nil {
		return nil, err
	}

	service := core.NewService(store, o.log())
	if o.bus != nil {
		service.Notify(o.bus)
	}
	return service, nil
}

func initStore(path string, o *options) (core.Store, error) {
	store := o.store
	if store == nil {
		if path == "" {
			return nil, errors.New("storage path cannot be empty")
		}
		strict, _ := o.config["strict"].(bool)
		mode, _ := o.config["file_mode"].(uint32)
		store = fs.NewStore(fs.Config{
			Path:   path,
			Strict: strict,
			Logger: o.log(),
			Perm:   os.FileMode(mode),
		})
	}

	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}
