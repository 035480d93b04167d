package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jsondo/pkg/core"
)

// DebounceInterval coalesces bursts of filesystem events on the storage file.
var DebounceInterval = 50 * time.Millisecond

// Watch reports edits made to the storage file by other processes.
// Writes performed through this store are not reported. The returned
// channel is closed when ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: atomic renames replace the inode of the file itself.
	if err := watcher.Add(filepath.Dir(s.Path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.Path), err)
	}

	out := make(chan core.Event, 16)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer s.setWatcherActive(false)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.config.Logger.Error("watcher stopped", "error", err)
	}))

	return out, nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- core.Event) error {
	var (
		mu      sync.Mutex
		pending *time.Timer
		wg      sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if pending != nil && pending.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	emit := func(op fsnotify.Op) {
		defer wg.Done()
		data, err := os.ReadFile(s.Path)
		if err == nil && s.savedByUs(data) {
			return
		}
		e := core.Event{
			Type:      core.EventChanged,
			Data:      map[string]any{"file": s.Path, "op": op.String(), "exists": err == nil},
			Origin:    "fs",
			Timestamp: time.Now().Unix(),
		}
		select {
		case out <- e:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if isTempFile(event.Name) || filepath.Clean(event.Name) != s.Path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.config.Logger.Debug("storage file event", "op", event.Op.String())

			mu.Lock()
			if pending != nil && pending.Stop() {
				wg.Done()
			}
			op := event.Op
			wg.Add(1)
			pending = time.AfterFunc(DebounceInterval, func() { emit(op) })
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			s.config.Logger.Error("fsnotify error", "error", err)
		}
	}
}

var _ core.Watchable = (*Store)(nil)
