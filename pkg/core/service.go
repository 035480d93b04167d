package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	jsonpatch "github.com/evanphx/json-patch"
)

// Service applies mutation requests to the stored document.
//
// Every request is a full read-modify-write: the document is loaded, the
// action is applied in memory and the result is saved only if something
// changed. Requests are serialised within the process; nothing protects the
// file against other writers.
type Service struct {
	store    Store
	logger   *slog.Logger
	notifier Bus

	rw sync.Mutex // serialises read-modify-write cycles

	mu    sync.RWMutex
	stats Stats
}

// Stats counts handled requests.
type Stats struct {
	Handled   int    `json:"handled"`
	Applied   int    `json:"applied"`
	NoOps     int    `json:"no_ops"`
	Failed    int    `json:"failed"`
	LastError string `json:"last_error,omitempty"`
}

// NewService creates a new Service. A nil logger falls back to slog.Default().
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Notify makes the service fire EventUpdated on b after every persisted change.
func (s *Service) Notify(b Bus) {
	s.notifier = b
}

// Listen subscribes the service to EventJSONDo on b.
func (s *Service) Listen(b Bus) (remove func()) {
	return b.Listen(EventJSONDo, func(ctx context.Context, e Event) {
		_ = s.Handle(ctx, e)
	})
}

// Handle processes one json_do event. Failures are logged and returned,
// never raised.
func (s *Service) Handle(ctx context.Context, e Event) error {
	a, err := ParseAction(e.Data)
	if err != nil {
		s.logger.Error("dropping json_do event", "event", e.String(), "error", err)
		s.record(NoOp, err)
		return err
	}
	_, err = s.Do(ctx, a)
	return err
}

// Do runs a single action through load, apply and save.
func (s *Service) Do(ctx context.Context, a Action) (out Outcome, err error) {
	s.rw.Lock()
	defer s.rw.Unlock()

	defer func() {
		if r := recover(); r != nil {
			out, err = NoOp, fmt.Errorf("json manipulation panic: %v", r)
		}
		s.record(out, err)
		if err != nil {
			s.logger.Error("json manipulation error", "todo", a.Todo, "path", a.Path.String(), "error", err)
		}
	}()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return NoOp, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		doc = make(Document)
	}

	var before Document
	if s.notifier != nil {
		before = Clone(doc).(map[string]any)
	}

	out, err = a.Apply(doc)
	if err != nil {
		return NoOp, err
	}
	if out == NoOp {
		s.logger.Debug("nothing to change", "todo", a.Todo, "path", a.Path.String())
		return NoOp, nil
	}

	if err := s.store.Save(ctx, doc); err != nil {
		return NoOp, fmt.Errorf("failed to save document: %w", err)
	}
	s.logger.Debug("document updated", "todo", a.Todo, "path", a.Path.String())

	if s.notifier != nil {
		s.notify(ctx, a, before, doc)
	}
	return Applied, nil
}

// Read returns the value at a dotted path, or the whole document for "".
func (s *Service) Read(ctx context.Context, path string) (any, bool, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if path == "" {
		return doc, true, nil
	}
	p, err := ParsePath(path)
	if err != nil {
		return nil, false, err
	}
	v, ok := Lookup(doc, p)
	return v, ok, nil
}

// Stats returns a snapshot of the request counters.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Service) record(out Outcome, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Handled++
	switch {
	case err != nil:
		s.stats.Failed++
		s.stats.LastError = err.Error()
	case out == Applied:
		s.stats.Applied++
	default:
		s.stats.NoOps++
	}
}

// notify publishes an RFC 7386 merge patch describing the change.
func (s *Service) notify(ctx context.Context, a Action, before, after Document) {
	patch, err := MergePatch(before, after)
	if err != nil {
		s.logger.Warn("failed to compute merge patch", "error", err)
		return
	}
	e := Event{
		Type: EventUpdated,
		Data: map[string]any{
			"path":  a.Path.String(),
			"todo":  string(a.Todo),
			"patch": patch,
		},
		Origin:    "service",
		Timestamp: time.Now().Unix(),
	}
	if err := s.notifier.Fire(ctx, e); err != nil {
		s.logger.Warn("failed to publish update", "error", err)
	}
}

// MergePatch returns the merge patch that turns before into after.
func MergePatch(before, after Document) (map[string]any, error) {
	a, err := json.Marshal(before)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(after)
	if err != nil {
		return nil, err
	}
	raw, err := jsonpatch.CreateMergePatch(a, b)
	if err != nil {
		return nil, err
	}
	var patch map[string]any
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, err
	}
	return patch, nil
}
