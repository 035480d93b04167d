package fs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/jsondo/pkg/core"
)

// Store implements core.Store on a single file.
type Store struct {
	Path       string
	config     Config
	serializer Serializer

	mu            sync.RWMutex
	lastSaved     [sha256.Size]byte
	lastSave      *time.Time
	watcherActive bool
	corruptLoads  int
}

// Config holds the configuration for the file store.
type Config struct {
	Path   string
	Strict bool // parse YAML numbers as json.Number
	Logger *slog.Logger
	Perm   os.FileMode // defaults to 0644

	// Serializer overrides the extension-based choice.
	Serializer Serializer
}

// NewStore creates a store for the file at config.Path.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Perm == 0 {
		config.Perm = 0644
	}
	path := filepath.Clean(config.Path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	serializer := config.Serializer
	if serializer == nil {
		serializer = SerializerFor(path, config.Strict)
	}
	return &Store{
		Path:       path,
		config:     config,
		serializer: serializer,
	}
}

// Initialize creates the parent directory and an empty document if the file is absent.
func (s *Store) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	info, err := os.Stat(s.Path)
	switch {
	case err == nil:
		if info.IsDir() {
			return fmt.Errorf("storage path is a directory: %s", s.Path)
		}
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to stat storage file: %w", err)
	}

	s.config.Logger.Info("creating storage file", "path", s.Path)
	return s.Save(ctx, core.Document{})
}

// Load reads the document. A missing file is an empty document, and so is
// one that cannot be parsed.
func (s *Store) Load(ctx context.Context) (core.Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Document{}, nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	doc, err := s.serializer.Parse(data)
	if err != nil {
		s.mu.Lock()
		s.corruptLoads++
		s.mu.Unlock()
		s.config.Logger.Warn("storage file is unreadable, treating as empty", "path", s.Path, "error", err)
		return core.Document{}, nil
	}
	return doc, nil
}

// Save serializes the whole document and swaps it in atomically.
func (s *Store) Save(ctx context.Context, doc core.Document) error {
	data, err := s.serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := writeFileAtomic(s.Path, data, s.config.Perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	now := time.Now()
	s.mu.Lock()
	s.lastSaved = sha256.Sum256(data)
	s.lastSave = &now
	s.mu.Unlock()
	return nil
}

// savedByUs reports whether data is what this store last wrote.
func (s *Store) savedByUs(data []byte) bool {
	sum := sha256.Sum256(data)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSave != nil && sum == s.lastSaved
}

var _ core.Store = (*Store)(nil)
