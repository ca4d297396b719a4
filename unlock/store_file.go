package unlock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the keyed entry map as a single JSON document,
// written through on every put. First ever load starts empty.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
}

// NewFileStore opens (or initializes) a file-backed store at path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	s := &FileStore{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		// A corrupt cache file is not worth failing startup over; unlocked
		// content can be repurchased or refetched.
		s.entries = make(map[string]Entry)
	}
	return s, nil
}

func (s *FileStore) Get(categoryID string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[categoryID]
	return entry, ok, nil
}

func (s *FileStore) Put(categoryID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[categoryID] = entry

	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
