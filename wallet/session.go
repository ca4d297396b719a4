package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// SessionStore persists the "was connected" flag across process restarts so
// a later load can re-authenticate silently without prompting the user.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	// WasConnected reports whether a prior session connected successfully.
	WasConnected() (bool, error)
	// SetConnected records or clears the durable flag.
	SetConnected(connected bool) error
}

// MemorySessionStore keeps the flag in memory only. Suitable for tests and
// for hosts that manage their own persistence.
type MemorySessionStore struct {
	mu        sync.Mutex
	connected bool
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) WasConnected() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, nil
}

func (s *MemorySessionStore) SetConnected(connected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	return nil
}

// FileSessionStore persists the flag as a small JSON document on disk.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

type sessionRecord struct {
	Connected bool `json:"connected"`
}

// NewFileSessionStore creates a session store backed by the given file.
// The parent directory is created if missing; a missing file reads as
// "never connected".
func NewFileSessionStore(path string) (*FileSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileSessionStore{path: path}, nil
}

func (s *FileSessionStore) WasConnected() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Corrupt flag file reads as never-connected rather than blocking
		// startup.
		return false, nil
	}
	return rec.Connected, nil
}

func (s *FileSessionStore) SetConnected(connected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sessionRecord{Connected: connected})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

var (
	_ SessionStore = (*MemorySessionStore)(nil)
	_ SessionStore = (*FileSessionStore)(nil)
)
