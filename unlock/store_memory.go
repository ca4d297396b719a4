package unlock

import "sync"

// MemoryStore keeps entries in memory only. Suitable for tests and for
// hosts that do not need persistence across restarts.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(categoryID string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[categoryID]
	return entry, ok, nil
}

func (s *MemoryStore) Put(categoryID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[categoryID] = entry
	return nil
}

var _ Store = (*MemoryStore)(nil)
