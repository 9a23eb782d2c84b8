package memstore

import "sync"

// MemoryStore is an in-memory ResponseStore for tests and for runs with
// the persistent cache disabled.
type MemoryStore struct {
	mu        sync.RWMutex
	responses map[string]string
	progress  map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		responses: make(map[string]string),
		progress:  make(map[string][]byte),
	}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.responses[key]
	return val, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = value
	return nil
}

func (s *MemoryStore) Progress() (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.progress))
	for k, v := range s.progress {
		cp := make([]byte, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out, nil
}

func (s *MemoryStore) SetProgressEntry(key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.progress[key] = cp
	return nil
}

func (s *MemoryStore) ClearProgress() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = make(map[string][]byte)
	return nil
}

// Len reports how many responses are stored, for test assertions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses)
}

func (s *MemoryStore) Close() error {
	return nil
}
