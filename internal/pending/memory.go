package pending

import (
	"context"
	"sync"
)

// MemoryStore is the default Store: a mutex-guarded map, volatile on restart
// by design. Nothing blocks on external I/O while the lock is held; callers
// do their transcription and persistence work outside the critical section.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Put stores text as the sender's single pending slot, overwriting any
// earlier entry.
func (s *MemoryStore) Put(ctx context.Context, senderID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[senderID] = text
	return nil
}

// TakeIfPresent removes and returns the sender's pending entry in one step.
// The second return is false when the sender has nothing pending.
func (s *MemoryStore) TakeIfPresent(ctx context.Context, senderID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, ok := s.entries[senderID]
	if ok {
		delete(s.entries, senderID)
	}
	return text, ok, nil
}
