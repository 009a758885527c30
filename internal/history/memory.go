package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and local runs without a
// database.
type MemoryStore struct {
	mu       sync.Mutex
	messages map[string][]Message
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]Message)}
}

func (s *MemoryStore) Append(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

func (s *MemoryStore) LastN(_ context.Context, sessionID string, n int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.messages[sessionID]
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return append([]Message(nil), all...), nil
}
