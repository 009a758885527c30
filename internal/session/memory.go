package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and local runs without a
// database.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[sessionID]
	if !ok {
		return &Session{SessionID: sessionID, TempData: map[string]string{}}, nil
	}

	cp := *stored
	cp.TempData = make(map[string]string, len(stored.TempData))
	for k, v := range stored.TempData {
		cp.TempData[k] = v
	}
	return &cp, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = time.Now().UTC()

	cp := *sess
	cp.TempData = make(map[string]string, len(sess.TempData))
	for k, v := range sess.TempData {
		cp.TempData[k] = v
	}
	s.sessions[sess.SessionID] = &cp
	return nil
}
