package escalation

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Latch tracks which sessions have been permanently handed off to a human.
// Once a session is activated it stays active until an explicit
// administrative Reset; normal traffic never clears it. Activate is
// idempotent and all methods are safe for concurrent use.
type Latch interface {
	Activate(ctx context.Context, sessionID string) error
	IsActive(ctx context.Context, sessionID string) (bool, error)
	Reset(ctx context.Context, sessionID string) error
}

// MemoryLatch is the single-process Latch implementation.
type MemoryLatch struct {
	mu       sync.RWMutex
	sessions map[string]bool
}

// NewMemoryLatch creates an empty in-memory latch.
func NewMemoryLatch() *MemoryLatch {
	return &MemoryLatch{sessions: make(map[string]bool)}
}

func (l *MemoryLatch) Activate(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.sessions[sessionID] {
		log.Info().Str("session_id", sessionID).Msg("Session escalated to human operator")
	}
	l.sessions[sessionID] = true
	return nil
}

func (l *MemoryLatch) IsActive(_ context.Context, sessionID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessions[sessionID], nil
}

func (l *MemoryLatch) Reset(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, sessionID)
	log.Info().Str("session_id", sessionID).Msg("Session escalation reset")
	return nil
}

// RedisLatch stores the latch in Redis so multiple assistant instances share
// the same escalation state. Keys have no expiry on purpose.
type RedisLatch struct {
	client *redis.Client
	prefix string
}

// NewRedisLatch creates a Latch backed by the given Redis client.
func NewRedisLatch(client *redis.Client) *RedisLatch {
	return &RedisLatch{client: client, prefix: "escalation:session:"}
}

func (l *RedisLatch) key(sessionID string) string {
	return l.prefix + sessionID
}

func (l *RedisLatch) Activate(ctx context.Context, sessionID string) error {
	if err := l.client.Set(ctx, l.key(sessionID), "1", 0).Err(); err != nil {
		return fmt.Errorf("escalation: failed to activate latch for session %s: %w", sessionID, err)
	}
	log.Info().Str("session_id", sessionID).Msg("Session escalated to human operator")
	return nil
}

func (l *RedisLatch) IsActive(ctx context.Context, sessionID string) (bool, error) {
	res, err := l.client.Get(ctx, l.key(sessionID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("escalation: failed to read latch for session %s: %w", sessionID, err)
	}
	return res == "1", nil
}

func (l *RedisLatch) Reset(ctx context.Context, sessionID string) error {
	if err := l.client.Del(ctx, l.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("escalation: failed to reset latch for session %s: %w", sessionID, err)
	}
	log.Info().Str("session_id", sessionID).Msg("Session escalation reset")
	return nil
}
