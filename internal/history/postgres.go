package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	db *pgxpool.Pool
}

// NewStore creates the Postgres-backed history store.
func NewStore(db *pgxpool.Pool) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Append(ctx context.Context, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO conversation_messages (session_id, channel, role, content, confidence, escalated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.Exec(ctx, query,
		msg.SessionID,
		msg.Channel,
		msg.Role,
		msg.Content,
		msg.Confidence,
		msg.Escalated,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to append message for session %s: %w", msg.SessionID, err)
	}
	return nil
}

func (s *postgresStore) LastN(ctx context.Context, sessionID string, n int) ([]Message, error) {
	query := `
		SELECT session_id, channel, role, content, confidence, escalated, created_at
		FROM (
			SELECT session_id, channel, role, content, confidence, escalated, created_at, id
			FROM conversation_messages
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		) latest
		ORDER BY id ASC
	`

	rows, err := s.db.Query(ctx, query, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query messages for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	messages := make([]Message, 0, n)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.SessionID, &msg.Channel, &msg.Role, &msg.Content, &msg.Confidence, &msg.Escalated, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan message for session %s: %w", sessionID, err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating messages for session %s: %w", sessionID, err)
	}
	return messages, nil
}
