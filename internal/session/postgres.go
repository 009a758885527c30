package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	db *pgxpool.Pool
}

// NewStore creates the Postgres-backed session store.
func NewStore(db *pgxpool.Pool) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	query := `
		SELECT session_id, channel, state, temp_data, updated_at
		FROM sessions
		WHERE session_id = $1
	`

	var sess Session
	var tempData []byte
	err := s.db.QueryRow(ctx, query, sessionID).Scan(
		&sess.SessionID,
		&sess.Channel,
		&sess.State,
		&tempData,
		&sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Session{SessionID: sessionID, TempData: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("repository: failed to load session %s: %w", sessionID, err)
	}

	sess.TempData = map[string]string{}
	if len(tempData) > 0 {
		if err := json.Unmarshal(tempData, &sess.TempData); err != nil {
			return nil, fmt.Errorf("repository: invalid temp data for session %s: %w", sessionID, err)
		}
	}
	return &sess, nil
}

func (s *postgresStore) Save(ctx context.Context, sess *Session) error {
	tempData, err := json.Marshal(sess.TempData)
	if err != nil {
		return fmt.Errorf("repository: failed to encode temp data for session %s: %w", sess.SessionID, err)
	}

	sess.UpdatedAt = time.Now().UTC()
	query := `
		INSERT INTO sessions (session_id, channel, state, temp_data, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE
		SET channel = EXCLUDED.channel,
			state = EXCLUDED.state,
			temp_data = EXCLUDED.temp_data,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.Exec(ctx, query, sess.SessionID, sess.Channel, sess.State, tempData, sess.UpdatedAt); err != nil {
		return fmt.Errorf("repository: failed to save session %s: %w", sess.SessionID, err)
	}
	return nil
}
