// Package session persists per-session conversation progress: the current
// state machine position and the temporary fields collected during checkout.
package session

import (
	"context"
	"time"
)

// Temp data keys collected across the waiting states.
const (
	FieldName          = "name"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldPaymentMethod = "payment_method"
)

// Session is the persisted conversation progress for one session id. State
// is stored as its string form so the store stays ignorant of the state
// machine.
type Session struct {
	SessionID string            `json:"session_id"`
	Channel   string            `json:"channel"`
	State     string            `json:"state"`
	TempData  map[string]string `json:"temp_data"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store loads and saves session progress with upsert semantics. Load of an
// unknown session returns a zero-valued Session, never an error.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
