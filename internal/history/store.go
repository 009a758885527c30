// Package history records the conversation transcript. Besides feeding the
// affirmation-lookahead rule, rows carry the confidence score and the
// escalation decision of each assistant turn for operator review.
package history

import (
	"context"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry. Confidence and Escalated are only
// meaningful on assistant messages.
type Message struct {
	SessionID  string    `json:"session_id"`
	Channel    string    `json:"channel"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence,omitempty"`
	Escalated  bool      `json:"escalated,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store appends transcript entries and reads back the most recent ones.
// LastN returns at most n messages in chronological order.
type Store interface {
	Append(ctx context.Context, msg Message) error
	LastN(ctx context.Context, sessionID string, n int) ([]Message, error)
}

// LastAssistantMessage scans messages newest-first for the most recent
// assistant utterance; empty string when there is none.
func LastAssistantMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}
