package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/commerce-assistant/internal/assistant"
)

type mockTurnService struct {
	HandleTurnFunc func(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error)
}

func (m *mockTurnService) HandleTurn(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error) {
	return m.HandleTurnFunc(ctx, sessionID, channel, message)
}

func TestTurnHandler_HandleTurn(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		handleTurn     func(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error)
		expectedStatus int
		bodyContains   string
	}{
		{
			name: "success",
			body: `{"session_id":"s1","channel":"web","message":"I want the Puma RS-X"}`,
			handleTurn: func(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error) {
				assert.Equal(t, "s1", sessionID)
				assert.Equal(t, "web", channel)
				return &assistant.Turn{Reply: "Puma RS-X added to your cart", State: "browsing", Confidence: 1}, nil
			},
			expectedStatus: http.StatusOK,
			bodyContains:   `"state":"browsing"`,
		},
		{
			name: "missing_session_id",
			body: `{"channel":"web","message":"hello"}`,
			handleTurn: func(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error) {
				return nil, nil
			},
			expectedStatus: http.StatusBadRequest,
			bodyContains:   "session_id is required",
		},
		{
			name: "missing_message",
			body: `{"session_id":"s1","channel":"web"}`,
			handleTurn: func(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error) {
				return nil, nil
			},
			expectedStatus: http.StatusBadRequest,
			bodyContains:   "message is required",
		},
		{
			name: "service_failure",
			body: `{"session_id":"s1","channel":"web","message":"hello"}`,
			handleTurn: func(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error) {
				return nil, errors.New("connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
			bodyContains:   "failed to handle turn",
		},
		{
			name:           "invalid_json",
			body:           `{broken`,
			handleTurn:     func(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error) { return nil, nil },
			expectedStatus: http.StatusBadRequest,
			bodyContains:   "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTurnHandler(&mockTurnService{HandleTurnFunc: tt.handleTurn})

			req := httptest.NewRequest(http.MethodPost, "/turns", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.HandleTurn(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.bodyContains)
		})
	}
}
