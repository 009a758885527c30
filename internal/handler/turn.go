package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/commerce-assistant/internal/assistant"
)

// TurnService is the single conversation entry point the handler needs.
type TurnService interface {
	HandleTurn(ctx context.Context, sessionID, channel, message string) (*assistant.Turn, error)
}

// TurnHandler handles HTTP requests for conversation turns.
type TurnHandler struct {
	svc TurnService
}

// NewTurnHandler creates a new TurnHandler.
func NewTurnHandler(svc TurnService) *TurnHandler {
	return &TurnHandler{svc: svc}
}

type turnRequest struct {
	SessionID string `json:"session_id"`
	Channel   string `json:"channel"`
	Message   string `json:"message"`
}

// HandleTurn processes one inbound message and returns the assistant's turn.
func (h *TurnHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	turn, err := h.svc.HandleTurn(r.Context(), req.SessionID, req.Channel, req.Message)
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("handler: failed to handle turn")
		http.Error(w, "failed to handle turn", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(turn); err != nil {
		log.Info().Msgf("Failed to encode response: %v", err)
	}
}
