package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/commerce-assistant/internal/escalation"
)

// EscalationHandler exposes the administrative latch operations.
type EscalationHandler struct {
	latch escalation.Latch
}

// NewEscalationHandler creates a new EscalationHandler.
func NewEscalationHandler(latch escalation.Latch) *EscalationHandler {
	return &EscalationHandler{latch: latch}
}

// ResetEscalation clears the escalation latch for a session, returning it to
// automated handling. This is the only way a latched session comes back.
func (h *EscalationHandler) ResetEscalation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sid")
	if sessionID == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}

	if err := h.latch.Reset(r.Context(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("handler: failed to reset escalation")
		http.Error(w, "failed to reset escalation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetEscalation reports whether a session is currently latched.
func (h *EscalationHandler) GetEscalation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sid")
	if sessionID == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}

	active, err := h.latch.IsActive(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("handler: failed to read escalation")
		http.Error(w, "failed to read escalation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "escalated": active})
}
