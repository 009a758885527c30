package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/commerce-assistant/internal/order"
)

// OrderHandler handles HTTP requests for order administration.
type OrderHandler struct {
	svc order.Service
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// ListOrders returns all orders, optionally filtered by ?status=.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := order.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.svc.List(r.Context(), status)
	if err != nil {
		if errors.Is(err, order.ErrInvalidStatus) {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("handler: failed to list orders")
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetOrderByID returns one order by its public id.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	o, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("order_id", id).Msg("handler: failed to get order")
		http.Error(w, "failed to get order", http.StatusInternalServerError)
		return
	}
	if o == nil {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// ListSessionOrders returns every order placed in one session.
func (h *OrderHandler) ListSessionOrders(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sid")
	if sessionID == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}

	orders, err := h.svc.ListBySession(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("handler: failed to list session orders")
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status order.OrderStatus `json:"status"`
}

// UpdateOrderStatus moves an order to a new lifecycle status.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, order.ErrInvalidStatus) {
			http.Error(w, "invalid order status", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("order_id", id).Msg("handler: failed to update order status")
		http.Error(w, "failed to update order", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order_id": id, "status": req.Status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Info().Msgf("Failed to encode response: %v", err)
	}
}
