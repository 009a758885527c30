package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/commerce-assistant/internal/escalation"
	"github.com/vasiliy-maslov/commerce-assistant/internal/handler"
	"github.com/vasiliy-maslov/commerce-assistant/internal/order"
)

// NewRouter wires the HTTP surface: the single conversation entry point plus
// the order and escalation administration routes.
func NewRouter(turns handler.TurnService, orders order.Service, latch escalation.Latch) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	th := handler.NewTurnHandler(turns)
	oh := handler.NewOrderHandler(orders)
	eh := handler.NewEscalationHandler(latch)

	r.Post("/turns", th.HandleTurn)

	r.Get("/orders", oh.ListOrders)
	r.Get("/orders/{id}", oh.GetOrderByID)
	r.Patch("/orders/{id}/status", oh.UpdateOrderStatus)
	r.Get("/sessions/{sid}/orders", oh.ListSessionOrders)

	r.Get("/sessions/{sid}/escalation", eh.GetEscalation)
	r.Post("/sessions/{sid}/escalation/reset", eh.ResetEscalation)

	return r
}
