package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/commerce-assistant/internal/order"
)

type mockOrderService struct {
	GetByIDFunc       func(ctx context.Context, orderID string) (*order.Order, error)
	ListFunc          func(ctx context.Context, status order.OrderStatus) ([]order.Order, error)
	ListBySessionFunc func(ctx context.Context, sessionID string) ([]order.Order, error)
	UpdateStatusFunc  func(ctx context.Context, orderID string, newStatus order.OrderStatus) (bool, error)
}

func (m *mockOrderService) Create(ctx context.Context, input order.CreateInput) (*order.Order, error) {
	return nil, nil
}

func (m *mockOrderService) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	return m.GetByIDFunc(ctx, orderID)
}

func (m *mockOrderService) ListBySession(ctx context.Context, sessionID string) ([]order.Order, error) {
	return m.ListBySessionFunc(ctx, sessionID)
}

func (m *mockOrderService) List(ctx context.Context, status order.OrderStatus) ([]order.Order, error) {
	return m.ListFunc(ctx, status)
}

func (m *mockOrderService) ListPending(ctx context.Context) ([]order.Order, error) {
	return m.ListFunc(ctx, order.StatusPending)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID string, newStatus order.OrderStatus) (bool, error) {
	return m.UpdateStatusFunc(ctx, orderID, newStatus)
}

func (m *mockOrderService) Cancel(ctx context.Context, orderID string) (bool, error) {
	return m.UpdateStatusFunc(ctx, orderID, order.StatusCancelled)
}

func sampleOrder() *order.Order {
	return &order.Order{
		OrderID:       "CMD-20260830-001",
		SessionID:     "s1",
		Customer:      order.CustomerInfo{Name: "Ahmed Ben Ali", Phone: "55123456", Address: "Tunis"},
		Items:         []order.Item{{ProductName: "Puma RS-X", Price: decimal.NewFromInt(310), Quantity: 1}},
		Subtotal:      decimal.NewFromInt(310),
		DeliveryFee:   decimal.NewFromInt(8),
		Total:         decimal.NewFromInt(318),
		PaymentMethod: order.PaymentCashOnDelivery,
		Status:        order.StatusPending,
		Channel:       "web",
		CreatedAt:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestOrderHandler_GetOrderByID(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		getByID        func(ctx context.Context, orderID string) (*order.Order, error)
		expectedStatus int
		bodyContains   string
	}{
		{
			name: "success",
			id:   "CMD-20260830-001",
			getByID: func(ctx context.Context, orderID string) (*order.Order, error) {
				return sampleOrder(), nil
			},
			expectedStatus: http.StatusOK,
			bodyContains:   `"order_id":"CMD-20260830-001"`,
		},
		{
			name: "not_found",
			id:   "CMD-20260830-999",
			getByID: func(ctx context.Context, orderID string) (*order.Order, error) {
				return nil, nil
			},
			expectedStatus: http.StatusNotFound,
			bodyContains:   "order not found",
		},
		{
			name: "empty_id",
			id:   "",
			getByID: func(ctx context.Context, orderID string) (*order.Order, error) {
				return nil, nil
			},
			expectedStatus: http.StatusBadRequest,
			bodyContains:   "id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{GetByIDFunc: tt.getByID})

			req := httptest.NewRequest(http.MethodGet, "/orders/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			h.GetOrderByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.bodyContains)
		})
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		list           func(ctx context.Context, status order.OrderStatus) ([]order.Order, error)
		expectedStatus int
		bodyContains   string
	}{
		{
			name:  "all",
			query: "",
			list: func(ctx context.Context, status order.OrderStatus) ([]order.Order, error) {
				assert.Equal(t, order.OrderStatus(""), status)
				return []order.Order{*sampleOrder()}, nil
			},
			expectedStatus: http.StatusOK,
			bodyContains:   `"order_id":"CMD-20260830-001"`,
		},
		{
			name:  "filtered",
			query: "?status=pending",
			list: func(ctx context.Context, status order.OrderStatus) ([]order.Order, error) {
				assert.Equal(t, order.StatusPending, status)
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			bodyContains:   "[]",
		},
		{
			name:  "invalid_status",
			query: "?status=bogus",
			list: func(ctx context.Context, status order.OrderStatus) ([]order.Order, error) {
				return nil, order.ErrInvalidStatus
			},
			expectedStatus: http.StatusBadRequest,
			bodyContains:   "invalid status filter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{ListFunc: tt.list})
			r := chi.NewRouter()
			r.Get("/orders", h.ListOrders)

			req := httptest.NewRequest(http.MethodGet, "/orders"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.bodyContains)
		})
	}
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		updateStatus   func(ctx context.Context, orderID string, newStatus order.OrderStatus) (bool, error)
		expectedStatus int
		bodyContains   string
	}{
		{
			name: "success",
			body: `{"status":"confirmed"}`,
			updateStatus: func(ctx context.Context, orderID string, newStatus order.OrderStatus) (bool, error) {
				assert.Equal(t, order.StatusConfirmed, newStatus)
				return true, nil
			},
			expectedStatus: http.StatusOK,
			bodyContains:   `"status":"confirmed"`,
		},
		{
			name: "unknown_order",
			body: `{"status":"shipped"}`,
			updateStatus: func(ctx context.Context, orderID string, newStatus order.OrderStatus) (bool, error) {
				return false, nil
			},
			expectedStatus: http.StatusNotFound,
			bodyContains:   "order not found",
		},
		{
			name: "invalid_status",
			body: `{"status":"teleported"}`,
			updateStatus: func(ctx context.Context, orderID string, newStatus order.OrderStatus) (bool, error) {
				return false, order.ErrInvalidStatus
			},
			expectedStatus: http.StatusBadRequest,
			bodyContains:   "invalid order status",
		},
		{
			name:           "invalid_json",
			body:           `{not json}`,
			updateStatus:   func(ctx context.Context, orderID string, newStatus order.OrderStatus) (bool, error) { return true, nil },
			expectedStatus: http.StatusBadRequest,
			bodyContains:   "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{UpdateStatusFunc: tt.updateStatus})

			req := httptest.NewRequest(http.MethodPatch, "/orders/CMD-20260830-001/status", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "CMD-20260830-001")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			h.UpdateOrderStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.bodyContains)
		})
	}
}
