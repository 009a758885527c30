package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrInvalidStatus = errors.New("invalid order status")

// CreateInput is everything needed to snapshot a cart into an order.
type CreateInput struct {
	SessionID     string
	Customer      CustomerInfo
	Items         []Item
	PaymentMethod PaymentMethod
	Channel       string
	DeliveryFee   decimal.Decimal
}

// Service handles order business logic.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Order, error)
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]Order, error)
	List(ctx context.Context, status OrderStatus) ([]Order, error)
	ListPending(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, newStatus OrderStatus) (bool, error)
	Cancel(ctx context.Context, orderID string) (bool, error)
}

type service struct {
	repo Repository
}

// NewService creates the order service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GenerateOrderID mints the next order identifier for today, in the form
// CMD-<YYYYMMDD>-<zero-padded 3-digit daily sequence>.
func (s *service) generateOrderID(ctx context.Context) (string, error) {
	day := time.Now().UTC().Format("20060102")
	seq, err := s.repo.NextDailySequence(ctx, day)
	if err != nil {
		return "", fmt.Errorf("service: failed to generate order id: %w", err)
	}
	return fmt.Sprintf("CMD-%s-%03d", day, seq), nil
}

// Create snapshots the given items and customer data into a new pending
// order. Missing customer fields stay empty strings; creation never fails on
// them. Totals are computed here, once, and never recomputed afterwards.
func (s *service) Create(ctx context.Context, input CreateInput) (*Order, error) {
	orderID, err := s.generateOrderID(ctx)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range input.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = PaymentCashOnDelivery
	}

	o := &Order{
		OrderID:       orderID,
		SessionID:     input.SessionID,
		Customer:      input.Customer,
		Items:         append([]Item(nil), input.Items...),
		Subtotal:      subtotal,
		DeliveryFee:   input.DeliveryFee,
		Total:         subtotal.Add(input.DeliveryFee),
		PaymentMethod: paymentMethod,
		Status:        StatusPending,
		Channel:       input.Channel,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Str("order_id", orderID).Str("session_id", input.SessionID).Str("total", o.Total.StringFixed(2)).Msg("service: order created")
	return o, nil
}

// GetByID returns the order or nil when the id is unknown; lookup misses are
// not errors.
func (s *service) GetByID(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ListBySession(ctx context.Context, sessionID string) ([]Order, error) {
	orders, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch session orders: %w", err)
	}
	return orders, nil
}

func (s *service) List(ctx context.Context, status OrderStatus) ([]Order, error) {
	if status != "" && !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	orders, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListPending(ctx context.Context) ([]Order, error) {
	return s.List(ctx, StatusPending)
}

// UpdateStatus reports whether a matching order was updated. An unknown
// order id yields false, not an error.
func (s *service) UpdateStatus(ctx context.Context, orderID string, newStatus OrderStatus) (bool, error) {
	if !ValidStatus(newStatus) {
		return false, ErrInvalidStatus
	}

	err := s.repo.UpdateStatus(ctx, orderID, newStatus)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", orderID).Str("new_status", string(newStatus)).Msg("service: order not found for status update")
			return false, nil
		}
		return false, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Str("order_id", orderID).Str("new_status", string(newStatus)).Msg("service: order status updated")
	return true, nil
}

func (s *service) Cancel(ctx context.Context, orderID string) (bool, error) {
	return s.UpdateStatus(ctx, orderID, StatusCancelled)
}
