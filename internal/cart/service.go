package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/commerce-assistant/internal/catalog"
)

// DeliveryFee is the fixed delivery fee in TND, applied to every cart.
// Orders snapshot it at creation time; changing it never rewrites history.
var DeliveryFee = decimal.NewFromInt(8)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrCartNotActive   = errors.New("cart is not active")
)

// Service owns all cart operations for sessions. Every operation resolves
// the single active cart of the session, creating one lazily.
type Service interface {
	GetOrCreate(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, product catalog.Product, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID, productName string) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
	Summarize(ctx context.Context, sessionID string) (*Summary, error)
	IsEmpty(ctx context.Context, sessionID string) (bool, error)
	MarkConverted(ctx context.Context, sessionID string) error
	MarkAbandoned(ctx context.Context, sessionID string) error
}

type service struct {
	repo Repository
}

// NewService creates the cart service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetOrCreate(ctx context.Context, sessionID string) (*Cart, error) {
	c, err := s.repo.GetActiveBySession(ctx, sessionID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return nil, fmt.Errorf("service: failed to fetch active cart: %w", err)
	}

	c = &Cart{
		SessionID: sessionID,
		Status:    StatusActive,
		Items:     []LineItem{},
	}
	if err := s.repo.Create(ctx, c); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("service: failed to create cart")
		return nil, fmt.Errorf("service: failed to create cart: %w", err)
	}

	log.Debug().Str("session_id", sessionID).Stringer("cart_id", c.ID).Msg("service: new cart created")
	return c, nil
}

// AddItem adds quantity of the product to the session's active cart. The
// product's price and delivery label are captured at add time; a line item
// already holding the same product name (case-sensitive) has its quantity
// incremented instead of being duplicated.
func (s *service) AddItem(ctx context.Context, sessionID string, product catalog.Product, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductName == product.Name {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, LineItem{
			ProductName:  product.Name,
			Price:        product.Price,
			Quantity:     quantity,
			DeliveryTime: product.DeliveryTime,
		})
	}

	if err := s.repo.SaveItems(ctx, c); err != nil {
		return nil, fmt.Errorf("service: failed to save cart items: %w", err)
	}

	log.Info().Str("session_id", sessionID).Str("product", product.Name).Int("quantity", quantity).Msg("service: item added to cart")
	return c, nil
}

// RemoveItem drops every line item whose product name matches
// case-insensitively. Removing an absent product is not an error.
func (s *service) RemoveItem(ctx context.Context, sessionID, productName string) (*Cart, error) {
	c, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(productName)
	kept := c.Items[:0]
	for _, item := range c.Items {
		if strings.ToLower(item.ProductName) != needle {
			kept = append(kept, item)
		}
	}
	c.Items = kept

	if err := s.repo.SaveItems(ctx, c); err != nil {
		return nil, fmt.Errorf("service: failed to save cart items: %w", err)
	}
	return c, nil
}

// Clear empties the line items without touching the cart status.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	c, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return err
	}

	c.Items = []LineItem{}
	if err := s.repo.SaveItems(ctx, c); err != nil {
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return nil
}

func (s *service) Summarize(ctx context.Context, sessionID string) (*Summary, error) {
	c, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sum := Summarize(c)
	return &sum, nil
}

func (s *service) IsEmpty(ctx context.Context, sessionID string) (bool, error) {
	c, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return len(c.Items) == 0, nil
}

func (s *service) MarkConverted(ctx context.Context, sessionID string) error {
	return s.transition(ctx, sessionID, StatusConverted)
}

func (s *service) MarkAbandoned(ctx context.Context, sessionID string) error {
	return s.transition(ctx, sessionID, StatusAbandoned)
}

// transition moves the active cart into a terminal status. Converted and
// abandoned carts are never reactivated; the next GetOrCreate starts fresh.
func (s *service) transition(ctx context.Context, sessionID string, status CartStatus) error {
	c, err := s.repo.GetActiveBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return ErrCartNotActive
		}
		return fmt.Errorf("service: failed to fetch active cart: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, c.ID, status); err != nil {
		log.Error().Err(err).Stringer("cart_id", c.ID).Str("new_status", string(status)).Msg("service: failed to update cart status")
		return fmt.Errorf("service: failed to update cart status: %w", err)
	}

	log.Info().Str("session_id", sessionID).Stringer("cart_id", c.ID).Str("status", string(status)).Msg("service: cart status updated")
	return nil
}

// Summarize computes totals for a cart: subtotal is the sum of
// price*quantity over all items, total adds the fixed delivery fee.
func Summarize(c *Cart) Summary {
	subtotal := decimal.Zero
	itemCount := 0
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		itemCount += item.Quantity
	}

	return Summary{
		Items:       append([]LineItem(nil), c.Items...),
		Subtotal:    subtotal,
		DeliveryFee: DeliveryFee,
		Total:       subtotal.Add(DeliveryFee),
		ItemCount:   itemCount,
	}
}
