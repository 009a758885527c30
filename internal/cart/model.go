package cart

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// CartStatus is the lifecycle of a cart. Active carts become converted at
// order finalization or abandoned on explicit cancellation; both are
// terminal.
type CartStatus string

const (
	StatusActive    CartStatus = "active"
	StatusConverted CartStatus = "converted"
	StatusAbandoned CartStatus = "abandoned"
)

func (cs CartStatus) String() string {
	return string(cs)
}

// LineItem is one product entry in a cart. ProductName is the identity key:
// a cart holds at most one line item per distinct product name.
type LineItem struct {
	ProductName  string          `json:"product_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	DeliveryTime string          `json:"delivery_time"`
}

// Cart is the mutable pre-checkout collection of line items for one session.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	SessionID string     `json:"session_id"`
	Status    CartStatus `json:"status"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Summary is the computed view of a cart used for rendering and order
// creation.
type Summary struct {
	Items       []LineItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}
