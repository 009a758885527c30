package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle. Orders are created pending and only
// move through explicit status updates; they are never deleted.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (os OrderStatus) String() string {
	return string(os)
}

// ValidStatus reports whether s is one of the closed status set.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCard           PaymentMethod = "card"
)

// PaymentLabel returns the display label for a payment method.
func PaymentLabel(pm PaymentMethod) string {
	switch pm {
	case PaymentCard:
		return "Card payment"
	default:
		return "Cash on delivery"
	}
}

// CustomerInfo is the customer data captured during checkout. All fields are
// optional at creation; missing values default to empty strings.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Item is a snapshotted cart line inside an order.
type Item struct {
	ProductName  string          `json:"product_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	DeliveryTime string          `json:"delivery_time"`
}

// Order is the immutable record created at checkout finalization. Totals are
// computed once, from the snapshotted items and the fee constant in force at
// creation time, and never recomputed.
type Order struct {
	OrderID       string          `json:"order_id"`
	SessionID     string          `json:"session_id"`
	Customer      CustomerInfo    `json:"customer"`
	Items         []Item          `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	Channel       string          `json:"channel"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
