package catalog

import "github.com/shopspring/decimal"

// Product is a single sellable item from the business data file.
type Product struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	InStock      bool            `json:"in_stock"`
	StockStatus  string          `json:"stock_status,omitempty"`
	DeliveryTime string          `json:"delivery_time,omitempty"`
}
