package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a single line of an order.
type OrderItem struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderData is the read-only view of an order returned by lookups.
type OrderData struct {
	OrderNumber     string
	AWB             string
	ReferenceNumber string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	ShippingCompany string
	ShippingAddress string
	TotalAmount     decimal.Decimal
	PaymentMethod   string
	OrderDate       time.Time
	Status          string
	Items           []OrderItem
}
