package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const SaleStatusCompleted = "completed"

type Sale struct {
	ID            string
	ProductID     string
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalAmount   decimal.Decimal
	CustomerID    *string
	CustomerEmail *string
	Status        string
	PaymentMethod *string
	Channel       *string
	SaleDate      time.Time
	CreatedAt     time.Time
}

type NewSaleParams struct {
	ProductID     string
	Quantity      int
	UnitPrice     decimal.Decimal
	CustomerID    *string
	CustomerEmail *string
	PaymentMethod *string
	Channel       *string
}

// NewSale computes TotalAmount once; it is never recomputed afterwards.
// Money is stored with two decimal places: unit prices up to MaxUnitPrice
// and totals up to MaxTotalAmount.
var (
	MaxUnitPrice   = decimal.RequireFromString("99999999.99")
	MaxTotalAmount = decimal.RequireFromString("9999999999.99")
)

// InCents reports whether d is representable with two decimal places.
func InCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

func NewSale(id string, p NewSaleParams, at time.Time) Sale {
	at = at.UTC()
	return Sale{
		ID:            id,
		ProductID:     p.ProductID,
		Quantity:      p.Quantity,
		UnitPrice:     p.UnitPrice,
		TotalAmount:   p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))),
		CustomerID:    p.CustomerID,
		CustomerEmail: p.CustomerEmail,
		Status:        SaleStatusCompleted,
		PaymentMethod: p.PaymentMethod,
		Channel:       p.Channel,
		SaleDate:      at,
		CreatedAt:     at,
	}
}

// CustomerExport is everything stored about one customer's purchases.
type CustomerExport struct {
	Sales      []Sale
	ExportedAt time.Time
}
