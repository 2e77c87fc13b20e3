package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	CostPrice   *decimal.Decimal
	Category    string
	Subcategory *string
	Brand       *string
	Tags        []string
	ImageURL    *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Margin returns price minus cost price, or false when no cost price is set.
func (p Product) Margin() (decimal.Decimal, bool) {
	if p.CostPrice == nil {
		return decimal.Zero, false
	}
	return p.Price.Sub(*p.CostPrice), true
}

type ProductFilter struct {
	Category   string
	ActiveOnly bool
	Offset     int
	Limit      int
}
