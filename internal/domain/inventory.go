package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultReorderLevel    = 10
	DefaultReorderQuantity = 50
)

type InventoryRecord struct {
	ID              string
	ProductID       string
	CurrentStock    int
	ReservedStock   int
	ReorderLevel    int
	ReorderQuantity int
	MaxStock        *int
	Location        *string
	Warehouse       *string
	IsLowStock      bool
	LastRestockDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewInventoryRecord builds the empty record created alongside a product.
func NewInventoryRecord(id, productID string) InventoryRecord {
	rec := InventoryRecord{
		ID:              id,
		ProductID:       productID,
		ReorderLevel:    DefaultReorderLevel,
		ReorderQuantity: DefaultReorderQuantity,
	}
	rec.Recompute()
	return rec
}

func (r InventoryRecord) AvailableStock() int {
	return r.CurrentStock - r.ReservedStock
}

// Recompute derives IsLowStock from the stock fields. Every mutation path
// calls it; IsLowStock is never assigned anywhere else.
func (r *InventoryRecord) Recompute() {
	r.IsLowStock = r.CurrentStock <= r.ReorderLevel
}

// InventoryPatch carries the optional fields of an inventory update.
type InventoryPatch struct {
	CurrentStock    *int
	ReservedStock   *int
	ReorderLevel    *int
	ReorderQuantity *int
	MaxStock        *int
	Location        *string
	Warehouse       *string
}

func (r *InventoryRecord) Apply(p InventoryPatch) {
	if p.CurrentStock != nil {
		r.CurrentStock = *p.CurrentStock
	}
	if p.ReservedStock != nil {
		r.ReservedStock = *p.ReservedStock
	}
	if p.ReorderLevel != nil {
		r.ReorderLevel = *p.ReorderLevel
	}
	if p.ReorderQuantity != nil {
		r.ReorderQuantity = *p.ReorderQuantity
	}
	if p.MaxStock != nil {
		r.MaxStock = p.MaxStock
	}
	if p.Location != nil {
		r.Location = p.Location
	}
	if p.Warehouse != nil {
		r.Warehouse = p.Warehouse
	}
	r.Recompute()
}

type StockChangeKind string

const (
	StockIncreased StockChangeKind = "restocked"
	StockDecreased StockChangeKind = "stock-decreased"
	StockUpdated   StockChangeKind = "updated"
)

// StockChange is the before/after pair produced by one committed mutation.
type StockChange struct {
	Kind     StockChangeKind
	Quantity int
	Before   InventoryRecord
	After    InventoryRecord
}

// CrossedIntoLowStock reports whether this mutation moved the record into
// the low-stock state.
func (c StockChange) CrossedIntoLowStock() bool {
	return !c.Before.IsLowStock && c.After.IsLowStock
}

// InventoryItem is an inventory record joined with the product fields the
// read models need.
type InventoryItem struct {
	Record      InventoryRecord
	SKU         string
	ProductName string
	Price       decimal.Decimal
}
