package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type UpdateInventoryRequest struct {
	CurrentStock    *int    `json:"currentStock,omitempty" validate:"omitempty,min=0"`
	ReservedStock   *int    `json:"reservedStock,omitempty" validate:"omitempty,min=0"`
	ReorderLevel    *int    `json:"reorderLevel,omitempty" validate:"omitempty,min=0"`
	ReorderQuantity *int    `json:"reorderQuantity,omitempty" validate:"omitempty,min=1"`
	MaxStock        *int    `json:"maxStock,omitempty" validate:"omitempty,min=1"`
	Location        *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Warehouse       *string `json:"warehouse,omitempty" validate:"omitempty,max=255"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type InventoryDTO struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"productId"`
	SKU             string           `json:"sku,omitempty"`
	ProductName     string           `json:"productName,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	CurrentStock    int              `json:"currentStock"`
	ReservedStock   int              `json:"reservedStock"`
	AvailableStock  int              `json:"availableStock"`
	ReorderLevel    int              `json:"reorderLevel"`
	ReorderQuantity int              `json:"reorderQuantity"`
	MaxStock        *int             `json:"maxStock,omitempty"`
	Location        *string          `json:"location,omitempty"`
	Warehouse       *string          `json:"warehouse,omitempty"`
	IsLowStock      bool             `json:"isLowStock"`
	LastRestockDate *time.Time       `json:"lastRestockDate,omitempty"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}
