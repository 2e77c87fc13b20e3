package domain

import "github.com/shopspring/decimal"

// Bus topics published by the ledgers and the orchestrator.
const (
	TopicSaleCreated      = "sales.new"
	TopicInventoryUpdated = "inventory.updated"
	TopicStockDecreased   = "inventory.stock-decreased"
	TopicStockRestocked   = "inventory.restocked"
	TopicLowStock         = "inventory.low-stock"
	TopicDashboardUpdated = "dashboard.updated"
)

type StockMovedEvent struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	NewStock  int    `json:"newStock"`
}

type LowStockEvent struct {
	ProductID    string `json:"productId"`
	CurrentStock int    `json:"currentStock"`
	ReorderLevel int    `json:"reorderLevel"`
}

type InventoryUpdatedEvent struct {
	ProductID      string `json:"productId"`
	CurrentStock   int    `json:"currentStock"`
	ReservedStock  int    `json:"reservedStock"`
	AvailableStock int    `json:"availableStock"`
	ReorderLevel   int    `json:"reorderLevel"`
	IsLowStock     bool   `json:"isLowStock"`
}

type SaleCreatedEvent struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Channel     *string         `json:"channel,omitempty"`
	SaleDate    string          `json:"saleDate"`
}
