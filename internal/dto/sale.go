package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateSaleRequest struct {
	ProductID     string          `json:"productId" validate:"required,uuid"`
	Quantity      int             `json:"quantity" validate:"required,min=1"`
	UnitPrice     decimal.Decimal `json:"unitPrice" validate:"gte=0,lte=99999999.99,cents"`
	CustomerID    *string         `json:"customerId,omitempty" validate:"omitempty,uuid"`
	CustomerEmail *string         `json:"customerEmail,omitempty" validate:"omitempty,email"`
	PaymentMethod *string         `json:"paymentMethod,omitempty" validate:"omitempty,max=64"`
	Channel       *string         `json:"channel,omitempty" validate:"omitempty,max=64"`
}

type SaleDTO struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CustomerID    *string         `json:"customerId,omitempty"`
	CustomerEmail *string         `json:"customerEmail,omitempty"`
	Status        string          `json:"status"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	Channel       *string         `json:"channel,omitempty"`
	SaleDate      time.Time       `json:"saleDate"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type ListSalesResponse struct {
	Data []SaleDTO `json:"data"`
	Meta PageMeta  `json:"meta"`
}
