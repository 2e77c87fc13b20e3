package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	SKU         string           `json:"sku" validate:"required,max=64"`
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price" validate:"gte=0,lte=99999999.99,cents"`
	CostPrice   *decimal.Decimal `json:"costPrice,omitempty" validate:"omitempty,gte=0,lte=99999999.99,cents"`
	Category    string           `json:"category" validate:"required,max=100"`
	Subcategory *string          `json:"subcategory,omitempty" validate:"omitempty,max=100"`
	Brand       *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	Tags        []string         `json:"tags,omitempty" validate:"omitempty,dive,required"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	IsActive    *bool            `json:"isActive,omitempty"`
}

type ProductDTO struct {
	ID          string           `json:"id"`
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	CostPrice   *decimal.Decimal `json:"costPrice,omitempty"`
	Margin      *decimal.Decimal `json:"margin,omitempty"`
	Category    string           `json:"category"`
	Subcategory *string          `json:"subcategory,omitempty"`
	Brand       *string          `json:"brand,omitempty"`
	Tags        []string         `json:"tags"`
	ImageURL    *string          `json:"imageUrl,omitempty"`
	IsActive    bool             `json:"isActive"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type ListProductsResponse struct {
	Data []ProductDTO `json:"data"`
	Meta PageMeta     `json:"meta"`
}
