package dto

import "storepulse/internal/domain"

func FromProduct(p domain.Product) ProductDTO {
	out := ProductDTO{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CostPrice:   p.CostPrice,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Brand:       p.Brand,
		Tags:        p.Tags,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if m, ok := p.Margin(); ok {
		out.Margin = &m
	}
	return out
}

func FromInventoryRecord(r domain.InventoryRecord) InventoryDTO {
	return InventoryDTO{
		ID:              r.ID,
		ProductID:       r.ProductID,
		CurrentStock:    r.CurrentStock,
		ReservedStock:   r.ReservedStock,
		AvailableStock:  r.AvailableStock(),
		ReorderLevel:    r.ReorderLevel,
		ReorderQuantity: r.ReorderQuantity,
		MaxStock:        r.MaxStock,
		Location:        r.Location,
		Warehouse:       r.Warehouse,
		IsLowStock:      r.IsLowStock,
		LastRestockDate: r.LastRestockDate,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromInventoryItem(item domain.InventoryItem) InventoryDTO {
	out := FromInventoryRecord(item.Record)
	out.SKU = item.SKU
	out.ProductName = item.ProductName
	price := item.Price
	out.Price = &price
	return out
}

func FromSale(s domain.Sale) SaleDTO {
	return SaleDTO{
		ID:            s.ID,
		ProductID:     s.ProductID,
		ProductName:   s.ProductName,
		Quantity:      s.Quantity,
		UnitPrice:     s.UnitPrice,
		TotalAmount:   s.TotalAmount,
		CustomerID:    s.CustomerID,
		CustomerEmail: s.CustomerEmail,
		Status:        s.Status,
		PaymentMethod: s.PaymentMethod,
		Channel:       s.Channel,
		SaleDate:      s.SaleDate,
		CreatedAt:     s.CreatedAt,
	}
}

func FromSales(sales []domain.Sale) []SaleDTO {
	out := make([]SaleDTO, 0, len(sales))
	for _, s := range sales {
		out = append(out, FromSale(s))
	}
	return out
}
