package usecase

import (
	"context"

	"storepulse/internal/domain"
	"storepulse/internal/dto"
)

type Service interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
	Deactivate(ctx context.Context, id string) error
}

type ProductsUseCase struct {
	service Service
}

func NewProductsUseCase(service Service) *ProductsUseCase {
	return &ProductsUseCase{service: service}
}

func (uc *ProductsUseCase) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductDTO, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := uc.service.Create(ctx, domain.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Brand:       req.Brand,
		Tags:        req.Tags,
		ImageURL:    req.ImageURL,
		IsActive:    isActive,
	})
	if err != nil {
		return nil, err
	}

	out := dto.FromProduct(*created)
	return &out, nil
}

func (uc *ProductsUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductDTO, error) {
	p, err := uc.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromProduct(*p)
	return &out, nil
}

func (uc *ProductsUseCase) ListProducts(ctx context.Context, page dto.PageQuery, category string, activeOnly bool) (*dto.ListProductsResponse, error) {
	found, total, err := uc.service.List(ctx, domain.ProductFilter{
		Category:   category,
		ActiveOnly: activeOnly,
		Offset:     page.Offset(),
		Limit:      page.Limit,
	})
	if err != nil {
		return nil, err
	}

	products := make([]dto.ProductDTO, 0, len(found))
	for _, p := range found {
		products = append(products, dto.FromProduct(p))
	}

	return &dto.ListProductsResponse{
		Data: products,
		Meta: dto.PageMeta{Page: page.Page, Limit: page.Limit, Total: total},
	}, nil
}

func (uc *ProductsUseCase) DeactivateProduct(ctx context.Context, id string) error {
	return uc.service.Deactivate(ctx, id)
}
