package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storepulse/internal/domain"
	"storepulse/internal/dto"
)

type mockService struct {
	CreateFunc     func(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetFunc        func(ctx context.Context, id string) (*domain.Product, error)
	ListFunc       func(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
	DeactivateFunc func(ctx context.Context, id string) error
}

func (m *mockService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	return m.CreateFunc(ctx, p)
}

func (m *mockService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockService) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	return m.ListFunc(ctx, f)
}

func (m *mockService) Deactivate(ctx context.Context, id string) error {
	return m.DeactivateFunc(ctx, id)
}

func TestCreateProduct_DefaultsToActive(t *testing.T) {
	var got domain.Product
	uc := NewProductsUseCase(&mockService{
		CreateFunc: func(ctx context.Context, p domain.Product) (*domain.Product, error) {
			got = p
			p.ID = "p1"
			return &p, nil
		},
	})

	out, err := uc.CreateProduct(context.Background(), dto.CreateProductRequest{
		SKU:      "W-1",
		Name:     "Widget",
		Price:    decimal.RequireFromString("3.25"),
		Category: "tools",
	})
	require.NoError(t, err)

	assert.True(t, got.IsActive)
	assert.Equal(t, "p1", out.ID)
	assert.Equal(t, "3.25", out.Price.StringFixed(2))
}

func TestCreateProduct_ExplicitInactive(t *testing.T) {
	inactive := false
	var got domain.Product
	uc := NewProductsUseCase(&mockService{
		CreateFunc: func(ctx context.Context, p domain.Product) (*domain.Product, error) {
			got = p
			return &p, nil
		},
	})

	_, err := uc.CreateProduct(context.Background(), dto.CreateProductRequest{SKU: "W-1", Name: "Widget", Category: "tools", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestCreateProduct_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	uc := NewProductsUseCase(&mockService{
		CreateFunc: func(ctx context.Context, p domain.Product) (*domain.Product, error) { return nil, boom },
	})

	_, err := uc.CreateProduct(context.Background(), dto.CreateProductRequest{SKU: "W-1"})
	assert.ErrorIs(t, err, boom)
}

func TestListProducts_TranslatesPage(t *testing.T) {
	var got domain.ProductFilter
	uc := NewProductsUseCase(&mockService{
		ListFunc: func(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
			got = f
			return []domain.Product{{ID: "p1", Name: "A"}, {ID: "p2", Name: "B"}}, 12, nil
		},
	})

	out, err := uc.ListProducts(context.Background(), dto.PageQuery{Page: 3, Limit: 5}, "tools", true)
	require.NoError(t, err)

	assert.Equal(t, domain.ProductFilter{Category: "tools", ActiveOnly: true, Offset: 10, Limit: 5}, got)
	assert.Len(t, out.Data, 2)
	assert.Equal(t, dto.PageMeta{Page: 3, Limit: 5, Total: 12}, out.Meta)
}

func TestListProducts_EmptyIsNotNil(t *testing.T) {
	uc := NewProductsUseCase(&mockService{
		ListFunc: func(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
			return nil, 0, nil
		},
	})

	out, err := uc.ListProducts(context.Background(), dto.PageQuery{Page: 1, Limit: 20}, "", false)
	require.NoError(t, err)
	assert.NotNil(t, out.Data)
	assert.Empty(t, out.Data)
}
