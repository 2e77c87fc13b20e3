package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/testutil"
)

func newTestService(t *testing.T) (*ProductService, *testutil.MemStore, *cache.Cache) {
	t.Helper()
	store := testutil.NewMemStore()
	c := testutil.NewTestCache(t)
	svc := NewService(store, store.Products(), store.Inventory(), c, time.Second, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC) }
	return svc, store, c
}

func widget(sku string) domain.Product {
	return domain.Product{
		SKU:      sku,
		Name:     "Widget " + sku,
		Price:    decimal.RequireFromString("12.50"),
		Category: "tools",
		IsActive: true,
	}
}

func TestCreate_StoresProductWithEmptyInventory(t *testing.T) {
	svc, store, _ := newTestService(t)

	p, err := svc.Create(context.Background(), widget("W-1"))
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), p.CreatedAt)

	rec, ok := store.Record(p.ID)
	require.True(t, ok)
	assert.Zero(t, rec.CurrentStock)
	assert.Equal(t, p.ID, rec.ProductID)
	assert.Equal(t, 1, store.Transactions())
}

func TestCreate_InvalidatesSummaryAndDashboard(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()
	c.SetJSON(ctx, cache.InventorySummaryKey, map[string]int{"totalProducts": 0}, time.Minute)
	c.SetJSON(ctx, cache.DashboardKey, map[string]int{"stale": 1}, time.Minute)

	_, err := svc.Create(ctx, widget("W-1"))
	require.NoError(t, err)

	var v map[string]int
	assert.False(t, c.GetJSON(ctx, cache.InventorySummaryKey, &v))
	assert.False(t, c.GetJSON(ctx, cache.DashboardKey, &v))
}

func TestCreate_DuplicateSKU(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, widget("W-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, widget("W-1"))
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestCreate_TxFailureLeavesNothingBehind(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.TxErr = func() error { return errors.New("connection reset") }

	_, err := svc.Create(context.Background(), widget("W-1"))
	require.Error(t, err)

	products, total, err := svc.List(context.Background(), domain.ProductFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestDeactivate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, widget("W-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, p.ID))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, total, err := svc.List(ctx, domain.ProductFilter{ActiveOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, active)
}

func TestDeactivate_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Deactivate(context.Background(), "missing")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
