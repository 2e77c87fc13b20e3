package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
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

func intPtr(i int) *int {
	return &i
}

type fixture struct {
	store     *testutil.MemStore
	cache     *cache.Cache
	publisher *testutil.RecordingPublisher
	svc       *InventoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewMemStore()
	c := testutil.NewTestCache(t)
	pub := &testutil.RecordingPublisher{}
	svc := NewService(store, store.Inventory(), c, pub, Options{SummaryTTL: time.Minute, QueryTimeout: time.Second}, zap.NewNop())
	return &fixture{store: store, cache: c, publisher: pub, svc: svc}
}

func (f *fixture) seed(id string, stock, reorderLevel int, price string) {
	f.store.Seed(domain.Product{
		ID:       id,
		SKU:      "SKU-" + id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Category: "general",
		IsActive: true,
	}, stock, reorderLevel)
}

func TestDecreaseStock_Success(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 50, 10, "10.00")

	rec, err := f.svc.DecreaseStock(context.Background(), "p1", 5)
	require.NoError(t, err)

	assert.Equal(t, 45, rec.CurrentStock)
	assert.False(t, rec.IsLowStock)
	assert.Equal(t, []string{domain.TopicStockDecreased}, f.publisher.Topics())

	ev := f.publisher.Events()[0].Payload.(domain.StockMovedEvent)
	assert.Equal(t, domain.StockMovedEvent{ProductID: "p1", Quantity: 5, NewStock: 45}, ev)
}

func TestDecreaseStock_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 3, 10, "10.00")

	_, err := f.svc.DecreaseStock(context.Background(), "p1", 5)

	ie, ok := apperrors.IsInsufficientStockError(err)
	require.True(t, ok)
	assert.Equal(t, 3, ie.Available)
	assert.Equal(t, 5, ie.Requested)

	rec, _ := f.store.Record("p1")
	assert.Equal(t, 3, rec.CurrentStock)
	assert.Empty(t, f.publisher.Events())
}

func TestDecreaseStock_RespectsReservedStock(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 20, 5, "1.00")

	_, err := f.svc.UpdateInventory(context.Background(), "p1", domain.InventoryPatch{ReservedStock: intPtr(15)})
	require.NoError(t, err)

	_, err = f.svc.DecreaseStock(context.Background(), "p1", 6)
	_, ok := apperrors.IsInsufficientStockError(err)
	assert.True(t, ok)

	rec, err := f.svc.DecreaseStock(context.Background(), "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 15, rec.CurrentStock)
	assert.Equal(t, 0, rec.AvailableStock())
}

func TestDecreaseStock_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.DecreaseStock(context.Background(), "missing", 1)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestDecreaseStock_InvalidQuantity(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 10, 1, "1.00")

	for _, q := range []int{0, -3} {
		_, err := f.svc.DecreaseStock(context.Background(), "p1", q)
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok, "quantity %d", q)
	}
}

func TestDecreaseStock_LowStockAlertOnlyOnCrossing(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 15, 10, "2.00")
	ctx := context.Background()

	rec, err := f.svc.DecreaseStock(ctx, "p1", 5)
	require.NoError(t, err)
	assert.True(t, rec.IsLowStock)
	assert.Equal(t, 1, f.publisher.Count(domain.TopicLowStock))

	_, err = f.svc.DecreaseStock(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, f.publisher.Count(domain.TopicLowStock))

	alert := f.publisher.Events()[1].Payload.(domain.LowStockEvent)
	assert.Equal(t, domain.LowStockEvent{ProductID: "p1", CurrentStock: 10, ReorderLevel: 10}, alert)
}

func TestDecreaseStock_ConcurrentDecrementsNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 10, 0, "1.00")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.DecreaseStock(context.Background(), "p1", 3)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if _, ok := apperrors.IsInsufficientStockError(err); ok {
				rejected++
			}
		}()
	}
	wg.Wait()

	rec, _ := f.store.Record("p1")
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 7, rejected)
	assert.Equal(t, 1, rec.CurrentStock)
}

func TestIncreaseStock(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 5, 10, "1.00")
	before := time.Now().UTC()

	rec, err := f.svc.IncreaseStock(context.Background(), "p1", 20)
	require.NoError(t, err)

	assert.Equal(t, 25, rec.CurrentStock)
	assert.False(t, rec.IsLowStock)
	require.NotNil(t, rec.LastRestockDate)
	assert.False(t, rec.LastRestockDate.Before(before))
	assert.Equal(t, []string{domain.TopicStockRestocked}, f.publisher.Topics())
}

func TestIncreaseStock_StillLowNoAlert(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 0, 10, "1.00")

	rec, err := f.svc.IncreaseStock(context.Background(), "p1", 3)
	require.NoError(t, err)

	assert.True(t, rec.IsLowStock)
	assert.Equal(t, 0, f.publisher.Count(domain.TopicLowStock))
}

func TestUpdateInventory_RaisingReorderLevelAlerts(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 30, 10, "1.00")

	rec, err := f.svc.UpdateInventory(context.Background(), "p1", domain.InventoryPatch{ReorderLevel: intPtr(40)})
	require.NoError(t, err)

	assert.True(t, rec.IsLowStock)
	assert.Equal(t, []string{domain.TopicInventoryUpdated, domain.TopicLowStock}, f.publisher.Topics())
}

func TestUpdateInventory_Validation(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 30, 10, "1.00")
	ctx := context.Background()

	tests := []struct {
		name  string
		patch domain.InventoryPatch
		field string
	}{
		{"negative current", domain.InventoryPatch{CurrentStock: intPtr(-1)}, "currentStock"},
		{"negative reorder level", domain.InventoryPatch{ReorderLevel: intPtr(-1)}, "reorderLevel"},
		{"zero reorder quantity", domain.InventoryPatch{ReorderQuantity: intPtr(0)}, "reorderQuantity"},
		{"zero max stock", domain.InventoryPatch{MaxStock: intPtr(0)}, "maxStock"},
		{"reserved above current", domain.InventoryPatch{ReservedStock: intPtr(31)}, "reservedStock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateInventory(ctx, "p1", tt.patch)
			ve, ok := apperrors.IsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Details[0].Field)
		})
	}

	rec, _ := f.store.Record("p1")
	assert.Equal(t, 30, rec.CurrentStock)
	assert.Equal(t, 0, rec.ReservedStock)
	assert.Empty(t, f.publisher.Events())
}

func TestGetSummary(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 0, 10, "5.00")
	f.seed("p2", 4, 10, "2.50")
	f.seed("p3", 100, 10, "1.10")

	summary, err := f.svc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalProducts)
	assert.Equal(t, 1, summary.LowStockCount)
	assert.Equal(t, 1, summary.OutOfStockCount)
	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("120.00")), summary.TotalValue.String())
}

func TestGetSummary_InvalidatedByMutation(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 20, 10, "1.00")
	ctx := context.Background()

	first, err := f.svc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, first.LowStockCount)

	_, err = f.svc.DecreaseStock(ctx, "p1", 15)
	require.NoError(t, err)

	second, err := f.svc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.LowStockCount)
	assert.True(t, second.TotalValue.Equal(decimal.NewFromInt(5)))
}

func TestGetLowStockItems(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 2, 10, "1.00")
	f.seed("p2", 50, 10, "1.00")

	items, err := f.svc.GetLowStockItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Record.ProductID)
	assert.Equal(t, "Product p1", items[0].ProductName)
}

func TestDecreaseStock_TransientFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", 10, 1, "1.00")
	unavailable := apperrors.NewUnavailableError("store unavailable", errors.New("deadlock"))
	f.store.TxErr = func() error { return unavailable }

	_, err := f.svc.DecreaseStock(context.Background(), "p1", 1)
	_, ok := apperrors.IsUnavailableError(err)
	assert.True(t, ok)
	assert.Empty(t, f.publisher.Events())
}

// stalledReads hangs or drops the connection on the read queries.
type stalledReads struct {
	*testutil.MemInventory
	listErr error
}

func (r stalledReads) FindByProductID(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (r stalledReads) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return nil, r.listErr
}

func TestGetInventory_HungStoreTimesOut(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewService(store, stalledReads{MemInventory: store.Inventory()}, testutil.NewTestCache(t),
		&testutil.RecordingPublisher{}, Options{QueryTimeout: 50 * time.Millisecond}, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.GetInventory(context.Background(), "p1")
		done <- err
	}()

	select {
	case err := <-done:
		_, ok := apperrors.IsUnavailableError(err)
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("read was not bounded by the query timeout")
	}
}

func TestGetSummary_BadConnectionIsUnavailable(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewService(store, stalledReads{MemInventory: store.Inventory(), listErr: fmt.Errorf("listing inventory: %w", driver.ErrBadConn)},
		testutil.NewTestCache(t), &testutil.RecordingPublisher{}, Options{QueryTimeout: time.Second}, zap.NewNop())

	_, err := svc.GetSummary(context.Background())

	_, ok := apperrors.IsUnavailableError(err)
	assert.True(t, ok)
}
