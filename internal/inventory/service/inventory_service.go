package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/infrastructure/metrics"
	"storepulse/internal/infrastructure/mysql"
)

type Repository interface {
	FindByProductIDForUpdate(ctx context.Context, tx mysql.DBTX, productID string) (*domain.InventoryRecord, error)
	Update(ctx context.Context, tx mysql.DBTX, rec domain.InventoryRecord) error
	FindByProductID(ctx context.Context, productID string) (*domain.InventoryItem, error)
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]domain.InventoryItem, error)
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx mysql.DBTX) error) error
}

type Cache interface {
	cache.JSONCache
	Invalidate(ctx context.Context, patterns ...string)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any)
}

type Options struct {
	SummaryTTL   time.Duration
	QueryTimeout time.Duration
}

// InventoryService is the inventory ledger. Every mutation locks the
// record, recomputes the low-stock flag and, after commit, invalidates the
// dependent caches and announces the change.
type InventoryService struct {
	txm       TxManager
	repo      Repository
	cache     Cache
	publisher Publisher
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(txm TxManager, repo Repository, c Cache, publisher Publisher, opts Options, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		txm:       txm,
		repo:      repo,
		cache:     c,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *InventoryService) IncreaseStock(ctx context.Context, productID string, quantity int) (*domain.InventoryRecord, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	var change *domain.StockChange
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		rec, err := s.repo.FindByProductIDForUpdate(ctx, tx, productID)
		if err != nil {
			return err
		}

		before := *rec
		now := s.now().UTC()
		rec.CurrentStock += quantity
		rec.LastRestockDate = &now
		rec.UpdatedAt = now
		rec.Recompute()

		if err := s.repo.Update(ctx, tx, *rec); err != nil {
			return err
		}
		change = &domain.StockChange{Kind: domain.StockIncreased, Quantity: quantity, Before: before, After: *rec}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Announce(ctx, change)
	return &change.After, nil
}

func (s *InventoryService) DecreaseStock(ctx context.Context, productID string, quantity int) (*domain.InventoryRecord, error) {
	var change *domain.StockChange
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		var err error
		change, err = s.DecreaseStockTx(ctx, tx, productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Announce(ctx, change)
	return &change.After, nil
}

// DecreaseStockTx decrements stock inside the caller's transaction. The
// caller must pass the returned change to Announce once tx has committed.
func (s *InventoryService) DecreaseStockTx(ctx context.Context, tx mysql.DBTX, productID string, quantity int) (*domain.StockChange, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	rec, err := s.repo.FindByProductIDForUpdate(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	if available := rec.AvailableStock(); available < quantity {
		metrics.StockRejections.Inc()
		s.logger.Info("stock decrement rejected",
			zap.String("productId", productID),
			zap.Int("requested", quantity),
			zap.Int("available", available))
		return nil, apperrors.NewInsufficientStockError(productID, quantity, available)
	}

	before := *rec
	rec.CurrentStock -= quantity
	rec.UpdatedAt = s.now().UTC()
	rec.Recompute()

	if err := s.repo.Update(ctx, tx, *rec); err != nil {
		return nil, err
	}

	return &domain.StockChange{Kind: domain.StockDecreased, Quantity: quantity, Before: before, After: *rec}, nil
}

func (s *InventoryService) UpdateInventory(ctx context.Context, productID string, patch domain.InventoryPatch) (*domain.InventoryRecord, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var change *domain.StockChange
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		rec, err := s.repo.FindByProductIDForUpdate(ctx, tx, productID)
		if err != nil {
			return err
		}

		before := *rec
		rec.Apply(patch)
		if rec.ReservedStock > rec.CurrentStock {
			return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "reservedStock",
				Message: fmt.Sprintf("reservedStock %d exceeds currentStock %d", rec.ReservedStock, rec.CurrentStock),
			})
		}
		rec.UpdatedAt = s.now().UTC()

		if err := s.repo.Update(ctx, tx, *rec); err != nil {
			return err
		}
		change = &domain.StockChange{Kind: domain.StockUpdated, Before: before, After: *rec}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Announce(ctx, change)
	return &change.After, nil
}

// Announce runs the post-commit side effects of a stock change.
func (s *InventoryService) Announce(ctx context.Context, change *domain.StockChange) {
	if change == nil {
		return
	}

	s.cache.Invalidate(ctx, cache.InventorySummaryKey, cache.DashboardKey)

	after := change.After
	switch change.Kind {
	case domain.StockIncreased:
		s.publisher.Publish(ctx, domain.TopicStockRestocked, domain.StockMovedEvent{
			ProductID: after.ProductID,
			Quantity:  change.Quantity,
			NewStock:  after.CurrentStock,
		})
	case domain.StockDecreased:
		s.publisher.Publish(ctx, domain.TopicStockDecreased, domain.StockMovedEvent{
			ProductID: after.ProductID,
			Quantity:  change.Quantity,
			NewStock:  after.CurrentStock,
		})
	case domain.StockUpdated:
		s.publisher.Publish(ctx, domain.TopicInventoryUpdated, domain.InventoryUpdatedEvent{
			ProductID:      after.ProductID,
			CurrentStock:   after.CurrentStock,
			ReservedStock:  after.ReservedStock,
			AvailableStock: after.AvailableStock(),
			ReorderLevel:   after.ReorderLevel,
			IsLowStock:     after.IsLowStock,
		})
	}

	if change.CrossedIntoLowStock() {
		metrics.LowStockAlerts.Inc()
		s.logger.Warn("inventory crossed into low stock",
			zap.String("productId", after.ProductID),
			zap.Int("currentStock", after.CurrentStock),
			zap.Int("reorderLevel", after.ReorderLevel))
		s.publisher.Publish(ctx, domain.TopicLowStock, domain.LowStockEvent{
			ProductID:    after.ProductID,
			CurrentStock: after.CurrentStock,
			ReorderLevel: after.ReorderLevel,
		})
	}
}

func (s *InventoryService) GetInventory(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	return mysql.Read(ctx, s.opts.QueryTimeout, func(ctx context.Context) (*domain.InventoryItem, error) {
		return s.repo.FindByProductID(ctx, productID)
	})
}

func (s *InventoryService) GetLowStockItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return mysql.Read(ctx, s.opts.QueryTimeout, s.repo.ListLowStock)
}

func (s *InventoryService) GetSummary(ctx context.Context) (*domain.InventorySummary, error) {
	summary, _, err := cache.GetOrLoad(ctx, s.cache, cache.InventorySummaryKey, s.opts.SummaryTTL, s.computeSummary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *InventoryService) computeSummary(ctx context.Context) (domain.InventorySummary, error) {
	items, err := mysql.Read(ctx, s.opts.QueryTimeout, s.repo.ListItems)
	if err != nil {
		return domain.InventorySummary{}, err
	}

	summary := domain.InventorySummary{
		TotalProducts: len(items),
		TotalValue:    decimal.Zero,
	}
	for _, item := range items {
		rec := item.Record
		if rec.IsLowStock && rec.CurrentStock > 0 {
			summary.LowStockCount++
		}
		if rec.CurrentStock == 0 {
			summary.OutOfStockCount++
		}
		summary.TotalValue = summary.TotalValue.Add(item.Price.Mul(decimal.NewFromInt(int64(rec.CurrentStock))))
	}
	return summary, nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive integer",
		})
	}
	return nil
}

func validatePatch(p domain.InventoryPatch) error {
	var details []apperrors.ValidationDetail
	nonNegative := func(field string, v *int) {
		if v != nil && *v < 0 {
			details = append(details, apperrors.ValidationDetail{Field: field, Message: field + " must be non-negative"})
		}
	}
	atLeastOne := func(field string, v *int) {
		if v != nil && *v < 1 {
			details = append(details, apperrors.ValidationDetail{Field: field, Message: field + " must be at least 1"})
		}
	}

	nonNegative("currentStock", p.CurrentStock)
	nonNegative("reservedStock", p.ReservedStock)
	nonNegative("reorderLevel", p.ReorderLevel)
	atLeastOne("reorderQuantity", p.ReorderQuantity)
	atLeastOne("maxStock", p.MaxStock)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
