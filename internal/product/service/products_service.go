package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/infrastructure/mysql"
)

type Repository interface {
	Insert(ctx context.Context, tx mysql.DBTX, p domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
	Deactivate(ctx context.Context, tx mysql.DBTX, id string) error
}

type InventoryRepository interface {
	Insert(ctx context.Context, tx mysql.DBTX, rec domain.InventoryRecord) error
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx mysql.DBTX) error) error
}

type Cache interface {
	Invalidate(ctx context.Context, patterns ...string)
}

type ProductService struct {
	txm       TxManager
	repo      Repository
	inventory InventoryRepository
	cache     Cache
	// queryTimeout bounds catalog reads.
	queryTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(txm TxManager, repo Repository, inventory InventoryRepository, cache Cache, queryTimeout time.Duration, logger *zap.Logger) *ProductService {
	return &ProductService{
		txm:          txm,
		repo:         repo,
		inventory:    inventory,
		cache:        cache,
		queryTimeout: queryTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Create stores the product together with its empty inventory record.
func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	now := s.now().UTC()
	p.ID = uuid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	rec := domain.NewInventoryRecord(uuid.New().String(), p.ID)
	rec.CreatedAt = now
	rec.UpdatedAt = now

	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		if err := s.repo.Insert(ctx, tx, p); err != nil {
			return err
		}
		return s.inventory.Insert(ctx, tx, rec)
	})
	if err != nil {
		s.logger.Warn("product creation failed", zap.String("sku", p.SKU), zap.Error(err))
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.InventorySummaryKey, cache.DashboardKey)
	s.logger.Info("product created", zap.String("productId", p.ID), zap.String("sku", p.SKU))

	return &p, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return mysql.Read(ctx, s.queryTimeout, func(ctx context.Context) (*domain.Product, error) {
		return s.repo.FindByID(ctx, id)
	})
}

type productPage struct {
	products []domain.Product
	total    int
}

func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	p, err := mysql.Read(ctx, s.queryTimeout, func(ctx context.Context) (productPage, error) {
		products, total, err := s.repo.List(ctx, f)
		return productPage{products: products, total: total}, err
	})
	return p.products, p.total, err
}

// Deactivate hides the product from sale; products are never deleted.
func (s *ProductService) Deactivate(ctx context.Context, id string) error {
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		return s.repo.Deactivate(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deactivated", zap.String("productId", id))
	return nil
}
