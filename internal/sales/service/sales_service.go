package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/infrastructure/metrics"
	"storepulse/internal/infrastructure/mysql"
)

const (
	topProductsLimit = 10
	DefaultDays      = 30
	MaxDays          = 365
)

type Repository interface {
	Insert(ctx context.Context, tx mysql.DBTX, s domain.Sale) error
	FindByID(ctx context.Context, id string) (*domain.Sale, error)
	List(ctx context.Context, offset, limit int) ([]domain.Sale, int, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error)
	SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	DailyTotals(ctx context.Context, from, to time.Time) ([]domain.DailySales, error)
	RevenueByChannel(ctx context.Context, from, to time.Time) ([]domain.ChannelRevenue, error)
}

type ProductReader interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}

type Inventory interface {
	DecreaseStockTx(ctx context.Context, tx mysql.DBTX, productID string, quantity int) (*domain.StockChange, error)
	Announce(ctx context.Context, change *domain.StockChange)
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
	MetricsTTL time.Duration
	// QueryTimeout bounds every read against the ledger.
	QueryTimeout time.Duration
	// GrowthFloor clamps the start of the comparison period; zero disables it.
	GrowthFloor time.Time
}

// SalesService is the sales ledger. A sale and its stock decrement commit
// together or not at all.
type SalesService struct {
	txm       TxManager
	repo      Repository
	products  ProductReader
	inventory Inventory
	cache     Cache
	publisher Publisher
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(txm TxManager, repo Repository, products ProductReader, inventory Inventory, c Cache, publisher Publisher, opts Options, logger *zap.Logger) *SalesService {
	return &SalesService{
		txm:       txm,
		repo:      repo,
		products:  products,
		inventory: inventory,
		cache:     c,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *SalesService) Create(ctx context.Context, params domain.NewSaleParams) (*domain.Sale, error) {
	if params.Quantity < 1 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be at least 1",
		})
	}
	if err := validatePrice(params); err != nil {
		return nil, err
	}

	product, err := mysql.Read(ctx, s.opts.QueryTimeout, func(ctx context.Context) (*domain.Product, error) {
		return s.products.FindByID(ctx, params.ProductID)
	})
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.NewConflictError(fmt.Sprintf("product %s is inactive", product.ID))
	}

	sale := domain.NewSale(uuid.New().String(), params, s.now())

	var change *domain.StockChange
	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		if err := s.repo.Insert(ctx, tx, sale); err != nil {
			return err
		}
		var err error
		change, err = s.inventory.DecreaseStockTx(ctx, tx, sale.ProductID, sale.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	sale.ProductName = product.Name

	metrics.SalesCreated.Inc()
	s.logger.Info("sale recorded",
		zap.String("saleId", sale.ID),
		zap.String("productId", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.String("totalAmount", sale.TotalAmount.StringFixed(2)))

	s.cache.Invalidate(ctx, cache.SalesMetricsPattern, cache.AnalyticsPattern, cache.PredictionsPattern)
	s.inventory.Announce(ctx, change)
	s.publisher.Publish(ctx, domain.TopicSaleCreated, domain.SaleCreatedEvent{
		ID:          sale.ID,
		ProductID:   sale.ProductID,
		Quantity:    sale.Quantity,
		UnitPrice:   sale.UnitPrice,
		TotalAmount: sale.TotalAmount,
		Channel:     sale.Channel,
		SaleDate:    sale.SaleDate.Format(time.RFC3339Nano),
	})

	return &sale, nil
}

// validatePrice keeps unitPrice and the derived total within what the money
// columns store exactly, so the persisted total equals quantity × unitPrice.
func validatePrice(params domain.NewSaleParams) error {
	detail := func(field, msg string) error {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: field, Message: msg})
	}
	switch {
	case params.UnitPrice.IsNegative():
		return detail("unitPrice", "unitPrice must be non-negative")
	case !domain.InCents(params.UnitPrice):
		return detail("unitPrice", "unitPrice must have at most 2 decimal places")
	case params.UnitPrice.GreaterThan(domain.MaxUnitPrice):
		return detail("unitPrice", "unitPrice must be at most "+domain.MaxUnitPrice.StringFixed(2))
	}
	total := params.UnitPrice.Mul(decimal.NewFromInt(int64(params.Quantity)))
	if total.GreaterThan(domain.MaxTotalAmount) {
		return detail("quantity", "quantity × unitPrice must be at most "+domain.MaxTotalAmount.StringFixed(2))
	}
	return nil
}

func (s *SalesService) Get(ctx context.Context, id string) (*domain.Sale, error) {
	return mysql.Read(ctx, s.opts.QueryTimeout, func(ctx context.Context) (*domain.Sale, error) {
		return s.repo.FindByID(ctx, id)
	})
}

type salesPage struct {
	sales []domain.Sale
	total int
}

func (s *SalesService) List(ctx context.Context, offset, limit int) ([]domain.Sale, int, error) {
	p, err := mysql.Read(ctx, s.opts.QueryTimeout, func(ctx context.Context) (salesPage, error) {
		sales, total, err := s.repo.List(ctx, offset, limit)
		return salesPage{sales: sales, total: total}, err
	})
	return p.sales, p.total, err
}

// GetMetrics returns the cached metrics for [start, end], computing them on a miss.
func (s *SalesService) GetMetrics(ctx context.Context, start, end time.Time) (*domain.SalesMetrics, error) {
	if end.Before(start) {
		return nil, apperrors.NewValidationError("invalid date range", apperrors.ValidationDetail{
			Field:   "endDate",
			Message: "endDate must not be before startDate",
		})
	}

	key := cache.SalesMetricsKey(start, end)
	m, _, err := cache.GetOrLoad(ctx, s.cache, key, s.opts.MetricsTTL, func(ctx context.Context) (domain.SalesMetrics, error) {
		return s.ComputeMetrics(ctx, start, end)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ComputeMetrics aggregates [start, end] straight from the ledger.
func (s *SalesService) ComputeMetrics(ctx context.Context, start, end time.Time) (domain.SalesMetrics, error) {
	start, end = start.UTC(), end.UTC()

	sales, err := mysql.Read(ctx, s.opts.QueryTimeout, func(ctx context.Context) ([]domain.Sale, error) {
		return s.repo.FindBetween(ctx, start, end)
	})
	if err != nil {
		return domain.SalesMetrics{}, err
	}

	out := domain.SalesMetrics{
		TotalSales:        len(sales),
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		TopProducts:       topProducts(sales),
	}
	for _, sale := range sales {
		out.TotalRevenue = out.TotalRevenue.Add(sale.TotalAmount)
	}
	if out.TotalSales > 0 {
		out.AverageOrderValue = out.TotalRevenue.Div(decimal.NewFromInt(int64(out.TotalSales))).Round(2)
	}

	prevStart, prevEnd := s.previousPeriod(start, end)
	previous := decimal.Zero
	if prevStart.Before(prevEnd) {
		previous, err = mysql.Read(ctx, s.opts.QueryTimeout, func(ctx context.Context) (decimal.Decimal, error) {
			return s.repo.SumRevenue(ctx, prevStart, prevEnd)
		})
		if err != nil {
			return domain.SalesMetrics{}, err
		}
	}
	out.SalesGrowth = growth(out.TotalRevenue, previous)

	return out, nil
}

// previousPeriod is [start-len, start), clamped to the growth floor.
func (s *SalesService) previousPeriod(start, end time.Time) (time.Time, time.Time) {
	prevStart := start.Add(-end.Sub(start))
	if floor := s.opts.GrowthFloor; !floor.IsZero() && prevStart.Before(floor) {
		prevStart = floor.UTC()
	}
	return prevStart, start
}

func growth(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// topProducts ranks by revenue; ties keep the order in which the products
// were first seen.
func topProducts(sales []domain.Sale) []domain.ProductSales {
	index := map[string]int{}
	ranked := []domain.ProductSales{}
	for _, sale := range sales {
		i, ok := index[sale.ProductID]
		if !ok {
			i = len(ranked)
			index[sale.ProductID] = i
			ranked = append(ranked, domain.ProductSales{
				ProductID:   sale.ProductID,
				ProductName: sale.ProductName,
				Revenue:     decimal.Zero,
			})
		}
		ranked[i].Quantity += sale.Quantity
		ranked[i].Revenue = ranked[i].Revenue.Add(sale.TotalAmount)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})
	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}
	return ranked
}

// GetDailySales rolls up the last days by UTC date; days without sales are omitted.
func (s *SalesService) GetDailySales(ctx context.Context, days int) ([]domain.DailySales, error) {
	if days == 0 {
		days = DefaultDays
	}
	if days < 1 || days > MaxDays {
		return nil, apperrors.NewValidationError("invalid days", apperrors.ValidationDetail{
			Field:   "days",
			Message: fmt.Sprintf("days must be between 1 and %d", MaxDays),
		})
	}

	now := s.now().UTC()
	return mysql.Read(ctx, s.opts.QueryTimeout, func(ctx context.Context) ([]domain.DailySales, error) {
		return s.repo.DailyTotals(ctx, now.AddDate(0, 0, -days), now)
	})
}

// GetRevenueByChannel returns each channel's revenue in [start, end] and its
// share of the total, highest revenue first.
func (s *SalesService) GetRevenueByChannel(ctx context.Context, start, end time.Time) ([]domain.ChannelRevenue, error) {
	rows, err := mysql.Read(ctx, s.opts.QueryTimeout, func(ctx context.Context) ([]domain.ChannelRevenue, error) {
		return s.repo.RevenueByChannel(ctx, start.UTC(), end.UTC())
	})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Revenue)
	}
	for i := range rows {
		if total.IsPositive() {
			rows[i].Percentage = rows[i].Revenue.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Revenue.Equal(rows[j].Revenue) {
			return rows[i].Revenue.GreaterThan(rows[j].Revenue)
		}
		return rows[i].Channel < rows[j].Channel
	})
	return rows, nil
}
