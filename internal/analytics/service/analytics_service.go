package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storepulse/internal/domain"
	"storepulse/internal/infrastructure/cache"
)

const dashboardWindow = 30 * 24 * time.Hour

type Sales interface {
	ComputeMetrics(ctx context.Context, start, end time.Time) (domain.SalesMetrics, error)
	GetRevenueByChannel(ctx context.Context, start, end time.Time) ([]domain.ChannelRevenue, error)
}

type Inventory interface {
	GetSummary(ctx context.Context) (*domain.InventorySummary, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any)
}

type Options struct {
	DashboardTTL time.Duration
	AnalyticsTTL time.Duration
}

// AnalyticsService assembles cross-ledger views. Everything it returns is
// cached and rebuilt from the ledgers on a miss.
type AnalyticsService struct {
	sales     Sales
	inventory Inventory
	tracker   TrafficTracker
	cache     cache.JSONCache
	publisher Publisher
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(sales Sales, inventory Inventory, tracker TrafficTracker, c cache.JSONCache, publisher Publisher, opts Options, logger *zap.Logger) *AnalyticsService {
	if tracker == nil {
		tracker = NoopTracker{}
	}
	return &AnalyticsService{
		sales:     sales,
		inventory: inventory,
		tracker:   tracker,
		cache:     c,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// GetDashboard announces every freshly computed dashboard on the bus.
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*domain.DashboardMetrics, error) {
	d, computed, err := cache.GetOrLoad(ctx, s.cache, cache.DashboardKey, s.opts.DashboardTTL, s.computeDashboard)
	if err != nil {
		return nil, err
	}
	if computed {
		s.publisher.Publish(ctx, domain.TopicDashboardUpdated, d)
	}
	return &d, nil
}

func (s *AnalyticsService) computeDashboard(ctx context.Context) (domain.DashboardMetrics, error) {
	now := s.now().UTC()
	todayStart, todayEnd := dayBounds(now)

	var (
		period    domain.SalesMetrics
		today     domain.SalesMetrics
		inventory *domain.InventorySummary
		visitors  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		period, err = s.sales.ComputeMetrics(gctx, now.Add(-dashboardWindow), now)
		return err
	})
	g.Go(func() error {
		var err error
		today, err = s.sales.ComputeMetrics(gctx, todayStart, todayEnd)
		return err
	})
	g.Go(func() error {
		var err error
		inventory, err = s.inventory.GetSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		visitors, err = s.tracker.CurrentVisitors(gctx)
		if err != nil {
			s.logger.Warn("traffic tracker unavailable", zap.Error(err))
			visitors = 0
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardMetrics{}, err
	}

	return domain.DashboardMetrics{
		Sales:     period,
		Inventory: *inventory,
		RealTimeStats: domain.RealTimeStats{
			TodaySales:      today.TotalSales,
			TodayRevenue:    today.TotalRevenue,
			CurrentVisitors: visitors,
			ConversionRate:  rate(today.TotalSales, visitors),
		},
		GeneratedAt: now,
	}, nil
}

func (s *AnalyticsService) GetConversionFunnel(ctx context.Context) (*domain.ConversionFunnel, error) {
	f, _, err := cache.GetOrLoad(ctx, s.cache, cache.FunnelKey, s.opts.AnalyticsTTL, s.computeFunnel)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *AnalyticsService) computeFunnel(ctx context.Context) (domain.ConversionFunnel, error) {
	f, err := s.tracker.Funnel(ctx)
	if err != nil {
		s.logger.Warn("traffic tracker unavailable", zap.Error(err))
		f = domain.ConversionFunnel{}
	}

	if f.Purchases == 0 {
		start, end := dayBounds(s.now().UTC())
		today, err := s.sales.ComputeMetrics(ctx, start, end)
		if err != nil {
			return domain.ConversionFunnel{}, err
		}
		f.Purchases = today.TotalSales
	}
	f.ConversionRate = rate(f.Purchases, f.Visitors)
	return f, nil
}

// GetRevenueByChannel covers the last 30 days.
func (s *AnalyticsService) GetRevenueByChannel(ctx context.Context) ([]domain.ChannelRevenue, error) {
	rows, _, err := cache.GetOrLoad(ctx, s.cache, cache.RevenueByChannelKey, s.opts.AnalyticsTTL,
		func(ctx context.Context) ([]domain.ChannelRevenue, error) {
			now := s.now().UTC()
			return s.sales.GetRevenueByChannel(ctx, now.Add(-dashboardWindow), now)
		})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// dayBounds returns the first and last instant of t's UTC day.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

// rate is part/whole as a percentage rounded to two places; 0 when whole is 0.
func rate(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
