package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/infrastructure/cache"
)

const (
	HistoryDays = 90
	MaxDays     = 90
	DefaultDays = 30

	weekendFactor = 1.3
	maxConfidence = 0.95
	minConfidence = 0.75
)

type DailySales interface {
	GetDailySales(ctx context.Context, days int) ([]domain.DailySales, error)
}

// PredictionService projects demand from recent daily sales with a flat
// moving average and a weekend uplift.
type PredictionService struct {
	sales  DailySales
	cache  cache.JSONCache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewService(sales DailySales, c cache.JSONCache, ttl time.Duration, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		sales:  sales,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (s *PredictionService) Forecast(ctx context.Context, days int) (*domain.Forecast, error) {
	if days < 1 || days > MaxDays {
		return nil, apperrors.NewValidationError("invalid days", apperrors.ValidationDetail{
			Field:   "days",
			Message: fmt.Sprintf("days must be between 1 and %d", MaxDays),
		})
	}

	f, computed, err := cache.GetOrLoad(ctx, s.cache, cache.PredictionsKey(days), s.ttl, func(ctx context.Context) (domain.Forecast, error) {
		return s.compute(ctx, days)
	})
	if err != nil {
		return nil, err
	}
	if computed {
		s.logger.Debug("forecast computed", zap.Int("days", days), zap.Int("totalPredictedSales", f.TotalPredictedSales))
	}
	return &f, nil
}

func (s *PredictionService) compute(ctx context.Context, days int) (domain.Forecast, error) {
	history, err := s.sales.GetDailySales(ctx, HistoryDays)
	if err != nil {
		return domain.Forecast{}, err
	}

	avgSales, avgRevenue := averages(history)
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := domain.Forecast{
		Days:                  days,
		TotalPredictedRevenue: decimal.Zero,
		Points:                make([]domain.ForecastPoint, 0, days),
		GeneratedAt:           now,
	}
	confidenceSum := 0.0
	for i := 1; i <= days; i++ {
		date := today.AddDate(0, 0, i)
		factor := 1.0
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			factor = weekendFactor
		}

		point := domain.ForecastPoint{
			Date:             date.Format(time.DateOnly),
			PredictedSales:   int(math.Round(avgSales * factor)),
			PredictedRevenue: avgRevenue.Mul(decimal.NewFromFloat(factor)).Round(2),
			Confidence:       confidence(i, days),
		}
		out.Points = append(out.Points, point)
		out.TotalPredictedSales += point.PredictedSales
		out.TotalPredictedRevenue = out.TotalPredictedRevenue.Add(point.PredictedRevenue)
		confidenceSum += point.Confidence
	}
	out.AverageConfidence = math.Round(confidenceSum/float64(days)*100) / 100

	return out, nil
}

// averages divides by the number of days that had sales, so quiet days
// do not drag the average down.
func averages(history []domain.DailySales) (float64, decimal.Decimal) {
	if len(history) == 0 {
		return 0, decimal.Zero
	}

	sales := 0
	revenue := decimal.Zero
	for _, d := range history {
		sales += d.Sales
		revenue = revenue.Add(d.Revenue)
	}
	n := len(history)
	return float64(sales) / float64(n), revenue.Div(decimal.NewFromInt(int64(n)))
}

// confidence falls linearly from maxConfidence on the first day to
// minConfidence on the last.
func confidence(day, horizon int) float64 {
	if horizon <= 1 {
		return maxConfidence
	}
	step := (maxConfidence - minConfidence) / float64(horizon-1)
	return math.Round((maxConfidence-step*float64(day-1))*100) / 100
}
