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

// A Thursday, so the first forecast day is Friday and the next two are
// the weekend.
var fixedNow = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

type mockSales struct {
	calls         int
	GetDailyFunc  func(ctx context.Context, days int) ([]domain.DailySales, error)
	requestedDays int
}

func (m *mockSales) GetDailySales(ctx context.Context, days int) ([]domain.DailySales, error) {
	m.calls++
	m.requestedDays = days
	return m.GetDailyFunc(ctx, days)
}

func history(rows ...domain.DailySales) *mockSales {
	return &mockSales{GetDailyFunc: func(context.Context, int) ([]domain.DailySales, error) {
		return rows, nil
	}}
}

func newService(t *testing.T, sales DailySales) (*PredictionService, *cache.Cache) {
	t.Helper()
	c := testutil.NewTestCache(t)
	svc := NewService(sales, c, time.Hour, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, c
}

func TestForecast_MovingAverageWithWeekendFactor(t *testing.T) {
	sales := history(
		domain.DailySales{Date: "2025-12-30", Sales: 8, Revenue: decimal.RequireFromString("80.00")},
		domain.DailySales{Date: "2025-12-31", Sales: 12, Revenue: decimal.RequireFromString("120.00")},
	)
	svc, _ := newService(t, sales)

	f, err := svc.Forecast(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, HistoryDays, sales.requestedDays)
	require.Len(t, f.Points, 3)

	assert.Equal(t, "2026-01-02", f.Points[0].Date)
	assert.Equal(t, 10, f.Points[0].PredictedSales)
	assert.Equal(t, "100.00", f.Points[0].PredictedRevenue.StringFixed(2))

	assert.Equal(t, "2026-01-03", f.Points[1].Date)
	assert.Equal(t, 13, f.Points[1].PredictedSales)
	assert.Equal(t, "130.00", f.Points[1].PredictedRevenue.StringFixed(2))

	assert.Equal(t, 36, f.TotalPredictedSales)
	assert.Equal(t, "360.00", f.TotalPredictedRevenue.StringFixed(2))
}

func TestForecast_ConfidenceDecays(t *testing.T) {
	svc, _ := newService(t, history(domain.DailySales{Date: "2025-12-31", Sales: 1, Revenue: decimal.NewFromInt(1)}))

	f, err := svc.Forecast(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 0.95, f.Points[0].Confidence)
	assert.Equal(t, 0.75, f.Points[4].Confidence)
	for i := 1; i < len(f.Points); i++ {
		assert.Less(t, f.Points[i].Confidence, f.Points[i-1].Confidence)
	}
	assert.Equal(t, 0.85, f.AverageConfidence)
}

func TestForecast_Deterministic(t *testing.T) {
	rows := []domain.DailySales{{Date: "2025-12-31", Sales: 7, Revenue: decimal.RequireFromString("70.70")}}
	first, _ := newService(t, history(rows...))
	second, _ := newService(t, history(rows...))

	a, err := first.Forecast(context.Background(), 14)
	require.NoError(t, err)
	b, err := second.Forecast(context.Background(), 14)
	require.NoError(t, err)

	assert.Equal(t, a.Points, b.Points)
}

func TestForecast_NoHistory(t *testing.T) {
	svc, _ := newService(t, history())

	f, err := svc.Forecast(context.Background(), 7)
	require.NoError(t, err)

	assert.Len(t, f.Points, 7)
	assert.Zero(t, f.TotalPredictedSales)
	assert.True(t, f.TotalPredictedRevenue.IsZero())
}

func TestForecast_Cached(t *testing.T) {
	sales := history(domain.DailySales{Date: "2025-12-31", Sales: 2, Revenue: decimal.NewFromInt(20)})
	svc, c := newService(t, sales)

	_, err := svc.Forecast(context.Background(), 10)
	require.NoError(t, err)
	_, err = svc.Forecast(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sales.calls)

	c.Invalidate(context.Background(), cache.PredictionsPattern)
	_, err = svc.Forecast(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, sales.calls)
}

func TestForecast_DaysOutOfRange(t *testing.T) {
	svc, _ := newService(t, history())

	for _, days := range []int{0, 91} {
		_, err := svc.Forecast(context.Background(), days)
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok, "days=%d", days)
	}
}

func TestForecast_HistoryError(t *testing.T) {
	sales := &mockSales{GetDailyFunc: func(context.Context, int) ([]domain.DailySales, error) {
		return nil, errors.New("db down")
	}}
	svc, _ := newService(t, sales)

	_, err := svc.Forecast(context.Background(), 5)
	assert.Error(t, err)
}
