package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	"storepulse/internal/dto"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/response"
	"storepulse/internal/validation"
)

const defaultMetricsWindow = 30 * 24 * time.Hour

type Service interface {
	Create(ctx context.Context, params domain.NewSaleParams) (*domain.Sale, error)
	Get(ctx context.Context, id string) (*domain.Sale, error)
	List(ctx context.Context, offset, limit int) ([]domain.Sale, int, error)
	GetMetrics(ctx context.Context, start, end time.Time) (*domain.SalesMetrics, error)
	GetDailySales(ctx context.Context, days int) ([]domain.DailySales, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger, now: time.Now}
}

func (c *Controller) Routes(r chi.Router) {
	r.Post("/", c.Create)
	r.Get("/", c.List)
	r.Get("/metrics", c.Metrics)
	r.Get("/daily", c.Daily)
	r.Get("/{id}", c.Get)
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	var req dto.CreateSaleRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	if err := validation.Struct(req); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	sale, err := c.service.Create(r.Context(), domain.NewSaleParams{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		CustomerID:    req.CustomerID,
		CustomerEmail: req.CustomerEmail,
		PaymentMethod: req.PaymentMethod,
		Channel:       req.Channel,
	})
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusCreated, dto.FromSale(*sale), c.logger)
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	page, err := response.Page(r, 20)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	sales, total, err := c.service.List(r.Context(), page.Offset(), page.Limit)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusOK, dto.ListSalesResponse{
		Data: dto.FromSales(sales),
		Meta: dto.PageMeta{Page: page.Page, Limit: page.Limit, Total: total},
	}, c.logger)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(w, traceID, apperrors.NewValidationError("invalid id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a UUID",
		}), c.logger)
		return
	}

	sale, err := c.service.Get(r.Context(), id)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusOK, dto.FromSale(*sale), c.logger)
}

// Metrics defaults to the last 30 days when no range is given.
func (c *Controller) Metrics(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())
	q := r.URL.Query()

	// Rounded up to the minute so default requests share one cache key.
	end := c.now().UTC().Truncate(time.Minute).Add(time.Minute)
	if v := q.Get("endDate"); v != "" {
		t, err := parseDate("endDate", v, true)
		if err != nil {
			response.Error(w, traceID, err, c.logger)
			return
		}
		end = t
	}

	start := end.Add(-defaultMetricsWindow)
	if v := q.Get("startDate"); v != "" {
		t, err := parseDate("startDate", v, false)
		if err != nil {
			response.Error(w, traceID, err, c.logger)
			return
		}
		start = t
	}

	m, err := c.service.GetMetrics(r.Context(), start, end)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, m, c.logger)
}

func (c *Controller) Daily(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	days, err := response.IntParam(r, "days", 30, 1, 365)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	out, err := c.service.GetDailySales(r.Context(), days)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, out, c.logger)
}

// parseDate accepts RFC3339 or a bare date. A bare end date covers the
// whole UTC day.
func parseDate(field, v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid "+field, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must be an RFC3339 timestamp or YYYY-MM-DD date",
		})
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
