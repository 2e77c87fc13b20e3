package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	"storepulse/internal/prediction/service"
	"storepulse/internal/response"
)

type Service interface {
	Forecast(ctx context.Context, days int) (*domain.Forecast, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/", c.Forecast)
}

func (c *Controller) Forecast(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	days, err := response.IntParam(r, "days", service.DefaultDays, 1, service.MaxDays)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	f, err := c.service.Forecast(r.Context(), days)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, f, c.logger)
}
