package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	"storepulse/internal/response"
)

type Service interface {
	GetDashboard(ctx context.Context) (*domain.DashboardMetrics, error)
	GetConversionFunnel(ctx context.Context) (*domain.ConversionFunnel, error)
	GetRevenueByChannel(ctx context.Context) ([]domain.ChannelRevenue, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/dashboard", c.Dashboard)
	r.Get("/funnel", c.Funnel)
	r.Get("/revenue-by-channel", c.RevenueByChannel)
}

func (c *Controller) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := c.service.GetDashboard(r.Context())
	if err != nil {
		response.Error(w, response.TraceID(r.Context()), err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, d, c.logger)
}

func (c *Controller) Funnel(w http.ResponseWriter, r *http.Request) {
	f, err := c.service.GetConversionFunnel(r.Context())
	if err != nil {
		response.Error(w, response.TraceID(r.Context()), err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, f, c.logger)
}

func (c *Controller) RevenueByChannel(w http.ResponseWriter, r *http.Request) {
	rows, err := c.service.GetRevenueByChannel(r.Context())
	if err != nil {
		response.Error(w, response.TraceID(r.Context()), err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, rows, c.logger)
}
