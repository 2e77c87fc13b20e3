package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	"storepulse/internal/dto"
	"storepulse/internal/response"
	"storepulse/internal/validation"
)

type Service interface {
	ExportCustomerSales(ctx context.Context, email string) (*domain.CustomerExport, error)
	AnonymizeCustomer(ctx context.Context, email string) (int, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/customers/{email}/export", c.Export)
	r.Delete("/customers/{email}", c.Anonymize)
}

func (c *Controller) Export(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	email := chi.URLParam(r, "email")
	if err := validation.Var("email", email, "required,email"); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	export, err := c.service.ExportCustomerSales(r.Context(), email)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, dto.FromCustomerExport(*export), c.logger)
}

func (c *Controller) Anonymize(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	email := chi.URLParam(r, "email")
	if err := validation.Var("email", email, "required,email"); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	n, err := c.service.AnonymizeCustomer(r.Context(), email)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, dto.AnonymizeResponse{
		AnonymizedSales: n,
		Message:         "customer data removed; sales records kept without customer details",
	}, c.logger)
}
