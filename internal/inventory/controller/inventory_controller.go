package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storepulse/internal/domain"
	"storepulse/internal/dto"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/response"
	"storepulse/internal/validation"
)

type Service interface {
	GetInventory(ctx context.Context, productID string) (*domain.InventoryItem, error)
	UpdateInventory(ctx context.Context, productID string, patch domain.InventoryPatch) (*domain.InventoryRecord, error)
	IncreaseStock(ctx context.Context, productID string, quantity int) (*domain.InventoryRecord, error)
	GetLowStockItems(ctx context.Context) ([]domain.InventoryItem, error)
	GetSummary(ctx context.Context) (*domain.InventorySummary, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/alerts/low-stock", c.LowStock)
	r.Get("/summary/overview", c.Summary)
	r.Get("/{productId}", c.Get)
	r.Put("/{productId}", c.Update)
	r.Post("/{productId}/restock", c.Restock)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	productID, err := productIDParam(r)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	item, err := c.service.GetInventory(r.Context(), productID)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusOK, dto.FromInventoryItem(*item), c.logger)
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	productID, err := productIDParam(r)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	var req dto.UpdateInventoryRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	if err := validation.Struct(req); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	rec, err := c.service.UpdateInventory(r.Context(), productID, domain.InventoryPatch{
		CurrentStock:    req.CurrentStock,
		ReservedStock:   req.ReservedStock,
		ReorderLevel:    req.ReorderLevel,
		ReorderQuantity: req.ReorderQuantity,
		MaxStock:        req.MaxStock,
		Location:        req.Location,
		Warehouse:       req.Warehouse,
	})
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusOK, dto.FromInventoryRecord(*rec), c.logger)
}

func (c *Controller) Restock(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	productID, err := productIDParam(r)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	var req dto.RestockRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	if err := validation.Struct(req); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	rec, err := c.service.IncreaseStock(r.Context(), productID, req.Quantity)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusOK, dto.FromInventoryRecord(*rec), c.logger)
}

func (c *Controller) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := c.service.GetLowStockItems(r.Context())
	if err != nil {
		response.Error(w, response.TraceID(r.Context()), err, c.logger)
		return
	}

	out := make([]dto.InventoryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.FromInventoryItem(item))
	}
	response.JSON(w, http.StatusOK, out, c.logger)
}

func (c *Controller) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.service.GetSummary(r.Context())
	if err != nil {
		response.Error(w, response.TraceID(r.Context()), err, c.logger)
		return
	}
	response.JSON(w, http.StatusOK, summary, c.logger)
}

func productIDParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "productId")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewValidationError("invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a UUID",
		})
	}
	return id, nil
}
