package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storepulse/internal/dto"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/response"
	"storepulse/internal/validation"
)

type UseCase interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductDTO, error)
	GetProduct(ctx context.Context, id string) (*dto.ProductDTO, error)
	ListProducts(ctx context.Context, page dto.PageQuery, category string, activeOnly bool) (*dto.ListProductsResponse, error)
	DeactivateProduct(ctx context.Context, id string) error
}

type Controller struct {
	useCase UseCase
	logger  *zap.Logger
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{useCase: useCase, logger: logger}
}

func (c *Controller) Routes(r chi.Router) {
	r.Post("/", c.Create)
	r.Get("/", c.List)
	r.Get("/{id}", c.Get)
	r.Delete("/{id}", c.Deactivate)
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	var req dto.CreateProductRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}
	if err := validation.Struct(req); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	created, err := c.useCase.CreateProduct(r.Context(), req)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusCreated, created, c.logger)
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	page, err := response.Page(r, 20)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	out, err := c.useCase.ListProducts(r.Context(), page, r.URL.Query().Get("category"), activeOnly)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusOK, out, c.logger)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	id, err := productID(r)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	out, err := c.useCase.GetProduct(r.Context(), id)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	response.JSON(w, http.StatusOK, out, c.logger)
}

func (c *Controller) Deactivate(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r.Context())

	id, err := productID(r)
	if err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	if err := c.useCase.DeactivateProduct(r.Context(), id); err != nil {
		response.Error(w, traceID, err, c.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func productID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewValidationError("invalid id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a UUID",
		})
	}
	return id, nil
}
