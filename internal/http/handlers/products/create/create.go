// Package create реализует HTTP-обработчик создания товара.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/services/catalog"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// Service описывает создание товара.
type Service interface {
	CreateProduct(ctx context.Context, name, planName string) (*models.Product, error)
}

// Handler создаёт товар, привязанный к плану.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать товар
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ProductRequest true "Имя товара и план"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Товар уже существует"
// @Failure 422 {object} response.ErrorResponse "Неизвестный план"
// @Router /admin/products [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.products.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req.Name, req.Plan)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown plan"))
		return
	case errors.Is(err, storage.ErrAlreadyExists):
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("product already exists"))
		return
	case errors.Is(err, catalog.ErrInvalidProduct):
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case err != nil:
		log.Error("failed to create product", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create product"))
		return
	}

	log.Info("product created", slog.Int64("id", product.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"product": product,
	}))
}
