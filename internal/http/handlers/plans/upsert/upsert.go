// Package upsert реализует HTTP-обработчик создания и обновления тарифного плана.
package upsert

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/services/catalog"
)

// Service описывает изменение каталога планов.
type Service interface {
	UpsertPlan(ctx context.Context, name string, dailyLimit int, price decimal.Decimal) (*models.Plan, error)
	SetPlanBillingReference(ctx context.Context, name string, ref *string) error
}

// Handler создаёт план или обновляет лимит и цену существующего.
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
// @Summary Создать или обновить план
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Имя плана"
// @Param request body models.PlanRequest true "Лимит и цена"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/plans/{name} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.upsert"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	name := chi.URLParam(r, "name")

	var req models.PlanRequest
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
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		log.Warn("invalid price", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid price"))
		return
	}

	plan, err := h.service.UpsertPlan(r.Context(), name, req.DailyLimit, price)
	if errors.Is(err, catalog.ErrInvalidPlan) {
		log.Warn("invalid plan", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	if err != nil {
		log.Error("failed to upsert plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to save plan"))
		return
	}

	if req.BillingReference != nil {
		ref := models.BillingRef(req.BillingReference)
		if err := h.service.SetPlanBillingReference(r.Context(), plan.Name, ref); err != nil {
			log.Error("failed to set billing reference", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to save plan"))
			return
		}
		plan.BillingReference = ref
	}

	log.Info("plan saved", slog.String("plan", plan.Name))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plan": plan,
	}))
}
