// Package assign реализует HTTP-обработчик назначения подписки пользователю.
// Повторное назначение перезаписывает план и даты, а не создаёт вторую подписку.
package assign

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/services/subscription"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// Service описывает назначение подписки.
type Service interface {
	Assign(ctx context.Context, userUID, planName string, start, end time.Time) (*models.Subscription, error)
	SetBillingReference(ctx context.Context, userUID string, ref *string) error
}

// Handler назначает план пользователю на период.
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
// @Summary Назначить подписку
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_uid path string true "UID пользователя"
// @Param request body models.AssignRequest true "План и период (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь или план не найден"
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/subscriptions/{user_uid} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.assign"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "user_uid")

	var req models.AssignRequest
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

	start, err := calendar.Parse(req.StartDate)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("start_date must be in format YYYY-MM-DD"))
		return
	}
	end, err := calendar.Parse(req.EndDate)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("end_date must be in format YYYY-MM-DD"))
		return
	}

	sub, err := h.service.Assign(r.Context(), userUID, req.Plan, start, end)
	switch {
	case errors.Is(err, subscription.ErrInvalidDates):
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("end_date must not be before start_date"))
		return
	case errors.Is(err, storage.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user or plan not found"))
		return
	case err != nil:
		log.Error("failed to assign subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to assign subscription"))
		return
	}

	if req.BillingReference != nil {
		ref := models.BillingRef(req.BillingReference)
		if err := h.service.SetBillingReference(r.Context(), sub.UserUID, ref); err != nil {
			log.Error("failed to set billing reference", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to assign subscription"))
			return
		}
		sub.BillingReference = ref
	}

	log.Info("subscription assigned", slog.String("user_uid", userUID), slog.String("plan", req.Plan))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": sub,
	}))
}
