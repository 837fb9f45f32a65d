// Package status реализует HTTP-обработчик состояния подписки текущего пользователя.
package status

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gifshop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/models"
)

// Service описывает чтение состояния подписки.
type Service interface {
	Status(ctx context.Context, userUID string, today time.Time) (*models.SubscriptionStatus, error)
}

// Handler возвращает подписку, её активность и использованную квоту за сегодня.
type Handler struct {
	log     *slog.Logger
	service Service
	clock   calendar.Clock
}

// New создает Handler.
func New(log *slog.Logger, service Service, clock calendar.Clock) *Handler {
	return &Handler{log: log, service: service, clock: clock}
}

// ServeHTTP godoc
// @Summary Моя подписка
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFrom(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	status, err := h.service.Status(r.Context(), userUID, h.clock.Today())
	if err != nil {
		log.Error("failed to read subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscription"))
		return
	}

	planName := "No Plan"
	if status.Subscription != nil {
		planName = status.Subscription.PlanName()
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plan":   planName,
		"status": status,
	}))
}
