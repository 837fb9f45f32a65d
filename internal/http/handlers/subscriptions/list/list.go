// Package list реализует HTTP-обработчик списка подписок для администратора.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/services/subscription"
)

// Service описывает выборку подписок.
type Service interface {
	List(ctx context.Context, filter models.SubscriptionFilter) ([]models.SubscriptionStatus, error)
}

// Handler возвращает подписки с числом скачиваний за сегодня.
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
// @Summary Список подписок
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "active или expired"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /admin/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	res, err := h.service.List(r.Context(), models.SubscriptionFilter{
		Status: q.Get("status"),
		Today:  h.clock.Today(),
		Limit:  limit,
		Offset: offset,
	})
	if errors.Is(err, subscription.ErrInvalidStatus) {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("status must be active or expired"))
		return
	}
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count":    len(res),
		"subscriptions": res,
	}))
}
