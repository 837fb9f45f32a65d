// Package access реализует HTTP-обработчик проверки права на скачивание товара.
// Проверка ничего не записывает в журнал.
package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gifshop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/services/quota"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// Service описывает проверку квоты.
type Service interface {
	Authorize(ctx context.Context, userUID string, productID int64, today time.Time) (quota.Decision, error)
}

// Handler возвращает решение о доступе для текущего пользователя.
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
// @Summary Проверить доступ к товару
// @Description Возвращает решение без записи в журнал. При отказе отвечает 403 с причиной.
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID товара"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "Отказ с причиной"
// @Failure 404 {object} response.ErrorResponse
// @Router /products/{id}/access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.products.access"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	decision, err := h.service.Authorize(r.Context(), userUID, id, h.clock.Today())
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("product not found"))
		return
	}
	if err != nil {
		log.Error("failed to authorize download", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	if !decision.Allowed {
		log.Info("access denied", slog.String("user_uid", userUID), slog.String("reason", decision.Reason))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.ErrorWithData(decision.Reason, decision))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(decision))
}
