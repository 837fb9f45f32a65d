// Package download реализует HTTP-обработчик скачивания товара.
//
// Проверка квоты и запись в журнал выполняются одной операцией. При разрешении
// клиент получает временную ссылку на файл, при отказе получает 403 и причину.
package download

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

// Service описывает учёт скачивания.
type Service interface {
	Download(ctx context.Context, userUID string, productID int64, today time.Time) (*quota.Result, error)
}

// Handler выполняет скачивание для текущего пользователя.
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
// @Summary Скачать товар
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID товара"
// @Success 200 {object} response.Response "Ссылка на файл"
// @Failure 403 {object} response.Response "Отказ с причиной"
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "У товара нет файла"
// @Router /products/{id}/download [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.products.download"

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

	res, err := h.service.Download(r.Context(), userUID, id, h.clock.Today())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("product not found"))
		return
	case errors.Is(err, quota.ErrNoFile):
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("product has no file"))
		return
	case err != nil:
		log.Error("failed to download", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	if !res.Decision.Allowed {
		log.Info("download denied", slog.String("user_uid", userUID), slog.String("reason", res.Decision.Reason))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.ErrorWithData(res.Decision.Reason, res.Decision))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
