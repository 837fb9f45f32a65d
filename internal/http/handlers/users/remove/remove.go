// Package remove реализует HTTP-обработчик удаления пользователя.
// Подписка удаляется вместе с пользователем, записи журнала остаются без владельца.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// Service описывает удаление пользователя.
type Service interface {
	DeleteUser(ctx context.Context, uid string) error
}

// Handler удаляет пользователя по UID.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить пользователя
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param user_uid path string true "UID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/users/{user_uid} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "user_uid")
	if uid == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user_uid is required"))
		return
	}

	err := h.service.DeleteUser(r.Context(), uid)
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete user"))
		return
	}

	log.Info("user deleted", slog.String("user_uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]string{"user_uid": uid}))
}
