// Package remove реализует HTTP-обработчик удаления тарифного плана.
// Товары плана удаляются вместе с ним, подписки на план остаются без плана.
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

// Service описывает удаление плана.
type Service interface {
	DeletePlan(ctx context.Context, name string) error
}

// Handler удаляет план по имени.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить тарифный план
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param name path string true "Имя плана"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/plans/{name} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	name := chi.URLParam(r, "name")
	if name == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("plan name is required"))
		return
	}

	err := h.service.DeletePlan(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete plan"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted_plan": name,
	}))
}
