// Package list реализует HTTP-обработчик журнала скачиваний для администратора.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/models"
)

// Service описывает чтение журнала скачиваний.
type Service interface {
	Downloads(ctx context.Context, filter models.DownloadFilter) ([]models.DownloadLogEntry, error)
}

// Handler возвращает записи журнала с фильтрами по дате, пользователю и строке поиска.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Журнал скачиваний
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param date query string false "Дата YYYY-MM-DD"
// @Param user_uid query string false "UID пользователя"
// @Param q query string false "Поиск по имени пользователя или товара"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /admin/downloads [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.downloads.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	filter := models.DownloadFilter{
		UserUID: q.Get("user_uid"),
		Search:  q.Get("q"),
		Limit:   50,
	}
	if v := q.Get("date"); v != "" {
		day, err := calendar.Parse(v)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("date must be in format YYYY-MM-DD"))
			return
		}
		filter.Date = &day
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		filter.Offset = v
	}

	entries, err := h.service.Downloads(r.Context(), filter)
	if err != nil {
		log.Error("failed to list downloads", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(entries),
		"downloads":  entries,
	}))
}
