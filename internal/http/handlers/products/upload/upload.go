// Package upload реализует HTTP-обработчик загрузки изображения или файла товара.
//
// Ожидается multipart/form-data с полями kind ("image" или "file") и file.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/services/catalog"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// MaxUploadSize ограничение размера тела запроса.
const MaxUploadSize = 32 << 20

// Service описывает прикрепление файла к товару.
type Service interface {
	AttachProductFile(ctx context.Context, id int64, kind models.FileKind, filename string, r io.Reader, size int64) (string, error)
}

// Handler принимает файл товара и сохраняет его в хранилище.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Загрузить изображение или файл товара
// @Tags Admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID товара"
// @Param kind formData string true "image или file"
// @Param file formData file true "Содержимое"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse "Хранилище не настроено"
// @Router /admin/products/{id}/file [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.products.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		log.Warn("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("file field is missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("field file is a required field"))
		return
	}
	defer file.Close()

	kind := models.FileKind(r.FormValue("kind"))
	key, err := h.service.AttachProductFile(r.Context(), id, kind, header.Filename, file, header.Size)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("product not found"))
		return
	case errors.Is(err, catalog.ErrInvalidProduct):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, catalog.ErrBlobDisabled):
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("file storage is not configured"))
		return
	case err != nil:
		log.Error("failed to attach file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to store file"))
		return
	}

	log.Info("file attached", slog.Int64("id", id), slog.String("key", key))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":   id,
		"kind": kind,
		"key":  key,
	}))
}
