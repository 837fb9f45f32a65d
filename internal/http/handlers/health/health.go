// Package health реализует проверку готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gifshop/internal/http/response"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler отвечает 200, если все зависимости доступны.
type Handler struct {
	log     *slog.Logger
	pingers map[string]Pinger
	timeout time.Duration
}

// New создает Handler. Ключ pingers попадает в ответ как имя зависимости.
func New(log *slog.Logger, pingers map[string]Pinger) *Handler {
	return &Handler{log: log, pingers: pingers, timeout: 2 * time.Second}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.pingers))
	healthy := true
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
			checks[name] = "down"
			healthy = false
			continue
		}
		checks[name] = "up"
	}

	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Response{Status: response.StatusError, Data: checks})
		return
	}
	render.JSON(w, r, response.StatusOKWithData(checks))
}
