package gifshop

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрирует описание API для /docs.
	_ "github.com/magabrotheeeer/gifshop/docs"
	"github.com/magabrotheeeer/gifshop/internal/config"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/auth/register"
	downloadlist "github.com/magabrotheeeer/gifshop/internal/http/handlers/downloads/list"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/health"
	planlist "github.com/magabrotheeeer/gifshop/internal/http/handlers/plans/list"
	planremove "github.com/magabrotheeeer/gifshop/internal/http/handlers/plans/remove"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/plans/upsert"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/products/access"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/products/create"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/products/download"
	productlist "github.com/magabrotheeeer/gifshop/internal/http/handlers/products/list"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/products/read"
	productremove "github.com/magabrotheeeer/gifshop/internal/http/handlers/products/remove"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/products/upload"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/subscriptions/assign"
	sublist "github.com/magabrotheeeer/gifshop/internal/http/handlers/subscriptions/list"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/subscriptions/status"
	userremove "github.com/magabrotheeeer/gifshop/internal/http/handlers/users/remove"
	userupdate "github.com/magabrotheeeer/gifshop/internal/http/handlers/users/update"
	"github.com/magabrotheeeer/gifshop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/metrics"
)

// Deps содержит всё, что нужно для регистрации маршрутов.
type Deps struct {
	Logger   *slog.Logger
	Services Services
	Clock    calendar.Clock
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Limiter  *middlewarectx.RateLimiter
	Pingers  map[string]health.Pinger
}

func newLimiter(cfg config.RateLimit) *middlewarectx.RateLimiter {
	return middlewarectx.NewRateLimiter(cfg.RPS, cfg.Burst)
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger
	svc := d.Services

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		d.Metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/plans", planlist.New(logger, svc.Catalog).ServeHTTP)
		r.Get("/products", productlist.New(logger, svc.Catalog).ServeHTTP)
		r.Get("/products/{id}", read.New(logger, svc.Catalog).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(d.Limiter.Middleware(logger))

			r.Get("/subscription", status.New(logger, svc.Subscription, d.Clock).ServeHTTP)
			r.Get("/products/{id}/access", access.New(logger, svc.Quota, d.Clock).ServeHTTP)
			r.Post("/products/{id}/download", download.New(logger, svc.Quota, d.Clock).ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))

				r.Put("/plans/{name}", upsert.New(logger, svc.Catalog).ServeHTTP)
				r.Delete("/plans/{name}", planremove.New(logger, svc.Catalog).ServeHTTP)
				r.Post("/products", create.New(logger, svc.Catalog).ServeHTTP)
				r.Delete("/products/{id}", productremove.New(logger, svc.Catalog).ServeHTTP)
				r.Post("/products/{id}/file", upload.New(logger, svc.Catalog).ServeHTTP)
				r.Put("/subscriptions/{user_uid}", assign.New(logger, svc.Subscription).ServeHTTP)
				r.Get("/subscriptions", sublist.New(logger, svc.Subscription, d.Clock).ServeHTTP)
				r.Get("/downloads", downloadlist.New(logger, svc.Subscription).ServeHTTP)
				r.Patch("/users/{user_uid}", userupdate.New(logger, svc.Auth).ServeHTTP)
				r.Delete("/users/{user_uid}", userremove.New(logger, svc.Auth).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, d.Pingers).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
