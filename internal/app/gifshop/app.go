// Package gifshop собирает HTTP-сервис из хранилища, кеша, объектного
// хранилища, брокера и сервисов предметной области.
package gifshop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gifshop/internal/blob"
	"github.com/magabrotheeeer/gifshop/internal/cache"
	"github.com/magabrotheeeer/gifshop/internal/config"
	"github.com/magabrotheeeer/gifshop/internal/events"
	"github.com/magabrotheeeer/gifshop/internal/http/handlers/health"
	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/lib/jwt"
	"github.com/magabrotheeeer/gifshop/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/metrics"
	"github.com/magabrotheeeer/gifshop/internal/migrations"
	"github.com/magabrotheeeer/gifshop/internal/services/auth"
	"github.com/magabrotheeeer/gifshop/internal/services/catalog"
	"github.com/magabrotheeeer/gifshop/internal/services/quota"
	"github.com/magabrotheeeer/gifshop/internal/services/seed"
	"github.com/magabrotheeeer/gifshop/internal/services/subscription"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// App держит HTTP-сервер вместе с ресурсами, которые нужно закрыть при остановке.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *storage.Storage
	closers []io.Closer
}

// Services объединяет сервисы, доступные обработчикам.
type Services struct {
	Auth         *auth.Service
	Catalog      *catalog.Service
	Subscription *subscription.Service
	Quota        *quota.Service
}

// New подключается к зависимостям, применяет миграции и собирает маршруты.
// Redis, MinIO и RabbitMQ необязательны: без адреса используется
// локальная блокировка, товары без файлов и пустой издатель событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "gifshop.New"

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	clock := calendar.SystemClock{Location: loc}

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db}
	pingers := map[string]health.Pinger{"postgres": db}

	var (
		catalogCache catalog.Cache
		locker       quota.Locker
	)
	if cfg.AddressRedis != "" {
		redisCache, err := cache.New(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, redisCache)
		pingers["redis"] = redisCache
		catalogCache = redisCache
		locker = cache.NewRedisLocker(redisCache.Db, cfg.Quota.LockTTL, cfg.Quota.LockWait)
	} else {
		logger.Warn("redis is not configured, using in-process download lock")
		locker = quota.NewLocalLocker()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	quotaOpts := []quota.Option{quota.WithObserver(m)}

	var objectStore blob.Storage
	if cfg.Endpoint != "" {
		minioStorage, err := blob.NewMinio(ctx, cfg.BlobStorage)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		objectStore = minioStorage
		quotaOpts = append(quotaOpts, quota.WithPresigner(minioStorage))
	} else {
		logger.Warn("blob storage is not configured, product files are disabled")
	}

	if cfg.RabbitMQ.URL != "" {
		publisher, closers, err := connectPublisher(cfg.RabbitMQ)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, closers...)
		quotaOpts = append(quotaOpts, quota.WithPublisher(publisher))
	} else {
		quotaOpts = append(quotaOpts, quota.WithPublisher(events.Noop{}))
	}

	svc := Services{
		Auth:         auth.New(db, jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL), logger),
		Catalog:      catalog.New(db, catalogCache, objectStore, logger),
		Subscription: subscription.New(db, logger),
		Quota:        quota.New(db, locker, logger, quotaOpts...),
	}

	if cfg.SeedOnStart {
		if _, err := seed.New(db, logger).Run(ctx, clock.Today()); err != nil {
			app.close()
			return nil, fmt.Errorf("%s: seed: %w", op, err)
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:   logger,
		Services: svc,
		Clock:    clock,
		Metrics:  m,
		Registry: reg,
		Limiter:  newLimiter(cfg.RateLimit),
		Pingers:  pingers,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// connectPublisher подключается к RabbitMQ и объявляет exchange событий.
func connectPublisher(cfg config.RabbitMQ) (*events.Publisher, []io.Closer, error) {
	conn, err := rabbitmq.Connect(cfg.URL, cfg.Retries, cfg.Delay)
	if err != nil {
		return nil, nil, err
	}
	ch, err := rabbitmq.SetupExchange(conn, cfg.Exchange)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return events.NewPublisher(ch, cfg.Exchange), []io.Closer{channelCloser{ch}, conn}, nil
}

type channelCloser struct{ ch *amqp.Channel }

func (c channelCloser) Close() error { return c.ch.Close() }

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает ресурсы в обратном порядке подключения.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
