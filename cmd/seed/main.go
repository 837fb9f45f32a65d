// Команда seed заполняет базу стартовыми планами, товарами, пользователями
// и подписками. Повторный запуск не создаёт дубликатов.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/gifshop/internal/config"
	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/migrations"
	"github.com/magabrotheeeer/gifshop/internal/services/seed"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("seed failed", sl.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return err
	}

	_, err = seed.New(db, logger).Run(ctx, calendar.SystemClock{Location: loc}.Today())
	return err
}
