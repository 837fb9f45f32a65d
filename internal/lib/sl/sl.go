// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import (
	"io"
	"log/slog"
	"os"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil возвращается пустая строка, чтобы вызов в defer-блоках не паниковал.
//
// Пример:
//
//	log.Error("failed to record download", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// SetupLogger создаёт логгер для окружения: текстовый с уровнем debug для local,
// JSON для dev (debug) и prod (info).
func SetupLogger(env string) *slog.Logger {
	return NewLogger(env, os.Stdout)
}

// NewLogger создаёт логгер для окружения с выводом в w.
func NewLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "local":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case "dev":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
