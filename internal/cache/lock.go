package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout блокировку не удалось получить за отведённое время.
var ErrLockTimeout = errors.New("lock wait timeout")

// unlockScript удаляет ключ, только если он всё ещё принадлежит владельцу.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker сериализует операции одного пользователя между экземплярами сервиса.
type RedisLocker struct {
	db      redis.UniversalClient
	prefix  string
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
}

// NewRedisLocker создаёт блокировщик. ttl ограничивает время владения ключом,
// wait ограничивает ожидание освобождения.
func NewRedisLocker(db redis.UniversalClient, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		db:      db,
		prefix:  "lock:download:",
		ttl:     ttl,
		wait:    wait,
		backoff: 20 * time.Millisecond,
	}
}

// WithLock выполняет fn, удерживая блокировку ключа key.
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	const op = "cache.WithLock"

	token := uuid.NewString()
	redisKey := l.prefix + key
	if err := l.acquire(ctx, redisKey, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		// Снимаем блокировку даже при отменённом контексте запроса.
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = unlockScript.Run(unlockCtx, l.db, []string{redisKey}, token).Err()
	}()

	return fn(ctx)
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(l.backoff)
	defer ticker.Stop()
	for {
		ok, err := l.db.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrLockTimeout
		case <-ticker.C:
		}
	}
}
