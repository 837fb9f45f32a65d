package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gifshop/internal/models"
)

const userColumns = `uid, username, email, password_hash, role, is_active, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.UUID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
// Занятое имя пользователя даёт ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	if user.UUID == "" {
		user.UUID = uuid.NewString()
	}
	var uid string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO users (uid, username, email, password_hash, role, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING uid`,
		user.UUID, user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive).Scan(&uid)
	if err != nil {
		return "", wrap(op, err)
	}
	return uid, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"

	user, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, wrap(op, err)
	}
	return user, nil
}

// GetUserByUID возвращает пользователя по UID.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"

	user, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = $1`, uid))
	if err != nil {
		return nil, wrap(op, err)
	}
	return user, nil
}

// DeleteUser удаляет пользователя. Подписка удаляется каскадно,
// в журнале скачиваний ссылка на пользователя обнуляется.
func (s *Storage) DeleteUser(ctx context.Context, uid string) error {
	const op = "storage.DeleteUser"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid)
	if err != nil {
		return wrap(op, err)
	}
	return requireAffected(op, res)
}

// SetUserActive меняет флаг is_active пользователя.
func (s *Storage) SetUserActive(ctx context.Context, uid string, active bool) error {
	const op = "storage.SetUserActive"

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET is_active = $1 WHERE uid = $2`, active, uid)
	if err != nil {
		return wrap(op, err)
	}
	return requireAffected(op, res)
}
