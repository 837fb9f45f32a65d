// Package auth отвечает за регистрацию, вход и проверку токенов пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/gifshop/internal/lib/jwt"
	"github.com/magabrotheeeer/gifshop/internal/lib/password"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

var (
	// ErrInvalidCredentials неверное имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveUser учётная запись отключена.
	ErrInactiveUser = errors.New("user is inactive")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername возвращает пользователя по имени или storage.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByUID возвращает пользователя по UID или storage.ErrNotFound.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	// SetUserActive включает или отключает учётную запись.
	SetUserActive(ctx context.Context, uid string, active bool) error
	// DeleteUser удаляет пользователя. Подписка удаляется, записи журнала обезличиваются.
	DeleteUser(ctx context.Context, uid string) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает активного пользователя с ролью "user" и возвращает его UID.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.CreateUser(ctx, models.User{
		Email:        strings.TrimSpace(email),
		Username:     strings.TrimSpace(username),
		PasswordHash: hashed,
		Role:         models.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_uid", uid))
	return uid, nil
}

// Login проверяет пароль пользователя и выпускает токен доступа.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token string, user *models.User, err error) {
	const op = "auth.Login"

	user, err = s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInactiveUser)
	}

	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает пользователя из базы.
// Токен удалённого пользователя даёт ErrInvalidCredentials, отключённого ErrInactiveUser.
// Роль берётся из базы, а не из claims.
func (s *Service) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetUserByUID(ctx, claims.UserUID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrInactiveUser)
	}
	return user, nil
}

// SetActive включает или отключает учётную запись и возвращает её.
// Уже выданные токены отключённого пользователя перестают приниматься.
func (s *Service) SetActive(ctx context.Context, uid string, active bool) (*models.User, error) {
	const op = "auth.SetActive"

	if err := s.users.SetUserActive(ctx, uid, active); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user activity changed", slog.String("user_uid", uid), slog.Bool("is_active", active))
	return user, nil
}

// DeleteUser удаляет пользователя по UID.
func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	const op = "auth.DeleteUser"
	if err := s.users.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deleted", slog.String("user_uid", uid))
	return nil
}
