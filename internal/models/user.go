package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User учётная запись. Для квот важны только UUID и IsActive.
type User struct {
	UUID         string    `json:"uid"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin сообщает, что пользователь является администратором.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserActivityRequest данные для включения или отключения учётной записи.
type UserActivityRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
