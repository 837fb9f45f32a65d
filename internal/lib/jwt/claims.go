// Package jwt выпускает и проверяет JWT токены доступа.
//
// В токене хранятся имя пользователя, его роль и UID. Токен подписывается
// HMAC-SHA256 общим секретом из конфигурации.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims данные пользователя внутри токена.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	UserUID  string `json:"user_uid"`
	jwt.RegisteredClaims
}

// Maker описывает выпуск и разбор токенов.
type Maker interface {
	GenerateToken(username, role, userUID string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// HMACMaker подписывает токены секретным ключом и ограничивает их время жизни.
type HMACMaker struct {
	secretKey []byte
	tokenTTL  time.Duration
	issuer    string
	now       func() time.Time
}

// NewMaker создаёт HMACMaker.
func NewMaker(secretKey string, ttl time.Duration) *HMACMaker {
	return &HMACMaker{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		issuer:    "gifshop",
		now:       time.Now,
	}
}
