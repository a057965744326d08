package ports

import (
	"time"

	"auth-session-server/internal/model"
	"auth-session-server/internal/security"
)

type JWTServiceInterface interface {
	GenerateAccessToken(userUUID, email, name, deviceID string) (string, string, time.Time, error)
	GenerateRefreshToken(userUUID, deviceID string) (string, string, time.Time, error)
	GenerateTokensPair(user *model.User, deviceID string) (*model.TokensPair, string, time.Time, error)
	ParseAccessToken(tokenStr string) (*security.AccessClaims, error)
	ParseRefreshToken(tokenStr string) (*security.RefreshClaims, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}
