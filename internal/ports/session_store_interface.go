package ports

import (
	"context"
	"time"

	"auth-session-server/internal/model"
)

// SessionStore : Redis слой. Хранит refresh-сессии по ключу
// (пользователь, устройство), индекс устройств пользователя и чёрный
// список отозванных access-токенов. Истечение записей целиком делегировано
// TTL-механизму хранилища, фоновых чисток нет.
type SessionStore interface {
	PutSession(ctx context.Context, userUUID, deviceID string, record *model.SessionRecord, expiresAt time.Time) error
	GetSession(ctx context.Context, userUUID, deviceID string) (*model.SessionRecord, error)
	RotateSession(ctx context.Context, userUUID, deviceID, currentJTI string, record *model.SessionRecord, expiresAt time.Time) (bool, error)
	DeleteSession(ctx context.Context, userUUID, deviceID string) error
	DeleteAllSessions(ctx context.Context, userUUID string) (int, error)
	Revoke(ctx context.Context, jti, userUUID, deviceID, reason string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
