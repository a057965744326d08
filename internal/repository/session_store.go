package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auth-session-server/config"
	"auth-session-server/internal/model"
	"auth-session-server/internal/util"

	"github.com/redis/go-redis/v9"
)

// SessionStore : Redis слой для refresh-сессий и чёрного списка.
// Ключи разнесены по неймспейсам:
//
//	auth:rt:{user}:{device}  — текущая refresh-сессия пары (пользователь, устройство)
//	auth:devices:{user}      — множество device_id с существующими сессиями
//	auth:blacklist:{jti}     — отозванный access-токен
type SessionStore struct {
	client *config.RedisClient
}

func NewSessionStore(rdb *config.RedisClient) *SessionStore {
	return &SessionStore{rdb}
}

var errSessionRotated = errors.New("сессия была изменена конкурентно")

// PutSession записывает сессию с TTL до expiresAt и добавляет устройство
// в индекс пользователя. Если TTL уже неположительный (рассинхрон часов,
// протухший токен) — ничего не пишет: запись не должна родиться мёртвой.
func (s *SessionStore) PutSession(ctx context.Context, userUUID, deviceID string, record *model.SessionRecord, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return util.LogError("ошибка сериализации сессии", err)
	}

	pipe := s.client.Client.Pipeline()
	pipe.Set(ctx, s.sessionKey(userUUID, deviceID), data, ttl)
	pipe.SAdd(ctx, s.devicesKey(userUUID), deviceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return util.LogError("ошибка сохранения сессии в Redis", err)
	}

	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, userUUID, deviceID string) (*model.SessionRecord, error) {
	val, err := s.client.Client.Get(ctx, s.sessionKey(userUUID, deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // сессии нет или истекла
	} else if err != nil {
		return nil, util.LogError("ошибка чтения сессии из Redis", err)
	}

	var record model.SessionRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, util.LogError("ошибка десериализации сессии", err)
	}
	return &record, nil
}

// RotateSession перезаписывает сессию новой записью, только если текущий
// jti ещё равен currentJTI. Проверка и запись выполняются под WATCH,
// чтобы два одновременных refresh не выдали две живые пары токенов.
// Возвращает false, если ключ успел измениться или исчезнуть.
func (s *SessionStore) RotateSession(ctx context.Context, userUUID, deviceID, currentJTI string, record *model.SessionRecord, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return false, nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return false, util.LogError("ошибка сериализации сессии", err)
	}

	key := s.sessionKey(userUUID, deviceID)
	err = s.client.Client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err != nil {
			return err
		}

		var stored model.SessionRecord
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return err
		}
		if stored.TokenID != currentJTI {
			return errSessionRotated
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errSessionRotated), errors.Is(err, redis.Nil), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, util.LogError("ошибка ротации сессии в Redis", err)
	}
}

func (s *SessionStore) DeleteSession(ctx context.Context, userUUID, deviceID string) error {
	pipe := s.client.Client.Pipeline()
	pipe.Del(ctx, s.sessionKey(userUUID, deviceID))
	pipe.SRem(ctx, s.devicesKey(userUUID), deviceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return util.LogError("ошибка удаления сессии из Redis", err)
	}
	return nil
}

// DeleteAllSessions снимает все сессии пользователя по индексу устройств и
// удаляет сам индекс. Логин на новое устройство, пересёкшийся с обходом,
// может не попасть под удаление: logout-all отзывает то, что существовало
// на момент вызова.
func (s *SessionStore) DeleteAllSessions(ctx context.Context, userUUID string) (int, error) {
	deviceIDs, err := s.client.Client.SMembers(ctx, s.devicesKey(userUUID)).Result()
	if err != nil {
		return 0, util.LogError("ошибка чтения индекса устройств из Redis", err)
	}

	pipe := s.client.Client.Pipeline()
	for _, deviceID := range deviceIDs {
		pipe.Del(ctx, s.sessionKey(userUUID, deviceID))
	}
	pipe.Del(ctx, s.devicesKey(userUUID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, util.LogError("ошибка массового удаления сессий из Redis", err)
	}

	return len(deviceIDs), nil
}

// Revoke помещает jti access-токена в чёрный список ровно на остаток его
// жизни. Запись с неположительным TTL не пишется: токен уже мёртв сам по себе.
func (s *SessionStore) Revoke(ctx context.Context, jti, userUUID, deviceID, reason string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	entry := model.RevocationEntry{
		UserUUID:  userUUID,
		DeviceID:  deviceID,
		Reason:    reason,
		RevokedAt: time.Now().UTC().Unix(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return util.LogError("ошибка сериализации записи чёрного списка", err)
	}

	if err := s.client.Client.Set(ctx, s.blacklistKey(jti), data, ttl).Err(); err != nil {
		return util.LogError("ошибка записи в чёрный список", err)
	}
	return nil
}

func (s *SessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Client.Exists(ctx, s.blacklistKey(jti)).Result()
	if err != nil {
		return false, util.LogError("ошибка проверки чёрного списка", err)
	}
	return n > 0, nil
}

func (s *SessionStore) sessionKey(userUUID, deviceID string) string {
	return fmt.Sprintf("auth:rt:%s:%s", userUUID, deviceID)
}

func (s *SessionStore) devicesKey(userUUID string) string {
	return fmt.Sprintf("auth:devices:%s", userUUID)
}

func (s *SessionStore) blacklistKey(jti string) string {
	return fmt.Sprintf("auth:blacklist:%s", jti)
}
