package repository

import (
	"context"

	"auth-session-server/config"
	"auth-session-server/internal/model"
	"auth-session-server/internal/util"
)

type LoginHistoryRepository struct {
	*config.Database
}

func NewLoginHistoryRepository(database *config.Database) *LoginHistoryRepository {
	return &LoginHistoryRepository{database}
}

// Create : записывает попытку входа, успешную или нет
func (r *LoginHistoryRepository) Create(ctx context.Context, entry *model.LoginHistory) error {
	query := `
	INSERT INTO login_histories (user_uuid, device_id, ip_address, user_agent, os_type,
	                             app_version, login_at, login_type, success, failure_reason)
	VALUES ($1, $2, $3, $4, $5, $6, now(), $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		entry.UserUUID,
		entry.DeviceID,
		entry.IPAddress,
		entry.UserAgent,
		entry.OSType,
		entry.AppVersion,
		entry.LoginType,
		entry.Success,
		entry.FailureReason,
	)

	if err != nil {
		return util.LogError("[LoginHistoryRepo] ошибка вставки данных в БД", err)
	}

	return nil
}
