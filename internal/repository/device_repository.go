package repository

import (
	"context"
	"database/sql"
	"errors"

	"auth-session-server/config"
	"auth-session-server/internal/model"
	"auth-session-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type DeviceRepository struct {
	*config.Database
}

func NewDeviceRepository(database *config.Database) *DeviceRepository {
	return &DeviceRepository{database}
}

// UpsertDevice : создаёт запись об устройстве или обновляет существующую.
// Повторный вход с того же устройства обновляет метаданные и реактивирует
// запись. Пустые заголовки не затирают ранее известные значения.
func (r *DeviceRepository) UpsertDevice(ctx context.Context, userUUID string, meta model.DeviceMetadata) (*model.UserDevice, error) {
	query := `
	INSERT INTO user_devices (user_uuid, device_id, device_name, os_type, os_version, app_version,
	                          last_login_at, last_login_ip, last_access_at, is_active)
	VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), now(), NULLIF($7, ''), now(), TRUE)
	ON CONFLICT (user_uuid, device_id) DO UPDATE SET
		device_name    = COALESCE(NULLIF(EXCLUDED.device_name, ''), user_devices.device_name),
		os_type        = EXCLUDED.os_type,
		os_version     = COALESCE(NULLIF(EXCLUDED.os_version, ''), user_devices.os_version),
		app_version    = COALESCE(NULLIF(EXCLUDED.app_version, ''), user_devices.app_version),
		last_login_at  = now(),
		last_login_ip  = EXCLUDED.last_login_ip,
		last_access_at = now(),
		is_active      = TRUE,
		updated_at     = now()
	RETURNING *
	`

	device := &model.UserDevice{}
	err := r.DB.QueryRowxContext(ctx, query,
		userUUID,
		meta.DeviceID,
		meta.DeviceName,
		meta.OSType,
		meta.OSVersion,
		meta.AppVersion,
		meta.IPAddress,
	).StructScan(device)

	if err != nil {
		return nil, util.LogError("[DeviceRepo] не удалось сохранить устройство", err)
	}

	return device, nil
}

// FindByUserAndDevice : возвращает nil без ошибки, если записи нет
func (r *DeviceRepository) FindByUserAndDevice(ctx context.Context, userUUID, deviceID string) (*model.UserDevice, error) {
	query := `SELECT * FROM user_devices WHERE user_uuid = $1 AND device_id = $2`
	var device model.UserDevice
	err := sqlx.GetContext(ctx, r.DB, &device, query, userUUID, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, util.LogError("[DeviceRepo] не удалось найти устройство", err)
	}
	return &device, nil
}

func (r *DeviceRepository) ListActiveDevices(ctx context.Context, userUUID string) ([]*model.UserDevice, error) {
	query := `
		SELECT * FROM user_devices
		WHERE user_uuid = $1 AND is_active = TRUE
		ORDER BY last_login_at DESC NULLS LAST
	`
	var devices []*model.UserDevice
	if err := sqlx.SelectContext(ctx, r.DB, &devices, query, userUUID); err != nil {
		return nil, util.LogError("[DeviceRepo] не удалось получить список устройств", err)
	}
	return devices, nil
}

// DeactivateDevice : логическое отключение устройства.
// Возвращает false, если активной записи не было.
func (r *DeviceRepository) DeactivateDevice(ctx context.Context, userUUID, deviceID string) (bool, error) {
	query := `
		UPDATE user_devices SET is_active = FALSE, updated_at = now()
		WHERE user_uuid = $1 AND device_id = $2 AND is_active = TRUE
	`
	result, err := r.DB.ExecContext(ctx, query, userUUID, deviceID)
	if err != nil {
		return false, util.LogError("[DeviceRepo] не удалось деактивировать устройство", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("[DeviceRepo] не удалось проверить результат деактивации", err)
	}
	return rowsAffected > 0, nil
}

func (r *DeviceRepository) DeactivateAllDevices(ctx context.Context, userUUID string) (int, error) {
	query := `
		UPDATE user_devices SET is_active = FALSE, updated_at = now()
		WHERE user_uuid = $1 AND is_active = TRUE
	`
	result, err := r.DB.ExecContext(ctx, query, userUUID)
	if err != nil {
		return 0, util.LogError("[DeviceRepo] не удалось деактивировать устройства", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[DeviceRepo] не удалось проверить результат деактивации", err)
	}
	return int(rowsAffected), nil
}
