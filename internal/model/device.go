package model

import "time"

// UserDevice : долговременная запись об устройстве пользователя.
// Деактивация логическая (is_active = false), запись никогда не удаляется,
// чтобы сохранить историю входов с устройства.
type UserDevice struct {
	ID          int64      `db:"id"`
	UserUUID    string     `db:"user_uuid"`
	DeviceID    string     `db:"device_id"`
	DeviceName  *string    `db:"device_name"`
	OSType      string     `db:"os_type"`
	OSVersion   *string    `db:"os_version"`
	AppVersion  *string    `db:"app_version"`
	PushToken   *string    `db:"push_token"`
	LastLoginAt *time.Time `db:"last_login_at"`
	LastLoginIP *string    `db:"last_login_ip"`
	LastAccess  *time.Time `db:"last_access_at"`
	IsActive    bool       `db:"is_active"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// DeviceMetadata : данные об устройстве из заголовков запроса
type DeviceMetadata struct {
	DeviceID   string
	DeviceName string
	OSType     string
	OSVersion  string
	AppVersion string
	IPAddress  string
}
