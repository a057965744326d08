package model

import "time"

const (
	LoginTypeEmail = "EMAIL"

	LoginFailureInvalidCredentials = "INVALID_CREDENTIALS"
)

type LoginHistory struct {
	ID            int64     `db:"id"`
	UserUUID      *string   `db:"user_uuid"`
	DeviceID      string    `db:"device_id"`
	IPAddress     *string   `db:"ip_address"`
	UserAgent     *string   `db:"user_agent"`
	OSType        *string   `db:"os_type"`
	AppVersion    *string   `db:"app_version"`
	LoginAt       time.Time `db:"login_at"`
	LoginType     string    `db:"login_type"`
	Success       bool      `db:"success"`
	FailureReason *string   `db:"failure_reason"`
}
