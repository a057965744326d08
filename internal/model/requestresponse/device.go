package requestresponse

import "time"

// DeviceResponse : активное устройство пользователя
type DeviceResponse struct {
	DeviceID    string     `json:"device_id" example:"d1"`
	DeviceName  *string    `json:"device_name,omitempty" example:"iPhone 15"`
	OSType      string     `json:"os_type" example:"iOS"`
	OSVersion   *string    `json:"os_version,omitempty" example:"17.4"`
	AppVersion  *string    `json:"app_version,omitempty" example:"2.1.0"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastAccess  *time.Time `json:"last_access_at,omitempty"`
	IPAddress   *string    `json:"ip_address,omitempty"`
	IsCurrent   bool       `json:"is_current" example:"true"`
}

// ListDevicesResponse : список активных устройств
type ListDevicesResponse struct {
	Devices []DeviceResponse `json:"devices"`
}
