package ports

import (
	"context"

	"auth-session-server/internal/model"
)

type DeviceRepository interface {
	UpsertDevice(ctx context.Context, userUUID string, meta model.DeviceMetadata) (*model.UserDevice, error)
	FindByUserAndDevice(ctx context.Context, userUUID, deviceID string) (*model.UserDevice, error)
	ListActiveDevices(ctx context.Context, userUUID string) ([]*model.UserDevice, error)
	DeactivateDevice(ctx context.Context, userUUID, deviceID string) (bool, error)
	DeactivateAllDevices(ctx context.Context, userUUID string) (int, error)
}

type LoginHistoryRepository interface {
	Create(ctx context.Context, entry *model.LoginHistory) error
}

type DeviceService interface {
	ListDevices(ctx context.Context, userUUID string) ([]*model.UserDevice, error)
	ForceLogoutDevice(ctx context.Context, userUUID, targetDeviceID, currentDeviceID string) error
}
