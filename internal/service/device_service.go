package service

import (
	"context"

	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/ports"
)

type DeviceService struct {
	deviceRepository ports.DeviceRepository
	sessionStore     ports.SessionStore
}

func NewDeviceService(deviceRepository ports.DeviceRepository, sessionStore ports.SessionStore) *DeviceService {
	return &DeviceService{
		deviceRepository: deviceRepository,
		sessionStore:     sessionStore,
	}
}

func (s *DeviceService) ListDevices(ctx context.Context, userUUID string) ([]*model.UserDevice, error) {
	return s.deviceRepository.ListActiveDevices(ctx, userUUID)
}

// ForceLogoutDevice принудительно завершает сессию названного устройства.
// Собственное текущее устройство так отключить нельзя — для этого есть
// обычный logout.
func (s *DeviceService) ForceLogoutDevice(ctx context.Context, userUUID, targetDeviceID, currentDeviceID string) error {
	if targetDeviceID == currentDeviceID {
		return apperror.ErrCannotLogoutCurrentDevice
	}

	device, err := s.deviceRepository.FindByUserAndDevice(ctx, userUUID, targetDeviceID)
	if err != nil {
		return err
	}
	if device == nil || !device.IsActive {
		return apperror.ErrDeviceNotFound
	}

	if err := s.sessionStore.DeleteSession(ctx, userUUID, targetDeviceID); err != nil {
		return err
	}
	if _, err := s.deviceRepository.DeactivateDevice(ctx, userUUID, targetDeviceID); err != nil {
		return err
	}

	logLogout(userUUID, targetDeviceID, "FORCE")
	return nil
}
