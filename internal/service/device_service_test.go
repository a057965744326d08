package service_test

import (
	"context"
	"testing"

	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestDeviceService() (*service.DeviceService, *MockDeviceRepository, *MockSessionStore) {
	mockDeviceRepo := new(MockDeviceRepository)
	mockSessionStore := new(MockSessionStore)

	svc := service.NewDeviceService(mockDeviceRepo, mockSessionStore)

	return svc, mockDeviceRepo, mockSessionStore
}

// 1. Список активных устройств
func TestListDevices(t *testing.T) {
	svc, mockDeviceRepo, _ := newTestDeviceService()
	ctx := context.Background()

	devices := []*model.UserDevice{
		{DeviceID: "device-1", IsActive: true},
		{DeviceID: "device-2", IsActive: true},
	}
	mockDeviceRepo.On("ListActiveDevices", ctx, "u1").Return(devices, nil)

	got, err := svc.ListDevices(ctx, "u1")

	assert.NoError(t, err)
	assert.Len(t, got, 2)
}

// 2. Нельзя отключить собственное текущее устройство
func TestForceLogoutDevice_CurrentDevice(t *testing.T) {
	svc, mockDeviceRepo, _ := newTestDeviceService()

	err := svc.ForceLogoutDevice(context.Background(), "u1", "device-1", "device-1")

	assert.ErrorIs(t, err, apperror.ErrCannotLogoutCurrentDevice)
	mockDeviceRepo.AssertNotCalled(t, "FindByUserAndDevice", mock.Anything, mock.Anything, mock.Anything)
}

// 3. Устройство не найдено или уже неактивно
func TestForceLogoutDevice_NotFound(t *testing.T) {
	svc, mockDeviceRepo, _ := newTestDeviceService()
	ctx := context.Background()

	mockDeviceRepo.On("FindByUserAndDevice", ctx, "u1", "device-x").Return(nil, nil)

	err := svc.ForceLogoutDevice(ctx, "u1", "device-x", "device-1")

	assert.ErrorIs(t, err, apperror.ErrDeviceNotFound)
}

// 4. Неактивное устройство отклоняется так же, как отсутствующее
func TestForceLogoutDevice_Inactive(t *testing.T) {
	svc, mockDeviceRepo, _ := newTestDeviceService()
	ctx := context.Background()

	mockDeviceRepo.On("FindByUserAndDevice", ctx, "u1", "device-2").
		Return(&model.UserDevice{DeviceID: "device-2", IsActive: false}, nil)

	err := svc.ForceLogoutDevice(ctx, "u1", "device-2", "device-1")

	assert.ErrorIs(t, err, apperror.ErrDeviceNotFound)
}

// 5. Успешное принудительное завершение: сессия удалена, устройство деактивировано
func TestForceLogoutDevice_Success(t *testing.T) {
	svc, mockDeviceRepo, mockSessionStore := newTestDeviceService()
	ctx := context.Background()

	mockDeviceRepo.On("FindByUserAndDevice", ctx, "u1", "device-2").
		Return(&model.UserDevice{DeviceID: "device-2", IsActive: true}, nil)
	mockSessionStore.On("DeleteSession", ctx, "u1", "device-2").Return(nil)
	mockDeviceRepo.On("DeactivateDevice", ctx, "u1", "device-2").Return(true, nil)

	err := svc.ForceLogoutDevice(ctx, "u1", "device-2", "device-1")

	assert.NoError(t, err)
	mockSessionStore.AssertExpectations(t)
	mockDeviceRepo.AssertExpectations(t)
}
