package handler

import (
	"encoding/json"
	"net/http"

	"auth-session-server/internal/model/requestresponse"
	"auth-session-server/internal/ports"
	"auth-session-server/internal/security"
	"auth-session-server/internal/util"

	"github.com/go-chi/chi/v5"
)

type DeviceHandler struct {
	deviceService ports.DeviceService
}

func NewDeviceHandler(deviceService ports.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// ListDevices godoc
// @Summary Список активных устройств
// @Description Возвращает активные устройства пользователя; текущее помечено is_current
// @Tags Devices
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.ListDevicesResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/me/devices [get]
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	devices, err := h.deviceService.ListDevices(ctx, currentUser.UserUUID)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.ListDevicesResponse{
		Devices: make([]requestresponse.DeviceResponse, 0, len(devices)),
	}
	for _, device := range devices {
		resp.Devices = append(resp.Devices, requestresponse.DeviceResponse{
			DeviceID:    device.DeviceID,
			DeviceName:  device.DeviceName,
			OSType:      device.OSType,
			OSVersion:   device.OSVersion,
			AppVersion:  device.AppVersion,
			LastLoginAt: device.LastLoginAt,
			LastAccess:  device.LastAccess,
			IPAddress:   device.LastLoginIP,
			IsCurrent:   device.DeviceID == currentUser.DeviceID,
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// ForceLogoutDevice godoc
// @Summary Принудительное завершение сессии устройства
// @Description Завершает сессию названного устройства. Текущее устройство так отключить нельзя
// @Tags Devices
// @Produce json
// @Param device_id path string true "Идентификатор устройства"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Попытка отключить текущее устройство"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Устройство не найдено или уже неактивно"
// @Security ApiKeyAuth
// @Router /api/users/me/devices/{device_id} [delete]
func (h *DeviceHandler) ForceLogoutDevice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	targetDeviceID := chi.URLParam(r, "device_id")
	if targetDeviceID == "" {
		util.HandleError(w, "device_id не указан", http.StatusBadRequest)
		return
	}

	if err := h.deviceService.ForceLogoutDevice(ctx, currentUser.UserUUID, targetDeviceID, currentUser.DeviceID); err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(requestresponse.MessageResponse{Message: "сессия устройства завершена"})
}
