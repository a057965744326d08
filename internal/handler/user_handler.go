package handler

import (
	"encoding/json"
	"net/http"

	"auth-session-server/internal/model/requestresponse"
	"auth-session-server/internal/ports"
	"auth-session-server/internal/security"
	"auth-session-server/internal/util"
)

const maxAvatarSize = 5 << 20 // 5 МБ

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe godoc
// @Summary Профиль текущего пользователя
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	user, err := h.userService.GetMe(ctx, currentUser.UserUUID)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.UserResponse{
		UserUUID:        user.UUID,
		Email:           user.Email,
		Name:            user.Name,
		PhoneNumber:     user.PhoneNumber,
		ProfileImageURL: user.ProfileImageURL,
		MarketingAgreed: user.MarketingAgreed,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// UpdateMe godoc
// @Summary Обновление профиля
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.UpdateUserRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.UpdateUserResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/me [patch]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	var req requestresponse.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateMe(ctx, currentUser.UserUUID, req.Name, req.PhoneNumber)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.UpdateUserResponse{
		UserUUID:    user.UUID,
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		UpdatedAt:   user.UpdatedAt,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// ChangePassword godoc
// @Summary Смена пароля
// @Description После успешной смены пароля все сессии пользователя завершаются
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.ChangePasswordRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/me/password [put]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	var req requestresponse.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		util.HandleError(w, "current_password и new_password обязательны", http.StatusBadRequest)
		return
	}

	if err := h.userService.ChangePassword(ctx, currentUser.UserUUID, req.CurrentPassword, req.NewPassword); err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(requestresponse.MessageResponse{Message: "пароль изменён, выполните вход заново"})
}

// DeleteAccount godoc
// @Summary Удаление аккаунта
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.DeleteAccountRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/me [delete]
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	var req requestresponse.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if err := h.userService.DeleteAccount(ctx, currentUser.UserUUID, req.Password); err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(requestresponse.MessageResponse{Message: "аккаунт удалён"})
}

// UploadAvatar godoc
// @Summary Загрузка аватара
// @Tags Users
// @Accept mpfd
// @Produce json
// @Param file formData file true "Файл изображения"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.AvatarResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/me/avatar [post]
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		util.HandleError(w, "не удалось разобрать multipart запрос", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		util.HandleError(w, "файл не найден в запросе", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.userService.UploadAvatar(ctx, currentUser.UserUUID, header.Filename, contentType, file)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(requestresponse.AvatarResponse{ProfileImageURL: url})
}
