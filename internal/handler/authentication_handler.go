package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/model/requestresponse"
	"auth-session-server/internal/ports"
	"auth-session-server/internal/security"
	"auth-session-server/internal/util"
)

type AuthenticationHandler struct {
	authenticationService ports.AuthenticationService
	jwtService            ports.JWTServiceInterface
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationService,
	jwtService ports.JWTServiceInterface,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService: authenticationService,
		jwtService:            jwtService,
	}
}

// Signup godoc
// @Summary Регистрация пользователя
// @Description Создаёт нового пользователя по email и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.SignupRequest true "Тело запроса"
// @Success 201 {object} requestresponse.SignupResponse "Пользователь создан"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или слабый пароль"
// @Failure 409 {object} requestresponse.ErrorResponse "Email уже используется"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/signup [post]
func (h *AuthenticationHandler) Signup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		util.HandleError(w, "email, password и name обязательны", http.StatusBadRequest)
		return
	}

	user, err := h.authenticationService.Signup(ctx, req.Email, req.Password, req.Name, req.PhoneNumber, req.MarketingAgreed)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.SignupResponse{
		UserUUID:  user.UUID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Выдаёт пару access/refresh токенов, привязанную к устройству из заголовка X-Device-Id
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Param X-Device-Name header string false "Название устройства"
// @Param X-OS-Type header string false "Тип ОС"
// @Param X-OS-Version header string false "Версия ОС"
// @Param X-App-Version header string false "Версия приложения"
// @Success 200 {object} requestresponse.LoginResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или нет X-Device-Id"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный email или пароль"
// @Failure 403 {object} requestresponse.ErrorResponse "Аккаунт заблокирован или удалён"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		util.HandleError(w, "email и password обязательны", http.StatusBadRequest)
		return
	}

	device, ok := deviceMetadataFromRequest(w, r)
	if !ok {
		return
	}

	tokens, user, err := h.authenticationService.Login(ctx, req.Email, req.Password, device, r.UserAgent())
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.LoginResponse{
		AccessToken:      tokens.AccessToken,
		RefreshToken:     tokens.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int(h.jwtService.AccessTokenTTL().Seconds()),
		RefreshExpiresIn: int(h.jwtService.RefreshTokenTTL().Seconds()),
		User: requestresponse.LoginUserInfo{
			UserUUID: user.UUID,
			Email:    user.Email,
			Name:     user.Name,
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// RefreshTokens godoc
// @Summary Обновление токенов
// @Description Обменивает одноразовый refresh-токен на новую пару access/refresh
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshRequest true "Тело запроса"
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.TokenResponse "Новая пара токенов"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или нет X-Device-Id"
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный или уже использованный refresh-токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if req.RefreshToken == "" {
		util.HandleError(w, "refresh_token обязателен", http.StatusBadRequest)
		return
	}

	device, ok := deviceMetadataFromRequest(w, r)
	if !ok {
		return
	}

	tokens, err := h.authenticationService.RefreshTokens(ctx, req.RefreshToken, device)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.TokenResponse{
		AccessToken:      tokens.AccessToken,
		RefreshToken:     tokens.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int(h.jwtService.AccessTokenTTL().Seconds()),
		RefreshExpiresIn: int(h.jwtService.RefreshTokenTTL().Seconds()),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Logout godoc
// @Summary Завершение сессии текущего устройства
// @Description Отзывает предъявленный access-токен и удаляет refresh-сессию устройства
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	if err := h.authenticationService.Logout(ctx, currentUser.UserUUID, currentUser.DeviceID, currentUser.TokenJTI, currentUser.TokenExp); err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(requestresponse.MessageResponse{Message: "выход выполнен"}); err != nil {
		log.Println("ошибка кодирования ответа:", err)
	}
}

// LogoutAll godoc
// @Summary Завершение сессий на всех устройствах
// @Description Отзывает предъявленный access-токен и удаляет refresh-сессии всех устройств пользователя
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param X-Device-Id header string true "Идентификатор устройства"
// @Success 200 {object} requestresponse.LogoutAllResponse "Количество завершённых сессий"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/logout/all [post]
func (h *AuthenticationHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	currentUser, err := security.GetCurrentUserFromContext(ctx)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	count, err := h.authenticationService.LogoutAll(ctx, currentUser.UserUUID, currentUser.TokenJTI, currentUser.TokenExp)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(requestresponse.LogoutAllResponse{LoggedOutDevices: count})
}

// deviceMetadataFromRequest читает метаданные устройства из заголовков.
// Отсутствующий X-Device-Id — ошибка клиента, а не аутентификации.
func deviceMetadataFromRequest(w http.ResponseWriter, r *http.Request) (model.DeviceMetadata, bool) {
	deviceID, deviceName, osType, osVersion, appVersion := security.DeviceMetadataFromRequest(r)
	if deviceID == "" {
		util.HandleAppError(w, apperror.ErrDeviceRequired)
		return model.DeviceMetadata{}, false
	}

	ip := r.RemoteAddr
	if host, _, ok := strings.Cut(ip, ":"); ok && host != "" {
		ip = host
	}

	if osType == "" {
		osType = "unknown"
	}

	return model.DeviceMetadata{
		DeviceID:   deviceID,
		DeviceName: deviceName,
		OSType:     osType,
		OSVersion:  osVersion,
		AppVersion: appVersion,
		IPAddress:  ip,
	}, true
}
