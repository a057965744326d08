package apperror

import "net/http"

// AppError : ошибка бизнес-уровня со стабильным машиночитаемым кодом.
// Сервисы возвращают эти значения (при необходимости оборачивая через %w),
// обработчики сопоставляют их через errors.Is.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"text"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	// Единая ошибка на "пользователь не найден" и "неверный пароль":
	// ответ никогда не раскрывает, какая из причин сработала.
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "AUTH_001", "неверный email или пароль"}
	ErrTokenExpired       = &AppError{http.StatusUnauthorized, "AUTH_002", "срок действия токена истёк, выполните вход заново"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "AUTH_003", "невалидный токен"}
	ErrSessionExpired     = &AppError{http.StatusUnauthorized, "AUTH_004", "сессия истекла, выполните вход заново"}
	ErrInvalidRefresh     = &AppError{http.StatusUnauthorized, "AUTH_005", "невалидный refresh токен"}
	ErrTokenRevoked       = &AppError{http.StatusUnauthorized, "AUTH_006", "сессия была завершена"}
	ErrDeviceMismatch     = &AppError{http.StatusUnauthorized, "AUTH_007", "токен выдан для другого устройства"}

	ErrUserNotFound            = &AppError{http.StatusNotFound, "USER_001", "пользователь не найден"}
	ErrEmailAlreadyExists      = &AppError{http.StatusConflict, "USER_002", "email уже используется"}
	ErrInvalidPasswordFormat   = &AppError{http.StatusBadRequest, "USER_003", "неверный формат пароля"}
	ErrCurrentPasswordMismatch = &AppError{http.StatusBadRequest, "USER_004", "текущий пароль указан неверно"}
	ErrSamePassword            = &AppError{http.StatusBadRequest, "USER_005", "новый пароль должен отличаться от текущего"}
	ErrAccountSuspended        = &AppError{http.StatusForbidden, "USER_006", "аккаунт заблокирован"}
	ErrAccountWithdrawn        = &AppError{http.StatusForbidden, "USER_007", "аккаунт удалён"}
	ErrInvalidPhoneNumber      = &AppError{http.StatusBadRequest, "USER_008", "неверный формат номера телефона"}

	ErrDeviceRequired            = &AppError{http.StatusBadRequest, "DEVICE_001", "требуется заголовок X-Device-Id"}
	ErrDeviceNotFound            = &AppError{http.StatusNotFound, "DEVICE_002", "устройство не зарегистрировано"}
	ErrCannotLogoutCurrentDevice = &AppError{http.StatusBadRequest, "DEVICE_003", "текущее устройство нельзя отключить этим способом"}
)
