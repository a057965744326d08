package requestresponse

import "time"

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code string `json:"code" example:"AUTH_001"`
	Text string `json:"text" example:"неверный email или пароль"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// UserResponse : профиль текущего пользователя
type UserResponse struct {
	UserUUID        string    `json:"user_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Email           string    `json:"email" example:"user@example.com"`
	Name            string    `json:"name" example:"Иван"`
	PhoneNumber     *string   `json:"phone_number,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	MarketingAgreed bool      `json:"marketing_agreed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateUserRequest : тело запроса на обновление профиля
type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty" example:"Пётр"`
	PhoneNumber *string `json:"phone_number,omitempty" example:"01012345678"`
}

// UpdateUserResponse : успешный ответ
type UpdateUserResponse struct {
	UserUUID    string    `json:"user_id"`
	Name        string    `json:"name"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChangePasswordRequest : тело запроса на смену пароля
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:"P@ssw0rd123"`
	NewPassword     string `json:"new_password" example:"N3wP@ssw0rd"`
}

// DeleteAccountRequest : тело запроса на удаление аккаунта
type DeleteAccountRequest struct {
	Password string `json:"password" example:"P@ssw0rd123"`
}

// AvatarResponse : ссылка на загруженный аватар
type AvatarResponse struct {
	ProfileImageURL string `json:"profile_image_url"`
}
