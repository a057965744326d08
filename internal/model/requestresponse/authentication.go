package requestresponse

import "time"

// SignupRequest : тело запроса регистрации
type SignupRequest struct {
	Email           string  `json:"email" example:"user@example.com"`
	Password        string  `json:"password" example:"P@ssw0rd123"`
	Name            string  `json:"name" example:"Иван"`
	PhoneNumber     *string `json:"phone_number,omitempty" example:"01012345678"`
	MarketingAgreed bool    `json:"marketing_agreed" example:"false"`
}

// SignupResponse : успешный ответ на регистрацию
type SignupResponse struct {
	UserUUID  string    `json:"user_id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Email     string    `json:"email" example:"user@example.com"`
	Name      string    `json:"name" example:"Иван"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// LoginUserInfo : публичные поля профиля в ответе на вход
type LoginUserInfo struct {
	UserUUID string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// LoginResponse : ответ на успешную аутентификацию
type LoginResponse struct {
	AccessToken      string        `json:"access_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken     string        `json:"refresh_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType        string        `json:"token_type" example:"Bearer"`
	ExpiresIn        int           `json:"expires_in" example:"1800"`
	RefreshExpiresIn int           `json:"refresh_expires_in" example:"2592000"`
	User             LoginUserInfo `json:"user"`
}

// RefreshRequest : запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// TokenResponse : ответ на успешный refresh
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type" example:"Bearer"`
	ExpiresIn        int    `json:"expires_in" example:"1800"`
	RefreshExpiresIn int    `json:"refresh_expires_in" example:"2592000"`
}

// LogoutAllResponse : количество завершённых сессий
type LogoutAllResponse struct {
	LoggedOutDevices int `json:"logged_out_devices" example:"3"`
}

// MessageResponse : простой ответ с сообщением
type MessageResponse struct {
	Message string `json:"message" example:"выход выполнен"`
}
