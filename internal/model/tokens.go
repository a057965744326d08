package model

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// Refresh токен (для получения новой пары)
	// example: eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`
}

// SessionRecord : единственная активная refresh-сессия для пары
// (пользователь, устройство). Хранится в Redis с TTL, равным времени
// жизни refresh-токена. TokenID должен совпадать с jti предъявленного
// refresh-токена, иначе токен считается уже использованным.
type SessionRecord struct {
	TokenID    string `json:"token_id"`
	UserUUID   string `json:"user_id"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name,omitempty"`
	OSType     string `json:"os_type,omitempty"`
	AppVersion string `json:"app_version,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	IssuedAt   int64  `json:"issued_at"`
	ExpiresAt  int64  `json:"expires_at"`
}

// RevocationEntry : запись чёрного списка access-токенов.
// Живёт в Redis ровно столько, сколько осталось жить отозванному токену.
type RevocationEntry struct {
	UserUUID  string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	Reason    string `json:"reason"`
	RevokedAt int64  `json:"revoked_at"`
}
