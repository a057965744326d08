package ports

import (
	"context"
	"time"

	"auth-session-server/internal/model"
)

type AuthenticationService interface {
	Signup(ctx context.Context, email, password, name string, phoneNumber *string, marketingAgreed bool) (*model.User, error)
	Login(ctx context.Context, email, password string, device model.DeviceMetadata, userAgent string) (*model.TokensPair, *model.User, error)
	RefreshTokens(ctx context.Context, refreshToken string, device model.DeviceMetadata) (*model.TokensPair, error)
	Logout(ctx context.Context, userUUID, deviceID, accessJTI string, accessExp time.Time) error
	LogoutAll(ctx context.Context, userUUID, accessJTI string, accessExp time.Time) (int, error)
}
