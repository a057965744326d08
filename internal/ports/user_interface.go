package ports

import (
	"context"
	"io"

	"auth-session-server/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error
	UpdateProfileImage(ctx context.Context, uuid, url string) error
	UpdateLastLogin(ctx context.Context, uuid string) error
	SoftDelete(ctx context.Context, uuid string) error
}

type UserService interface {
	GetMe(ctx context.Context, userUUID string) (*model.User, error)
	UpdateMe(ctx context.Context, userUUID string, name, phoneNumber *string) (*model.User, error)
	ChangePassword(ctx context.Context, userUUID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userUUID, password string) error
	UploadAvatar(ctx context.Context, userUUID, filename, contentType string, body io.Reader) (string, error)
}
