package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/ports"
	"auth-session-server/internal/security"
	"auth-session-server/internal/util"
)

const avatarURLTTL = 7 * 24 * time.Hour

type UserService struct {
	userRepository   ports.UserRepository
	deviceRepository ports.DeviceRepository
	sessionStore     ports.SessionStore
	s3Storage        ports.S3Storage
}

func NewUserService(
	userRepository ports.UserRepository,
	deviceRepository ports.DeviceRepository,
	sessionStore ports.SessionStore,
	s3Storage ports.S3Storage,
) *UserService {
	return &UserService{
		userRepository:   userRepository,
		deviceRepository: deviceRepository,
		sessionStore:     sessionStore,
		s3Storage:        s3Storage,
	}
}

func (s *UserService) GetMe(ctx context.Context, userUUID string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateMe(ctx context.Context, userUUID string, name, phoneNumber *string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}

	if err := validatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}

	if name != nil {
		user.Name = *name
	}
	if phoneNumber != nil {
		user.PhoneNumber = phoneNumber
	}

	if err := s.userRepository.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword меняет пароль и закрывает все сессии пользователя:
// после смены пароля каждое устройство обязано войти заново.
func (s *UserService) ChangePassword(ctx context.Context, userUUID, currentPassword, newPassword string) error {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrUserNotFound
	}

	if !security.CheckPassword(currentPassword, user.PasswordHash) {
		return apperror.ErrCurrentPasswordMismatch
	}
	if security.CheckPassword(newPassword, user.PasswordHash) {
		return apperror.ErrSamePassword
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return util.LogError("не удалось создать хэш пароля", err)
	}

	if err := s.userRepository.UpdatePassword(ctx, userUUID, hash); err != nil {
		return err
	}

	if _, err := s.sessionStore.DeleteAllSessions(ctx, userUUID); err != nil {
		return err
	}
	if _, err := s.deviceRepository.DeactivateAllDevices(ctx, userUUID); err != nil {
		return err
	}

	return nil
}

// DeleteAccount выполняет логическое удаление аккаунта и закрывает все
// сессии. Запись о пользователе остаётся со статусом WITHDRAWN.
func (s *UserService) DeleteAccount(ctx context.Context, userUUID, password string) error {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrUserNotFound
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return apperror.ErrCurrentPasswordMismatch
	}

	if err := s.userRepository.SoftDelete(ctx, userUUID); err != nil {
		return err
	}

	if _, err := s.sessionStore.DeleteAllSessions(ctx, userUUID); err != nil {
		return err
	}
	if _, err := s.deviceRepository.DeactivateAllDevices(ctx, userUUID); err != nil {
		return err
	}

	logLogout(userUUID, "all", "ACCOUNT_DELETED")
	return nil
}

// UploadAvatar загружает аватар в S3 и сохраняет ссылку в профиле
func (s *UserService) UploadAvatar(ctx context.Context, userUUID, filename, contentType string, body io.Reader) (string, error) {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperror.ErrUserNotFound
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("avatars/%s%s", userUUID, ext)

	if err := s.s3Storage.UploadObject(ctx, key, contentType, body); err != nil {
		return "", err
	}

	url, err := s.s3Storage.GeneratePresignedGetURL(ctx, key, avatarURLTTL)
	if err != nil {
		return "", err
	}

	if err := s.userRepository.UpdateProfileImage(ctx, userUUID, url); err != nil {
		// объект уже в S3; ссылка подтянется при следующей загрузке
		log.Printf("не удалось сохранить ссылку на аватар: %v", err)
		return "", err
	}

	return url, nil
}
