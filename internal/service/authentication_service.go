package service

import (
	"context"
	"log"
	"time"

	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/notifier"
	"auth-session-server/internal/ports"
	"auth-session-server/internal/security"
	"auth-session-server/internal/util"

	"github.com/google/uuid"
)

const (
	activityDeviceMismatch = "REFRESH_DEVICE_MISMATCH"
	activityTokenReuse     = "REFRESH_TOKEN_REUSE_ATTEMPT"
)

type AuthenticationService struct {
	userRepository    ports.UserRepository
	deviceRepository  ports.DeviceRepository
	historyRepository ports.LoginHistoryRepository
	jwtService        ports.JWTServiceInterface
	sessionStore      ports.SessionStore
	webhookURL        string
}

func NewAuthenticationService(
	userRepository ports.UserRepository,
	deviceRepository ports.DeviceRepository,
	historyRepository ports.LoginHistoryRepository,
	jwtService ports.JWTServiceInterface,
	sessionStore ports.SessionStore,
	webhookURL string,
) *AuthenticationService {
	return &AuthenticationService{
		userRepository:    userRepository,
		deviceRepository:  deviceRepository,
		historyRepository: historyRepository,
		jwtService:        jwtService,
		sessionStore:      sessionStore,
		webhookURL:        webhookURL,
	}
}

// Signup регистрирует нового пользователя. Проверка занятости email
// выполняется дважды: быстрая предварительная — ради понятной ошибки,
// и уникальный индекс БД — как источник истины, закрывающий гонку.
func (s *AuthenticationService) Signup(ctx context.Context, email, password, name string, phoneNumber *string, marketingAgreed bool) (*model.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}

	exists, err := s.userRepository.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.ErrEmailAlreadyExists
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, util.LogError("не удалось создать хэш пароля", err)
	}

	user := &model.User{
		UUID:            uuid.New().String(),
		Email:           email,
		PasswordHash:    hash,
		Name:            name,
		PhoneNumber:     phoneNumber,
		Status:          model.UserStatusActive,
		MarketingAgreed: marketingAgreed,
	}

	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		// нарушение уникальности уже переведено репозиторием
		// в ErrEmailAlreadyExists
		return nil, err
	}

	return created, nil
}

// Login аутентифицирует пользователя и выдаёт пару токенов, привязанную
// к устройству. Проверка пароля выполняется всегда, даже если пользователь
// не найден — против фиктивного хэша, чтобы время ответа не выдавало,
// существует ли аккаунт.
func (s *AuthenticationService) Login(ctx context.Context, email, password string, device model.DeviceMetadata, userAgent string) (*model.TokensPair, *model.User, error) {
	user, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	var valid bool
	if user == nil {
		security.CheckPassword(password, security.DummyPasswordHash)
		valid = false
	} else {
		valid = security.CheckPassword(password, user.PasswordHash)
	}

	if !valid {
		s.recordLoginFailure(ctx, user, device, userAgent)
		logLoginFailure(email, device.DeviceID, device.IPAddress, model.LoginFailureInvalidCredentials)
		// ответ никогда не различает "нет такого пользователя"
		// и "неверный пароль"
		return nil, nil, apperror.ErrInvalidCredentials
	}

	switch user.Status {
	case model.UserStatusInactive:
		return nil, nil, apperror.ErrAccountSuspended
	case model.UserStatusWithdrawn:
		return nil, nil, apperror.ErrAccountWithdrawn
	}

	if _, err := s.deviceRepository.UpsertDevice(ctx, user.UUID, device); err != nil {
		return nil, nil, err
	}
	if err := s.userRepository.UpdateLastLogin(ctx, user.UUID); err != nil {
		return nil, nil, err
	}

	tokens, refreshJTI, refreshExp, err := s.jwtService.GenerateTokensPair(user, device.DeviceID)
	if err != nil {
		return nil, nil, err
	}

	record := s.newSessionRecord(user.UUID, refreshJTI, device, refreshExp)
	if err := s.sessionStore.PutSession(ctx, user.UUID, device.DeviceID, record, refreshExp); err != nil {
		// успех не возвращается, пока сессия не сохранена
		return nil, nil, err
	}

	s.recordLoginSuccess(ctx, user, device, userAgent)
	logLoginSuccess(user.UUID, device.DeviceID, device.IPAddress)

	return tokens, user, nil
}

// RefreshTokens выполняет ротацию refresh-токена. Каждый успешный refresh
// выдаёт новую пару; старый refresh-токен становится непригодным навсегда,
// потому что его jti больше не совпадает с сохранённым в сессии.
func (s *AuthenticationService) RefreshTokens(ctx context.Context, refreshToken string, device model.DeviceMetadata) (*model.TokensPair, error) {
	claims, err := s.jwtService.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// Токен, украденный и предъявленный с другого устройства
	if claims.DeviceID != device.DeviceID {
		logSuspiciousActivity(claims.Subject, device.DeviceID, device.IPAddress, activityDeviceMismatch)
		s.notifyWebhook(claims.Subject, device, activityDeviceMismatch)
		return nil, apperror.ErrInvalidRefresh
	}

	stored, err := s.sessionStore.GetSession(ctx, claims.Subject, device.DeviceID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apperror.ErrInvalidRefresh
	}

	// Повторное использование: предъявлен токен, который уже был погашен
	// ротацией. Сессия удаляется целиком — легитимному держателю тоже
	// придётся входить заново, отказ безопаснее доверия.
	if stored.TokenID != claims.ID {
		logSuspiciousActivity(claims.Subject, device.DeviceID, device.IPAddress, activityTokenReuse)
		s.notifyWebhook(claims.Subject, device, activityTokenReuse)
		if err := s.sessionStore.DeleteSession(ctx, claims.Subject, device.DeviceID); err != nil {
			log.Printf("не удалось удалить скомпрометированную сессию: %v", err)
		}
		return nil, apperror.ErrInvalidRefresh
	}

	user, err := s.userRepository.FindByUUID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidRefresh
	}

	tokens, newJTI, newExp, err := s.jwtService.GenerateTokensPair(user, device.DeviceID)
	if err != nil {
		return nil, err
	}

	record := s.newSessionRecord(user.UUID, newJTI, device, newExp)
	rotated, err := s.sessionStore.RotateSession(ctx, user.UUID, device.DeviceID, claims.ID, record, newExp)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// сессию успел перезаписать конкурентный refresh
		return nil, apperror.ErrInvalidRefresh
	}

	logTokenRefresh(user.UUID, device.DeviceID)

	return tokens, nil
}

// Logout отзывает предъявленный access-токен на остаток его жизни,
// удаляет сессию устройства и деактивирует запись об устройстве.
func (s *AuthenticationService) Logout(ctx context.Context, userUUID, deviceID, accessJTI string, accessExp time.Time) error {
	ttl := time.Until(accessExp)
	if err := s.sessionStore.Revoke(ctx, accessJTI, userUUID, deviceID, "logout", ttl); err != nil {
		return err
	}
	if err := s.sessionStore.DeleteSession(ctx, userUUID, deviceID); err != nil {
		return err
	}
	if _, err := s.deviceRepository.DeactivateDevice(ctx, userUUID, deviceID); err != nil {
		return err
	}

	logLogout(userUUID, deviceID, "SELF")
	return nil
}

// LogoutAll снимает все сессии пользователя. Возвращённое число — количество
// реально удалённых сессий по индексу устройств в хранилище; количество
// деактивированных записей в реестре устройств может от него отличаться.
func (s *AuthenticationService) LogoutAll(ctx context.Context, userUUID, accessJTI string, accessExp time.Time) (int, error) {
	ttl := time.Until(accessExp)
	if err := s.sessionStore.Revoke(ctx, accessJTI, userUUID, "all", "logout_all", ttl); err != nil {
		return 0, err
	}

	count, err := s.sessionStore.DeleteAllSessions(ctx, userUUID)
	if err != nil {
		return 0, err
	}

	if _, err := s.deviceRepository.DeactivateAllDevices(ctx, userUUID); err != nil {
		return 0, err
	}

	logLogout(userUUID, "all", "ALL_DEVICES")
	return count, nil
}

func (s *AuthenticationService) newSessionRecord(userUUID, jti string, device model.DeviceMetadata, expiresAt time.Time) *model.SessionRecord {
	return &model.SessionRecord{
		TokenID:    jti,
		UserUUID:   userUUID,
		DeviceID:   device.DeviceID,
		DeviceName: device.DeviceName,
		OSType:     device.OSType,
		AppVersion: device.AppVersion,
		IPAddress:  device.IPAddress,
		IssuedAt:   time.Now().UTC().Unix(),
		ExpiresAt:  expiresAt.Unix(),
	}
}

func (s *AuthenticationService) recordLoginFailure(ctx context.Context, user *model.User, device model.DeviceMetadata, userAgent string) {
	entry := &model.LoginHistory{
		DeviceID:      device.DeviceID,
		IPAddress:     optional(device.IPAddress),
		UserAgent:     optional(userAgent),
		OSType:        optional(device.OSType),
		AppVersion:    optional(device.AppVersion),
		LoginType:     model.LoginTypeEmail,
		Success:       false,
		FailureReason: optional(model.LoginFailureInvalidCredentials),
	}
	if user != nil {
		entry.UserUUID = &user.UUID
	}
	if err := s.historyRepository.Create(ctx, entry); err != nil {
		log.Printf("не удалось записать неудачную попытку входа: %v", err)
	}
}

func (s *AuthenticationService) recordLoginSuccess(ctx context.Context, user *model.User, device model.DeviceMetadata, userAgent string) {
	entry := &model.LoginHistory{
		UserUUID:   &user.UUID,
		DeviceID:   device.DeviceID,
		IPAddress:  optional(device.IPAddress),
		UserAgent:  optional(userAgent),
		OSType:     optional(device.OSType),
		AppVersion: optional(device.AppVersion),
		LoginType:  model.LoginTypeEmail,
		Success:    true,
	}
	if err := s.historyRepository.Create(ctx, entry); err != nil {
		log.Printf("не удалось записать успешный вход: %v", err)
	}
}

// notifyWebhook уведомляет о подозрительной активности без ожидания ответа
func (s *AuthenticationService) notifyWebhook(userUUID string, device model.DeviceMetadata, activity string) {
	if s.webhookURL == "" {
		return
	}
	go func() {
		event := notifier.SuspiciousActivityEvent{
			UserUUID:  userUUID,
			DeviceID:  device.DeviceID,
			IPAddress: device.IPAddress,
			Activity:  activity,
		}
		if err := notifier.NotifySuspiciousActivity(s.webhookURL, event); err != nil {
			log.Printf("ошибка отправки webhook: %v", err)
		}
	}()
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
