package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/security"
	"auth-session-server/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error {
	args := m.Called(ctx, uuid, newPasswordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfileImage(ctx context.Context, uuid, url string) error {
	args := m.Called(ctx, uuid, url)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, uuid string) error {
	args := m.Called(ctx, uuid)
	return args.Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, uuid string) error {
	args := m.Called(ctx, uuid)
	return args.Error(0)
}

// MockDeviceRepository
type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) UpsertDevice(ctx context.Context, userUUID string, meta model.DeviceMetadata) (*model.UserDevice, error) {
	args := m.Called(ctx, userUUID, meta)
	if d, ok := args.Get(0).(*model.UserDevice); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeviceRepository) FindByUserAndDevice(ctx context.Context, userUUID, deviceID string) (*model.UserDevice, error) {
	args := m.Called(ctx, userUUID, deviceID)
	if d, ok := args.Get(0).(*model.UserDevice); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeviceRepository) ListActiveDevices(ctx context.Context, userUUID string) ([]*model.UserDevice, error) {
	args := m.Called(ctx, userUUID)
	if d, ok := args.Get(0).([]*model.UserDevice); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeviceRepository) DeactivateDevice(ctx context.Context, userUUID, deviceID string) (bool, error) {
	args := m.Called(ctx, userUUID, deviceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeviceRepository) DeactivateAllDevices(ctx context.Context, userUUID string) (int, error) {
	args := m.Called(ctx, userUUID)
	return args.Int(0), args.Error(1)
}

// MockLoginHistoryRepository
type MockLoginHistoryRepository struct {
	mock.Mock
}

func (m *MockLoginHistoryRepository) Create(ctx context.Context, entry *model.LoginHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockJWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateAccessToken(userUUID, email, name, deviceID string) (string, string, time.Time, error) {
	args := m.Called(userUUID, email, name, deviceID)
	return args.String(0), args.String(1), args.Get(2).(time.Time), args.Error(3)
}

func (m *MockJWTService) GenerateRefreshToken(userUUID, deviceID string) (string, string, time.Time, error) {
	args := m.Called(userUUID, deviceID)
	return args.String(0), args.String(1), args.Get(2).(time.Time), args.Error(3)
}

func (m *MockJWTService) GenerateTokensPair(user *model.User, deviceID string) (*model.TokensPair, string, time.Time, error) {
	args := m.Called(user, deviceID)

	var tokens *model.TokensPair
	if t := args.Get(0); t != nil {
		tokens = t.(*model.TokensPair)
	}

	return tokens, args.String(1), args.Get(2).(time.Time), args.Error(3)
}

func (m *MockJWTService) ParseAccessToken(tokenStr string) (*security.AccessClaims, error) {
	args := m.Called(tokenStr)
	if c, ok := args.Get(0).(*security.AccessClaims); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTService) ParseRefreshToken(tokenStr string) (*security.RefreshClaims, error) {
	args := m.Called(tokenStr)
	if c, ok := args.Get(0).(*security.RefreshClaims); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTService) AccessTokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockJWTService) RefreshTokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockSessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) PutSession(ctx context.Context, userUUID, deviceID string, record *model.SessionRecord, expiresAt time.Time) error {
	args := m.Called(ctx, userUUID, deviceID, record, expiresAt)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, userUUID, deviceID string) (*model.SessionRecord, error) {
	args := m.Called(ctx, userUUID, deviceID)
	if r, ok := args.Get(0).(*model.SessionRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionStore) RotateSession(ctx context.Context, userUUID, deviceID, currentJTI string, record *model.SessionRecord, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, userUUID, deviceID, currentJTI, record, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, userUUID, deviceID string) error {
	args := m.Called(ctx, userUUID, deviceID)
	return args.Error(0)
}

func (m *MockSessionStore) DeleteAllSessions(ctx context.Context, userUUID string) (int, error) {
	args := m.Called(ctx, userUUID)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionStore) Revoke(ctx context.Context, jti, userUUID, deviceID, reason string, ttl time.Duration) error {
	args := m.Called(ctx, jti, userUUID, deviceID, reason, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

// ===== HELPERS =====

func newTestAuthService() (*service.AuthenticationService, *MockUserRepository, *MockDeviceRepository, *MockLoginHistoryRepository, *MockJWTService, *MockSessionStore) {
	mockUserRepo := new(MockUserRepository)
	mockDeviceRepo := new(MockDeviceRepository)
	mockHistoryRepo := new(MockLoginHistoryRepository)
	mockJWTService := new(MockJWTService)
	mockSessionStore := new(MockSessionStore)

	svc := service.NewAuthenticationService(
		mockUserRepo,
		mockDeviceRepo,
		mockHistoryRepo,
		mockJWTService,
		mockSessionStore,
		"",
	)

	return svc, mockUserRepo, mockDeviceRepo, mockHistoryRepo, mockJWTService, mockSessionStore
}

func testDevice() model.DeviceMetadata {
	return model.DeviceMetadata{
		DeviceID:   "device-1",
		DeviceName: "iPhone 15",
		OSType:     "iOS",
		OSVersion:  "17.2",
		AppVersion: "1.4.0",
		IPAddress:  "10.0.0.5",
	}
}

func refreshClaims(userUUID, jti, deviceID string) *security.RefreshClaims {
	return &security.RefreshClaims{
		DeviceID:  deviceID,
		TokenType: security.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUUID,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

// ===== TESTS: Login =====

// 1. Пользователь не найден — та же ошибка, что и при неверном пароле
func TestLogin_UserNotFound(t *testing.T) {
	svc, mockUserRepo, _, mockHistoryRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	mockUserRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)
	mockHistoryRepo.On("Create", ctx, mock.Anything).Return(nil)

	_, _, err := svc.Login(ctx, "ghost@example.com", "pass123!a", testDevice(), "agent")

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	mockUserRepo.AssertExpectations(t)
}

// 2. Неверный пароль
func TestLogin_WrongPassword(t *testing.T) {
	svc, mockUserRepo, _, mockHistoryRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	hash, _ := security.HashPassword("goodpass1!")
	user := &model.User{UUID: "u1", Email: "test@example.com", PasswordHash: hash, Status: model.UserStatusActive}

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)
	mockHistoryRepo.On("Create", ctx, mock.Anything).Return(nil)

	_, _, err := svc.Login(ctx, "test@example.com", "badpass1!", testDevice(), "agent")

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	mockUserRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

// 3. Заблокированный и удалённый аккаунты отклоняются после проверки пароля
func TestLogin_AccountStatusGates(t *testing.T) {
	hash, _ := security.HashPassword("goodpass1!")

	cases := []struct {
		status  string
		wantErr error
	}{
		{model.UserStatusInactive, apperror.ErrAccountSuspended},
		{model.UserStatusWithdrawn, apperror.ErrAccountWithdrawn},
	}

	for _, tc := range cases {
		svc, mockUserRepo, _, _, _, _ := newTestAuthService()
		ctx := context.Background()

		user := &model.User{UUID: "u1", Email: "test@example.com", PasswordHash: hash, Status: tc.status}
		mockUserRepo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)

		_, _, err := svc.Login(ctx, "test@example.com", "goodpass1!", testDevice(), "agent")

		assert.ErrorIs(t, err, tc.wantErr)
	}
}

// 4. Успешный логин: устройство зарегистрировано, сессия сохранена
func TestLogin_Success(t *testing.T) {
	svc, mockUserRepo, mockDeviceRepo, mockHistoryRepo, mockJWTService, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	device := testDevice()

	hash, _ := security.HashPassword("goodpass1!")
	user := &model.User{UUID: "u1", Email: "test@example.com", PasswordHash: hash, Status: model.UserStatusActive}
	tokens := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}
	refreshExp := time.Now().Add(24 * time.Hour)

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)
	mockDeviceRepo.On("UpsertDevice", ctx, "u1", device).Return(&model.UserDevice{DeviceID: device.DeviceID}, nil)
	mockUserRepo.On("UpdateLastLogin", ctx, "u1").Return(nil)
	mockJWTService.On("GenerateTokensPair", user, device.DeviceID).Return(tokens, "jti-1", refreshExp, nil)
	mockSessionStore.On("PutSession", ctx, "u1", device.DeviceID, mock.Anything, refreshExp).Return(nil)
	mockHistoryRepo.On("Create", ctx, mock.Anything).Return(nil)

	got, gotUser, err := svc.Login(ctx, "test@example.com", "goodpass1!", device, "agent")

	assert.NoError(t, err)
	assert.Equal(t, tokens, got)
	assert.Equal(t, user, gotUser)
	mockSessionStore.AssertExpectations(t)
	mockDeviceRepo.AssertExpectations(t)
}

// 5. Ошибка сохранения сессии — логин не считается успешным
func TestLogin_PutSessionError(t *testing.T) {
	svc, mockUserRepo, mockDeviceRepo, _, mockJWTService, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	device := testDevice()

	hash, _ := security.HashPassword("goodpass1!")
	user := &model.User{UUID: "u1", Email: "test@example.com", PasswordHash: hash, Status: model.UserStatusActive}
	refreshExp := time.Now().Add(24 * time.Hour)

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)
	mockDeviceRepo.On("UpsertDevice", ctx, "u1", device).Return(&model.UserDevice{DeviceID: device.DeviceID}, nil)
	mockUserRepo.On("UpdateLastLogin", ctx, "u1").Return(nil)
	mockJWTService.On("GenerateTokensPair", user, device.DeviceID).
		Return(&model.TokensPair{}, "jti-1", refreshExp, nil)
	mockSessionStore.On("PutSession", ctx, "u1", device.DeviceID, mock.Anything, refreshExp).
		Return(errors.New("redis down"))

	tokens, _, err := svc.Login(ctx, "test@example.com", "goodpass1!", device, "agent")

	assert.Error(t, err)
	assert.Nil(t, tokens)
}

// ===== TESTS: Signup =====

// 6. Слабый пароль отклоняется до обращения к БД
func TestSignup_WeakPassword(t *testing.T) {
	svc, mockUserRepo, _, _, _, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), "new@example.com", "short", "Иван", nil, false)

	assert.ErrorIs(t, err, apperror.ErrInvalidPasswordFormat)
	mockUserRepo.AssertNotCalled(t, "EmailExists", mock.Anything, mock.Anything)
}

// 7. Email уже занят
func TestSignup_EmailTaken(t *testing.T) {
	svc, mockUserRepo, _, _, _, _ := newTestAuthService()
	ctx := context.Background()

	mockUserRepo.On("EmailExists", ctx, "taken@example.com").Return(true, nil)

	_, err := svc.Signup(ctx, "taken@example.com", "goodpass1!", "Иван", nil, false)

	assert.ErrorIs(t, err, apperror.ErrEmailAlreadyExists)
	mockUserRepo.AssertExpectations(t)
}

// 8. Успешная регистрация
func TestSignup_Success(t *testing.T) {
	svc, mockUserRepo, _, _, _, _ := newTestAuthService()
	ctx := context.Background()

	mockUserRepo.On("EmailExists", ctx, "new@example.com").Return(false, nil)
	mockUserRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "new@example.com" && u.Status == model.UserStatusActive && u.PasswordHash != ""
	})).Return(&model.User{UUID: "u-new", Email: "new@example.com"}, nil)

	created, err := svc.Signup(ctx, "new@example.com", "goodpass1!", "Иван", nil, true)

	assert.NoError(t, err)
	assert.Equal(t, "u-new", created.UUID)
	mockUserRepo.AssertExpectations(t)
}

// ===== TESTS: RefreshTokens =====

// 9. Невалидный refresh-токен
func TestRefreshTokens_InvalidToken(t *testing.T) {
	svc, _, _, _, mockJWTService, _ := newTestAuthService()

	mockJWTService.On("ParseRefreshToken", "bad").Return(nil, apperror.ErrInvalidRefresh)

	_, err := svc.RefreshTokens(context.Background(), "bad", testDevice())

	assert.ErrorIs(t, err, apperror.ErrInvalidRefresh)
}

// 10. Токен предъявлен с чужого устройства
func TestRefreshTokens_DeviceMismatch(t *testing.T) {
	svc, _, _, _, mockJWTService, mockSessionStore := newTestAuthService()

	mockJWTService.On("ParseRefreshToken", "ref").Return(refreshClaims("u1", "jti-1", "other-device"), nil)

	_, err := svc.RefreshTokens(context.Background(), "ref", testDevice())

	assert.ErrorIs(t, err, apperror.ErrInvalidRefresh)
	mockSessionStore.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything, mock.Anything)
}

// 11. Сессии нет в хранилище (истекла или отозвана)
func TestRefreshTokens_SessionGone(t *testing.T) {
	svc, _, _, _, mockJWTService, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	device := testDevice()

	mockJWTService.On("ParseRefreshToken", "ref").Return(refreshClaims("u1", "jti-1", device.DeviceID), nil)
	mockSessionStore.On("GetSession", ctx, "u1", device.DeviceID).Return(nil, nil)

	_, err := svc.RefreshTokens(ctx, "ref", device)

	assert.ErrorIs(t, err, apperror.ErrInvalidRefresh)
}

// 12. Повторное использование погашенного токена: сессия удаляется целиком
func TestRefreshTokens_ReuseDeletesSession(t *testing.T) {
	svc, _, _, _, mockJWTService, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	device := testDevice()

	stored := &model.SessionRecord{TokenID: "jti-current", UserUUID: "u1", DeviceID: device.DeviceID}

	mockJWTService.On("ParseRefreshToken", "ref").Return(refreshClaims("u1", "jti-old", device.DeviceID), nil)
	mockSessionStore.On("GetSession", ctx, "u1", device.DeviceID).Return(stored, nil)
	mockSessionStore.On("DeleteSession", ctx, "u1", device.DeviceID).Return(nil)

	_, err := svc.RefreshTokens(ctx, "ref", device)

	assert.ErrorIs(t, err, apperror.ErrInvalidRefresh)
	mockSessionStore.AssertCalled(t, "DeleteSession", ctx, "u1", device.DeviceID)
}

// 13. Пользователь удалён между выдачей и ротацией
func TestRefreshTokens_UserGone(t *testing.T) {
	svc, mockUserRepo, _, _, mockJWTService, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	device := testDevice()

	stored := &model.SessionRecord{TokenID: "jti-1", UserUUID: "u1", DeviceID: device.DeviceID}

	mockJWTService.On("ParseRefreshToken", "ref").Return(refreshClaims("u1", "jti-1", device.DeviceID), nil)
	mockSessionStore.On("GetSession", ctx, "u1", device.DeviceID).Return(stored, nil)
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(nil, nil)

	_, err := svc.RefreshTokens(ctx, "ref", device)

	assert.ErrorIs(t, err, apperror.ErrInvalidRefresh)
}

// 14. Успешная ротация
func TestRefreshTokens_Success(t *testing.T) {
	svc, mockUserRepo, _, _, mockJWTService, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	device := testDevice()

	user := &model.User{UUID: "u1", Email: "test@example.com", Status: model.UserStatusActive}
	stored := &model.SessionRecord{TokenID: "jti-1", UserUUID: "u1", DeviceID: device.DeviceID}
	newTokens := &model.TokensPair{AccessToken: "acc2", RefreshToken: "ref2"}
	newExp := time.Now().Add(24 * time.Hour)

	mockJWTService.On("ParseRefreshToken", "ref").Return(refreshClaims("u1", "jti-1", device.DeviceID), nil)
	mockSessionStore.On("GetSession", ctx, "u1", device.DeviceID).Return(stored, nil)
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(user, nil)
	mockJWTService.On("GenerateTokensPair", user, device.DeviceID).Return(newTokens, "jti-2", newExp, nil)
	mockSessionStore.On("RotateSession", ctx, "u1", device.DeviceID, "jti-1", mock.Anything, newExp).Return(true, nil)

	got, err := svc.RefreshTokens(ctx, "ref", device)

	assert.NoError(t, err)
	assert.Equal(t, newTokens, got)
	mockSessionStore.AssertExpectations(t)
}

// 15. Конкурентный refresh перезаписал сессию первым
func TestRefreshTokens_ConcurrentRotation(t *testing.T) {
	svc, mockUserRepo, _, _, mockJWTService, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	device := testDevice()

	user := &model.User{UUID: "u1", Status: model.UserStatusActive}
	stored := &model.SessionRecord{TokenID: "jti-1", UserUUID: "u1", DeviceID: device.DeviceID}
	newExp := time.Now().Add(24 * time.Hour)

	mockJWTService.On("ParseRefreshToken", "ref").Return(refreshClaims("u1", "jti-1", device.DeviceID), nil)
	mockSessionStore.On("GetSession", ctx, "u1", device.DeviceID).Return(stored, nil)
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(user, nil)
	mockJWTService.On("GenerateTokensPair", user, device.DeviceID).
		Return(&model.TokensPair{}, "jti-2", newExp, nil)
	mockSessionStore.On("RotateSession", ctx, "u1", device.DeviceID, "jti-1", mock.Anything, newExp).Return(false, nil)

	_, err := svc.RefreshTokens(ctx, "ref", device)

	assert.ErrorIs(t, err, apperror.ErrInvalidRefresh)
}

// ===== TESTS: Logout =====

// 16. Logout отзывает access-токен и удаляет сессию устройства
func TestLogout(t *testing.T) {
	svc, _, mockDeviceRepo, _, _, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	exp := time.Now().Add(10 * time.Minute)

	mockSessionStore.On("Revoke", ctx, "jti-acc", "u1", "device-1", "logout", mock.Anything).Return(nil)
	mockSessionStore.On("DeleteSession", ctx, "u1", "device-1").Return(nil)
	mockDeviceRepo.On("DeactivateDevice", ctx, "u1", "device-1").Return(true, nil)

	err := svc.Logout(ctx, "u1", "device-1", "jti-acc", exp)

	assert.NoError(t, err)
	mockSessionStore.AssertExpectations(t)
	mockDeviceRepo.AssertExpectations(t)
}

// 17. LogoutAll возвращает количество реально удалённых сессий
func TestLogoutAll(t *testing.T) {
	svc, _, mockDeviceRepo, _, _, mockSessionStore := newTestAuthService()
	ctx := context.Background()
	exp := time.Now().Add(10 * time.Minute)

	mockSessionStore.On("Revoke", ctx, "jti-acc", "u1", "all", "logout_all", mock.Anything).Return(nil)
	mockSessionStore.On("DeleteAllSessions", ctx, "u1").Return(3, nil)
	mockDeviceRepo.On("DeactivateAllDevices", ctx, "u1").Return(5, nil)

	count, err := svc.LogoutAll(ctx, "u1", "jti-acc", exp)

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	mockSessionStore.AssertExpectations(t)
}
