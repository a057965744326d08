package security_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auth-session-server/internal/security"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAccessTokenParser
type MockAccessTokenParser struct {
	mock.Mock
}

func (m *MockAccessTokenParser) ParseAccessToken(tokenStr string) (*security.AccessClaims, error) {
	args := m.Called(tokenStr)
	if c, ok := args.Get(0).(*security.AccessClaims); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRevocationChecker
type MockRevocationChecker struct {
	mock.Mock
}

func (m *MockRevocationChecker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func accessClaims(userUUID, jti, deviceID string) *security.AccessClaims {
	return &security.AccessClaims{
		Email:     "test@example.com",
		Name:      "Иван",
		DeviceID:  deviceID,
		TokenType: security.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUUID,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
}

func runMiddleware(t *testing.T, parser *MockAccessTokenParser, revocations *MockRevocationChecker, setup func(*http.Request)) (*httptest.ResponseRecorder, *security.CurrentUser) {
	t.Helper()

	var captured *security.CurrentUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = security.GetCurrentUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	setup(req)

	rec := httptest.NewRecorder()
	security.JWTMiddleware(parser, revocations)(next).ServeHTTP(rec, req)

	return rec, captured
}

// 1. Запрос без bearer-токена
func TestJWTMiddleware_MissingAuthorization(t *testing.T) {
	rec, _ := runMiddleware(t, new(MockAccessTokenParser), new(MockRevocationChecker), func(r *http.Request) {
		r.Header.Set(security.DeviceIDHeader, "device-1")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 2. Отсутствие X-Device-Id — ошибка клиента, 400
func TestJWTMiddleware_MissingDeviceHeader(t *testing.T) {
	rec, _ := runMiddleware(t, new(MockAccessTokenParser), new(MockRevocationChecker), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer token")
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// 3. Токен выдан другому устройству
func TestJWTMiddleware_DeviceMismatch(t *testing.T) {
	parser := new(MockAccessTokenParser)
	parser.On("ParseAccessToken", "token").Return(accessClaims("u1", "jti-1", "device-1"), nil)

	rec, _ := runMiddleware(t, parser, new(MockRevocationChecker), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer token")
		r.Header.Set(security.DeviceIDHeader, "device-2")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 4. Отозванный токен отклоняется до вызова обработчика
func TestJWTMiddleware_RevokedToken(t *testing.T) {
	parser := new(MockAccessTokenParser)
	parser.On("ParseAccessToken", "token").Return(accessClaims("u1", "jti-1", "device-1"), nil)

	revocations := new(MockRevocationChecker)
	revocations.On("IsRevoked", mock.Anything, "jti-1").Return(true, nil)

	rec, captured := runMiddleware(t, parser, revocations, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer token")
		r.Header.Set(security.DeviceIDHeader, "device-1")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

// 5. Валидный запрос: CurrentUser попадает в контекст обработчика
func TestJWTMiddleware_Success(t *testing.T) {
	parser := new(MockAccessTokenParser)
	parser.On("ParseAccessToken", "token").Return(accessClaims("u1", "jti-1", "device-1"), nil)

	revocations := new(MockRevocationChecker)
	revocations.On("IsRevoked", mock.Anything, "jti-1").Return(false, nil)

	rec, captured := runMiddleware(t, parser, revocations, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer token")
		r.Header.Set(security.DeviceIDHeader, "device-1")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, captured) {
		assert.Equal(t, "u1", captured.UserUUID)
		assert.Equal(t, "device-1", captured.DeviceID)
		assert.Equal(t, "jti-1", captured.TokenJTI)
	}
}
