package security

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"auth-session-server/config"
	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessClaims : полезная нагрузка access-токена. Email и Name дублируются
// из профиля, чтобы нижележащим обработчикам не ходить в БД.
type AccessClaims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	DeviceID  string `json:"device_id"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// RefreshClaims : полезная нагрузка refresh-токена. Без audience:
// refresh-токен погашается тем же сервисом, который его выдал.
type RefreshClaims struct {
	DeviceID  string `json:"device_id"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// JWTService подписывает токены приватным ключом и проверяет публичным,
// поэтому проверяющая сторона не нуждается в доступе к подписи.
// Ключи загружаются один раз при старте процесса.
type JWTService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService читает и валидирует ключевые файлы. Отсутствующий или
// нечитаемый ключ — причина не запускать процесс вовсе.
func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	privatePEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать приватный ключ %s: %w", cfg.PrivateKeyPath, err)
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать приватный ключ: %w", err)
	}

	publicPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать публичный ключ %s: %w", cfg.PublicKeyPath, err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать публичный ключ: %w", err)
	}

	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать access_token_ttl: %w", err)
	}
	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать refresh_token_ttl: %w", err)
	}

	return &JWTService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func NewJWTServiceFromKeys(privateKey *rsa.PrivateKey, issuer, audience string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (service *JWTService) AccessTokenTTL() time.Duration  { return service.accessTTL }
func (service *JWTService) RefreshTokenTTL() time.Duration { return service.refreshTTL }

// GenerateAccessToken выпускает подписанный access-токен с уникальным jti,
// привязанный к устройству deviceID.
func (service *JWTService) GenerateAccessToken(userUUID, email, name, deviceID string) (string, string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(service.accessTTL)
	jti := uuid.New().String()

	claims := AccessClaims{
		Email:     email,
		Name:      name,
		DeviceID:  deviceID,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    service.issuer,
			Subject:   userUUID,
			Audience:  jwt.ClaimStrings{service.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(service.privateKey)
	if err != nil {
		return "", "", time.Time{}, util.LogError("ошибка подписи access токена", err)
	}

	return token, jti, expiresAt, nil
}

// GenerateRefreshToken выпускает подписанный refresh-токен для пары
// (пользователь, устройство). Его jti становится текущим ключом ротации.
func (service *JWTService) GenerateRefreshToken(userUUID, deviceID string) (string, string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(service.refreshTTL)
	jti := uuid.New().String()

	claims := RefreshClaims{
		DeviceID:  deviceID,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    service.issuer,
			Subject:   userUUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(service.privateKey)
	if err != nil {
		return "", "", time.Time{}, util.LogError("ошибка подписи refresh токена", err)
	}

	return token, jti, expiresAt, nil
}

// GenerateTokensPair выпускает access и refresh токены одного поколения.
func (service *JWTService) GenerateTokensPair(user *model.User, deviceID string) (*model.TokensPair, string, time.Time, error) {
	accessToken, _, _, err := service.GenerateAccessToken(user.UUID, user.Email, user.Name, deviceID)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	refreshToken, refreshJTI, refreshExp, err := service.GenerateRefreshToken(user.UUID, deviceID)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, refreshJTI, refreshExp, nil
}

// ParseAccessToken проверяет подпись, издателя, audience и срок действия.
// Просроченный токен и невалидный токен — разные ошибки; refresh-токен,
// предъявленный вместо access, отклоняется по полю type.
func (service *JWTService) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (interface{}, error) {
			return service.publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithAudience(service.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired
		}
		return nil, apperror.ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, apperror.ErrInvalidToken
	}

	return claims, nil
}

// ParseRefreshToken проверяет подпись, издателя и срок действия.
// Audience намеренно не проверяется.
func (service *JWTService) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (interface{}, error) {
			return service.publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(service.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrSessionExpired
		}
		return nil, apperror.ErrInvalidRefresh
	}

	if claims.TokenType != TokenTypeRefresh {
		return nil, apperror.ErrInvalidRefresh
	}

	return claims, nil
}
