package security

import (
	"context"
	"net/http"
	"strings"
	"time"

	"auth-session-server/internal/apperror"
	"auth-session-server/internal/util"
)

type contextKey string

const (
	UserContextKey contextKey = "user"

	DeviceIDHeader   = "X-Device-Id"
	DeviceNameHeader = "X-Device-Name"
	OSTypeHeader     = "X-OS-Type"
	OSVersionHeader  = "X-OS-Version"
	AppVersionHeader = "X-App-Version"
)

// CurrentUser : аутентифицированный контекст запроса, построенный из
// проверенного access-токена. TokenJTI и TokenExp нужны logout для
// вычисления TTL записи чёрного списка.
type CurrentUser struct {
	UserUUID string
	Email    string
	Name     string
	DeviceID string
	TokenJTI string
	TokenExp time.Time
}

// RevocationChecker : единственная операция хранилища, нужная на пути
// проверки запроса.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AccessTokenParser interface {
	ParseAccessToken(tokenStr string) (*AccessClaims, error)
}

// JWTMiddleware : пер-запросный шлюз. Требует bearer access-токен и
// заголовок X-Device-Id, проверяет привязку токена к устройству и
// чёрный список, после чего кладёт CurrentUser в контекст запроса.
func JWTMiddleware(parser AccessTokenParser, revocations RevocationChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorizationHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				util.HandleAppError(w, apperror.ErrInvalidToken)
				return
			}
			token := strings.TrimPrefix(authorizationHeader, "Bearer ")

			// Отсутствие идентификатора устройства — ошибка клиента,
			// а не аутентификации.
			deviceID := r.Header.Get(DeviceIDHeader)
			if deviceID == "" {
				util.HandleAppError(w, apperror.ErrDeviceRequired)
				return
			}

			claims, err := parser.ParseAccessToken(token)
			if err != nil {
				util.HandleAppError(w, err)
				return
			}

			if claims.DeviceID != deviceID {
				util.HandleAppError(w, apperror.ErrDeviceMismatch)
				return
			}

			revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				util.HandleAppError(w, err)
				return
			}
			if revoked {
				util.HandleAppError(w, apperror.ErrTokenRevoked)
				return
			}

			currentUser := &CurrentUser{
				UserUUID: claims.Subject,
				Email:    claims.Email,
				Name:     claims.Name,
				DeviceID: claims.DeviceID,
				TokenJTI: claims.ID,
				TokenExp: claims.ExpiresAt.Time,
			}

			req := r.WithContext(context.WithValue(r.Context(), UserContextKey, currentUser))
			next.ServeHTTP(w, req)
		})
	}
}

func GetCurrentUserFromContext(ctx context.Context) (*CurrentUser, error) {
	currentUser, ok := ctx.Value(UserContextKey).(*CurrentUser)
	if !ok || currentUser == nil {
		return nil, apperror.ErrInvalidToken
	}
	return currentUser, nil
}

// DeviceMetadataFromRequest собирает метаданные устройства из заголовков
func DeviceMetadataFromRequest(r *http.Request) (deviceID, deviceName, osType, osVersion, appVersion string) {
	return r.Header.Get(DeviceIDHeader),
		r.Header.Get(DeviceNameHeader),
		r.Header.Get(OSTypeHeader),
		r.Header.Get(OSVersionHeader),
		r.Header.Get(AppVersionHeader)
}
