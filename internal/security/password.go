package security

import (
	"golang.org/x/crypto/bcrypt"
)

// DummyPasswordHash : заранее посчитанный bcrypt-хэш. Используется при входе
// по несуществующему email, чтобы проверка пароля занимала одинаковое время
// независимо от того, найден пользователь или нет.
const DummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
