package service

import (
	"regexp"
	"unicode"

	"auth-session-server/internal/apperror"
)

var phoneNumberPattern = regexp.MustCompile(`^01[016789]\d{7,8}$`)

// validatePassword проверяет минимальную стойкость пароля:
// не короче 8 символов, хотя бы одна буква, цифра и специальный символ.
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperror.ErrInvalidPasswordFormat
	}

	var letterCount, digitCount, specialCount int
	for _, c := range password {
		switch {
		case unicode.IsLetter(c):
			letterCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if letterCount == 0 || digitCount == 0 || specialCount == 0 {
		return apperror.ErrInvalidPasswordFormat
	}

	return nil
}

func validatePhoneNumber(phoneNumber *string) error {
	if phoneNumber == nil || *phoneNumber == "" {
		return nil
	}
	if !phoneNumberPattern.MatchString(*phoneNumber) {
		return apperror.ErrInvalidPhoneNumber
	}
	return nil
}
