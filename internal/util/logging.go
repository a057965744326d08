package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"auth-session-server/internal/apperror"
)

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

// HandleAppError отдает ошибку бизнес-уровня со стабильным кодом.
// Инфраструктурные ошибки наружу не раскрываются: в ответ уходит общий 500.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		log.Printf("инфраструктурная ошибка: %v", err)
		HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)

	resp := struct {
		Error *apperror.AppError `json:"error"`
	}{appErr}

	json.NewEncoder(w).Encode(resp)
}
