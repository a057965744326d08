package service

import "log"

// События безопасности пишутся в лог с машиночитаемым префиксом.
// Подозрительная активность дополнительно уходит на webhook (см.
// authentication_service). Запись события никогда не влияет на результат
// операции.

func logLoginSuccess(userUUID, deviceID, ipAddress string) {
	log.Printf("LOGIN_SUCCESS user_id=%s device_id=%s client_ip=%s", userUUID, deviceID, ipAddress)
}

func logLoginFailure(email, deviceID, ipAddress, reason string) {
	log.Printf("LOGIN_FAILURE email=%s device_id=%s client_ip=%s reason=%s", email, deviceID, ipAddress, reason)
}

func logLogout(userUUID, deviceID, logoutType string) {
	log.Printf("LOGOUT user_id=%s device_id=%s logout_type=%s", userUUID, deviceID, logoutType)
}

func logTokenRefresh(userUUID, deviceID string) {
	log.Printf("TOKEN_REFRESH user_id=%s device_id=%s", userUUID, deviceID)
}

func logSuspiciousActivity(userUUID, deviceID, ipAddress, activity string) {
	log.Printf("SUSPICIOUS_ACTIVITY user_id=%s device_id=%s client_ip=%s activity=%s", userUUID, deviceID, ipAddress, activity)
}
