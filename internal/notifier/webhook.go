package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SuspiciousActivityEvent : уведомление о подозрительной активности
// (попытка refresh с чужого устройства, повторное использование токена)
type SuspiciousActivityEvent struct {
	UserUUID  string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	IPAddress string `json:"ip_address"`
	Activity  string `json:"activity"`
	Timestamp int64  `json:"timestamp"`
}

var client = &http.Client{Timeout: 5 * time.Second}

// NotifySuspiciousActivity отправляет POST-запрос на заданный webhook.
// Вызывается в отдельной горутине: ошибка доставки логируется вызывающей
// стороной и никогда не влияет на результат запроса.
func NotifySuspiciousActivity(url string, event SuspiciousActivityEvent) error {
	if url == "" {
		return nil
	}

	event.Timestamp = time.Now().UTC().Unix()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook вернул статус %d", resp.StatusCode)
	}

	return nil
}
