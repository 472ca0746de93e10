// internal/workers/checkout/send-confirmation/models.go
package sendconfirmation

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

type Input struct {
	OrderID string `json:"orderId"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"orderId"},
		"properties": map[string]interface{}{
			"orderId": map[string]interface{}{"type": "string", "minLength": 1},
		},
	}
}
