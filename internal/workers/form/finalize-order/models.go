// internal/workers/form/finalize-order/models.go
package finalizeorder

import "grundbuch-workers/internal/models"

type Input struct {
	SessionID string            `json:"sessionId"`
	Final     models.FinalInput `json:"final"`
}

type Output struct {
	OrderID        string   `json:"orderId"`
	Status         string   `json:"status"`
	PaymentMethod  string   `json:"paymentMethod"`
	TotalCents     int64    `json:"totalCents"`
	TotalFormatted string   `json:"totalFormatted"`
	DocumentNames  []string `json:"documentNames"`
	CreatedAt      string   `json:"createdAt"` // ISO 8601
}
