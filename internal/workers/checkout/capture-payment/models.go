// internal/workers/checkout/capture-payment/models.go
package capturepayment

import "grundbuch-workers/internal/integration/payment"

type Input struct {
	OrderID       string               `json:"orderId"`
	PaymentMethod string               `json:"paymentMethod"`
	Card          *payment.CardDetails `json:"card,omitempty"`
}

type Output struct {
	OrderID              string `json:"orderId"`
	Status               string `json:"status"`
	PaymentID            string `json:"paymentId,omitempty"`
	TransferInstructions string `json:"transferInstructions,omitempty"`
}
