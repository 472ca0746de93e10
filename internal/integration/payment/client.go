// Package payment talks to the card payment provider. Card details are
// exchanged for a payment-method token; the raw card data never touches
// the order store.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/observability"
)

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// CardDetails is what the checkout form collects for the card method.
type CardDetails struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
	CVC      string `json:"cvc"`
	Holder   string `json:"holder"`
}

// ChargeRequest authorizes a card for the given amount in euro cents.
type ChargeRequest struct {
	AmountCents int64       `json:"amountCents"`
	Currency    string      `json:"currency"`
	Card        CardDetails `json:"card"`
	OrderID     string      `json:"orderId"`
	Description string      `json:"description"`
}

type ChargeResult struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

type providerResponse struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Charge authorizes the card and returns the provider payment ID. A decline
// surfaces the provider's own message verbatim as PAYMENT_DECLINED; transport
// and 5xx failures map to the retryable PAYMENT_PROVIDER_UNAVAILABLE.
func (c *Client) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	ctx, span := observability.StartSpan(ctx, "payment.Charge")
	defer span.End()

	if req.Currency == "" {
		req.Currency = "EUR"
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewPaymentProviderUnavailableError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewPaymentProviderUnavailableError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, errors.NewPaymentProviderUnavailableError(err)
	}
	defer resp.Body.Close()

	var provider providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&provider); err != nil {
		return nil, errors.NewPaymentProviderUnavailableError(err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, errors.NewPaymentProviderUnavailableError(fmt.Errorf("provider returned status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		message := "payment was declined"
		if provider.Error != nil && provider.Error.Message != "" {
			message = provider.Error.Message
		}
		return nil, errors.NewPaymentDeclinedError(message)
	}

	if provider.PaymentID == "" {
		return nil, errors.NewPaymentProviderUnavailableError(fmt.Errorf("provider response missing payment id"))
	}

	return &ChargeResult{
		PaymentID: provider.PaymentID,
		Status:    provider.Status,
	}, nil
}
