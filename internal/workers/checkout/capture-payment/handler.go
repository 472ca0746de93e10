// internal/workers/checkout/capture-payment/handler.go
package capturepayment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/common/metrics"
	"grundbuch-workers/internal/common/validation"
	"grundbuch-workers/internal/integration/payment"
	"grundbuch-workers/internal/models"
	"grundbuch-workers/internal/storage/orders"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "checkout-capture-payment"
)

const transferInstructionsTemplate = "Bitte überweisen Sie %s EUR unter Angabe der Bestellnummer %s an das in der Bestellbestätigung genannte Konto. Ihre Unterlagen werden nach Zahlungseingang bearbeitet."

// Charger exchanges card details for a payment-method token.
type Charger interface {
	Charge(ctx context.Context, req *payment.ChargeRequest) (*payment.ChargeResult, error)
}

type Handler struct {
	config  *Config
	orders  *orders.Store
	charger Charger
	logger  logger.Logger
	errors  *errors.ErrorHandler
}

func NewHandler(config *Config, orderStore *orders.Store, charger Charger, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		orders:  orderStore,
		charger: charger,
		logger:  scoped,
		errors:  errors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &payload); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return nil
	}

	if result, err := validation.ValidateAgainstSchema(payload, inputSchema()); err != nil || !result.Valid {
		details := "schema check failed"
		if result != nil {
			details = strings.Join(result.GetErrorMessages(), "; ")
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INVALID_INPUT").Inc()
		h.failJob(client, job, "INVALID_INPUT", details)
		return nil
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errors.CodeOf(err)).Inc()
		h.errors.HandleJobError(ctx, client, job, err)
		return nil
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	order, err := h.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	switch models.PaymentMethod(input.PaymentMethod) {
	case models.PaymentMethodCard:
		return h.captureCard(ctx, order, input.Card)
	case models.PaymentMethodBank:
		// Bank transfer is prepayment: the order stays pending until the
		// transfer arrives.
		metrics.PaymentOutcomes.WithLabelValues("bank", "instructed").Inc()
		return &Output{
			OrderID: order.ID,
			Status:  string(models.OrderStatusPending),
			TransferInstructions: fmt.Sprintf(transferInstructionsTemplate,
				order.FormatTotal(), order.ID),
		}, nil
	case models.PaymentMethodPaypal:
		return nil, errors.NewPaymentMethodNotImplementedError("paypal")
	default:
		return nil, errors.NewPaymentMethodNotImplementedError(input.PaymentMethod)
	}
}

func (h *Handler) captureCard(ctx context.Context, order *models.Order, card *payment.CardDetails) (*Output, error) {
	if card == nil {
		return nil, errors.NewFormValidationFailedError("card details missing for card payment")
	}

	result, err := h.charger.Charge(ctx, &payment.ChargeRequest{
		AmountCents: order.TotalAmountCents,
		Currency:    "EUR",
		Card:        *card,
		OrderID:     order.ID,
		Description: fmt.Sprintf("Grundbuch-Dokumente Bestellung %s", order.ID),
	})
	if err != nil {
		metrics.PaymentOutcomes.WithLabelValues("card", "failed").Inc()
		return nil, err
	}

	if err := h.orders.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing, result.PaymentID); err != nil {
		return nil, err
	}

	metrics.PaymentOutcomes.WithLabelValues("card", "captured").Inc()

	h.logger.Info("payment captured", map[string]interface{}{
		"orderId":   order.ID,
		"paymentId": result.PaymentID,
	})

	return &Output{
		OrderID:   order.ID,
		Status:    string(models.OrderStatusProcessing),
		PaymentID: result.PaymentID,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
