// internal/workers/checkout/send-confirmation/handler.go
package sendconfirmation

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
	"grundbuch-workers/internal/models"
	"grundbuch-workers/internal/storage/orders"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "checkout-send-confirmation"
)

// EmailSender and SMSSender match the thin AWS wrappers and keep the
// handler mockable.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config *Config
	orders *orders.Store
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
	errors *errors.ErrorHandler
}

func NewHandler(config *Config, orderStore *orders.Store, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		orders: orderStore,
		email:  email,
		sms:    sms,
		logger: scoped,
		errors: errors.NewErrorHandler(scoped),
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

// execute sends the confirmation. Send failures are reported in the output
// instead of failing the job; the order itself is already safe in Postgres.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	order, err := h.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && order.Email != "" {
		if err := h.sendEmail(ctx, order); err != nil {
			h.logger.Error("confirmation email failed", map[string]interface{}{
				"error":   err,
				"orderId": order.ID,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}, nil
		}
		emailSent = true
	}

	if h.config.SMSEnabled && order.Phone != "" {
		if err := h.sendSMS(ctx, order); err != nil {
			h.logger.Error("confirmation SMS failed", map[string]interface{}{
				"error":   err,
				"orderId": order.ID,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, EmailSent: emailSent, SentAt: sentAt}, nil
		}
		smsSent = true
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		EmailSent:      emailSent,
		SMSSent:        smsSent,
		SentAt:         sentAt,
	}, nil
}

func (h *Handler) sendEmail(ctx context.Context, order *models.Order) error {
	subject := fmt.Sprintf("Ihre Bestellung %s", order.ID)
	body := confirmationBody(order)

	_, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{order.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, order *models.Order) error {
	message := fmt.Sprintf("Ihre Bestellung %s über %s EUR ist eingegangen.", order.ID, order.FormatTotal())
	_, err := h.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(order.Phone),
		Message:     aws.String(message),
	})
	return err
}

func confirmationBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Guten Tag %s %s,\n\n", order.FirstName, order.LastName)
	b.WriteString("vielen Dank für Ihre Bestellung. Folgende Dokumente wurden beantragt:\n\n")
	for _, doc := range order.SelectedDocuments {
		fmt.Fprintf(&b, "- %s (%s EUR)\n", doc.Name, doc.FormatPrice())
	}
	fmt.Fprintf(&b, "\nGesamtbetrag: %s EUR\n", order.FormatTotal())
	fmt.Fprintf(&b, "Bestellnummer: %s\n", order.ID)
	return b.String()
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
