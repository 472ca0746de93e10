// internal/workers/form/finalize-order/handler.go
package finalizeorder

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
	"grundbuch-workers/internal/form/wizard"
	"grundbuch-workers/internal/storage/orders"
	"grundbuch-workers/internal/storage/sessions"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "form-finalize-order"
)

type Handler struct {
	config   *Config
	sessions *sessions.Store
	orders   *orders.Store
	logger   logger.Logger
	errors   *errors.ErrorHandler
}

func NewHandler(config *Config, sessionStore *sessions.Store, orderStore *orders.Store, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessionStore,
		orders:   orderStore,
		logger:   scoped,
		errors:   errors.NewErrorHandler(scoped),
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

// execute turns a completed session into a pending order. A session that
// already produced an order is rejected so a retried job cannot create a
// second row.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	session, err := h.sessions.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if session.OrderID != "" {
		return nil, errors.NewDuplicateOrderError(input.SessionID)
	}

	draft, err := wizard.Finalize(session, input.Final)
	if err != nil {
		return nil, err
	}

	order, err := h.orders.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := h.sessions.Save(ctx, session); err != nil {
		// The order row exists; the session guard is what prevents a
		// duplicate on replay, so a failed save must surface.
		return nil, err
	}

	metrics.OrdersSubmitted.WithLabelValues(string(order.PaymentMethod)).Inc()
	metrics.OrderAmountCents.Observe(float64(order.TotalAmountCents))

	h.logger.Info("order finalized", map[string]interface{}{
		"orderId":    order.ID,
		"sessionId":  session.ID,
		"totalCents": order.TotalAmountCents,
		"documents":  len(order.SelectedDocuments),
	})

	return &Output{
		OrderID:        order.ID,
		Status:         string(order.Status),
		PaymentMethod:  string(order.PaymentMethod),
		TotalCents:     order.TotalAmountCents,
		TotalFormatted: order.FormatTotal(),
		DocumentNames:  order.DocumentNames(),
		CreatedAt:      order.CreatedAt.UTC().Format(time.RFC3339),
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
