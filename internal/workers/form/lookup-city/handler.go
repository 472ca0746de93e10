// internal/workers/form/lookup-city/handler.go
package lookupcity

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
	"grundbuch-workers/internal/storage/sessions"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "form-lookup-city"
)

// CityResolver is the postcode lookup client.
type CityResolver interface {
	LookupCity(ctx context.Context, plz string) (string, error)
}

type Handler struct {
	config   *Config
	sessions *sessions.Store
	resolver CityResolver
	logger   logger.Logger
	errors   *errors.ErrorHandler
}

func NewHandler(config *Config, store *sessions.Store, resolver CityResolver, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: store,
		resolver: resolver,
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

// execute resolves the city and writes it back only when the session still
// carries the same postal code and lookup version. Lookup failures are
// swallowed; the city is enrichment and never blocks progression.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	city, err := h.resolver.LookupCity(ctx, input.PostalCode)
	if err != nil {
		h.logger.Warn("postcode lookup failed", map[string]interface{}{
			"postalCode": input.PostalCode,
			"error":      err,
		})
		return &Output{Applied: false}, nil
	}

	session, err := h.sessions.Get(ctx, input.SessionID)
	if err != nil {
		stdErr, ok := err.(*errors.StandardError)
		if ok && stdErr.Code == errors.ErrCodeSessionNotFound {
			return &Output{City: city, Applied: false}, nil
		}
		return nil, err
	}

	if !wizard.ApplyCityLookup(session, input.PostalCode, city, input.LookupVersion) {
		h.logger.Info("stale lookup response dropped", map[string]interface{}{
			"sessionId":  input.SessionID,
			"postalCode": input.PostalCode,
		})
		return &Output{City: city, Applied: false}, nil
	}

	if err := h.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &Output{City: city, Applied: true}, nil
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
