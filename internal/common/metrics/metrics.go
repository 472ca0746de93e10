package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	StepSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_step_submissions_total",
			Help: "Total number of accepted wizard step submissions, by step",
		},
		[]string{"step"},
	)

	OrdersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_submitted_total",
			Help: "Total number of orders persisted, by payment method",
		},
		[]string{"payment_method"},
	)

	PaymentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_outcomes_total",
			Help: "Payment capture outcomes, by method and result",
		},
		[]string{"payment_method", "outcome"},
	)

	OrderAmountCents = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_amount_cents",
			Help:    "Distribution of order totals in euro cents",
			Buckets: []float64{1000, 2500, 5000, 10000, 25000, 50000},
		},
	)
)
