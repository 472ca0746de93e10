// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"grundbuch-workers/internal/common/aws"
	"grundbuch-workers/internal/common/camunda"
	"grundbuch-workers/internal/common/config"
	"grundbuch-workers/internal/common/database"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/common/observability"
	"grundbuch-workers/internal/integration/payment"
	"grundbuch-workers/internal/integration/postcode"
	"grundbuch-workers/internal/search"
	"grundbuch-workers/internal/storage/orders"
	"grundbuch-workers/internal/storage/sessions"

	// Form Workers (6)
	fo "grundbuch-workers/internal/workers/form/finalize-order"
	lc "grundbuch-workers/internal/workers/form/lookup-city"
	sa "grundbuch-workers/internal/workers/form/submit-applicant"
	sd "grundbuch-workers/internal/workers/form/submit-details"
	sp "grundbuch-workers/internal/workers/form/submit-property"
	td "grundbuch-workers/internal/workers/form/toggle-document"

	// Checkout Workers (3)
	cp "grundbuch-workers/internal/workers/checkout/capture-payment"
	ix "grundbuch-workers/internal/workers/checkout/index-order"
	sc "grundbuch-workers/internal/workers/checkout/send-confirmation"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	tracing, err := observability.NewTracing("worker-manager", cfg.Tracing.CollectorURL)
	if err != nil {
		zapLog.Fatal("tracing setup failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared Stores ---
	sessionStore := sessions.NewStore(
		redis.Client,
		cfg.Session.KeyPrefix,
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		log,
	)
	orderStore := orders.NewStore(pg.DB, log)
	orderIndexer := search.NewOrderIndexer(esClient.Client, cfg.Database.Elasticsearch.OrderIndex, log)
	if err := orderIndexer.EnsureIndex(ctx); err != nil {
		zapLog.Warn("order index setup failed", zap.Error(err))
	}

	// --- Init External Service Clients ---
	cityResolver := postcode.NewClient(
		cfg.Postcode.BaseURL,
		cfg.Postcode.CountryCode,
		config.GetDuration(cfg.Postcode.Timeout),
	)

	paymentClient := payment.NewClient(payment.Config{
		BaseURL:   cfg.Payment.BaseURL,
		SecretKey: cfg.Payment.SecretKey,
		Timeout:   config.GetDuration(cfg.Payment.Timeout),
	})

	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	// --- START: Register ALL 9 Workers ---

	// --- 1. Form Workers (6) ---
	if cfg.Workers[sp.TaskType].Enabled {
		handler := sp.NewHandler(
			&sp.Config{
				Timeout: time.Duration(cfg.Workers[sp.TaskType].Timeout) * time.Millisecond,
			},
			sessionStore, log,
		)
		startWorker(zeebeClient, sp.TaskType, cfg.Workers[sp.TaskType], handler, zapLog)
	}

	if cfg.Workers[lc.TaskType].Enabled {
		handler := lc.NewHandler(
			&lc.Config{
				Timeout: time.Duration(cfg.Workers[lc.TaskType].Timeout) * time.Millisecond,
			},
			sessionStore, cityResolver, log,
		)
		startWorker(zeebeClient, lc.TaskType, cfg.Workers[lc.TaskType], handler, zapLog)
	}

	if cfg.Workers[td.TaskType].Enabled {
		handler := td.NewHandler(
			&td.Config{
				Timeout: time.Duration(cfg.Workers[td.TaskType].Timeout) * time.Millisecond,
			},
			sessionStore, log,
		)
		startWorker(zeebeClient, td.TaskType, cfg.Workers[td.TaskType], handler, zapLog)
	}

	if cfg.Workers[sd.TaskType].Enabled {
		handler := sd.NewHandler(
			&sd.Config{
				Timeout: time.Duration(cfg.Workers[sd.TaskType].Timeout) * time.Millisecond,
			},
			sessionStore, log,
		)
		startWorker(zeebeClient, sd.TaskType, cfg.Workers[sd.TaskType], handler, zapLog)
	}

	if cfg.Workers[sa.TaskType].Enabled {
		handler := sa.NewHandler(
			&sa.Config{
				Timeout: time.Duration(cfg.Workers[sa.TaskType].Timeout) * time.Millisecond,
			},
			sessionStore, log,
		)
		startWorker(zeebeClient, sa.TaskType, cfg.Workers[sa.TaskType], handler, zapLog)
	}

	if cfg.Workers[fo.TaskType].Enabled {
		handler := fo.NewHandler(
			&fo.Config{
				Timeout: time.Duration(cfg.Workers[fo.TaskType].Timeout) * time.Millisecond,
			},
			sessionStore, orderStore, log,
		)
		startWorker(zeebeClient, fo.TaskType, cfg.Workers[fo.TaskType], handler, zapLog)
	}

	// --- 2. Checkout Workers (3) ---
	if cfg.Workers[cp.TaskType].Enabled {
		handler := cp.NewHandler(
			&cp.Config{
				Timeout: time.Duration(cfg.Workers[cp.TaskType].Timeout) * time.Millisecond,
			},
			orderStore, paymentClient, log,
		)
		startWorker(zeebeClient, cp.TaskType, cfg.Workers[cp.TaskType], handler, zapLog)
	}

	if cfg.Workers[sc.TaskType].Enabled {
		handler := sc.NewHandler(
			&sc.Config{
				Timeout:      time.Duration(cfg.Workers[sc.TaskType].Timeout) * time.Millisecond,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
			},
			orderStore, sesClient, snsClient, log,
		)
		startWorker(zeebeClient, sc.TaskType, cfg.Workers[sc.TaskType], handler, zapLog)
	}

	if cfg.Workers[ix.TaskType].Enabled {
		handler := ix.NewHandler(
			&ix.Config{
				Timeout: time.Duration(cfg.Workers[ix.TaskType].Timeout) * time.Millisecond,
			},
			orderStore, orderIndexer, log,
		)
		startWorker(zeebeClient, ix.TaskType, cfg.Workers[ix.TaskType], handler, zapLog)
	}
	zapLog.Info("All 9 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range activeWorkers {
		w.Stop()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// activeWorkers collects opened workers so shutdown can close them before
// the shared Zeebe client.
var activeWorkers []*camunda.CamundaWorker

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	activeWorkers = append(activeWorkers, camunda.NewWorker(client, taskType, wcfg, handler, log))
}
