// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grundbuch-workers/internal/common/config"
	"grundbuch-workers/internal/common/database"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/integration/payment"
	"grundbuch-workers/internal/integration/postcode"
	"grundbuch-workers/internal/models"
	"grundbuch-workers/internal/search"
	"grundbuch-workers/internal/storage/orders"
	"grundbuch-workers/internal/storage/sessions"

	capturepayment "grundbuch-workers/internal/workers/checkout/capture-payment"
	indexorder "grundbuch-workers/internal/workers/checkout/index-order"
	finalizeorder "grundbuch-workers/internal/workers/form/finalize-order"
	lookupcity "grundbuch-workers/internal/workers/form/lookup-city"
	submitapplicant "grundbuch-workers/internal/workers/form/submit-applicant"
	submitdetails "grundbuch-workers/internal/workers/form/submit-details"
	submitproperty "grundbuch-workers/internal/workers/form/submit-property"
	toggledocument "grundbuch-workers/internal/workers/form/toggle-document"
)

// The full flow needs live Postgres, Redis, Elasticsearch and a Zeebe
// broker. Set E2E=1 and run against docker-compose.
func requireE2E(t *testing.T) {
	t.Helper()
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 to run against live services")
	}
}

func TestFullFormFlow(t *testing.T) {
	requireE2E(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.NewTestLogger(t)

	// --- Connectivity ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "Elasticsearch client creation failed")
	require.NoError(t, esClient.Ping(), "Elasticsearch ping failed")

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	})
	require.NoError(t, err, "Zeebe client creation failed")
	defer zeebeClient.Close()
	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	require.NoError(t, err, "Zeebe topology request failed")

	createTables(t, ctx, pg)

	// --- Shared stores ---
	sessionStore := sessions.NewStore(
		rdb.Client,
		cfg.Session.KeyPrefix,
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		log,
	)
	orderStore := orders.NewStore(pg.DB, log)
	indexer := search.NewOrderIndexer(esClient.Client, cfg.Database.Elasticsearch.OrderIndex, log)
	resolver := postcode.NewClient(cfg.Postcode.BaseURL, cfg.Postcode.CountryCode, config.GetDuration(cfg.Postcode.Timeout))
	charger := payment.NewClient(payment.Config{
		BaseURL:   cfg.Payment.BaseURL,
		SecretKey: cfg.Payment.SecretKey,
		Timeout:   config.GetDuration(cfg.Payment.Timeout),
	})

	sessionID := uuid.New().String()

	// --- Step 1: property ---
	spHandler := submitproperty.NewHandler(&submitproperty.Config{Timeout: 10 * time.Second}, sessionStore, log)
	spOut, err := spHandler.Execute(ctx, &submitproperty.Input{
		SessionID: sessionID,
		Property: models.PropertyInput{
			Street:      "Unter den Linden",
			HouseNumber: "1",
			PostalCode:  "10117",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.StepDocuments), spOut.Step)

	// Async city lookup against the real service.
	lcHandler := lookupcity.NewHandler(&lookupcity.Config{Timeout: 5 * time.Second}, sessionStore, resolver, log)
	lcOut, err := lcHandler.Execute(ctx, &lookupcity.Input{
		SessionID:     sessionID,
		PostalCode:    "10117",
		LookupVersion: spOut.LookupVersion,
	})
	require.NoError(t, err)
	if lcOut.Applied {
		assert.NotEmpty(t, lcOut.City)
	}

	// --- Step 2: document selection ---
	tdHandler := toggledocument.NewHandler(&toggledocument.Config{Timeout: 5 * time.Second}, sessionStore, log)
	tdOut, err := tdHandler.Execute(ctx, &toggledocument.Input{
		SessionID:  sessionID,
		DocumentID: "baulasten",
	})
	require.NoError(t, err)
	assert.True(t, tdOut.Selected)
	assert.Len(t, tdOut.DocumentIDs, 3)

	sdHandler := submitdetails.NewHandler(&submitdetails.Config{Timeout: 10 * time.Second}, sessionStore, log)
	_, err = sdHandler.Execute(ctx, &submitdetails.Input{
		SessionID: sessionID,
		Details: models.ApplicationDetails{
			Purpose:       models.PurposeFinanzierung,
			LegalInterest: models.InterestEigentuemer,
		},
	})
	require.NoError(t, err)

	// --- Step 3: applicant ---
	saHandler := submitapplicant.NewHandler(&submitapplicant.Config{Timeout: 10 * time.Second}, sessionStore, log)
	saOut, err := saHandler.Execute(ctx, &submitapplicant.Input{
		SessionID: sessionID,
		Applicant: models.Applicant{
			CustomerType: models.CustomerTypePrivate,
			FirstName:    "Max",
			LastName:     "Mustermann",
			Street:       "Musterweg",
			HouseNumber:  "2a",
			ZipCode:      "10117",
			City:         "Berlin",
			Email:        "max@example.com",
		},
	})
	require.NoError(t, err)
	assert.Empty(t, saOut.FieldErrors)

	// --- Step 4: consents, signature, order ---
	foHandler := finalizeorder.NewHandler(&finalizeorder.Config{Timeout: 15 * time.Second}, sessionStore, orderStore, log)
	foOut, err := foHandler.Execute(ctx, &finalizeorder.Input{
		SessionID: sessionID,
		Final: models.FinalInput{
			TermsAccepted:       true,
			CorrectnessAccepted: true,
			SignatureData:       "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==",
			PaymentMethod:       "bank",
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, foOut.OrderID)
	assert.Equal(t, string(models.OrderStatusPending), foOut.Status)
	assert.Equal(t, int64(8470), foOut.TotalCents)

	// --- Checkout: bank transfer keeps the order pending ---
	cpHandler := capturepayment.NewHandler(&capturepayment.Config{Timeout: 30 * time.Second}, orderStore, charger, log)
	cpOut, err := cpHandler.Execute(ctx, &capturepayment.Input{
		OrderID:       foOut.OrderID,
		PaymentMethod: "bank",
	})
	require.NoError(t, err)
	assert.Contains(t, cpOut.TransferInstructions, foOut.OrderID)

	// --- Checkout: index into Elasticsearch ---
	ixHandler := indexorder.NewHandler(&indexorder.Config{Timeout: 10 * time.Second}, orderStore, indexer, log)
	ixOut, err := ixHandler.Execute(ctx, &indexorder.Input{OrderID: foOut.OrderID})
	require.NoError(t, err)
	assert.True(t, ixOut.Indexed)

	// Replayed finalize must not create a second order.
	_, err = foHandler.Execute(ctx, &finalizeorder.Input{
		SessionID: sessionID,
		Final: models.FinalInput{
			TermsAccepted:       true,
			CorrectnessAccepted: true,
			SignatureData:       "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==",
			PaymentMethod:       "bank",
		},
	})
	require.Error(t, err)
}

func createTables(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	t.Helper()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			session_id TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			phone TEXT,
			company_name TEXT,
			street TEXT NOT NULL,
			house_number TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			city TEXT,
			sheet_number TEXT,
			field_parcel_number TEXT,
			district TEXT,
			selected_documents JSONB NOT NULL,
			certified_grundbuchauszug BOOLEAN NOT NULL DEFAULT FALSE,
			owner_proof_liegenschaftskarte BOOLEAN NOT NULL DEFAULT FALSE,
			document_purpose TEXT,
			legal_interest TEXT,
			signature_data TEXT,
			total_amount BIGINT NOT NULL,
			status TEXT NOT NULL,
			payment_method TEXT,
			payment_id TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id BIGSERIAL PRIMARY KEY,
			event_type TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			details JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		_, err := pg.DB.ExecContext(ctx, stmt)
		require.NoError(t, err, fmt.Sprintf("failed to run: %.40s", stmt))
	}
}
