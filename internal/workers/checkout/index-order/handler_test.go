package indexorder

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/models"
	"grundbuch-workers/internal/storage/orders"
)

type stubIndexer struct {
	err  error
	seen []*models.Order
}

func (s *stubIndexer) IndexOrder(_ context.Context, order *models.Order) error {
	if s.err != nil {
		return s.err
	}
	s.seen = append(s.seen, order)
	return nil
}

var orderColumns = []string{
	"id", "session_id", "email", "first_name", "last_name", "phone", "company_name",
	"street", "house_number", "postal_code", "city",
	"sheet_number", "field_parcel_number", "district",
	"selected_documents", "certified_grundbuchauszug", "owner_proof_liegenschaftskarte",
	"document_purpose", "legal_interest",
	"signature_data", "total_amount", "status", "payment_method", "payment_id",
	"created_at", "updated_at",
}

func orderRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(orderColumns).AddRow(
		"order-1", "session-1", "max@example.com", "Max", "Mustermann", "", "",
		"Musterstraße", "5", "10115", "Berlin",
		"", "", "",
		[]byte(`[{"id":"grundbuchauszug","name":"Grundbuchauszug","priceCents":2990}]`), false, false,
		"kauf", "kauf",
		"data:image/png;base64,iVBOR", int64(2990), "processing", "card", "pm_123",
		now, now,
	)
}

func newTestHandler(t *testing.T, indexer Indexer) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := orders.NewStore(db, logger.NewTestLogger(t))
	return NewHandler(LoadConfig(), store, indexer, logger.NewTestLogger(t)), mock
}

func TestExecute_IndexesOrder(t *testing.T) {
	indexer := &stubIndexer{}
	handler, mock := newTestHandler(t, indexer)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("order-1").
		WillReturnRows(orderRows())

	output, err := handler.Execute(context.Background(), &Input{OrderID: "order-1"})
	require.NoError(t, err)

	assert.True(t, output.Indexed)
	assert.Equal(t, "order-1", output.OrderID)
	require.Len(t, indexer.seen, 1)
	assert.Equal(t, "order-1", indexer.seen[0].ID)
}

func TestExecute_IndexFailureIsRetryable(t *testing.T) {
	indexer := &stubIndexer{err: errors.NewOrderIndexFailedError("order-1", assert.AnError)}
	handler, mock := newTestHandler(t, indexer)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("order-1").
		WillReturnRows(orderRows())

	_, err := handler.Execute(context.Background(), &Input{OrderID: "order-1"})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeOrderIndexFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestExecute_OrderNotFound(t *testing.T) {
	handler, mock := newTestHandler(t, &stubIndexer{})

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	_, err := handler.Execute(context.Background(), &Input{OrderID: "missing"})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeOrderNotFound, stdErr.Code)
}
