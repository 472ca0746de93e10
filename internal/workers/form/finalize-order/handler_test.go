package finalizeorder

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/form/wizard"
	"grundbuch-workers/internal/models"
	"grundbuch-workers/internal/storage/orders"
	"grundbuch-workers/internal/storage/sessions"
)

func newTestStores(t *testing.T) (*sessions.Store, *orders.Store, sqlmock.Sqlmock) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := sessions.NewStore(client, "formsession:", 2*time.Hour, logger.NewTestLogger(t))

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	orderStore := orders.NewStore(db, logger.NewTestLogger(t))

	return sessionStore, orderStore, mock
}

// seedSession walks a fresh session through to the final step.
func seedSession(t *testing.T, store *sessions.Store) *models.FormSession {
	session := wizard.NewSession("")
	_, err := wizard.SubmitProperty(session, models.PropertyInput{
		Street:      "Musterstraße",
		HouseNumber: "5",
		PostalCode:  "10115",
	})
	require.NoError(t, err)
	_, err = wizard.SubmitDetails(session, models.ApplicationDetails{
		Purpose:       models.PurposeKauf,
		LegalInterest: models.InterestKauf,
	})
	require.NoError(t, err)
	_, _, err = wizard.SubmitApplicant(session, models.Applicant{
		CustomerType: models.CustomerTypePrivate,
		FirstName:    "Max",
		LastName:     "Mustermann",
		Street:       "Hauptstraße",
		HouseNumber:  "1",
		ZipCode:      "10115",
		City:         "Berlin",
		Email:        "max@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), session))
	return session
}

func validFinal() models.FinalInput {
	return models.FinalInput{
		TermsAccepted:       true,
		CorrectnessAccepted: true,
		SignatureData:       "data:image/png;base64,iVBOR",
		PaymentMethod:       "card",
	}
}

func TestExecute_CreatesPendingOrder(t *testing.T) {
	sessionStore, orderStore, mock := newTestStores(t)
	session := seedSession(t, sessionStore)
	handler := NewHandler(LoadConfig(), sessionStore, orderStore, logger.NewTestLogger(t))

	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: session.ID,
		Final:     validFinal(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, output.OrderID)
	assert.Equal(t, "pending", output.Status)
	assert.Equal(t, "card", output.PaymentMethod)
	assert.Equal(t, int64(5980), output.TotalCents)
	assert.Equal(t, "59.80", output.TotalFormatted)
	assert.Equal(t, []string{"Grundbuchauszug", "Liegenschaftskarte"}, output.DocumentNames)

	updated, err := sessionStore.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepSubmitted, updated.Step)
	assert.Equal(t, output.OrderID, updated.OrderID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_DuplicateSubmissionRejected(t *testing.T) {
	sessionStore, orderStore, _ := newTestStores(t)
	session := seedSession(t, sessionStore)
	session.OrderID = "existing-order"
	require.NoError(t, sessionStore.Save(context.Background(), session))

	handler := NewHandler(LoadConfig(), sessionStore, orderStore, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		SessionID: session.ID,
		Final:     validFinal(),
	})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDuplicateOrder, stdErr.Code)
}

// A job replay where the session write carrying the order id got lost must
// not insert a second row: the unique session_id constraint turns the
// second insert into DUPLICATE_ORDER.
func TestExecute_ReplayAfterLostSessionSave(t *testing.T) {
	sessionStore, orderStore, mock := newTestStores(t)
	session := seedSession(t, sessionStore)
	handler := NewHandler(LoadConfig(), sessionStore, orderStore, logger.NewTestLogger(t))

	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := handler.Execute(context.Background(), &Input{
		SessionID: session.ID,
		Final:     validFinal(),
	})
	require.NoError(t, err)

	// Roll the stored session back to its pre-finalize state, as if the
	// save after the insert never happened.
	session.OrderID = ""
	require.NoError(t, sessionStore.Save(context.Background(), session))

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_session_id_key"})

	_, err = handler.Execute(context.Background(), &Input{
		SessionID: session.ID,
		Final:     validFinal(),
	})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDuplicateOrder, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_MissingConsent(t *testing.T) {
	sessionStore, orderStore, _ := newTestStores(t)
	session := seedSession(t, sessionStore)
	handler := NewHandler(LoadConfig(), sessionStore, orderStore, logger.NewTestLogger(t))

	final := validFinal()
	final.CorrectnessAccepted = false

	_, err := handler.Execute(context.Background(), &Input{
		SessionID: session.ID,
		Final:     final,
	})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConsentMissing, stdErr.Code)
}

func TestExecute_MissingSignature(t *testing.T) {
	sessionStore, orderStore, _ := newTestStores(t)
	session := seedSession(t, sessionStore)
	handler := NewHandler(LoadConfig(), sessionStore, orderStore, logger.NewTestLogger(t))

	final := validFinal()
	final.SignatureData = "  "

	_, err := handler.Execute(context.Background(), &Input{
		SessionID: session.ID,
		Final:     final,
	})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSignatureMissing, stdErr.Code)
}

func TestExecute_InsertFailureIsRetryable(t *testing.T) {
	sessionStore, orderStore, mock := newTestStores(t)
	session := seedSession(t, sessionStore)
	handler := NewHandler(LoadConfig(), sessionStore, orderStore, logger.NewTestLogger(t))

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(assert.AnError)

	_, err := handler.Execute(context.Background(), &Input{
		SessionID: session.ID,
		Final:     validFinal(),
	})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeOrderInsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
