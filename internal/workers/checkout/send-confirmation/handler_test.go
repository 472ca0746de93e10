package sendconfirmation

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/storage/orders"
)

type fakeEmail struct {
	err  error
	sent []*ses.SendEmailInput
}

func (f *fakeEmail) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, input)
	return &ses.SendEmailOutput{}, nil
}

type fakeSMS struct {
	err  error
	sent []*sns.PublishInput
}

func (f *fakeSMS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, input)
	return &sns.PublishOutput{}, nil
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

func orderRows(phone string) *sqlmock.Rows {
	now := time.Now().UTC()
	docs := `[{"id":"grundbuchauszug","name":"Grundbuchauszug","priceCents":2990},` +
		`{"id":"liegenschaftskarte","name":"Liegenschaftskarte","priceCents":2990}]`
	return sqlmock.NewRows(orderColumns).AddRow(
		"order-1", "session-1", "max@example.com", "Max", "Mustermann", phone, "",
		"Musterstraße", "5", "10115", "Berlin",
		"", "", "",
		[]byte(docs), false, false,
		"kauf", "kauf",
		"data:image/png;base64,iVBOR", int64(5980), "processing", "card", "pm_123",
		now, now,
	)
}

func newTestHandler(t *testing.T, cfg *Config, email EmailSender, sms SMSSender) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := orders.NewStore(db, logger.NewTestLogger(t))
	return NewHandler(cfg, store, email, sms, logger.NewTestLogger(t)), mock
}

func TestExecute_SendsEmailWithDocumentList(t *testing.T) {
	email := &fakeEmail{}
	handler, mock := newTestHandler(t, LoadConfig(), email, &fakeSMS{})

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("order-1").
		WillReturnRows(orderRows(""))

	output, err := handler.Execute(context.Background(), &Input{OrderID: "order-1"})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)

	require.Len(t, email.sent, 1)
	body := *email.sent[0].Message.Body.Text.Data
	assert.Contains(t, body, "Grundbuchauszug")
	assert.Contains(t, body, "Liegenschaftskarte")
	assert.Contains(t, body, "59.80")
	assert.Contains(t, body, "order-1")
	assert.Equal(t, "max@example.com", email.sent[0].Destination.ToAddresses[0])
}

func TestExecute_EmailFailureIsNonFatal(t *testing.T) {
	email := &fakeEmail{err: assert.AnError}
	handler, mock := newTestHandler(t, LoadConfig(), email, &fakeSMS{})

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("order-1").
		WillReturnRows(orderRows(""))

	output, err := handler.Execute(context.Background(), &Input{OrderID: "order-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
	assert.False(t, output.EmailSent)
}

func TestExecute_SMSWhenEnabledAndPhonePresent(t *testing.T) {
	cfg := LoadConfig()
	cfg.SMSEnabled = true
	sms := &fakeSMS{}
	handler, mock := newTestHandler(t, cfg, &fakeEmail{}, sms)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("order-1").
		WillReturnRows(orderRows("+4930123456"))

	output, err := handler.Execute(context.Background(), &Input{OrderID: "order-1"})
	require.NoError(t, err)

	assert.True(t, output.SMSSent)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+4930123456", *sms.sent[0].PhoneNumber)
	assert.Contains(t, *sms.sent[0].Message, "59.80")
}

func TestExecute_AllChannelsDisabled(t *testing.T) {
	cfg := LoadConfig()
	cfg.EmailEnabled = false
	handler, mock := newTestHandler(t, cfg, &fakeEmail{}, &fakeSMS{})

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("order-1").
		WillReturnRows(orderRows(""))

	output, err := handler.Execute(context.Background(), &Input{OrderID: "order-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestExecute_OrderNotFound(t *testing.T) {
	handler, mock := newTestHandler(t, LoadConfig(), &fakeEmail{}, &fakeSMS{})

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	_, err := handler.Execute(context.Background(), &Input{OrderID: "missing"})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeOrderNotFound, stdErr.Code)
}
