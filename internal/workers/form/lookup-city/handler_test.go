package lookupcity

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/form/wizard"
	"grundbuch-workers/internal/models"
	"grundbuch-workers/internal/storage/sessions"
)

type stubResolver struct {
	city string
	err  error
}

func (r *stubResolver) LookupCity(_ context.Context, _ string) (string, error) {
	return r.city, r.err
}

func newTestStore(t *testing.T) *sessions.Store {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return sessions.NewStore(client, "formsession:", 2*time.Hour, logger.NewTestLogger(t))
}

func seedSession(t *testing.T, store *sessions.Store, postalCode string) *models.FormSession {
	session := wizard.NewSession("")
	_, err := wizard.SubmitProperty(session, models.PropertyInput{
		Street:      "Musterstraße",
		HouseNumber: "5",
		PostalCode:  postalCode,
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), session))
	return session
}

func TestExecute_AppliesCity(t *testing.T) {
	store := newTestStore(t)
	session := seedSession(t, store, "10115")

	handler := NewHandler(LoadConfig(), store, &stubResolver{city: "Berlin"}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID:     session.ID,
		PostalCode:    "10115",
		LookupVersion: session.LookupVersion,
	})
	require.NoError(t, err)
	assert.True(t, output.Applied)
	assert.Equal(t, "Berlin", output.City)

	updated, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", updated.Property.City)
}

func TestExecute_LookupFailureIsSwallowed(t *testing.T) {
	store := newTestStore(t)
	session := seedSession(t, store, "10115")

	handler := NewHandler(LoadConfig(), store, &stubResolver{
		err: errors.NewPostcodeLookupFailedError("10115", assert.AnError),
	}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID:     session.ID,
		PostalCode:    "10115",
		LookupVersion: session.LookupVersion,
	})
	require.NoError(t, err)
	assert.False(t, output.Applied)

	updated, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Property.City)
}

func TestExecute_StaleVersionIsDropped(t *testing.T) {
	store := newTestStore(t)
	session := seedSession(t, store, "10115")

	// Postal code edited again after the lookup was dispatched.
	_, err := wizard.SubmitProperty(session, models.PropertyInput{
		Street:      "Musterstraße",
		HouseNumber: "5",
		PostalCode:  "80331",
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), session))

	handler := NewHandler(LoadConfig(), store, &stubResolver{city: "Berlin"}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID:     session.ID,
		PostalCode:    "10115",
		LookupVersion: session.LookupVersion - 1,
	})
	require.NoError(t, err)
	assert.False(t, output.Applied)

	updated, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Property.City)
}

func TestExecute_MissingSessionDoesNotFail(t *testing.T) {
	store := newTestStore(t)

	handler := NewHandler(LoadConfig(), store, &stubResolver{city: "Berlin"}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID:  "gone",
		PostalCode: "10115",
	})
	require.NoError(t, err)
	assert.False(t, output.Applied)
	assert.Equal(t, "Berlin", output.City)
}
