// Package sessions keeps wizard sessions in Redis as JSON with a sliding
// TTL.
package sessions

import (
	"context"
	"encoding/json"
	"time"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/common/observability"
	"grundbuch-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    logger.Logger
}

func NewStore(client *redis.Client, keyPrefix string, ttl time.Duration, log logger.Logger) *Store {
	if keyPrefix == "" {
		keyPrefix = "formsession:"
	}
	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    log.WithFields(map[string]interface{}{"component": "session-store"}),
	}
}

// Get loads a session. A missing key maps to SESSION_NOT_FOUND so workers
// can throw it as a business error.
func (s *Store) Get(ctx context.Context, id string) (*models.FormSession, error) {
	ctx, span := observability.StartSpan(ctx, "sessions.Get")
	defer span.End()

	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, errors.NewSessionNotFoundError(id)
	}
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, errors.NewSessionLoadFailedError(err)
	}

	var session models.FormSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, errors.NewSessionLoadFailedError(err)
	}
	return &session, nil
}

// Save writes the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, session *models.FormSession) error {
	ctx, span := observability.StartSpan(ctx, "sessions.Save")
	defer span.End()

	raw, err := json.Marshal(session)
	if err != nil {
		return errors.NewSessionSaveFailedError(err)
	}

	if err := s.client.Set(ctx, s.key(session.ID), raw, s.ttl).Err(); err != nil {
		observability.RecordError(ctx, err)
		return errors.NewSessionSaveFailedError(err)
	}
	return nil
}

// Delete removes a session, typically after the order is handed off.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, span := observability.StartSpan(ctx, "sessions.Delete")
	defer span.End()

	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		observability.RecordError(ctx, err)
		return errors.NewSessionSaveFailedError(err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return s.keyPrefix + id
}
