package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/oldgate-museum/booking-widget/internal/domain"
	pkgredis "github.com/oldgate-museum/booking-widget/pkg/redis"
	"github.com/oldgate-museum/booking-widget/pkg/telemetry"
)

const sessionKeyPrefix = "widget:session:"

// RedisSessionRepository implements SessionRepository using Redis
type RedisSessionRepository struct {
	client *pkgredis.Client
}

// NewRedisSessionRepository creates a new RedisSessionRepository
func NewRedisSessionRepository(client *pkgredis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// Save stores the booking state as a JSON value with the session TTL
func (r *RedisSessionRepository) Save(ctx context.Context, state domain.BookingState, ttl time.Duration) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.save")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", state.SessionID))

	if state.SessionID == "" {
		span.SetStatus(codes.Error, "missing session id")
		return domain.ErrInvalidSessionID
	}

	payload, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(state.SessionID), payload, ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to save session: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Get loads the booking state for a session id
func (r *RedisSessionRepository) Get(ctx context.Context, sessionID string) (domain.BookingState, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.get")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	payload, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetStatus(codes.Ok, "session not found")
			return domain.BookingState{}, domain.ErrSessionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.BookingState{}, fmt.Errorf("failed to load session: %w", err)
	}

	var state domain.BookingState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.BookingState{}, fmt.Errorf("failed to decode session state: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return state, nil
}

// Delete removes a session
func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.delete")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete session: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Ensure RedisSessionRepository implements SessionRepository
var _ SessionRepository = (*RedisSessionRepository)(nil)
