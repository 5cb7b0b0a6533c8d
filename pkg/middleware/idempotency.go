package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oldgate-museum/booking-widget/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader is the header carrying the client retry key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// idempotencyKeyPrefix namespaces records in Redis
	idempotencyKeyPrefix = "widget:idempotency:"
)

// IdempotencyStatus represents the lifecycle of an idempotency record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the outcome of an idempotent request so a
// network retry replays the original response instead of re-submitting
// the cart commit.
type IdempotencyRecord struct {
	Key          string            `json:"key"`
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// RedisClient is the subset of redis operations the middleware needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	// Redis stores idempotency records
	Redis RedisClient
	// TTL for completed records. Long enough to absorb client retry
	// storms, short enough that a reused key eventually frees up.
	TTL time.Duration
	// ProcessingTTL bounds how long an in-flight record blocks retries.
	// If the process dies mid-request the record expires on its own.
	ProcessingTTL time.Duration
	// SubjectKey is the gin context key whose value scopes the request
	// hash, so two sessions reusing a key never collide
	SubjectKey string
}

// DefaultIdempotencyConfig returns default configuration
func DefaultIdempotencyConfig(redisClient RedisClient) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:         redisClient,
		TTL:           10 * time.Minute,
		ProcessingTTL: 30 * time.Second,
		SubjectKey:    "session_id",
	}
}

// Idempotency deduplicates retried requests by the X-Idempotency-Key
// header. Requests without the header pass straight through: older
// storefront bundles do not send it, and the session-level submit guard
// still protects them.
func Idempotency(config *IdempotencyConfig) gin.HandlerFunc {
	if config.TTL == 0 {
		config.TTL = 10 * time.Minute
	}
	if config.ProcessingTTL == 0 {
		config.ProcessingTTL = 30 * time.Second
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		requestHash := hashRequest(c, bodyBytes, config.SubjectKey)
		redisKey := idempotencyKeyPrefix + key

		ctx := c.Request.Context()

		existing, err := getRecord(ctx, config.Redis, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			// Redis unavailable: fail open, the submit guard still holds
			c.Next()
			return
		}

		if existing != nil {
			if existing.RequestHash != requestHash {
				response.Error(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
					"idempotency key already used with a different request", "")
				c.Abort()
				return
			}
			if existing.Status == StatusProcessing {
				response.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS",
					"a request with this idempotency key is already being processed", "")
				c.Abort()
				return
			}
			replayResponse(c, existing)
			return
		}

		record := &IdempotencyRecord{
			Key:         key,
			Status:      StatusProcessing,
			RequestHash: requestHash,
			CreatedAt:   time.Now(),
		}

		if !trySetRecord(ctx, config.Redis, redisKey, record, config.ProcessingTTL) {
			// Lost the race to a concurrent retry
			existing, _ = getRecord(ctx, config.Redis, redisKey)
			if existing != nil {
				if existing.Status == StatusProcessing {
					response.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS",
						"a request with this idempotency key is already being processed", "")
					c.Abort()
					return
				}
				replayResponse(c, existing)
				return
			}
		}

		rw := &captureWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = rw

		c.Next()

		now := time.Now()
		record.Status = StatusCompleted
		record.ResponseCode = rw.Status()
		record.ResponseBody = rw.body.String()
		record.CompletedAt = &now

		saveRecord(ctx, config.Redis, redisKey, record, config.TTL)
	}
}

func replayResponse(c *gin.Context, record *IdempotencyRecord) {
	c.Data(record.ResponseCode, "application/json", []byte(record.ResponseBody))
	c.Abort()
}

// captureWriter tees the response so it can be cached for replay
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func hashRequest(c *gin.Context, body []byte, subjectKey string) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if subjectKey != "" {
		if subject := c.GetString(subjectKey); subject != "" {
			h.Write([]byte(subject))
		}
	}
	if len(body) > 0 {
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func getRecord(ctx context.Context, client RedisClient, key string) (*IdempotencyRecord, error) {
	result, err := client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func trySetRecord(ctx context.Context, client RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) bool {
	data, err := json.Marshal(record)
	if err != nil {
		return false
	}
	ok, err := client.SetNX(ctx, key, string(data), ttl).Result()
	if err != nil {
		return false
	}
	return ok
}

func saveRecord(ctx context.Context, client RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, string(data), ttl).Err()
}
