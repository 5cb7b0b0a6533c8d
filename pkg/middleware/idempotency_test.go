package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRedis struct {
	mu    sync.Mutex
	store map[string]string
	// getErr simulates a Redis outage on reads
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.store[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.store[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.store[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.store[k]; ok {
			delete(f.store, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func setupIdempotencyRouter(client RedisClient, handlerCalls *int) *gin.Engine {
	router := gin.New()
	cfg := DefaultIdempotencyConfig(client)
	router.POST("/submit", Idempotency(cfg), func(c *gin.Context) {
		*handlerCalls++
		c.JSON(http.StatusOK, gin.H{"kind": "add", "call": *handlerCalls})
	})
	return router
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	calls := 0
	router := setupIdempotencyRouter(newFakeRedis(), &calls)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2: requests without a key are not deduplicated", calls)
	}
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	calls := 0
	router := setupIdempotencyRouter(newFakeRedis(), &calls)

	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set(IdempotencyKeyHeader, "retry-abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
		bodies = append(bodies, w.Body.String())
	}

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1: retry must replay, not re-submit", calls)
	}
	if bodies[0] != bodies[1] {
		t.Errorf("replayed body %q differs from original %q", bodies[1], bodies[0])
	}
}

func TestIdempotency_KeyReusedWithDifferentRequest(t *testing.T) {
	calls := 0
	router := setupIdempotencyRouter(newFakeRedis(), &calls)

	first := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewBufferString(`{"a":1}`))
	first.Header.Set(IdempotencyKeyHeader, "retry-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", w.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewBufferString(`{"a":2}`))
	second.Header.Set(IdempotencyKeyHeader, "retry-abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, second)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second request: status = %d, want 422", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	fake := newFakeRedis()

	// Seed a processing record with the hash the middleware will compute
	// for an empty-body POST /submit with no session subject
	h := sha256.New()
	h.Write([]byte(http.MethodPost))
	h.Write([]byte("/submit"))
	record := IdempotencyRecord{
		Key:         "retry-abc",
		Status:      StatusProcessing,
		RequestHash: hex.EncodeToString(h.Sum(nil)),
		CreatedAt:   time.Now(),
	}
	data, _ := json.Marshal(record)
	fake.store[idempotencyKeyPrefix+"retry-abc"] = string(data)

	calls := 0
	router := setupIdempotencyRouter(fake, &calls)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(IdempotencyKeyHeader, "retry-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
}

func TestIdempotency_RedisOutageFailsOpen(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = fmt.Errorf("connection refused")

	calls := 0
	router := setupIdempotencyRouter(fake, &calls)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(IdempotencyKeyHeader, "retry-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1: outage must not block submits", calls)
	}
}
