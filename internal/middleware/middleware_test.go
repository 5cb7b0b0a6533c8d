package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/oldgate-museum/booking-widget/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockValidator struct {
	validateFunc func(ctx context.Context, token string) (string, error)
}

func (m *mockValidator) ValidateSessionToken(ctx context.Context, token string) (string, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, token)
	}
	return "", service.ErrInvalidToken
}

func TestRequestID_GeneratesNew(t *testing.T) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	headerID := w.Header().Get(RequestIDHeader)
	if headerID == "" {
		t.Error("expected X-Request-ID header to be set")
	}
	if w.Body.String() != headerID {
		t.Errorf("context ID %q does not match header ID %q", w.Body.String(), headerID)
	}
}

func TestRequestID_UsesExisting(t *testing.T) {
	existingID := "req-id-from-caller"

	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, existingID)
	r.ServeHTTP(w, req)

	if w.Body.String() != existingID {
		t.Errorf("request ID = %q, want %q", w.Body.String(), existingID)
	}
}

func TestSessionAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		validator  *mockValidator
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing header",
			authHeader: "",
			validator:  &mockValidator{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "MISSING_TOKEN",
		},
		{
			name:       "header without bearer prefix",
			authHeader: "Token abc123",
			validator:  &mockValidator{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "empty bearer token",
			authHeader: "Bearer ",
			validator:  &mockValidator{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "invalid token",
			authHeader: "Bearer garbage",
			validator: &mockValidator{
				validateFunc: func(ctx context.Context, token string) (string, error) {
					return "", service.ErrInvalidToken
				},
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "expired token",
			authHeader: "Bearer stale",
			validator: &mockValidator{
				validateFunc: func(ctx context.Context, token string) (string, error) {
					return "", service.ErrTokenExpired
				},
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_EXPIRED",
		},
		{
			name:       "valid token reaches the handler",
			authHeader: "Bearer good",
			validator: &mockValidator{
				validateFunc: func(ctx context.Context, token string) (string, error) {
					return "sess-42", nil
				},
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, r := gin.CreateTestContext(w)

			r.Use(SessionAuth(tt.validator))
			r.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, GetSessionID(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				if w.Body.String() != "sess-42" {
					t.Errorf("session ID = %q, want sess-42", w.Body.String())
				}
				return
			}

			var body struct {
				Success bool `json:"success"`
				Error   *struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.Success {
				t.Error("success = true, want false")
			}
			if body.Error == nil || body.Error.Code != tt.wantCode {
				t.Errorf("error code = %+v, want %q", body.Error, tt.wantCode)
			}
		})
	}
}
