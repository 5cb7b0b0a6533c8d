package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oldgate-museum/booking-widget/internal/service"
	"github.com/oldgate-museum/booking-widget/pkg/response"
)

// SessionIDKey is the context key for the authenticated session ID
const SessionIDKey = "session_id"

// TokenValidator validates a session token and returns its session ID
type TokenValidator interface {
	ValidateSessionToken(ctx context.Context, token string) (string, error)
}

// SessionAuth validates the bearer session token and sets the session
// ID in the request context
func SessionAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required", "")
			c.Abort()
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid authorization header format", "")
			c.Abort()
			return
		}

		sessionID, err := validator.ValidateSessionToken(c.Request.Context(), token)
		if err != nil {
			code := "INVALID_TOKEN"
			message := "Invalid session token"
			if errors.Is(err, service.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
				message = "Session token has expired"
			}
			response.Error(c, http.StatusUnauthorized, code, message, "")
			c.Abort()
			return
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the authenticated session ID from context
func GetSessionID(c *gin.Context) string {
	if id, exists := c.Get(SessionIDKey); exists {
		if sessionID, ok := id.(string); ok {
			return sessionID
		}
	}
	return ""
}
