package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oldgate-museum/booking-widget/internal/metrics"
	"github.com/oldgate-museum/booking-widget/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs each request and records its duration
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		operation := c.FullPath()
		if operation == "" {
			operation = path
		}
		metrics.RecordRequestDuration(c.Request.Context(), operation, latency.Seconds())

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.Int("body_size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		log := logger.WithContext(c.Request.Context())
		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Error("Server error", fields...)
		case status >= 400:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}
