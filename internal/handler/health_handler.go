package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oldgate-museum/booking-widget/pkg/response"
)

// Pinger checks connectivity to a backing dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// DependencyCheck names one readiness dependency
type DependencyCheck struct {
	Name   string
	Pinger Pinger
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	serviceName string
	version     string
	checks      []DependencyCheck
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(serviceName, version string, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		checks:      checks,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "ok",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready handles GET /ready, pinging each backing dependency
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	statuses := gin.H{}
	var failed []string
	for _, check := range h.checks {
		if check.Pinger == nil {
			continue
		}
		if err := check.Pinger.Ping(ctx); err != nil {
			statuses[check.Name] = err.Error()
			failed = append(failed, check.Name)
			continue
		}
		statuses[check.Name] = "ok"
	}

	if len(failed) > 0 {
		response.Error(c, http.StatusServiceUnavailable, "NOT_READY",
			"dependency check failed: "+strings.Join(failed, ", "), "")
		return
	}

	response.Success(c, gin.H{
		"status": "ready",
		"checks": statuses,
	})
}
