package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/websocket"
	"github.com/stitts-dev/h2h-sim/pkg/cache"
)

const serviceName = "h2h-sim"

// HealthStatus is the body of the health and readiness endpoints
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks"`
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	league  providers.League
	cache   *cache.ResultCacheService
	wsHub   *websocket.Hub
	logger  *logrus.Logger
	started time.Time
}

// NewHealthHandler creates a new health handler. cache and wsHub may be nil.
func NewHealthHandler(
	league providers.League,
	cache *cache.ResultCacheService,
	wsHub *websocket.Hub,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		league:  league,
		cache:   cache,
		wsHub:   wsHub,
		logger:  logger,
		started: time.Now(),
	}
}

// GetHealth returns the basic health status. A failing cache degrades the
// service but does not take it down.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   serviceName,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Checks:    make(map[string]string),
	}

	if _, err := h.league.Teams(c.Request.Context()); err != nil {
		response.Status = "unhealthy"
		response.Checks["league"] = "failed: " + err.Error()
	} else {
		response.Checks["league"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			if response.Status == "ok" {
				response.Status = "degraded"
			}
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	} else {
		response.Checks["redis"] = "not_configured"
	}

	if h.wsHub != nil {
		response.Checks["websocket_clients"] = strconv.Itoa(h.wsHub.GetConnectionCount())
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// GetReady reports whether the service can take simulation traffic
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := HealthStatus{
		Status:    "ready",
		Service:   serviceName,
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if teams, err := h.league.Teams(c.Request.Context()); err != nil || len(teams) == 0 {
		response.Status = "not_ready"
		if err != nil {
			response.Checks["league"] = "failed: " + err.Error()
		} else {
			response.Checks["league"] = "no teams loaded"
		}
	} else {
		response.Checks["league"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			response.Status = "not_ready"
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "ready" {
		h.logger.WithField("checks", response.Checks).Warn("Service not ready")
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// GetCacheStatus returns cache statistics
func (h *HealthHandler) GetCacheStatus(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"service": "result-cache", "enabled": false})
		return
	}
	c.JSON(http.StatusOK, h.cache.GetStatus(c.Request.Context()))
}
