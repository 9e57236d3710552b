package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// AliveText is the static liveness answer
const AliveText = "Bot is running!"

// Handlers contains all HTTP request handlers
type Handlers struct {
	health HealthReporter
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(health HealthReporter, logger Logger) *Handlers {
	return &Handlers{health: health, logger: logger}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

// Alive handles GET /
func (h *Handlers) Alive(c *gin.Context) {
	c.String(http.StatusOK, AliveText)
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.health != nil {
		results := h.health.Health(c.Request.Context())
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)

		resp.Components = make(map[string]string, len(results))
		for _, name := range names {
			if err := results[name]; err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				h.logger.Error("Health check failed", "component", name, "error", err)
				continue
			}
			resp.Components[name] = "ok"
		}
	}

	c.JSON(code, resp)
}
