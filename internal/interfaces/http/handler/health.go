package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mateatletas/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports database connectivity
//
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	now := time.Now().Format(time.RFC3339)
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c, nil).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"time":     now,
			"database": "error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"time":     now,
		"database": "ok",
	})
}
