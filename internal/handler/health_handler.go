package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitrineshop/catalog_api/internal/bus"
)

var startTime = time.Now()

// HealthHandler provides the health endpoint.
type HealthHandler struct {
	mode string
	bus  *bus.Bus
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(mode string, b *bus.Bus) *HealthHandler {
	return &HealthHandler{mode: mode, bus: b}
}

// GetHealth responds with service status and the bus's cached state.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	snap := h.bus.Current()
	c.JSON(200, gin.H{
		"status":         "healthy",
		"mode":           h.mode,
		"uptime":         int(time.Since(startTime).Seconds()),
		"cachedProducts": len(snap.Products),
		"loading":        snap.Loading,
	})
}
