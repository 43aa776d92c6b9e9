package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitrineshop/catalog_api/internal/bus"
)

// StreamHandler pushes bus snapshots to listing views over Server-Sent
// Events.
type StreamHandler struct {
	bus *bus.Bus
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(b *bus.Bus) *StreamHandler {
	return &StreamHandler{bus: b}
}

// Stream handles GET /products/stream
func (h *StreamHandler) Stream(c *gin.Context) {
	subscriberID := fmt.Sprintf("view-%s-%d", uuid.New().String()[:8], time.Now().UnixNano())

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	sub := h.bus.Subscribe(subscriberID)
	defer h.bus.Unsubscribe(subscriberID)

	// Send the current state immediately so a new view renders without
	// waiting for the next mutation.
	c.SSEvent("snapshot", h.bus.Current())
	c.Writer.Flush()

	log.Info().Str("subscriber_id", subscriberID).Msg("product stream started")

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-sub.Events:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-time.After(30 * time.Second):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
