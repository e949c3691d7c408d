package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StreamEvents streams scan lifecycle events using Server-Sent Events
// (SSE) so connected dashboards can refresh when a project is rescanned
// or a single file changes.
func (h *Handler) StreamEvents(c *gin.Context) {
	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()

	sub := h.scanRepo.SubscribeEvents(ctx)
	defer sub.Close()

	fmt.Fprint(c.Writer, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	// Keep-alive pings so proxies do not drop the idle connection
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(c.Writer, "event: scan\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
