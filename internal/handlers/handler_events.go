package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const eventsKeepAlive = 25 * time.Second

// eventHandler streams change events as Server-Sent Events.
type eventHandler struct {
	stream    portssvc.EventStream
	keepAlive time.Duration
}

func newEventHandler(stream portssvc.EventStream) *eventHandler {
	return &eventHandler{stream: stream, keepAlive: eventsKeepAlive}
}

// registerEventRoutes registers the change event stream.
func registerEventRoutes(rg *gin.RouterGroup, stream portssvc.EventStream) {
	h := newEventHandler(stream)
	rg.GET("/events", h.streamEvents)
}

// streamEvents godoc
// @Summary Follow change events
// @Description Server-Sent Events, one per changed row. The event name is the table.
// @Description Browsers may pass the token as access_token since EventSource cannot set headers.
// @Tags events
// @Produce text/event-stream
// @Param tables query string false "Comma separated tables to follow"
// @Success 200 {object} domain.ChangeEvent
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /events [get]
func (h *eventHandler) streamEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if h.stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event stream not available"})
		return
	}

	var tables map[string]bool
	if q := c.Query("tables"); q != "" {
		tables = make(map[string]bool)
		for _, t := range strings.Split(q, ",") {
			tables[strings.TrimSpace(t)] = true
		}
	}

	events, cancel := h.stream.Subscribe()
	defer cancel()
	logger.Info("Event stream opened")

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			if tables == nil || tables[event.Table] {
				c.SSEvent(event.Table, event)
			}
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
	logger.Info("Event stream closed", slog.String("reason", "client gone or stream ended"))
}
