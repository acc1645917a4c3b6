package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"go.uber.org/zap"
)

const sseKeepAlive = 25 * time.Second

// EventsController streams dashboard notifications as Server-Sent Events
type EventsController struct {
	notifier *services.Notifier
	logger   *zap.Logger
}

// NewEventsController creates an EventsController
func NewEventsController(notifier *services.Notifier, logger *zap.Logger) *EventsController {
	return &EventsController{notifier: notifier, logger: logger}
}

// Stream handles GET /api/events. Events emitted while the client is
// disconnected are not replayed.
func (ec *EventsController) Stream(c *gin.Context) {
	events, unsubscribe := ec.notifier.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("connected", gin.H{"at": time.Now().UTC()})
	c.Writer.Flush()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			ec.logger.Debug("event stream closed", zap.String("client_ip", c.ClientIP()))
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(event.Name, event.Data)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}
