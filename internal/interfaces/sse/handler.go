package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"pushhub/internal/infrastructure/hub"
	"pushhub/internal/infrastructure/logger"
	"pushhub/internal/interfaces/middleware"
)

const defaultKeepAliveInterval = 30 * time.Second

type StreamHandler struct {
	hub       *hub.Hub
	keepAlive time.Duration
	logger    logger.Logger
}

func NewStreamHandler(hubInstance *hub.Hub, keepAlive time.Duration, log logger.Logger) *StreamHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAliveInterval
	}
	return &StreamHandler{
		hub:       hubInstance,
		keepAlive: keepAlive,
		logger:    log.WithField("handler", "sse"),
	}
}

// Stream serves the caller's events as a server-sent event stream until the
// client goes away or the hub closes the connection.
func (h *StreamHandler) Stream(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		rejectJSON(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	if !h.hub.IsRunning() {
		rejectJSON(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
		return
	}

	w := c.Writer

	// A stream outlives any server write deadline; clear it so frames keep
	// flowing for the life of the client.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debugf("Could not clear write deadline: %v", err)
	}

	conn := h.hub.NewConnection(identity.UserID)
	if err := h.hub.Register(conn); err != nil {
		h.logger.Errorf("Failed to register connection: %v", err)
		rejectJSON(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
		return
	}
	defer h.hub.Unregister(conn.ID())

	h.logger.Infof("Stream %s open (owner: %s)", conn.ID(), conn.Owner())

	sse.Encode(w, sse.Event{
		Event: "connected",
		Data: map[string]interface{}{
			"connection_id": conn.ID(),
			"timestamp":     time.Now().Format(time.RFC3339),
		},
	})
	w.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			h.logger.Infof("Client disconnected, closing stream %s", conn.ID())
			return
		case <-conn.Done():
			h.logger.Infof("Stream %s closed by the hub", conn.ID())
			return
		case frame := <-conn.Frames():
			// Payload is pre-serialized JSON; it must go out as a string or
			// the encoder would re-encode the bytes.
			err := sse.Encode(w, sse.Event{
				Event: frame.Name,
				Data:  string(frame.Payload),
			})
			if err != nil {
				h.logger.Warnf("Failed to write frame to %s: %v", conn.ID(), err)
				return
			}
			w.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix()); err != nil {
				h.logger.Warnf("Failed to write keepalive to %s: %v", conn.ID(), err)
				return
			}
			w.Flush()
		}
	}
}

// rejectJSON replies with a plain JSON error. The headers middleware has
// already labeled the response as an event stream by the time the handler
// runs, so the content type must be reset first.
func rejectJSON(c *gin.Context, status int, message string) {
	c.Writer.Header().Del("Content-Type")
	c.JSON(status, gin.H{"error": message})
}
