package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pushhub/internal/infrastructure/hub"
	"pushhub/internal/infrastructure/logger"
	"pushhub/internal/interfaces/middleware"
)

const (
	// writeWait bounds a single frame or control write.
	writeWait = 10 * time.Second
	// pongWait is how long a client may stay silent before the read side
	// gives up on it.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize caps inbound frames; clients only talk back with pongs.
	maxMessageSize = 512
)

// WebSocketHandler serves the event stream over a WebSocket for clients
// that cannot use EventSource.
type WebSocketHandler struct {
	hub      *hub.Hub
	logger   logger.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler instance
func NewWebSocketHandler(hubInstance *hub.Hub, logger logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hubInstance,
		logger: logger.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Auth rides on the bearer token, not on cookies; tighten
				// this if that ever changes.
				return true
			},
		},
	}
}

// Connect upgrades the request and serves the caller's events until either
// side goes away.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	if !h.hub.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Errorf("Failed to upgrade connection: %v", err)
		return
	}

	conn := h.hub.NewConnection(identity.UserID)
	if err := h.hub.Register(conn); err != nil {
		h.logger.Errorf("Failed to register connection: %v", err)
		ws.Close()
		return
	}

	h.logger.Infof("WebSocket %s open (owner: %s)", conn.ID(), conn.Owner())

	go h.writePump(ws, conn)
	h.readPump(ws, conn)
}

// writePump drains the connection's frame queue onto the socket and keeps
// the client alive with pings. Frames carry the full wire envelope, so the
// event name needs no separate framing here.
func (h *WebSocketHandler) writePump(ws *websocket.Conn, conn *hub.Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case frame := <-conn.Frames():
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, frame.Payload); err != nil {
				h.logger.Warnf("Failed to write frame to %s: %v", conn.ID(), err)
				return
			}
		case <-conn.Done():
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound data; clients only talk back with pongs, which
// reset the read deadline. It returns when the client goes away, and its
// unregister wakes the write pump through the connection's done channel.
func (h *WebSocketHandler) readPump(ws *websocket.Conn, conn *hub.Connection) {
	defer func() {
		h.hub.Unregister(conn.ID())
		ws.Close()
	}()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warnf("WebSocket %s read error: %v", conn.ID(), err)
			} else {
				h.logger.Infof("WebSocket %s disconnected", conn.ID())
			}
			return
		}
	}
}
