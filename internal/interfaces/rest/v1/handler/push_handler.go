package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pushhub/internal/domain/event"
	"pushhub/internal/infrastructure/hub"
	"pushhub/internal/infrastructure/logger"
	"pushhub/internal/port/inbound"
)

// PushHandler is the REST surface backend services use to push events to
// connected clients.
type PushHandler struct {
	publisher inbound.EventPublisher
	hub       *hub.Hub
	logger    logger.Logger
}

type publishRequest struct {
	Type  string          `json:"type" binding:"required"`
	Scope scopeRequest    `json:"scope" binding:"required"`
	Data  json.RawMessage `json:"data"`
}

type scopeRequest struct {
	Kind  string `json:"kind" binding:"required"`
	Owner string `json:"owner"`
}

func NewPushHandler(publisher inbound.EventPublisher, hubInstance *hub.Hub, logger logger.Logger) *PushHandler {
	return &PushHandler{
		publisher: publisher,
		hub:       hubInstance,
		logger:    logger.WithField("handler", "push"),
	}
}

// Publish decodes an event envelope and hands it to the publisher.
func (h *PushHandler) Publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid request format: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ev, err := event.Decode(event.Type(req.Type), req.Data)
	if err != nil {
		if errors.Is(err, event.ErrUnknownType) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown event type",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event payload",
		})
		return
	}

	scope := event.Scope{Kind: event.ScopeKind(req.Scope.Kind), Owner: req.Scope.Owner}
	if err := scope.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), ev, scope); err != nil {
		h.logger.Errorf("Failed to publish %s: %v", ev.Type(), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to publish event",
		})
		return
	}

	h.logger.Infof("Published %s (scope: %s)", ev.Type(), scope)

	c.JSON(http.StatusOK, gin.H{
		"status": "published",
		"type":   req.Type,
		"scope":  scope.String(),
	})
}

// Connections returns information about currently connected clients.
func (h *PushHandler) Connections(c *gin.Context) {
	connections := h.hub.Connections()
	connectionInfo := make([]gin.H, len(connections))

	for i, conn := range connections {
		connectionInfo[i] = gin.H{
			"id":         conn.ID(),
			"owner":      conn.Owner(),
			"created_at": conn.CreatedAt().Format(time.RFC3339),
			"queued":     conn.Queued(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(connections),
		"connections":       connectionInfo,
		"hub_running":       h.hub.IsRunning(),
	})
}
