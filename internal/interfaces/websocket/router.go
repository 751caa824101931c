package websocket

import (
	"github.com/gin-gonic/gin"

	"pushhub/internal/infrastructure/hub"
	"pushhub/internal/infrastructure/logger"
)

// InitWebSocketRouter initializes WebSocket routes
func InitWebSocketRouter(logger logger.Logger, hubInstance *hub.Hub, auth gin.HandlerFunc, rg *gin.RouterGroup) {
	wsHandler := NewWebSocketHandler(hubInstance, logger)

	// WebSocket connection endpoint
	wsGroup := rg.Group("/ws")
	wsGroup.GET("", auth, wsHandler.Connect)
}
