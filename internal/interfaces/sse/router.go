package sse

import (
	"time"

	"github.com/gin-gonic/gin"

	"pushhub/internal/infrastructure/hub"
	"pushhub/internal/infrastructure/logger"
)

func InitSSERouter(logger logger.Logger, hubInstance *hub.Hub, keepAlive time.Duration, auth gin.HandlerFunc, rg *gin.RouterGroup) {
	streamHandler := NewStreamHandler(hubInstance, keepAlive, logger)

	// Auth runs before the stream headers so a rejection goes out as plain
	// JSON, not a half-open event stream.
	sseGroup := rg.Group("/sse")
	sseGroup.GET("", auth, SSEHeadersMiddleware(), streamHandler.Stream)
}
