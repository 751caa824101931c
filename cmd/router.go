package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pushhub/internal/application/facade"
	"pushhub/internal/config"
	"pushhub/internal/infrastructure/hub"
	"pushhub/internal/infrastructure/logger"
	"pushhub/internal/interfaces/middleware"
	"pushhub/internal/interfaces/rest/v1/handler"
	"pushhub/internal/interfaces/sse"
	"pushhub/internal/interfaces/websocket"
)

func InitRouter(cfg *config.Config, hubInstance *hub.Hub, log logger.Logger) http.Handler {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	auth := middleware.Auth(middleware.AuthOptions{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	}, log)

	rootGroup := router.Group("")

	// Health check endpoint
	rootGroup.GET("/hub/status", func(c *gin.Context) {
		stats := hubInstance.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"hub_running": hubInstance.IsRunning(),
			"connections": hubInstance.ConnectionCount(),
			"published":   stats.Published,
			"delivered":   stats.Delivered,
			"dropped":     stats.Dropped,
			"pruned":      stats.Pruned,
		})
	})

	// Push API endpoints
	pushService := facade.NewPushApplicationService(hubInstance, log)
	pushHandler := handler.NewPushHandler(pushService, hubInstance, log)
	apiGroup := rootGroup.Group("/api/v1", auth)
	{
		apiGroup.POST("/publish", pushHandler.Publish)
		apiGroup.GET("/connections", pushHandler.Connections)
	}

	sse.InitSSERouter(log, hubInstance, cfg.Hub.KeepAliveInterval, auth, rootGroup)
	websocket.InitWebSocketRouter(log, hubInstance, auth, rootGroup)

	return router
}
