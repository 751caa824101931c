package sse

import "github.com/gin-gonic/gin"

// SSEHeadersMiddleware marks the response as an event stream.
// X-Accel-Buffering stops fronting proxies from buffering it.
func SSEHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Next()
	}
}
