package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot-platform/internal/transport/http/response"
)

type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit keys the limiter by client IP and route.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + ":" + c.ClientIP()
		if !limiter.Allow(c.Request.Context(), key) {
			response.Abort(c, http.StatusTooManyRequests, response.CodeTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
