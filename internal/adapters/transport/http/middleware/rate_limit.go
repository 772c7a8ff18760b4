package middleware

import (
	"net"
	"net/http"

	"github.com/Miraines/MindHaven/auth-service/internal/infra/ratelimit"
	"github.com/gin-gonic/gin"
)

// NewHTTPRateLimitPerIP limits requests per remote host.
func NewHTTPRateLimitPerIP(limiter *ratelimit.PerKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}

		if !limiter.Allow(host) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
