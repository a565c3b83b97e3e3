package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graduation-masterpiece/demo-repository/internal/http/response"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
)

type KeyedLimiter interface {
	Allow(key string) bool
}

// Throttle admits requests per client address. A nil limiter admits all.
func Throttle(l KeyedLimiter, retryAfter time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		}
		response.RespondAPIError(c, apierr.ErrRateLimited)
	}
}
