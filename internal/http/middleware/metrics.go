package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graduation-masterpiece/demo-repository/internal/observability"
)

// Metrics counts requests and observes latency per route template. The
// scrape endpoint itself is not recorded.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		m.APIInflightInc()
		start := time.Now()
		c.Next()
		m.APIInflightDec()
		m.ObserveAPI(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}
