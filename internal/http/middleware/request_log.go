package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/ctxutil"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

// RequestLogger writes one line per request. Failed requests carry the error
// code and, for card generation, the stage that failed; causes are only
// logged for 5xx.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := append([]interface{}{
			"method", c.Request.Method,
			"path", routeLabel(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}, ctxutil.LogFields(c.Request.Context())...)
		fields = append(fields, errorFields(c, status)...)

		levelFor(log, status)("HTTP request", fields...)
	}
}

func errorFields(c *gin.Context, status int) []interface{} {
	last := c.Errors.Last()
	if last == nil {
		return nil
	}
	ae := apierr.As(last.Err)
	out := []interface{}{"code", ae.Code}
	if ae.Stage != "" {
		out = append(out, "stage", ae.Stage)
	}
	if status >= 500 {
		out = append(out, "error", last.Err)
	}
	return out
}

func levelFor(log *logger.Logger, status int) func(string, ...interface{}) {
	switch {
	case status >= 500:
		return log.Error
	case status >= 400:
		return log.Warn
	}
	return log.Info
}

// routeLabel prefers the route template so ids do not explode cardinality.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
