package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxRequestIDLen = 128
)

// AttachTraceContext stamps every request with a request id and a trace id
// and echoes both as response headers. A client supplied request id is kept
// when it is short enough; the trace id comes from the active span first.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		meta := ctxutil.RequestMeta{
			RequestID: clientRequestID(c),
			TraceID:   firstNonEmpty(spanTraceID(span), strings.TrimSpace(c.GetHeader(headerTraceID)), uuid.NewString()),
		}
		span.SetAttributes(attribute.String("http.request_id", meta.RequestID))

		c.Request = c.Request.WithContext(ctxutil.WithRequestMeta(c.Request.Context(), meta))
		c.Header(headerRequestID, meta.RequestID)
		c.Header(headerTraceID, meta.TraceID)
		c.Next()
	}
}

func clientRequestID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(headerRequestID))
	if id == "" || len(id) > maxRequestIDLen {
		return uuid.NewString()
	}
	return id
}

func spanTraceID(span trace.Span) string {
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
