// Package ctxutil carries per-request identifiers through a context.
package ctxutil

import "context"

type requestMetaKey struct{}

type RequestMeta struct {
	RequestID string
	TraceID   string
}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	m, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m, ok
}

// LogFields returns request_id and trace_id key/value pairs for a logger
// call, or nil outside a request.
func LogFields(ctx context.Context) []interface{} {
	m, ok := RequestMetaFrom(ctx)
	if !ok {
		return nil
	}
	return []interface{}{"request_id", m.RequestID, "trace_id", m.TraceID}
}
