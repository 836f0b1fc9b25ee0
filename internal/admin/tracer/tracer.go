// Package tracer provides a lightweight tracing abstraction for the admin client.
//
// The client emits one span per backend call without depending on
// OpenTelemetry APIs directly.
//
// Implementations:
//   - NoopTracer: For tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter, uses the global provider
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an int attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names used by the admin client.
const (
	SpanAuthExchange = "admin.auth.exchange"
	SpanStats        = "admin.stats"
	SpanUsers        = "admin.users"
	SpanTribes       = "admin.tribes"
	SpanTribeDetail  = "admin.tribe_detail"
)

// Attribute keys used by the admin client.
const (
	AttrHTTPStatus = "http.status_code"
	AttrRequestID  = "request_id"
	AttrTribeID    = "tribe.id"
	AttrPage       = "page"
	AttrPageSize   = "page_size"
	AttrHasToken   = "auth.has_token"
)
