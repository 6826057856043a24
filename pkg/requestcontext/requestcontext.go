// Package requestcontext provides typed accessors for request-scoped values
// so middleware and services never share raw context keys.
package requestcontext

import "context"

type contextKey int

const (
	keyRequestID contextKey = iota
	keyIdentity
	keyClientIP
	keyUserAgent
)

// WithRequestID stores the correlation id for the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID returns the correlation id, or empty string when unset.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(keyRequestID).(string)
	return v
}

// WithIdentity stores the authenticated caller identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, keyIdentity, identity)
}

// Identity returns the authenticated caller identity, or empty string when
// the request was not authenticated.
func Identity(ctx context.Context) string {
	v, _ := ctx.Value(keyIdentity).(string)
	return v
}

// WithClientMetadata stores the client IP and User-Agent extracted by the
// metadata middleware.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, ip)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

// ClientIP returns the client IP, or empty string when unset.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(keyClientIP).(string)
	return v
}

// UserAgent returns the raw User-Agent header, or empty string when unset.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(keyUserAgent).(string)
	return v
}
