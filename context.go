package acauth

import "context"

type contextKey int

const (
	clientIPKey contextKey = iota
)

// WithClientIP attaches the caller's network identity to the context. The
// rate limiter keys its counters on this value; requests without it share
// the "unknown" bucket.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
