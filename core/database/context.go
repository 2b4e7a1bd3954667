package database

import "context"

type handleKey struct{}

// WithHandle returns a copy of ctx carrying h.
func WithHandle(ctx context.Context, h Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// HandleFromContext returns the request-scoped handle, if any.
func HandleFromContext(ctx context.Context) (Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(Handle)
	return h, ok && h != nil
}
