package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyIsHTMX   ctxKey = "is_htmx"
	ctxKeyViewport ctxKey = "viewport"
)

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// ViewportInfo is the layout the client reported.
type ViewportInfo struct {
	Width   int
	Compact bool
}

// WithViewport stores the reported viewport.
func WithViewport(ctx context.Context, v ViewportInfo) context.Context {
	return context.WithValue(ctx, ctxKeyViewport, v)
}

// Viewport returns the reported viewport; the zero value means wide.
func Viewport(ctx context.Context) ViewportInfo {
	v, _ := ctx.Value(ctxKeyViewport).(ViewportInfo)
	return v
}
