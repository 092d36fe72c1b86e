package utils

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID stores the request id so services can log it without a gin.Context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
