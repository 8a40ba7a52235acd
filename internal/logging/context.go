package logging

import (
	"context"
)

// WithContext returns a new context with the provided factory.
func WithContext(ctx context.Context, f Factory) context.Context {
	return context.WithValue(ctx, contextKey, f)
}

// FromContext retrieves the factory from the context. If no factory is found, NullFactory is returned.
func FromContext(ctx context.Context) Factory {
	if ctx != nil {
		if f, ok := ctx.Value(contextKey).(Factory); ok {
			return f
		}
	}

	return NullFactory
}

// Unexported new type so that our context key never collides with another.
type contextKeyType struct{}

// contextKey is the key used for the context to store the factory.
var contextKey = contextKeyType{}
