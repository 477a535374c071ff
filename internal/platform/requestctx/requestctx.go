// Package requestctx carries per-request identity through context values.
package requestctx

import "context"

// requestIDContextKey is the context key for the API request identifier.
type requestIDContextKey struct{}

// subjectContextKey is the context key for the authenticated grant subject.
type subjectContextKey struct{}

// WithRequestID stores a request identifier in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request identifier stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}

// WithSubject stores an authenticated grant subject in context.
func WithSubject(ctx context.Context, subject string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, subjectContextKey{}, subject)
}

// SubjectFromContext returns the grant subject stored in context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(subjectContextKey{}).(string)
	return value
}
