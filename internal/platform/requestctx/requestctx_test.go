package requestctx

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Fatalf("RequestIDFromContext = %q, want %q", got, "req-42")
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("RequestIDFromContext = %q, want empty", got)
	}
	if got := RequestIDFromContext(nil); got != "" {
		t.Fatalf("RequestIDFromContext(nil) = %q, want empty", got)
	}
}

func TestSubjectRoundTrip(t *testing.T) {
	ctx := WithSubject(context.Background(), "ops@example.com")
	if got := SubjectFromContext(ctx); got != "ops@example.com" {
		t.Fatalf("SubjectFromContext = %q, want %q", got, "ops@example.com")
	}
}

func TestSubjectDoesNotLeakIntoRequestID(t *testing.T) {
	ctx := WithSubject(context.Background(), "ops@example.com")
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("RequestIDFromContext = %q, want empty", got)
	}
}
