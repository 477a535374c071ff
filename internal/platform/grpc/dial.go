// Package grpc provides client helpers for reaching a registry server.
//
// DialWithHealth connects to a registry endpoint and blocks until its
// health endpoint reports SERVING, so callers never act on a half-started
// registry.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DialStage describes where a registry dial attempt failed.
type DialStage string

const (
	// DialStageConnect indicates the transport connection failed.
	DialStageConnect DialStage = "connect"
	// DialStageHealth indicates the registry never reported SERVING.
	DialStageHealth DialStage = "health"
)

// DialError wraps connect and health failures with a stage indicator.
type DialError struct {
	Stage DialStage
	Err   error
}

func (e *DialError) Error() string {
	if e == nil {
		return "registry dial error"
	}
	return fmt.Sprintf("registry dial %s: %v", e.Stage, e.Err)
}

func (e *DialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultClientDialOptions returns standard dial options for registry
// clients. The OTel stats handler propagates trace context on every
// outbound call when a TracerProvider is registered.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithBlock(),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// DialWithHealth dials a registry endpoint and waits for its health
// endpoint to report SERVING. The connection is closed when the health
// check fails. dialTimeout bounds both the connect and the health wait.
func DialWithHealth(ctx context.Context, addr string, dialTimeout time.Duration, logf func(string, ...any), opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	dialCtx := ctx
	if dialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}

	conn, err := gogrpc.DialContext(dialCtx, addr, opts...)
	if err != nil {
		return nil, &DialError{Stage: DialStageConnect, Err: err}
	}
	if err := WaitForHealth(dialCtx, conn, "", logf); err != nil {
		_ = conn.Close()
		return nil, &DialError{Stage: DialStageHealth, Err: err}
	}
	return conn, nil
}
