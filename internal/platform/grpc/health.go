package grpc

import (
	"context"
	"fmt"
	"time"

	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	healthPollInitial = 100 * time.Millisecond
	healthPollMax     = time.Second
	healthCallTimeout = time.Second
)

// WaitForHealth polls the registry's health endpoint until it reports
// SERVING or the context ends. A registry that is still starting up, or
// restarting, reports NOT_SERVING; the poll backs off while it waits.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("registry connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := grpc_health_v1.NewHealthClient(conn)
	poll := healthPollInitial
	for {
		callCtx, cancel := context.WithTimeout(ctx, healthCallTimeout)
		response, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		switch {
		case err == nil && response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING:
			if logf != nil {
				logf("registry health is SERVING")
			}
			return nil
		case err != nil:
			if logf != nil {
				logf("waiting for registry health: %v", err)
			}
		default:
			if logf != nil {
				logf("waiting for registry health: status %s", response.GetStatus().String())
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for registry health: %w", ctx.Err())
		case <-time.After(poll):
		}
		if poll *= 2; poll > healthPollMax {
			poll = healthPollMax
		}
	}
}
