// Package timeouts defines shared timeout constants used across the
// registry binaries. Centralizing these values prevents drift between
// service boundaries and makes the durations discoverable.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing the registry's gRPC health
// endpoint.
const GRPCDial = 2 * time.Second

// GRPCRequest caps the time allowed for a single health probe request.
const GRPCRequest = 2 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
