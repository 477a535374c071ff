package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/appregistry/internal/api/httpapi"
	"github.com/louisbranch/appregistry/internal/platform/admingrant"
	"github.com/louisbranch/appregistry/internal/platform/timeouts"
	"github.com/louisbranch/appregistry/internal/registry/hostbuild"
	registrysqlite "github.com/louisbranch/appregistry/internal/storage/sqlite"
	"github.com/louisbranch/appregistry/internal/telemetry"
)

// Server hosts the registry service: an HTTP JSON API plus a gRPC health
// endpoint for liveness probes.
type Server struct {
	listener     net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	store        *registrysqlite.Store
	httpListener net.Listener
	httpServer   *http.Server
}

// New creates a configured registry server listening on the provided port.
func New(port int, httpAddr string) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}
	store, err := openStore()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	grants, err := admingrant.LoadConfigFromEnv(nil)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}
	if !grants.Enabled() {
		log.Printf("admin grant key not configured; mutating requests will be rejected")
	}

	var httpListener net.Listener
	var httpServer *http.Server
	if strings.TrimSpace(httpAddr) != "" {
		httpListener, err = net.Listen("tcp", httpAddr)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("listen on http addr %s: %w", httpAddr, err)
		}
		mux := http.NewServeMux()
		api := httpapi.NewServer(store, hostbuild.New(), grants, telemetry.NewEmitter(store))
		api.RegisterRoutes(mux)
		httpServer = &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:     listener,
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
		httpListener: httpListener,
		httpServer:   httpServer,
	}, nil
}

// Addr returns the gRPC listener address for the registry server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the HTTP listener address, or "" when the HTTP API is
// disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Run creates and serves a registry server until the context ends.
func Run(ctx context.Context, port int, httpAddr string) error {
	registryServer, err := New(port, httpAddr)
	if err != nil {
		return err
	}
	return registryServer.Serve(ctx)
}

// Serve starts the registry server and blocks until it stops or the context
// ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("registry server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	httpErr := make(chan error, 1)
	if s.httpServer != nil && s.httpListener != nil {
		log.Printf("registry HTTP server listening at %v", s.httpListener.Addr())
		go func() {
			httpErr <- s.httpServer.Serve(s.httpListener)
		}()
	}

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	shutdownGRPC := func() {
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
	}
	shutdownHTTP := func() {
		if s.httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			_ = s.httpServer.Shutdown(shutdownCtx)
		}
	}

	select {
	case <-ctx.Done():
		shutdownGRPC()
		shutdownHTTP()
		err := <-serveErr
		return handleErr(err)
	case err := <-serveErr:
		shutdownHTTP()
		return handleErr(err)
	case err := <-httpErr:
		if err == http.ErrServerClosed {
			return nil
		}
		shutdownGRPC()
		grpcErr := <-serveErr
		if handled := handleErr(grpcErr); handled != nil {
			return handled
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func openStore() (*registrysqlite.Store, error) {
	path := strings.TrimSpace(os.Getenv("APPREGISTRY_DB_PATH"))
	if path == "" {
		path = filepath.Join("data", "registry.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := registrysqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close registry store: %v", err)
		}
	}
}
