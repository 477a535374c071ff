// Package registryd wires flags and environment into the registry server.
package registryd

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	server "github.com/louisbranch/appregistry/internal/app/server"
	"github.com/louisbranch/appregistry/internal/platform/otel"
)

// Config holds registryd command configuration.
type Config struct {
	Port     int
	HTTPAddr string
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		Port:     8091,
		HTTPAddr: envOrDefault(lookup, []string{"APPREGISTRY_HTTP_ADDR"}, "localhost:8090"),
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The registry gRPC health port")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The registry HTTP server address")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the registry server.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "registryd")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	return server.Run(ctx, cfg.Port, cfg.HTTPAddr)
}

func envOrDefault(lookup EnvLookup, keys []string, fallback string) string {
	for _, key := range keys {
		if lookup == nil {
			break
		}
		value, ok := lookup(key)
		if ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}
