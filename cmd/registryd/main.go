package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	registrydcmd "github.com/louisbranch/appregistry/internal/cmd/registryd"
)

func main() {
	cfg, err := registrydcmd.ParseConfig(flag.CommandLine, os.Args[1:], func(key string) (string, bool) {
		value, ok := os.LookupEnv(key)
		return value, ok
	})
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[REGISTRYD] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := registrydcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
