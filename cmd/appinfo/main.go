package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	appinfocmd "github.com/louisbranch/appregistry/internal/cmd/appinfo"
	"github.com/louisbranch/appregistry/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := appinfocmd.Run(ctx, os.Args[1:], os.Stdout); err != nil {
		config.Exitf("appinfo: %v", err)
	}
}
