// Package main starts the congress HTTP server.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/statecraft/congress/internal/services/congress/app"
)

func main() {
	log.SetPrefix("[CONGRESS] ")

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
