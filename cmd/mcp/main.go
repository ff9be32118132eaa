// Package main starts the congress MCP server on stdio.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/statecraft/congress/internal/mcp"
	"github.com/statecraft/congress/internal/services/congress/app"
	"github.com/statecraft/congress/internal/services/congress/service"
	"github.com/statecraft/congress/internal/services/congress/storage/sqlite"
	"github.com/statecraft/congress/internal/telemetry"
)

func main() {
	// Logs go to stderr by default, which keeps stdout clean for the MCP
	// stdio transport.
	log.SetPrefix("[CONGRESS-MCP] ")

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	dbPath := flag.String("db", cfg.DBPath, "path to the congress SQLite database")
	flag.Parse()

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	svc := service.New(store, cfg.AdminPrincipal,
		service.WithAudit(telemetry.NewEmitter(store)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mcp.New(svc).Serve(ctx); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}
