// Package app wires the congress service together and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/statecraft/congress/internal/platform/config"
	"github.com/statecraft/congress/internal/platform/otel"
	congresshttp "github.com/statecraft/congress/internal/services/congress/api/http"
	"github.com/statecraft/congress/internal/services/congress/auth"
	"github.com/statecraft/congress/internal/services/congress/service"
	"github.com/statecraft/congress/internal/services/congress/storage/sqlite"
	"github.com/statecraft/congress/internal/telemetry"
)

// Config holds server configuration from the environment.
type Config struct {
	HTTPAddr       string `env:"CONGRESS_HTTP_ADDR" envDefault:":8080"`
	DBPath         string `env:"CONGRESS_DB_PATH" envDefault:"congress.db"`
	AdminPrincipal string `env:"CONGRESS_ADMIN_PRINCIPAL"`
}

// LoadConfig reads server configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.AdminPrincipal) == "" {
		return Config{}, fmt.Errorf("CONGRESS_ADMIN_PRINCIPAL is required")
	}
	return cfg, nil
}

// Run starts the congress HTTP server and blocks until ctx is cancelled or
// the server fails.
func Run(ctx context.Context, cfg Config) error {
	shutdownTracing, err := otel.Setup(ctx, "congress")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	credentialCfg, err := auth.LoadConfigFromEnv(nil)
	if err != nil {
		return fmt.Errorf("load credential config: %w", err)
	}

	svc := service.New(store, cfg.AdminPrincipal,
		service.WithAudit(telemetry.NewEmitter(store)),
	)
	handler := congresshttp.NewWithConfig(svc, credentialCfg)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("congress listening on %s", cfg.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}
