package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/mlaurent/consignd/internal/adapter/driven/memory"
	"github.com/mlaurent/consignd/internal/adapter/driven/shopify"
	sqliteadapter "github.com/mlaurent/consignd/internal/adapter/driven/sqlite"
	httphandler "github.com/mlaurent/consignd/internal/adapter/driving/http"
	"github.com/mlaurent/consignd/internal/application"
	"github.com/mlaurent/consignd/internal/config"
	"github.com/mlaurent/consignd/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration. Shopify secrets may be absent at this point;
	// endpoints answer with a configuration error until they are set.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"api_version", cfg.APIVersion,
		"shop_domain", cfg.ShopDomain,
		"secrets_configured", cfg.HasShopifyCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Pick the token store backend: sqlite when a path is configured
	// (tokens encrypted at rest), in-memory otherwise.
	var tokens driven.TokenStore = memory.NewTokenStore()
	if cfg.TokenDBPath != "" {
		if cfg.SecretKey == nil {
			return fmt.Errorf("CONSIGND_TOKEN_DB_PATH requires CONSIGND_SECRET_KEY for at-rest encryption")
		}

		db, err := sqliteadapter.NewDB(cfg.TokenDBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing token database", "error", closeErr)
			}
		}()

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}

		tokens = sqliteadapter.NewTokenRepo(db, cfg.SecretKey)
		slog.Info("sqlite token store enabled", "path", cfg.TokenDBPath)
	}

	// 4. Wire the upstream client and application services.
	admin := shopify.NewClient(cfg.ShopDomain, cfg.ClientID, cfg.ClientSecret, cfg.APIVersion, tokens, slog.Default())
	uploadSvc := application.NewUploadService(admin, slog.Default())
	submissionSvc := application.NewSubmissionService(admin, slog.Default())

	// 5. HTTP handler and middleware stack.
	apiHandler := httphandler.NewHandler(cfg, uploadSvc, submissionSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 6. Wait for shutdown signal, then drain.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
