package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/copperline/courier/internal"
	"github.com/copperline/courier/internal/email"
	"github.com/copperline/courier/internal/handler/api"
	"github.com/copperline/courier/internal/handler/webhook"
	"github.com/copperline/courier/internal/middleware"
	"github.com/copperline/courier/internal/postgres"
	"github.com/copperline/courier/internal/router"
	"github.com/copperline/courier/internal/routes"
	"github.com/copperline/courier/internal/service"
	"github.com/copperline/courier/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewEmailLogStore(pool)

	// Business metrics
	telemetry.InitMetrics()

	// Register one adapter per credentialed provider
	registry := email.NewRegistry(cfg.Email.DefaultProvider)
	if cfg.Email.ResendAPIKey != "" {
		registry.Register(email.NewResendAdapter(cfg.Email.ResendAPIKey))
	}
	if cfg.Email.SendGridAPIKey != "" {
		registry.Register(email.NewSendGridAdapter(cfg.Email.SendGridAPIKey))
	}
	if cfg.Email.BrevoAPIKey != "" {
		registry.Register(email.NewBrevoAdapter(cfg.Email.BrevoAPIKey))
	}
	if cfg.SMTP.Host != "" {
		registry.Register(email.NewSMTPAdapter(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     int(cfg.SMTP.Port),
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}, logger))
	}
	if cfg.Env == "dev" && len(registry.Names()) == 0 {
		logger.Warn("No provider credentials configured; registering mock adapter")
		registry.Register(email.NewMockAdapter())
	}
	logger.Info("Email adapters registered",
		"providers", registry.Names(),
		"default", registry.Default(),
	)

	// Email orchestration
	emailService := service.NewEmailService(store, registry, service.EmailServiceOptions{
		DefaultFrom:    cfg.Email.From,
		DefaultReplyTo: cfg.Email.ReplyTo,
		BaseURL:        cfg.BaseURL,
		Logger:         logger,
	})

	// Webhook reconciliation; unsigned traffic is accepted (and logged)
	// only when no secret is configured
	var verifier email.SignatureVerifier
	if cfg.Email.WebhookSecret != "" {
		v, err := email.NewSvixVerifier(cfg.Email.WebhookSecret)
		if err != nil {
			return fmt.Errorf("failed to initialize webhook verifier: %w", err)
		}
		verifier = v
	} else {
		logger.Warn("EMAIL_WEBHOOK_SECRET not set; webhook signatures will not be verified")
	}
	reconciler := service.NewReconciler(store, verifier, logger)

	// HTTP metrics
	metrics := middleware.NewMetrics("courier")

	auth := &middleware.TokenAuthenticator{Token: cfg.APIToken}

	// Router with global middleware. WithUser runs before the request
	// logger so log lines carry the forwarded principal when present.
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithUser(auth),
		middleware.WithRequestLogger(logger),
		metrics.Middleware,
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		router.Logger(logger),
	)

	routes.RegisterEmailRoutes(r, routes.EmailDeps{
		Handler:     api.NewEmailHandler(emailService),
		RequireAuth: middleware.RequireAuth(auth),
	})
	routes.RegisterWebhookRoutes(r, routes.WebhookDeps{
		EmailHandler: webhook.NewEmailHandler(reconciler).HandleWebhook,
	})
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		Health: func(w http.ResponseWriter, req *http.Request) {
			if err := pool.Ping(req.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		},
		Metrics: metrics.Handler(),
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
