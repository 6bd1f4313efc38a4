package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/fitcoach/internal/billing"
	billingstripe "github.com/dukerupert/fitcoach/internal/billing/stripe"
	"github.com/dukerupert/fitcoach/internal/config"
	"github.com/dukerupert/fitcoach/internal/database"
	"github.com/dukerupert/fitcoach/internal/logging"
	"github.com/dukerupert/fitcoach/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		Stripe: billingstripe.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookKey,
		},
		SiteURL:        cfg.SiteURL,
		DefaultPriceID: cfg.DefaultPriceID,
		JWTSecret:      cfg.JWTSecret,
		JWTIssuer:      cfg.JWTIssuer,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Rate limiter cleanup
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-bgCtx.Done():
				return
			}
		}
	}()

	if cfg.ReconcileInterval > 0 {
		go runReconcile(bgCtx, srv.Syncer(), cfg.ReconcileInterval)
	}

	go func() {
		slog.Info("fitcoach starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// runReconcile periodically retries subscriptions that arrived before their
// customer was linked.
func runReconcile(ctx context.Context, syncer *billing.Syncer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			reconciled, pending, err := syncer.Reconcile(ctx)
			if err != nil {
				slog.Error("reconcile subscriptions", "error", err, "reconciled", reconciled, "pending", pending)
			}
		case <-ctx.Done():
			return
		}
	}
}
