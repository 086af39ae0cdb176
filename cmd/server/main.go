// Package main runs the trailer sales engine HTTP API for local development
// and container deployments.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/handlers"
	"trailer-sales-engine/internal/services/cache"
	"trailer-sales-engine/internal/services/database"
	"trailer-sales-engine/internal/services/inventory"
	"trailer-sales-engine/internal/services/leadscoring"
	"trailer-sales-engine/internal/services/pricing"
	sesservice "trailer-sales-engine/internal/services/ses"
	"trailer-sales-engine/internal/utils"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.Component("server")

	policy := pricing.PolicyFromConfig(cfg)
	if err := policy.Validate(); err != nil {
		logger.Fatal("Invalid pricing policy", zap.String("policy", policy.Name), zap.Error(err))
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Stage,
			Release:          "trailer-sales-engine@" + version,
			EnableTracing:    true,
			TracesSampleRate: cfg.SentrySampleRate,
		}); err != nil {
			logger.Warn("Sentry initialization failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	scorer := leadscoring.NewScorerWith(leadscoring.DefaultWeights, leadscoring.ThresholdsFromConfig(cfg))

	responseCache, err := cache.New(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
	}

	deps := handlers.APIDeps{
		Policy:   policy,
		Scorer:   scorer,
		Cache:    responseCache,
		CacheTTL: time.Duration(cfg.CacheTTLSecs) * time.Second,
		Version:  version,
	}

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			logger.Warn("Database unavailable, lead scoring writes and inventory import disabled", zap.Error(err))
		} else {
			defer db.Close()

			opts := []leadscoring.RecalculatorOption{leadscoring.WithScorer(scorer)}
			if cfg.SESSenderEmail != "" && cfg.LeadAlertEmail != "" {
				if notifier, err := sesservice.NewService(ctx, cfg); err != nil {
					logger.Warn("SES unavailable, lead alerts disabled", zap.Error(err))
				} else {
					opts = append(opts, leadscoring.WithNotifier(notifier))
				}
			}

			recalculator := leadscoring.NewRecalculator(database.NewCustomerRepository(db), opts...)
			deps.DB = db
			deps.Recalculator = recalculator
			deps.Rescorer = recalculator
			deps.Importer = inventory.NewImporter(database.NewInventoryRepository(db), policy)
		}
	} else {
		logger.Info("No database configured, serving calculators only")
	}

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler.Handler(sentryHandler.Handle(handlers.NewAPI(deps).Routes())),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", server.Addr),
			zap.String("stage", cfg.Stage),
			zap.String("pricing_policy", policy.Name),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("Server failed", zap.Error(err))
		return
	case <-quit:
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
