// Health Check Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/handlers"
	"trailer-sales-engine/internal/services/database"
	"trailer-sales-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	// A missing database degrades the health report instead of failing the cold start.
	var checker handlers.HealthChecker
	if cfg.HasDatabase() {
		db, err := database.New(context.Background(), cfg)
		if err != nil {
			utils.GetLogger().Warn("Database unavailable", zap.Error(err))
		} else {
			defer db.Close()
			checker = db
		}
	}

	handler := handlers.NewHealthHandler(checker, cfg.Stage, "")
	lambda.Start(handler.Handle)
}
