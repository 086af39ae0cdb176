// S3-triggered inventory feed import Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/handlers"
	"trailer-sales-engine/internal/services/database"
	"trailer-sales-engine/internal/services/inventory"
	"trailer-sales-engine/internal/services/pricing"
	s3service "trailer-sales-engine/internal/services/s3"
	"trailer-sales-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()
	logger := utils.GetLogger()

	policy := pricing.PolicyFromConfig(cfg)
	if err := policy.Validate(); err != nil {
		logger.Fatal("Invalid pricing policy", zap.String("policy", policy.Name), zap.Error(err))
	}

	ctx := context.Background()
	files, err := s3service.NewService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create S3 service", zap.Error(err))
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	importer := inventory.NewImporter(database.NewInventoryRepository(db), policy)
	lambda.Start(handlers.NewInventoryImportHandler(files, importer).Handle)
}
