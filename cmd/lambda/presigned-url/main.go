// Inventory upload presigned URL Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/handlers"
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

	presigner, err := s3service.NewService(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to create S3 service: %v", err)
	}

	lambda.Start(handlers.NewPresignedURLHandler(presigner).Handle)
}
