// Scheduled lead recalculation Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/handlers"
	"trailer-sales-engine/internal/services/database"
	"trailer-sales-engine/internal/services/leadscoring"
	sesservice "trailer-sales-engine/internal/services/ses"
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

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	scorer := leadscoring.NewScorerWith(leadscoring.DefaultWeights, leadscoring.ThresholdsFromConfig(cfg))
	opts := []leadscoring.RecalculatorOption{leadscoring.WithScorer(scorer)}
	if cfg.SESSenderEmail != "" && cfg.LeadAlertEmail != "" {
		notifier, err := sesservice.NewService(ctx, cfg)
		if err != nil {
			logger.Warn("SES unavailable, lead alerts disabled", zap.Error(err))
		} else {
			opts = append(opts, leadscoring.WithNotifier(notifier))
		}
	}

	recalculator := leadscoring.NewRecalculator(database.NewCustomerRepository(db), opts...)
	lambda.Start(handlers.NewLeadRecalcHandler(recalculator).Handle)
}
