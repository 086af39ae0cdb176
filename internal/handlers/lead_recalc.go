package handlers

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/utils"
)

// LeadRecalcHandler runs the lead score batch on an EventBridge schedule.
type LeadRecalcHandler struct {
	recalculator LeadRecalculator
	logger       *zap.Logger
}

// NewLeadRecalcHandler creates a new scheduled recalculation handler.
func NewLeadRecalcHandler(recalculator LeadRecalculator) *LeadRecalcHandler {
	return &LeadRecalcHandler{recalculator: recalculator, logger: utils.Component("lead-recalc-handler")}
}

// Handle rescores all customers. Per-customer failures are reported in the
// result; only a failure to run the batch at all is returned as an error.
func (h *LeadRecalcHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (*models.RecalculationResult, error) {
	h.logger.Info("Scheduled lead recalculation", zap.String("event_id", event.ID), zap.Time("event_time", event.Time))

	result, err := h.recalculator.Run(ctx)
	if err != nil {
		return result, fmt.Errorf("lead recalculation failed: %w", err)
	}
	return result, nil
}
