// Package inventory prices dealer inventory feeds and stores the result.
package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/services/pricing"
	"trailer-sales-engine/internal/utils"
)

// maxReportedErrors limits the errors carried in an import summary.
const maxReportedErrors = 10

// Store persists priced inventory rows.
type Store interface {
	BulkUpsert(ctx context.Context, dealerID int64, items []*models.PricedInventoryItem) (*models.BulkUpsertResult, error)
}

// Importer parses a feed, prices every row and upserts the result.
type Importer struct {
	store  Store
	policy pricing.Policy
	logger *zap.Logger
}

// NewImporter creates a new feed importer.
func NewImporter(store Store, policy pricing.Policy) *Importer {
	return &Importer{
		store:  store,
		policy: policy,
		logger: utils.Component("inventory-import"),
	}
}

// Price applies the pricing policy and the range guardrail to parsed rows.
// Rows without a usable cost are kept with ASK_FOR_PRICING. An out-of-range
// price is stored but flagged.
func (im *Importer) Price(items []*models.InventoryItemCreate) []*models.PricedInventoryItem {
	priced := make([]*models.PricedInventoryItem, 0, len(items))
	for _, item := range items {
		cost := pricing.ParseCost(item.CostRaw)
		result := im.policy.SellingPrice(cost)

		row := &models.PricedInventoryItem{
			InventoryItemCreate: *item,
			Cost:                cost,
			Pricing:             result,
			PricingPolicy:       im.policy.Name,
		}
		if result.Price != nil {
			row.RangeCheck = pricing.ValidatePriceRange(*result.Price, item.ListedPrice)
		}
		priced = append(priced, row)
	}
	return priced
}

// Import parses, prices and stores one feed file for a dealer.
func (im *Importer) Import(ctx context.Context, dealerID int64, fileName string, data []byte, batchID string) (*models.InventoryImportSummary, error) {
	startTime := time.Now()
	log := im.logger.With(zap.String("batch_id", batchID), utils.Int64("dealer_id", dealerID))

	items, parseErrors := utils.NewInventoryParser().Parse(fileName, data, batchID)

	summary := &models.InventoryImportSummary{
		BatchID:   batchID,
		TotalRows: len(items) + len(parseErrors),
		Failed:    len(parseErrors),
	}
	for _, err := range parseErrors {
		summary.Errors = append(summary.Errors, err.Error())
	}

	if len(items) == 0 {
		log.Warn("No valid rows in inventory feed", zap.String("file", fileName), zap.Int("errors", len(parseErrors)))
		summary.Errors = truncate(summary.Errors)
		return summary, nil
	}

	priced := im.Price(items)
	for _, row := range priced {
		if row.Pricing.Status == models.PricingStatusAskForPricing {
			summary.AskForPricing++
			continue
		}
		summary.Priced++
		if !row.RangeCheck.Valid {
			summary.OutOfRange++
			log.Warn("Selling price outside listed range",
				zap.String("stock_number", row.StockNumber),
				zap.String("message", row.RangeCheck.Message),
			)
		}
	}

	result, err := im.store.BulkUpsert(ctx, dealerID, priced)
	if err != nil {
		return summary, fmt.Errorf("failed to store inventory: %w", err)
	}
	summary.Upserted = result.UpsertedCount
	summary.Failed += result.FailedCount
	summary.Errors = truncate(append(summary.Errors, result.Errors...))

	log.Info("Inventory feed imported",
		zap.String("file", fileName),
		zap.Int("rows", summary.TotalRows),
		zap.Int("priced", summary.Priced),
		zap.Int("ask_for_pricing", summary.AskForPricing),
		zap.Int("out_of_range", summary.OutOfRange),
		zap.Int("upserted", summary.Upserted),
		zap.Int("failed", summary.Failed),
		zap.Duration("processing_time", time.Since(startTime)),
	)

	return summary, nil
}

func truncate(errs []string) []string {
	if len(errs) > maxReportedErrors {
		return errs[:maxReportedErrors]
	}
	return errs
}
