package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"trailer-sales-engine/internal/models"
)

// InventoryRepository handles dealer inventory persistence.
type InventoryRepository struct {
	db *DB
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

const upsertInventorySQL = `
	INSERT INTO inventory (dealer_id, stock_number, description, cost_raw, cost, listed_price,
		selling_price, pricing_status, pricing_policy, price_in_range, batch_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	ON CONFLICT (dealer_id, stock_number) DO UPDATE SET
		description = EXCLUDED.description,
		cost_raw = EXCLUDED.cost_raw,
		cost = EXCLUDED.cost,
		listed_price = EXCLUDED.listed_price,
		selling_price = EXCLUDED.selling_price,
		pricing_status = EXCLUDED.pricing_status,
		pricing_policy = EXCLUDED.pricing_policy,
		price_in_range = EXCLUDED.price_in_range,
		batch_id = EXCLUDED.batch_id,
		updated_at = EXCLUDED.updated_at`

// BulkUpsert writes priced feed rows for a dealer in one transaction. Each row
// runs under its own savepoint so a bad row is counted and skipped without
// aborting the rest.
func (r *InventoryRepository) BulkUpsert(ctx context.Context, dealerID int64, items []*models.PricedInventoryItem) (*models.BulkUpsertResult, error) {
	result := &models.BulkUpsertResult{
		Errors: []string{},
	}
	now := time.Now().UTC()

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, item := range items {
			if err := upsertItem(ctx, tx, dealerID, item, now); err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("stock %s: %v", item.StockNumber, err))
				continue
			}
			result.UpsertedCount++
		}
		return nil
	})

	if err != nil {
		return result, fmt.Errorf("bulk upsert failed: %w", err)
	}

	return result, nil
}

func upsertItem(ctx context.Context, tx pgx.Tx, dealerID int64, item *models.PricedInventoryItem, now time.Time) error {
	savepoint, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = savepoint.Rollback(ctx) }()

	var cost *float64
	if item.Cost.IsNumeric() {
		amount := item.Cost.Amount
		cost = &amount
	}

	_, err = savepoint.Exec(ctx, upsertInventorySQL,
		dealerID,
		item.StockNumber,
		item.Description,
		item.CostRaw,
		cost,
		item.ListedPrice,
		item.Pricing.Price,
		string(item.Pricing.Status),
		item.PricingPolicy,
		item.RangeCheck.Valid,
		item.BatchID,
		now,
	)
	if err != nil {
		return err
	}
	return savepoint.Commit(ctx)
}
