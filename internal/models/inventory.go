// Package models defines the data structures for the trailer sales engine.
package models

import (
	"time"
)

// InventoryItem is a trailer unit as stored for a dealer.
type InventoryItem struct {
	ID            int64         `json:"id" db:"id"`
	DealerID      int64         `json:"dealer_id" db:"dealer_id"`
	StockNumber   string        `json:"stock_number" db:"stock_number"`
	Description   string        `json:"description" db:"description"`
	CostRaw       string        `json:"cost_raw" db:"cost_raw"`
	Cost          *float64      `json:"cost,omitempty" db:"cost"`
	ListedPrice   float64       `json:"listed_price" db:"listed_price"`
	SellingPrice  *float64      `json:"selling_price,omitempty" db:"selling_price"`
	PricingStatus PricingStatus `json:"pricing_status" db:"pricing_status"`
	PricingPolicy string        `json:"pricing_policy" db:"pricing_policy"`
	PriceInRange  bool          `json:"price_in_range" db:"price_in_range"`
	BatchID       string        `json:"batch_id,omitempty" db:"batch_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// InventoryItemCreate is a parsed feed row before pricing.
type InventoryItemCreate struct {
	StockNumber string  `json:"stock_number" validate:"required"`
	Description string  `json:"description"`
	CostRaw     string  `json:"cost_raw"`
	ListedPrice float64 `json:"listed_price" validate:"gte=0"`
	BatchID     string  `json:"batch_id,omitempty"`
}

// PricedInventoryItem is a feed row after the pricing policy and range guardrail ran.
type PricedInventoryItem struct {
	InventoryItemCreate
	Cost          Cost            `json:"-"`
	Pricing       PricingResult   `json:"pricing"`
	PricingPolicy string          `json:"pricing_policy"`
	RangeCheck    PriceRangeCheck `json:"range_check"`
}

// BulkUpsertResult contains the results of a bulk upsert operation.
type BulkUpsertResult struct {
	UpsertedCount int      `json:"upserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}

// InventoryImportSummary reports a processed inventory feed.
type InventoryImportSummary struct {
	BatchID       string   `json:"batch_id"`
	TotalRows     int      `json:"total_rows"`
	Priced        int      `json:"priced"`
	AskForPricing int      `json:"ask_for_pricing"`
	OutOfRange    int      `json:"out_of_range"`
	Upserted      int      `json:"upserted"`
	Failed        int      `json:"failed"`
	Errors        []string `json:"errors,omitempty"`
}
