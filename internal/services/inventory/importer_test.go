package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/services/pricing"
)

type fakeStore struct {
	dealerID int64
	items    []*models.PricedInventoryItem
	result   *models.BulkUpsertResult
	err      error
}

func (f *fakeStore) BulkUpsert(ctx context.Context, dealerID int64, items []*models.PricedInventoryItem) (*models.BulkUpsertResult, error) {
	f.dealerID = dealerID
	f.items = items
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.BulkUpsertResult{UpsertedCount: len(items)}, nil
}

const feed = `stock_number,description,cost,listed_price
T-1,Utility 6x10,3425,6000
T-2,Enclosed 8.5x20,18425,19000
T-3,Car Hauler,Call for Price,7500
,Missing stock,1000,2000
T-5,Dump 7x14,"$12,000.00",9000`

func TestImport(t *testing.T) {
	store := &fakeStore{}
	importer := NewImporter(store, pricing.StandardPolicy)

	summary, err := importer.Import(context.Background(), 42, "feed.csv", []byte(feed), "batch-1")
	require.NoError(t, err)

	assert.Equal(t, "batch-1", summary.BatchID)
	assert.Equal(t, 5, summary.TotalRows)
	assert.Equal(t, 3, summary.Priced)
	assert.Equal(t, 1, summary.AskForPricing)
	assert.Equal(t, 0, summary.OutOfRange)
	assert.Equal(t, 4, summary.Upserted)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Errors, 1)

	assert.Equal(t, int64(42), store.dealerID)
	require.Len(t, store.items, 4)

	first := store.items[0]
	require.NotNil(t, first.Pricing.Price)
	assert.Equal(t, 4825.0, *first.Pricing.Price)
	assert.True(t, first.RangeCheck.Valid)
	assert.Equal(t, "standard", first.PricingPolicy)
	assert.Equal(t, models.NumericCost(3425), first.Cost)

	placeholder := store.items[2]
	assert.Nil(t, placeholder.Pricing.Price)
	assert.Equal(t, models.PricingStatusAskForPricing, placeholder.Pricing.Status)
	assert.False(t, placeholder.Cost.IsNumeric())
}

func TestImport_FlagsOutOfRange(t *testing.T) {
	store := &fakeStore{}
	importer := NewImporter(store, pricing.StandardPolicy)

	// 10000 * 1.25 = 12500 > 2 x 6000
	summary, err := importer.Import(context.Background(), 1, "feed.csv",
		[]byte("stock_number,cost,listed_price\nT-9,10000,6000"), "b")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.OutOfRange)
	assert.Equal(t, 1, summary.Upserted)
	require.Len(t, store.items, 1)
	assert.False(t, store.items[0].RangeCheck.Valid)
	assert.Contains(t, store.items[0].RangeCheck.Message, "outside the allowed range")
}

func TestImport_NoValidRows(t *testing.T) {
	store := &fakeStore{}
	summary, err := NewImporter(store, pricing.StandardPolicy).
		Import(context.Background(), 1, "feed.csv", []byte("stock_number,description\nT-1,x"), "b")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Upserted)
	assert.NotEmpty(t, summary.Errors)
	assert.Nil(t, store.items)
}

func TestImport_StoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	_, err := NewImporter(store, pricing.StandardPolicy).
		Import(context.Background(), 1, "feed.csv", []byte("stock_number,cost,listed_price\nT-1,100,200"), "b")
	assert.Error(t, err)
}

func TestPrice_UsesPolicy(t *testing.T) {
	importer := NewImporter(&fakeStore{}, pricing.PremiumPolicy)
	priced := importer.Price([]*models.InventoryItemCreate{
		{StockNumber: "P-1", CostRaw: "2000", ListedPrice: 4000},
	})

	require.Len(t, priced, 1)
	require.NotNil(t, priced[0].Pricing.Price)
	assert.Equal(t, 3500.0, *priced[0].Pricing.Price)
	assert.Equal(t, "premium", priced[0].PricingPolicy)
}
