package s3service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailer-sales-engine/internal/models"
)

func TestFeedContentType(t *testing.T) {
	ct, err := FeedContentType("june-stock.CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", ct)

	ct, err = FeedContentType("feed.xlsx")
	require.NoError(t, err)
	assert.Contains(t, ct, "spreadsheetml")

	_, err = FeedContentType("feed.pdf")
	assert.ErrorIs(t, err, models.ErrUnsupportedFeedFormat)
}

func TestFeedUploadKey_RoundTripsDealer(t *testing.T) {
	key := FeedUploadKey(42, "Stock List.xlsx")
	assert.True(t, strings.HasPrefix(key, "uploads/42/"))
	assert.True(t, strings.HasSuffix(key, ".xlsx"))

	dealerID, err := DealerFromKey(key)
	require.NoError(t, err)
	assert.Equal(t, int64(42), dealerID)
}

func TestDealerFromKey_Invalid(t *testing.T) {
	for _, key := range []string{"processed/42/a.csv", "uploads/a.csv", "uploads/abc/a.csv", "uploads/0/a.csv"} {
		_, err := DealerFromKey(key)
		assert.ErrorIs(t, err, models.ErrInvalidInput, key)
	}
}
