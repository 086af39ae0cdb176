package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/services/inventory"
	"trailer-sales-engine/internal/services/pricing"
	s3service "trailer-sales-engine/internal/services/s3"
)

func decodeGateway[T any](t *testing.T, resp events.APIGatewayProxyResponse) (Response, T) {
	t.Helper()

	var envelope Response
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &envelope))
	return envelope, dataAs[T](t, envelope)
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         HealthChecker
		wantStatus int
		wantDB     string
	}{
		{"no database", nil, http.StatusOK, "not configured"},
		{"connected", stubDB{}, http.StatusOK, "connected"},
		{"disconnected", stubDB{err: errors.New("timeout")}, http.StatusServiceUnavailable, "disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, "test", "")
			h.now = func() time.Time { return fixedNow }

			resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

			_, health := decodeGateway[HealthResponse](t, resp)
			assert.Equal(t, tt.wantDB, health.Database)
			assert.Equal(t, "1.0.0", health.Version)
			assert.Equal(t, "2026-03-15T12:00:00Z", health.Timestamp)
		})
	}
}

type stubPresigner struct {
	key         string
	contentType string
	err         error
}

func (s *stubPresigner) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error) {
	s.key = key
	s.contentType = contentType
	if s.err != nil {
		return nil, s.err
	}
	return &s3service.PresignedURLResult{URL: "https://example.test/" + key, Key: key, ContentType: contentType}, nil
}

func TestPresignedURLHandler(t *testing.T) {
	presigner := &stubPresigner{}
	h := NewPresignedURLHandler(presigner)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		QueryStringParameters: map[string]string{"dealer_id": "7", "filename": "Stock.XLSX"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, result := decodeGateway[s3service.PresignedURLResult](t, resp)
	assert.Regexp(t, `^uploads/7/[0-9a-f-]{36}\.xlsx$`, result.Key)
	assert.Equal(t, presigner.key, result.Key)
	assert.Contains(t, presigner.contentType, "spreadsheetml")
}

func TestPresignedURLHandler_BadRequests(t *testing.T) {
	h := NewPresignedURLHandler(&stubPresigner{})

	tests := []struct {
		name   string
		params map[string]string
	}{
		{"missing dealer", map[string]string{"filename": "a.csv"}},
		{"zero dealer", map[string]string{"dealer_id": "0", "filename": "a.csv"}},
		{"unsupported format", map[string]string{"dealer_id": "3", "filename": "a.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
				HTTPMethod:            http.MethodGet,
				QueryStringParameters: tt.params,
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp, err := NewPresignedURLHandler(&stubPresigner{err: errors.New("no creds")}).Handle(context.Background(),
		events.APIGatewayProxyRequest{QueryStringParameters: map[string]string{"dealer_id": "3"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type fakeFeedFiles struct {
	objects  map[string][]byte
	archived map[string]string
}

func newFakeFeedFiles(objects map[string][]byte) *fakeFeedFiles {
	return &fakeFeedFiles{objects: objects, archived: map[string]string{}}
}

func (f *fakeFeedFiles) DownloadFile(ctx context.Context, bucket, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

func (f *fakeFeedFiles) Archive(ctx context.Context, bucket, key, prefix string) error {
	f.archived[key] = prefix
	return nil
}

type memoryInventoryStore struct {
	rows map[int64][]*models.PricedInventoryItem
}

func (m *memoryInventoryStore) BulkUpsert(ctx context.Context, dealerID int64, items []*models.PricedInventoryItem) (*models.BulkUpsertResult, error) {
	m.rows[dealerID] = append(m.rows[dealerID], items...)
	return &models.BulkUpsertResult{UpsertedCount: len(items)}, nil
}

func s3Event(keys ...string) events.S3Event {
	var event events.S3Event
	for _, key := range keys {
		var record events.S3EventRecord
		record.S3.Bucket.Name = "inventory-bucket"
		record.S3.Object.Key = key
		event.Records = append(event.Records, record)
	}
	return event
}

func TestInventoryImportHandler(t *testing.T) {
	files := newFakeFeedFiles(map[string][]byte{
		"uploads/12/good feed.csv": []byte("Stock #,Dealer Cost,MSRP\nT-1,3425,6000\nT-2,Call for Price,7500"),
		"uploads/12/empty.csv":     []byte("stock_number,cost,listed_price\n,100,200"),
	})
	store := &memoryInventoryStore{rows: map[int64][]*models.PricedInventoryItem{}}
	h := NewInventoryImportHandler(files, inventory.NewImporter(store, pricing.StandardPolicy))

	result, err := h.Handle(context.Background(), s3Event(
		"uploads/12/good+feed.csv",
		"uploads/12/empty.csv",
		"uploads/12/missing.csv",
		"processed/12/old.csv",
	))
	require.NoError(t, err)
	require.Len(t, result.Files, 4)
	assert.Equal(t, "Imported 1 of 4 feed files", result.Message)

	good := result.Files[0]
	assert.Equal(t, "uploads/12/good feed.csv", good.Key)
	assert.Empty(t, good.Error)
	require.NotNil(t, good.Summary)
	assert.Equal(t, 1, good.Summary.Priced)
	assert.Equal(t, 1, good.Summary.AskForPricing)
	assert.Len(t, store.rows[12], 2)

	assert.NotEmpty(t, result.Files[1].Error)
	assert.NotEmpty(t, result.Files[2].Error)
	assert.NotEmpty(t, result.Files[3].Error)

	assert.Equal(t, s3service.ProcessedPrefix, files.archived["uploads/12/good feed.csv"])
	assert.Equal(t, s3service.FailedPrefix, files.archived["uploads/12/empty.csv"])
	assert.Equal(t, s3service.FailedPrefix, files.archived["uploads/12/missing.csv"])
	assert.NotContains(t, files.archived, "processed/12/old.csv")
}

func TestInventoryImportHandler_NoRecords(t *testing.T) {
	h := NewInventoryImportHandler(newFakeFeedFiles(nil), nil)

	result, err := h.Handle(context.Background(), events.S3Event{})
	require.NoError(t, err)
	assert.Equal(t, "No records to process", result.Message)
}

func TestLeadRecalcHandler(t *testing.T) {
	want := &models.RecalculationResult{BatchID: "b-9", Total: 4, Updated: 4}
	result, err := NewLeadRecalcHandler(&stubRecalculator{result: want}).
		Handle(context.Background(), events.CloudWatchEvent{ID: "evt-1"})
	require.NoError(t, err)
	assert.Equal(t, want, result)

	_, err = NewLeadRecalcHandler(&stubRecalculator{err: errors.New("db down")}).
		Handle(context.Background(), events.CloudWatchEvent{})
	assert.ErrorContains(t, err, "db down")
}
