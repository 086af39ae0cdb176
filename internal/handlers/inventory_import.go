package handlers

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/models"
	s3service "trailer-sales-engine/internal/services/s3"
	"trailer-sales-engine/internal/utils"
)

// FeedFiles reads and archives uploaded feed objects.
type FeedFiles interface {
	DownloadFile(ctx context.Context, bucket, key string) ([]byte, error)
	Archive(ctx context.Context, bucket, key, prefix string) error
}

// FeedImporter prices and stores one feed file.
type FeedImporter interface {
	Import(ctx context.Context, dealerID int64, fileName string, data []byte, batchID string) (*models.InventoryImportSummary, error)
}

// InventoryImportHandler processes S3 events for uploaded inventory feeds.
type InventoryImportHandler struct {
	files    FeedFiles
	importer FeedImporter
	logger   *zap.Logger
}

// NewInventoryImportHandler creates a new inventory import handler.
func NewInventoryImportHandler(files FeedFiles, importer FeedImporter) *InventoryImportHandler {
	return &InventoryImportHandler{
		files:    files,
		importer: importer,
		logger:   utils.Component("inventory-import-handler"),
	}
}

// FeedImportResult reports one processed feed object.
type FeedImportResult struct {
	Bucket  string                         `json:"bucket"`
	Key     string                         `json:"key"`
	Summary *models.InventoryImportSummary `json:"summary,omitempty"`
	Error   string                         `json:"error,omitempty"`
}

// InventoryImportResult is the result of an S3 event invocation.
type InventoryImportResult struct {
	Message string             `json:"message"`
	Files   []FeedImportResult `json:"files"`
}

// Handle imports every feed named in the event. Imported files move to
// processed/, files that cannot be imported move to failed/ so a retry does
// not pick them up again.
func (h *InventoryImportHandler) Handle(ctx context.Context, s3Event events.S3Event) (InventoryImportResult, error) {
	if len(s3Event.Records) == 0 {
		return InventoryImportResult{Message: "No records to process"}, nil
	}

	result := InventoryImportResult{Files: make([]FeedImportResult, 0, len(s3Event.Records))}
	failed := 0
	for _, record := range s3Event.Records {
		file := h.processRecord(ctx, record)
		if file.Error != "" {
			failed++
		}
		result.Files = append(result.Files, file)
	}

	result.Message = fmt.Sprintf("Imported %d of %d feed files", len(result.Files)-failed, len(result.Files))
	return result, nil
}

func (h *InventoryImportHandler) processRecord(ctx context.Context, record events.S3EventRecord) FeedImportResult {
	bucket := record.S3.Bucket.Name
	file := FeedImportResult{Bucket: bucket, Key: record.S3.Object.Key}

	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		file.Error = fmt.Sprintf("failed to decode S3 key: %v", err)
		h.logger.Error("Failed to decode S3 key", zap.String("key", record.S3.Object.Key), zap.Error(err))
		return file
	}
	file.Key = key
	log := h.logger.With(zap.String("bucket", bucket), zap.String("key", key))

	// Objects outside uploads/{dealer}/ are left where they are.
	dealerID, err := s3service.DealerFromKey(key)
	if err != nil {
		file.Error = err.Error()
		log.Warn("Ignoring object outside the upload prefix", zap.Error(err))
		return file
	}

	data, err := h.files.DownloadFile(ctx, bucket, key)
	if err != nil {
		return h.fail(ctx, log, file, fmt.Errorf("failed to download feed: %w", err))
	}

	log.Info("Processing inventory feed", utils.Int64("dealer_id", dealerID), zap.Int("bytes", len(data)))

	summary, err := h.importer.Import(ctx, dealerID, path.Base(key), data, uuid.New().String())
	file.Summary = summary
	if err != nil {
		return h.fail(ctx, log, file, err)
	}
	if summary.Upserted == 0 && summary.Failed > 0 {
		return h.fail(ctx, log, file, fmt.Errorf("%w: no rows imported", models.ErrInvalidInput))
	}

	if err := h.files.Archive(ctx, bucket, key, s3service.ProcessedPrefix); err != nil {
		log.Warn("Failed to archive feed", zap.Error(err))
	}
	return file
}

func (h *InventoryImportHandler) fail(ctx context.Context, log *zap.Logger, file FeedImportResult, err error) FeedImportResult {
	file.Error = err.Error()
	log.Error("Inventory feed import failed", zap.Error(err))

	if archiveErr := h.files.Archive(ctx, file.Bucket, file.Key, s3service.FailedPrefix); archiveErr != nil {
		log.Warn("Failed to move feed to failed/", zap.Error(archiveErr))
	}
	return file
}
