// Package s3service stores dealer inventory feeds in S3
package s3service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appConfig "trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/utils"
)

// Key prefixes of the inventory feed lifecycle.
const (
	UploadPrefix    = "uploads/"
	ProcessedPrefix = "processed/"
	FailedPrefix    = "failed/"
)

// Service handles S3 operations
type Service struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	logger     *zap.Logger
}

// PresignedURLResult contains the presigned URL details
type PresignedURLResult struct {
	URL         string    `json:"url"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewService creates a new S3 service for the inventory bucket.
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	return &Service{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: appCfg.InventoryBucket,
		logger:     utils.Component("s3"),
	}, nil
}

// FeedContentType returns the upload content type for a feed file name.
func FeedContentType(fileName string) (string, error) {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".csv":
		return "text/csv", nil
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFeedFormat, path.Ext(fileName))
	}
}

// FeedUploadKey builds the object key for a dealer's feed upload:
// uploads/{dealerID}/{uuid}{ext}.
func FeedUploadKey(dealerID int64, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s%d/%s%s", UploadPrefix, dealerID, uuid.New().String(), ext)
}

// DealerFromKey extracts the dealer ID from an upload key.
func DealerFromKey(key string) (int64, error) {
	rest, ok := strings.CutPrefix(key, UploadPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: key %q is not under %s", models.ErrInvalidInput, key, UploadPrefix)
	}
	dealer, _, ok := strings.Cut(rest, "/")
	if !ok {
		return 0, fmt.Errorf("%w: key %q has no dealer segment", models.ErrInvalidInput, key)
	}
	dealerID, err := strconv.ParseInt(dealer, 10, 64)
	if err != nil || dealerID <= 0 {
		return 0, fmt.Errorf("%w: invalid dealer id %q", models.ErrInvalidInput, dealer)
	}
	return dealerID, nil
}

// GeneratePresignedUploadURL creates a presigned URL for uploading a feed file
func (s *Service) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*PresignedURLResult, error) {
	if expiryMinutes <= 0 {
		expiryMinutes = 15
	}

	expiry := time.Duration(expiryMinutes) * time.Minute

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presignedReq, err := s.presigner.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		s.logger.Error("Failed to generate presigned URL",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.Info("Generated presigned upload URL",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("expiry_minutes", expiryMinutes),
	)

	return &PresignedURLResult{
		URL:         presignedReq.URL,
		Key:         key,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(expiry),
	}, nil
}

// DownloadFile downloads an object. An empty bucket means the inventory bucket.
func (s *Service) DownloadFile(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		bucket = s.bucketName
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to download file from S3",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	s.logger.Info("Downloaded file from S3",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return data, nil
}

// Archive moves a processed upload under the given prefix (copy + delete),
// keeping the path below uploads/.
func (s *Service) Archive(ctx context.Context, bucket, key, prefix string) error {
	if bucket == "" {
		bucket = s.bucketName
	}
	destKey := prefix + strings.TrimPrefix(key, UploadPrefix)

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(fmt.Sprintf("%s/%s", bucket, key)),
		Key:        aws.String(destKey),
	})
	if err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.Info("Archived feed file",
		zap.String("source", key),
		zap.String("destination", destKey),
	)

	return nil
}
