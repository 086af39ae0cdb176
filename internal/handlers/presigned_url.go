package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	s3service "trailer-sales-engine/internal/services/s3"
	"trailer-sales-engine/internal/utils"
)

const uploadURLExpiryMinutes = 15

// UploadPresigner issues presigned PUT URLs.
type UploadPresigner interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler hands out upload URLs for dealer inventory feeds.
type PresignedURLHandler struct {
	presigner UploadPresigner
	logger    *zap.Logger
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(presigner UploadPresigner) *PresignedURLHandler {
	return &PresignedURLHandler{presigner: presigner, logger: utils.Component("presigned-url")}
}

// Handle processes GET /inventory/upload-url?dealer_id=..&filename=..
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: lambdaHeaders}, nil
	}

	dealerID, err := strconv.ParseInt(request.QueryStringParameters["dealer_id"], 10, 64)
	if err != nil || dealerID <= 0 {
		return gatewayResponse(http.StatusBadRequest, Response{Error: "dealer_id must be a positive integer"})
	}

	fileName := request.QueryStringParameters["filename"]
	if fileName == "" {
		fileName = "inventory.csv"
	}
	contentType, err := s3service.FeedContentType(fileName)
	if err != nil {
		return gatewayResponse(http.StatusBadRequest, Response{Error: "Only CSV and XLSX files are allowed"})
	}

	key := s3service.FeedUploadKey(dealerID, fileName)
	result, err := h.presigner.GeneratePresignedUploadURL(ctx, key, contentType, uploadURLExpiryMinutes)
	if err != nil {
		h.logger.Error("Failed to generate presigned URL", utils.Int64("dealer_id", dealerID), utils.Error(err))
		return gatewayResponse(http.StatusInternalServerError, Response{Error: "Failed to generate upload URL"})
	}

	return gatewayResponse(http.StatusOK, Response{Success: true, Data: result})
}
