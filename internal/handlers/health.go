package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// HealthHandler answers API Gateway health checks.
type HealthHandler struct {
	db      HealthChecker
	stage   string
	version string
	now     func() time.Time
}

// NewHealthHandler creates a new health handler. db may be nil when no
// database is configured.
func NewHealthHandler(db HealthChecker, stage, version string) *HealthHandler {
	if version == "" {
		version = "1.0.0"
	}
	return &HealthHandler{db: db, stage: stage, version: version, now: time.Now}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Database  string `json:"database,omitempty"`
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Service:   "trailer-sales-engine",
		Version:   h.version,
		Stage:     h.stage,
		Database:  "not configured",
	}

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		} else {
			response.Database = "connected"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return gatewayResponse(statusCode, Response{Success: statusCode == http.StatusOK, Data: response})
}
