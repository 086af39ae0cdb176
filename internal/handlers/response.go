// Package handlers provides the HTTP API and Lambda handlers for the trailer sales engine.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/utils"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// encodeFailureBody is sent when a response cannot be marshaled.
const encodeFailureBody = `{"success":false,"error":"Internal server error"}`

// writeJSON marshals before touching the header, so an unencodable payload
// becomes a 500 envelope instead of a 200 with an empty body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		utils.Component("api").Error("Failed to encode response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(encodeFailureBody)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

// decodeJSON reads a JSON body into dst. Malformed or oversized bodies are
// reported as invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", models.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidLeadStatus),
		errors.Is(err, models.ErrInvalidFinancingType),
		errors.Is(err, models.ErrUnsupportedFeedFormat):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrCustomerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var lambdaHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,Authorization",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
	"Content-Type":                 "application/json",
}

// gatewayResponse wraps a Response envelope for API Gateway.
func gatewayResponse(statusCode int, response Response) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(response)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Headers: lambdaHeaders}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    lambdaHeaders,
		Body:       string(body),
	}, nil
}
