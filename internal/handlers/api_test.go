package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/services/cache"
	"trailer-sales-engine/internal/services/inventory"
	"trailer-sales-engine/internal/services/pricing"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type stubRecalculator struct {
	result *models.RecalculationResult
	err    error
}

func (s *stubRecalculator) Run(ctx context.Context) (*models.RecalculationResult, error) {
	return s.result, s.err
}

type stubRescorer struct {
	scores map[int64]models.LeadScore
	err    error
}

func (s *stubRescorer) Rescore(ctx context.Context, customerID int64) (models.LeadScore, error) {
	if s.err != nil {
		return models.LeadScore{}, s.err
	}
	score, ok := s.scores[customerID]
	if !ok {
		return models.LeadScore{}, models.ErrCustomerNotFound
	}
	return score, nil
}

type stubDB struct{ err error }

func (s stubDB) HealthCheck(ctx context.Context) error { return s.err }

func newTestAPI(deps APIDeps) http.Handler {
	deps.Now = func() time.Time { return fixedNow }
	return NewAPI(deps).Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp Response
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func dataAs[T any](t *testing.T, resp Response) T {
	t.Helper()

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	h := newTestAPI(APIDeps{DB: stubDB{}})

	for _, path := range []string{"/health", "/api/health"} {
		w, resp := doRequest(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)

		data := dataAs[map[string]interface{}](t, resp)
		assert.Equal(t, "connected", data["database"])
		assert.Equal(t, "standard", data["pricing_policy"])
	}

	h = newTestAPI(APIDeps{DB: stubDB{err: errors.New("down")}})
	_, resp := doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, "disconnected", dataAs[map[string]interface{}](t, resp)["database"])
}

func TestFinanceCalculate(t *testing.T) {
	h := newTestAPI(APIDeps{})

	w, resp := doRequest(t, h, http.MethodPost, "/api/finance/calculate",
		`{"price":20000,"down_payment":0,"tax_percent":0,"fees":0,"apr_percent":8,"term_months":60}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := dataAs[models.AmortizationResult](t, resp)
	assert.InDelta(t, 405.53, result.MonthlyPayment, 0.01)
	assert.InDelta(t, 20000.0, result.Principal, 1e-9)
}

func TestFinanceCalculate_BadRequests(t *testing.T) {
	h := newTestAPI(APIDeps{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{invalid-json}`},
		{"empty body", ``},
		{"negative term", `{"price":20000,"apr_percent":8,"term_months":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doRequest(t, h, http.MethodPost, "/api/finance/calculate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestAPI(APIDeps{})

	w, _ := doRequest(t, h, http.MethodGet, "/api/finance/calculate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPaymentMatrix_Cached(t *testing.T) {
	c := cache.NewMemoryCache()
	h := newTestAPI(APIDeps{Cache: c, CacheTTL: time.Minute})
	body := `{"principal":10000,"aprs":[0,8],"terms":[24,30]}`

	w, resp := doRequest(t, h, http.MethodPost, "/api/finance/payment-matrix", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	matrix := dataAs[models.PaymentMatrix](t, resp)
	require.Len(t, matrix.Rows, 2)
	assert.Equal(t, 416.67, matrix.Rows[0][0].MonthlyPayment)
	assert.Equal(t, 333.33, matrix.Rows[0][1].MonthlyPayment)

	w, resp = doRequest(t, h, http.MethodPost, "/api/finance/payment-matrix", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, matrix, dataAs[models.PaymentMatrix](t, resp))
}

func TestMatrixCacheKey_DefaultsAreCanonical(t *testing.T) {
	implicit := matrixCacheKey(PaymentMatrixRequest{Principal: 15000})
	explicit := matrixCacheKey(PaymentMatrixRequest{
		Principal: 15000,
		APRs:      []float64{6.99, 8.99, 10.99, 12.99},
		Terms:     []int{36, 48, 60, 72},
	})
	assert.Equal(t, implicit, explicit)
	assert.NotEqual(t, implicit, matrixCacheKey(PaymentMatrixRequest{Principal: 15001}))
}

func TestSolveAPR(t *testing.T) {
	h := newTestAPI(APIDeps{})

	w, resp := doRequest(t, h, http.MethodPost, "/api/finance/solve-apr",
		`{"principal":20000,"target_payment":405.53,"term_months":60}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := dataAs[SolveAPRResponse](t, resp)
	assert.InDelta(t, 8.0, result.APR, 0.01)
	assert.Equal(t, models.APROutcomeConverged, result.Outcome)
	assert.True(t, result.Reliable)

	_, resp = doRequest(t, h, http.MethodPost, "/api/finance/solve-apr",
		`{"principal":12000,"target_payment":150,"term_months":60}`)
	result = dataAs[SolveAPRResponse](t, resp)
	assert.False(t, result.Reliable)
}

func TestSchedule(t *testing.T) {
	h := newTestAPI(APIDeps{})

	w, resp := doRequest(t, h, http.MethodPost, "/api/finance/schedule",
		`{"principal":12000,"apr_percent":0,"term_months":12,"start_date":"2026-04-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)

	schedule := dataAs[[]models.ScheduleEntry](t, resp)
	require.Len(t, schedule, 12)
	assert.Equal(t, "1000.00", schedule[0].Payment)
	assert.Equal(t, "0.00", schedule[11].RemainingBalance)

	_, resp = doRequest(t, h, http.MethodPost, "/api/finance/schedule", `{"principal":0,"apr_percent":5,"term_months":12}`)
	assert.Empty(t, dataAs[[]models.ScheduleEntry](t, resp))

	w, resp = doRequest(t, h, http.MethodPost, "/api/finance/schedule", `{"principal":20000,"apr_percent":0,"term_months":50000000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestCashEndpoints(t *testing.T) {
	h := newTestAPI(APIDeps{})

	w, resp := doRequest(t, h, http.MethodPost, "/api/cash/calculate",
		`{"price":25000,"tax_percent":8,"fees":500,"added_options":1000}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 28580.0, dataAs[models.CashSettlement](t, resp).TotalCash, 1e-6)

	w, resp = doRequest(t, h, http.MethodPost, "/api/cash/discount", `{"price":8000,"discount_percent":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 7600.0, dataAs[models.CashDiscount](t, resp).DiscountedPrice, 1e-9)
}

func TestSellingPrice(t *testing.T) {
	h := newTestAPI(APIDeps{Policy: pricing.StandardPolicy})

	w, resp := doRequest(t, h, http.MethodPost, "/api/pricing/selling-price", `{"cost":3425,"listed_price":6000}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := dataAs[SellingPriceResponse](t, resp)
	require.NotNil(t, result.Price)
	assert.Equal(t, 4825.0, *result.Price)
	assert.Equal(t, models.PricingStatusPriced, result.Status)
	assert.Equal(t, "standard", result.Policy)
	require.NotNil(t, result.RangeCheck)
	assert.True(t, result.RangeCheck.Valid)

	_, resp = doRequest(t, h, http.MethodPost, "/api/pricing/selling-price", `{"cost":"Call for Price"}`)
	result = dataAs[SellingPriceResponse](t, resp)
	assert.Nil(t, result.Price)
	assert.Equal(t, models.PricingStatusAskForPricing, result.Status)
	assert.Nil(t, result.RangeCheck)
}

func TestValidateRange(t *testing.T) {
	h := newTestAPI(APIDeps{})

	_, resp := doRequest(t, h, http.MethodPost, "/api/pricing/validate-range", `{"selling_price":6999,"listed_price":10000}`)
	check := dataAs[models.PriceRangeCheck](t, resp)
	assert.False(t, check.Valid)
	assert.Equal(t, 7000.0, check.Min)
	assert.NotEmpty(t, check.Message)
}

func TestLeadScore(t *testing.T) {
	h := newTestAPI(APIDeps{})

	w, resp := doRequest(t, h, http.MethodPost, "/api/leads/score", `{
		"status": "Quote Sent",
		"financing_type": "cash",
		"application_status": "approved",
		"last_activity_at": "2026-03-15T08:00:00Z",
		"created_at": "2026-03-05T12:00:00Z"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	score := dataAs[models.LeadScore](t, resp)
	assert.Equal(t, 90, score.Score)
	assert.Equal(t, models.TemperatureHot, score.Temperature)
	assert.Equal(t, models.PriorityUrgent, score.Priority)
	assert.Equal(t, 10, score.DaysInStage)
}

func TestLeadScore_InvalidStatus(t *testing.T) {
	h := newTestAPI(APIDeps{})

	w, resp := doRequest(t, h, http.MethodPost, "/api/leads/score", `{"status":"maybe","financing_type":"cash"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error, "invalid lead status")
}

func TestRecalculate(t *testing.T) {
	w, _ := doRequest(t, newTestAPI(APIDeps{}), http.MethodPost, "/api/leads/recalculate", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	recalc := &stubRecalculator{result: &models.RecalculationResult{BatchID: "b-1", Total: 3, Updated: 2, Failed: 1}}
	w, resp := doRequest(t, newTestAPI(APIDeps{Recalculator: recalc}), http.MethodPost, "/api/leads/recalculate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Rescored 2 of 3 customers", resp.Message)
	assert.Equal(t, "b-1", dataAs[models.RecalculationResult](t, resp).BatchID)

	recalc = &stubRecalculator{err: errors.New("db down")}
	w, resp = doRequest(t, newTestAPI(APIDeps{Recalculator: recalc}), http.MethodPost, "/api/leads/recalculate", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestCustomerScore(t *testing.T) {
	w, _ := doRequest(t, newTestAPI(APIDeps{}), http.MethodPost, "/api/customers/4/score", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	rescorer := &stubRescorer{scores: map[int64]models.LeadScore{
		4: {Score: 72, Temperature: models.TemperatureHot, Priority: models.PriorityHigh, DaysInStage: 2},
	}}
	h := newTestAPI(APIDeps{Rescorer: rescorer})

	w, resp := doRequest(t, h, http.MethodPost, "/api/customers/4/score", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rescorer.scores[4], dataAs[models.LeadScore](t, resp))

	w, _ = doRequest(t, h, http.MethodPost, "/api/customers/99/score", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(t, h, http.MethodPost, "/api/customers/abc/score", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = doRequest(t, newTestAPI(APIDeps{Rescorer: &stubRescorer{err: errors.New("db down")}}),
		http.MethodPost, "/api/customers/4/score", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", resp.Error)
}

func multipartUpload(t *testing.T, dealerID, fileName, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("dealer_id", dealerID))
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestInventoryImport(t *testing.T) {
	store := &memoryInventoryStore{rows: map[int64][]*models.PricedInventoryItem{}}
	h := newTestAPI(APIDeps{Importer: inventory.NewImporter(store, pricing.StandardPolicy)})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartUpload(t, "5", "feed.csv", "stock_number,cost,listed_price\nT-1,3425,6000\nT-2,TBD,8000"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Imported 2 of 2 rows", resp.Message)

	summary := dataAs[models.InventoryImportSummary](t, resp)
	assert.Equal(t, 1, summary.Priced)
	assert.Equal(t, 1, summary.AskForPricing)
	assert.Len(t, store.rows[5], 2)

	tests := []struct {
		name     string
		dealerID string
		fileName string
	}{
		{"bad dealer", "abc", "feed.csv"},
		{"unsupported format", "5", "feed.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, multipartUpload(t, tt.dealerID, tt.fileName, "x"))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w = httptest.NewRecorder()
	newTestAPI(APIDeps{}).ServeHTTP(w, multipartUpload(t, "5", "feed.csv", "x"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
