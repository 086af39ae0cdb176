package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/services/cache"
	"trailer-sales-engine/internal/services/finance"
	"trailer-sales-engine/internal/services/leadscoring"
	"trailer-sales-engine/internal/services/pricing"
	s3service "trailer-sales-engine/internal/services/s3"
	"trailer-sales-engine/internal/utils"
)

// HealthChecker reports backing store connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// LeadRecalculator runs a lead scoring batch.
type LeadRecalculator interface {
	Run(ctx context.Context) (*models.RecalculationResult, error)
}

// CustomerRescorer recomputes and stores the score of one stored customer.
type CustomerRescorer interface {
	Rescore(ctx context.Context, customerID int64) (models.LeadScore, error)
}

// APIDeps are the collaborators of the HTTP API. Cache, DB, Recalculator,
// Rescorer and Importer are optional.
type APIDeps struct {
	Policy       pricing.Policy
	Scorer       *leadscoring.Scorer
	Recalculator LeadRecalculator
	Rescorer     CustomerRescorer
	Importer     FeedImporter
	Cache        cache.Cache
	CacheTTL     time.Duration
	DB           HealthChecker
	Version      string
	Now          func() time.Time
}

// API serves the finance, pricing and lead scoring endpoints.
type API struct {
	deps   APIDeps
	logger *zap.Logger
}

// NewAPI creates the HTTP API.
func NewAPI(deps APIDeps) *API {
	if deps.Scorer == nil {
		deps.Scorer = leadscoring.NewScorer()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Policy.MarkupFactor == 0 {
		deps.Policy = pricing.StandardPolicy
	}
	if deps.Version == "" {
		deps.Version = "1.0.0"
	}
	return &API{deps: deps, logger: utils.Component("api")}
}

// Routes registers every endpoint on a new mux.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("GET /api/health", a.healthHandler)

	mux.HandleFunc("POST /api/finance/calculate", a.financeHandler)
	mux.HandleFunc("POST /api/finance/payment-matrix", a.paymentMatrixHandler)
	mux.HandleFunc("POST /api/finance/solve-apr", a.solveAPRHandler)
	mux.HandleFunc("POST /api/finance/schedule", a.scheduleHandler)

	mux.HandleFunc("POST /api/cash/calculate", a.cashHandler)
	mux.HandleFunc("POST /api/cash/discount", a.cashDiscountHandler)

	mux.HandleFunc("POST /api/pricing/selling-price", a.sellingPriceHandler)
	mux.HandleFunc("POST /api/pricing/validate-range", a.validateRangeHandler)

	mux.HandleFunc("POST /api/leads/score", a.leadScoreHandler)
	mux.HandleFunc("POST /api/leads/recalculate", a.recalculateHandler)
	mux.HandleFunc("POST /api/customers/{id}/score", a.customerScoreHandler)

	mux.HandleFunc("POST /api/inventory/import", a.inventoryImportHandler)

	return mux
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		writeError(w, status, "Internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "not configured"
	if a.deps.DB != nil {
		dbStatus = "connected"
		if err := a.deps.DB.HealthCheck(r.Context()); err != nil {
			dbStatus = "disconnected"
		}
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Trailer sales engine API is running",
		Data: map[string]interface{}{
			"status":         "healthy",
			"database":       dbStatus,
			"pricing_policy": a.deps.Policy.Name,
			"timestamp":      a.deps.Now().UTC().Format(time.RFC3339),
			"version":        a.deps.Version,
		},
	})
}

func (a *API) financeHandler(w http.ResponseWriter, r *http.Request) {
	var terms models.LoanTerms
	if err := decodeJSON(w, r, &terms); err != nil {
		a.fail(w, r, err)
		return
	}

	result, err := finance.CalculateFinance(terms)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, result)
}

// PaymentMatrixRequest asks for a payment grid. Empty lists use the defaults.
type PaymentMatrixRequest struct {
	Principal float64   `json:"principal"`
	APRs      []float64 `json:"aprs,omitempty"`
	Terms     []int     `json:"terms,omitempty"`
}

func (a *API) paymentMatrixHandler(w http.ResponseWriter, r *http.Request) {
	var req PaymentMatrixRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	key := matrixCacheKey(req)
	if a.deps.Cache != nil {
		if cached, ok := a.deps.Cache.Get(r.Context(), key); ok {
			var matrix models.PaymentMatrix
			if err := json.Unmarshal([]byte(cached), &matrix); err == nil {
				w.Header().Set("X-Cache", "HIT")
				writeData(w, matrix)
				return
			}
		}
	}

	matrix, err := finance.BuildPaymentMatrix(req.Principal, req.APRs, req.Terms)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if a.deps.Cache != nil {
		if encoded, err := json.Marshal(matrix); err == nil {
			if err := a.deps.Cache.Set(r.Context(), key, string(encoded), a.deps.CacheTTL); err != nil {
				a.logger.Warn("Failed to cache payment matrix", zap.String("key", key), zap.Error(err))
			}
		}
	}

	w.Header().Set("X-Cache", "MISS")
	writeData(w, matrix)
}

func matrixCacheKey(req PaymentMatrixRequest) string {
	aprs := req.APRs
	if len(aprs) == 0 {
		aprs = finance.DefaultMatrixAPRs
	}
	terms := req.Terms
	if len(terms) == 0 {
		terms = finance.DefaultMatrixTerms
	}

	var b strings.Builder
	fmt.Fprintf(&b, "payment-matrix:%.2f:", req.Principal)
	for i, apr := range aprs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", apr)
	}
	b.WriteByte(':')
	for i, term := range terms {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", term)
	}
	return b.String()
}

// SolveAPRResponse adds a display hint to the solver result.
type SolveAPRResponse struct {
	models.APRSolution
	Reliable bool `json:"reliable"`
}

func (a *API) solveAPRHandler(w http.ResponseWriter, r *http.Request) {
	var req models.APRSolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	solution := finance.SolveAPR(req)
	if !solution.Reliable() {
		a.logger.Info("APR solve did not converge",
			zap.String("outcome", string(solution.Outcome)),
			zap.Int("iterations", solution.Iterations),
		)
	}
	writeData(w, SolveAPRResponse{APRSolution: solution, Reliable: solution.Reliable()})
}

// ScheduleRequest asks for a full amortization schedule.
type ScheduleRequest struct {
	Principal  float64    `json:"principal"`
	APRPercent float64    `json:"apr_percent"`
	TermMonths int        `json:"term_months"`
	StartDate  *time.Time `json:"start_date,omitempty"`
}

func (a *API) scheduleHandler(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	start := a.deps.Now().UTC()
	if req.StartDate != nil {
		start = *req.StartDate
	}

	schedule, err := finance.GenerateSchedule(req.Principal, req.APRPercent, req.TermMonths, start)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if schedule == nil {
		schedule = []models.ScheduleEntry{}
	}
	writeData(w, schedule)
}

// CashRequest holds the inputs of an outright purchase.
type CashRequest struct {
	Price        float64 `json:"price"`
	TaxPercent   float64 `json:"tax_percent"`
	Fees         float64 `json:"fees"`
	AddedOptions float64 `json:"added_options"`
}

func (a *API) cashHandler(w http.ResponseWriter, r *http.Request) {
	var req CashRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	result, err := finance.CalculateCash(req.Price, req.TaxPercent, req.Fees, req.AddedOptions)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, result)
}

// CashDiscountRequest holds a price and a discount percentage.
type CashDiscountRequest struct {
	Price           float64 `json:"price"`
	DiscountPercent float64 `json:"discount_percent"`
}

func (a *API) cashDiscountHandler(w http.ResponseWriter, r *http.Request) {
	var req CashDiscountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	result, err := finance.CalculateCashDiscount(req.Price, req.DiscountPercent)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, result)
}

// SellingPriceRequest carries a raw cost (number or text) and an optional
// listed price to check the result against.
type SellingPriceRequest struct {
	Cost        interface{} `json:"cost"`
	ListedPrice *float64    `json:"listed_price,omitempty"`
}

// SellingPriceResponse is the priced result and, when a listed price was
// given, the range verdict.
type SellingPriceResponse struct {
	models.PricingResult
	Policy     string                  `json:"policy"`
	RangeCheck *models.PriceRangeCheck `json:"range_check,omitempty"`
}

func (a *API) sellingPriceHandler(w http.ResponseWriter, r *http.Request) {
	var req SellingPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	result := a.deps.Policy.SellingPrice(pricing.ParseCost(req.Cost))
	response := SellingPriceResponse{PricingResult: result, Policy: a.deps.Policy.Name}

	if req.ListedPrice != nil && result.Price != nil {
		check := pricing.ValidatePriceRange(*result.Price, *req.ListedPrice)
		response.RangeCheck = &check
	}
	writeData(w, response)
}

// PriceRangeRequest asks whether a selling price fits the listed price band.
type PriceRangeRequest struct {
	SellingPrice float64 `json:"selling_price"`
	ListedPrice  float64 `json:"listed_price"`
}

func (a *API) validateRangeHandler(w http.ResponseWriter, r *http.Request) {
	var req PriceRangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, pricing.ValidatePriceRange(req.SellingPrice, req.ListedPrice))
}

// LeadScoreRequest carries CRM labels as free text; they are normalized
// before scoring.
type LeadScoreRequest struct {
	Status            string     `json:"status"`
	FinancingType     string     `json:"financing_type"`
	ApplicationStatus string     `json:"application_status"`
	LastActivityAt    *time.Time `json:"last_activity_at,omitempty"`
	StatusChangedAt   *time.Time `json:"status_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Inputs converts the request into validated scorer inputs.
func (req LeadScoreRequest) Inputs() (models.LeadScoreInputs, error) {
	application := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(req.ApplicationStatus)))
	if application == "" {
		application = models.ApplicationStatusNone
	}

	in := models.LeadScoreInputs{
		Status:          models.NormalizeLeadStatus(req.Status),
		Financing:       models.NormalizeFinancingType(req.FinancingType),
		Application:     application,
		LastActivityAt:  req.LastActivityAt,
		StatusChangedAt: req.StatusChangedAt,
		CreatedAt:       req.CreatedAt,
	}
	if err := models.ValidateLeadScoreInputs(&in); err != nil {
		return in, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return in, nil
}

func (a *API) leadScoreHandler(w http.ResponseWriter, r *http.Request) {
	var req LeadScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	in, err := req.Inputs()
	if err != nil {
		a.fail(w, r, err)
		return
	}

	now := a.deps.Now()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	writeData(w, a.deps.Scorer.Score(in, now))
}

func (a *API) recalculateHandler(w http.ResponseWriter, r *http.Request) {
	if a.deps.Recalculator == nil {
		writeError(w, http.StatusServiceUnavailable, "Lead recalculation requires a database")
		return
	}

	result, err := a.deps.Recalculator.Run(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Rescored %d of %d customers", result.Updated+result.Unchanged, result.Total),
		Data:    result,
	})
}

func (a *API) customerScoreHandler(w http.ResponseWriter, r *http.Request) {
	if a.deps.Rescorer == nil {
		writeError(w, http.StatusServiceUnavailable, "Customer scoring requires a database")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	score, err := a.deps.Rescorer.Rescore(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, score)
}

// maxUploadBytes caps multipart feed uploads.
const maxUploadBytes = 10 << 20

// inventoryImportHandler accepts a multipart feed upload (fields dealer_id and
// file) for local use without S3.
func (a *API) inventoryImportHandler(w http.ResponseWriter, r *http.Request) {
	if a.deps.Importer == nil {
		writeError(w, http.StatusServiceUnavailable, "Inventory import requires a database")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.fail(w, r, fmt.Errorf("%w: failed to parse form: %v", models.ErrInvalidInput, err))
		return
	}

	dealerID, err := strconv.ParseInt(r.FormValue("dealer_id"), 10, 64)
	if err != nil || dealerID <= 0 {
		a.fail(w, r, fmt.Errorf("%w: dealer_id must be a positive integer", models.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.fail(w, r, fmt.Errorf("%w: no file provided", models.ErrInvalidInput))
		return
	}
	defer file.Close()

	if _, err := s3service.FeedContentType(header.Filename); err != nil {
		a.fail(w, r, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.fail(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	summary, err := a.deps.Importer.Import(r.Context(), dealerID, header.Filename, data, uuid.New().String())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Imported %d of %d rows", summary.Upserted, summary.TotalRows),
		Data:    summary,
	})
}
