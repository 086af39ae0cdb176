// Package models defines the data structures for the trailer sales engine.
package models

import "time"

// LoanTerms holds the inputs of a financed purchase. The financed principal is derived.
type LoanTerms struct {
	Price       float64 `json:"price"`
	DownPayment float64 `json:"down_payment"`
	TaxPercent  float64 `json:"tax_percent"`
	Fees        float64 `json:"fees"`
	APRPercent  float64 `json:"apr_percent"`
	TermMonths  int     `json:"term_months"`
}

// AmortizationResult is the outcome of a fixed-rate loan calculation.
type AmortizationResult struct {
	Principal      float64 `json:"principal"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPaid      float64 `json:"total_paid"`
	TotalInterest  float64 `json:"total_interest"`
	Taxes          float64 `json:"taxes"`
}

// DefaultInitialGuessAPR is used when an APR solve request carries no starting guess.
const DefaultInitialGuessAPR = 8.0

// APRSolveRequest asks for the APR that yields TargetPayment.
type APRSolveRequest struct {
	Principal       float64 `json:"principal"`
	TargetPayment   float64 `json:"target_payment"`
	TermMonths      int     `json:"term_months"`
	InitialGuessAPR float64 `json:"initial_guess_apr,omitempty"`
}

// APROutcome says how an APR solve ended.
type APROutcome string

const (
	APROutcomeConverged             APROutcome = "converged"
	APROutcomeMaxIterationsExceeded APROutcome = "max_iterations_exceeded"
	APROutcomeStalled               APROutcome = "stalled"
	APROutcomeDegenerateInput       APROutcome = "degenerate_input"
)

// APRSolution is the best APR estimate and how reliable it is.
type APRSolution struct {
	APR        float64    `json:"apr"`
	Outcome    APROutcome `json:"outcome"`
	Iterations int        `json:"iterations"`
}

// Converged reports whether the estimate met the convergence tolerance.
func (s APRSolution) Converged() bool {
	return s.Outcome == APROutcomeConverged
}

// Reliable reports whether callers may display the APR without a warning.
// Degenerate inputs yield an exact zero, so they count as reliable.
func (s APRSolution) Reliable() bool {
	return s.Outcome == APROutcomeConverged || s.Outcome == APROutcomeDegenerateInput
}

// CashSettlement is the total due for an outright cash purchase.
type CashSettlement struct {
	BasePrice    float64 `json:"base_price"`
	AddedOptions float64 `json:"added_options"`
	Subtotal     float64 `json:"subtotal"`
	Taxes        float64 `json:"taxes"`
	Fees         float64 `json:"fees"`
	TotalCash    float64 `json:"total_cash"`
}

// CashDiscount is a simple percentage discount off a price.
type CashDiscount struct {
	OriginalPrice   float64 `json:"original_price"`
	Discount        float64 `json:"discount"`
	DiscountedPrice float64 `json:"discounted_price"`
}

// PaymentMatrixCell is one APR/term combination of a payment grid.
type PaymentMatrixCell struct {
	APRPercent     float64 `json:"apr_percent"`
	TermMonths     int     `json:"term_months"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

// PaymentMatrix is a grid of monthly payments across APRs (rows) and terms (columns).
type PaymentMatrix struct {
	Principal float64               `json:"principal"`
	APRs      []float64             `json:"aprs"`
	Terms     []int                 `json:"terms"`
	Rows      [][]PaymentMatrixCell `json:"rows"`
}

// ScheduleEntry is one period of an amortization schedule. Amounts are rounded to cents.
type ScheduleEntry struct {
	Period           int       `json:"period"`
	DueDate          time.Time `json:"due_date"`
	Payment          string    `json:"payment"`
	Principal        string    `json:"principal"`
	Interest         string    `json:"interest"`
	RemainingBalance string    `json:"remaining_balance"`
}
