package finance

import (
	"fmt"
	"math"

	"trailer-sales-engine/internal/models"
)

// CalculateFinance computes payment, totals and interest for a financed purchase.
//
//	taxes     = price * taxPercent / 100
//	principal = max(0, price - down + taxes + fees)
//	payment   = P * r / (1 - (1+r)^-n),  r = apr / 100 / 12
//
// A zero principal or zero term returns no payment and totalPaid = down + fees.
func CalculateFinance(terms models.LoanTerms) (models.AmortizationResult, error) {
	price, down, taxPercent, fees, apr := terms.Price, terms.DownPayment, terms.TaxPercent, terms.Fees, terms.APRPercent
	if err := sanitize(
		[]string{"price", "down_payment", "tax_percent", "fees", "apr_percent"},
		&price, &down, &taxPercent, &fees, &apr,
	); err != nil {
		return models.AmortizationResult{}, err
	}
	if err := requireTerm(terms.TermMonths); err != nil {
		return models.AmortizationResult{}, err
	}

	taxes := price * taxPercent / 100
	principal := math.Max(0, price-down+taxes+fees)

	if principal == 0 || terms.TermMonths == 0 {
		return models.AmortizationResult{
			Principal: principal,
			TotalPaid: down + fees,
			Taxes:     taxes,
		}, nil
	}

	payment := monthlyPayment(principal, apr, terms.TermMonths)
	totalPaid := payment*float64(terms.TermMonths) + down
	if !isFinite(payment) || !isFinite(totalPaid) {
		return models.AmortizationResult{}, fmt.Errorf("%w: payment is not representable for these terms", models.ErrInvalidInput)
	}

	return models.AmortizationResult{
		Principal:      principal,
		MonthlyPayment: payment,
		TotalPaid:      totalPaid,
		// Clamped to absorb float rounding noise on 0% loans.
		TotalInterest: math.Max(0, totalPaid-down-price-fees),
		Taxes:         taxes,
	}, nil
}

// CalculateMonthlyPayment returns the fixed monthly payment for a principal.
// It returns 0 for a non-positive principal or term and for non-finite inputs.
func CalculateMonthlyPayment(principal, aprPercent float64, termMonths int) float64 {
	if requireFinite("principal", principal) != nil || requireFinite("apr_percent", aprPercent) != nil {
		return 0
	}
	if principal <= 0 || termMonths <= 0 {
		return 0
	}
	payment := monthlyPayment(principal, clampNonNegative("apr_percent", aprPercent), termMonths)
	if !isFinite(payment) {
		return 0
	}
	return payment
}

// monthlyPayment assumes principal > 0, termMonths > 0 and aprPercent >= 0.
func monthlyPayment(principal, aprPercent float64, termMonths int) float64 {
	return paymentAtRate(principal, aprPercent/100/12, termMonths)
}

func paymentAtRate(principal, r float64, termMonths int) float64 {
	n := float64(termMonths)
	if r == 0 {
		return principal / n
	}
	return principal * r / annuityDenominator(r, n)
}

// annuityDenominator is 1 - (1+r)^-n, computed without forming (1+r)^n so long
// terms and extreme rates stay finite.
func annuityDenominator(r, n float64) float64 {
	return -math.Expm1(-n * math.Log1p(r))
}

// paymentDerivative is d(payment)/dr of the annuity formula:
//
//	P * (d - r*n*(1+r)^-(n+1)) / d^2,  d = 1 - (1+r)^-n
//
// At r == 0 the expression is 0/0 and the result is NaN.
func paymentDerivative(principal, r float64, termMonths int) float64 {
	n := float64(termMonths)
	d := annuityDenominator(r, n)
	tail := math.Exp(-(n + 1) * math.Log1p(r))
	return principal * (d - r*n*tail) / (d * d)
}
