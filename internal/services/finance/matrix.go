package finance

import (
	"fmt"

	"trailer-sales-engine/internal/models"
)

// Default quote-sheet grid.
var (
	DefaultMatrixAPRs  = []float64{6.99, 8.99, 10.99, 12.99}
	DefaultMatrixTerms = []int{36, 48, 60, 72}
)

// maxMatrixCells bounds the work a single request can ask for.
const maxMatrixCells = 400

// BuildPaymentMatrix computes monthly payments for every APR/term combination.
// Empty APR or term lists fall back to the default quote-sheet grid.
func BuildPaymentMatrix(principal float64, aprs []float64, terms []int) (models.PaymentMatrix, error) {
	if err := sanitize([]string{"principal"}, &principal); err != nil {
		return models.PaymentMatrix{}, err
	}
	if len(aprs) == 0 {
		aprs = DefaultMatrixAPRs
	}
	if len(terms) == 0 {
		terms = DefaultMatrixTerms
	}
	if len(aprs)*len(terms) > maxMatrixCells {
		return models.PaymentMatrix{}, fmt.Errorf("%w: payment matrix limited to %d cells", models.ErrInvalidInput, maxMatrixCells)
	}
	for _, apr := range aprs {
		if err := requireFinite("apr_percent", apr); err != nil {
			return models.PaymentMatrix{}, err
		}
	}
	for _, term := range terms {
		if err := requireTerm(term); err != nil {
			return models.PaymentMatrix{}, err
		}
	}

	rows := make([][]models.PaymentMatrixCell, len(aprs))
	for i, apr := range aprs {
		row := make([]models.PaymentMatrixCell, len(terms))
		for j, term := range terms {
			row[j] = models.PaymentMatrixCell{
				APRPercent:     apr,
				TermMonths:     term,
				MonthlyPayment: roundCents(CalculateMonthlyPayment(principal, apr, term)),
			}
		}
		rows[i] = row
	}

	return models.PaymentMatrix{
		Principal: principal,
		APRs:      aprs,
		Terms:     terms,
		Rows:      rows,
	}, nil
}
