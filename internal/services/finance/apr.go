package finance

import (
	"math"

	"trailer-sales-engine/internal/models"
)

const (
	aprMaxIterations   = 30
	aprTolerance       = 1e-6
	minDerivativeScale = 1e-12
)

// SolveAPR finds the APR whose monthly payment on Principal over TermMonths equals
// TargetPayment, using Newton–Raphson on the periodic rate.
//
// The solver never fails. Its Outcome tells the caller whether the estimate
// converged, ran out of iterations, or stalled on a vanishing derivative;
// callers should flag anything but a converged APR before showing it.
func SolveAPR(req models.APRSolveRequest) models.APRSolution {
	principal, target := req.Principal, req.TargetPayment
	if !isFinite(principal) || !isFinite(target) || principal <= 0 || target <= 0 || req.TermMonths <= 0 {
		return models.APRSolution{APR: 0, Outcome: models.APROutcomeDegenerateInput}
	}

	apr := req.InitialGuessAPR
	if apr <= 0 || !isFinite(apr) {
		apr = models.DefaultInitialGuessAPR
	}

	outcome := models.APROutcomeMaxIterationsExceeded
	iterations := 0

	for iterations < aprMaxIterations {
		iterations++

		r := apr / 100 / 12
		f := target - paymentAtRate(principal, r, req.TermMonths)
		df := -paymentDerivative(principal, r, req.TermMonths)

		if !isFinite(f) || !isFinite(df) || math.Abs(df) < minDerivativeScale {
			outcome = models.APROutcomeStalled
			break
		}

		// Newton step on the periodic rate, converted back to an annual percentage.
		next := apr - (f/df)*12*100
		if next < 0 {
			next = 0
		}

		if math.Abs(next-apr) < aprTolerance {
			apr = next
			outcome = models.APROutcomeConverged
			break
		}
		apr = next
	}

	return models.APRSolution{
		APR:        apr,
		Outcome:    outcome,
		Iterations: iterations,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
