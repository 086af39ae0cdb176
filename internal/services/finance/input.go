// Package finance implements loan amortization, APR solving and cash settlement math.
//
// Every function in this package is pure: it reads only its arguments and may be
// called concurrently from any number of request handlers.
package finance

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/utils"
)

// requireFinite rejects NaN and ±Inf inputs.
func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", models.ErrInvalidInput, field)
	}
	return nil
}

// clampNonNegative floors a monetary or percentage input at zero and logs when it had to.
func clampNonNegative(field string, v float64) float64 {
	if v < 0 {
		utils.GetLogger().Warn("Negative input clamped to zero",
			zap.String("field", field),
			zap.Float64("value", v),
		)
		return 0
	}
	return v
}

// sanitize validates finiteness of every named value and clamps negatives, in order.
func sanitize(fields []string, values ...*float64) error {
	for i, v := range values {
		if err := requireFinite(fields[i], *v); err != nil {
			return err
		}
	}
	for i, v := range values {
		*v = clampNonNegative(fields[i], *v)
	}
	return nil
}

func requireTerm(termMonths int) error {
	if termMonths < 0 {
		return fmt.Errorf("%w: term_months cannot be negative", models.ErrInvalidInput)
	}
	return nil
}

// roundCents rounds to two decimals for display.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
