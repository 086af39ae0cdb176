package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trailer-sales-engine/internal/models"
)

// maxScheduleMonths bounds a generated schedule at 50 years of rows.
const maxScheduleMonths = 600

// GenerateSchedule computes a fixed-payment amortization schedule with cent-rounded
// amounts. The first payment is due one month after startDate; the last period
// absorbs rounding so the balance ends at exactly zero.
//
// A non-positive principal or term yields a nil schedule. Terms longer than
// maxScheduleMonths are rejected.
func GenerateSchedule(principal, aprPercent float64, termMonths int, startDate time.Time) ([]models.ScheduleEntry, error) {
	if err := sanitize([]string{"principal", "apr_percent"}, &principal, &aprPercent); err != nil {
		return nil, err
	}
	if err := requireTerm(termMonths); err != nil {
		return nil, err
	}
	if termMonths > maxScheduleMonths {
		return nil, fmt.Errorf("%w: schedule term cannot exceed %d months", models.ErrInvalidInput, maxScheduleMonths)
	}
	if principal == 0 || termMonths == 0 {
		return nil, nil
	}

	// float64 for the power, decimal for the money.
	rawPayment := monthlyPayment(principal, aprPercent, termMonths)
	if !isFinite(rawPayment) {
		return nil, fmt.Errorf("%w: payment is not representable for these terms", models.ErrInvalidInput)
	}
	payment := decimal.NewFromFloat(rawPayment).Round(2)
	monthlyRate := decimal.NewFromFloat(aprPercent / 100 / 12)
	remaining := decimal.NewFromFloat(principal).Round(2)

	schedule := make([]models.ScheduleEntry, 0, termMonths)
	for period := 1; period <= termMonths; period++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)

		if period == termMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		schedule = append(schedule, models.ScheduleEntry{
			Period:           period,
			DueDate:          startDate.AddDate(0, period, 0),
			Payment:          principalPart.Add(interest).StringFixed(2),
			Principal:        principalPart.StringFixed(2),
			Interest:         interest.StringFixed(2),
			RemainingBalance: remaining.StringFixed(2),
		})

		if remaining.IsZero() {
			break
		}
	}

	return schedule, nil
}
