package pricing

import (
	"fmt"

	"trailer-sales-engine/internal/models"
)

// Allowed deviation from the listed price, in whole percent.
const (
	maxDiscountPercent = 30
	maxPremiumPercent  = 100
)

// ValidatePriceRange checks that a selling price sits within 70%–200% of the
// listed price, bounds inclusive. It only reports; callers decide whether to
// block the save.
func ValidatePriceRange(sellingPrice, listedPrice float64) models.PriceRangeCheck {
	// Integer percentages keep round listed prices exact at the bounds.
	minPrice := listedPrice * (100 - maxDiscountPercent) / 100
	maxPrice := listedPrice * (100 + maxPremiumPercent) / 100

	check := models.PriceRangeCheck{
		Valid: isFinite(sellingPrice) && sellingPrice >= minPrice && sellingPrice <= maxPrice,
		Min:   minPrice,
		Max:   maxPrice,
	}
	if !check.Valid {
		check.Message = fmt.Sprintf(
			"Selling price $%.2f is outside the allowed range of $%.2f to $%.2f (-%d%% to +%d%% of the listed price $%.2f)",
			sellingPrice, minPrice, maxPrice, maxDiscountPercent, maxPremiumPercent, listedPrice,
		)
	}
	return check
}
