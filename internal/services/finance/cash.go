package finance

import (
	"trailer-sales-engine/internal/models"
)

// CalculateCash computes the total due for an outright purchase:
// subtotal = price + options, taxes on the subtotal, then fees on top.
func CalculateCash(price, taxPercent, fees, addedOptions float64) (models.CashSettlement, error) {
	if err := sanitize(
		[]string{"price", "tax_percent", "fees", "added_options"},
		&price, &taxPercent, &fees, &addedOptions,
	); err != nil {
		return models.CashSettlement{}, err
	}

	subtotal := price + addedOptions
	taxes := subtotal * taxPercent / 100

	return models.CashSettlement{
		BasePrice:    price,
		AddedOptions: addedOptions,
		Subtotal:     subtotal,
		Taxes:        taxes,
		Fees:         fees,
		TotalCash:    subtotal + taxes + fees,
	}, nil
}

// CalculateCashDiscount applies a percentage discount to a price.
func CalculateCashDiscount(price, discountPercent float64) (models.CashDiscount, error) {
	if err := sanitize([]string{"price", "discount_percent"}, &price, &discountPercent); err != nil {
		return models.CashDiscount{}, err
	}

	discount := price * discountPercent / 100
	return models.CashDiscount{
		OriginalPrice:   price,
		Discount:        discount,
		DiscountedPrice: price - discount,
	}, nil
}
