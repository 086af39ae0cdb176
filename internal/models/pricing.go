// Package models defines the data structures for the trailer sales engine.
package models

import "fmt"

// PricingStatus tells whether a unit carries a computed selling price.
type PricingStatus string

const (
	PricingStatusPriced        PricingStatus = "PRICED"
	PricingStatusAskForPricing PricingStatus = "ASK_FOR_PRICING"
)

// CostKind discriminates the Cost variant.
type CostKind int

const (
	CostKindPlaceholder CostKind = iota
	CostKindNumeric
)

// Cost is a wholesale cost as it arrives from a feed: either a positive amount
// or a placeholder such as "Call for Price".
type Cost struct {
	Kind   CostKind
	Amount float64
	Reason string
}

// NumericCost builds a numeric cost.
func NumericCost(amount float64) Cost {
	return Cost{Kind: CostKindNumeric, Amount: amount}
}

// PlaceholderCost builds a placeholder cost with the text that caused it.
func PlaceholderCost(reason string) Cost {
	return Cost{Kind: CostKindPlaceholder, Reason: reason}
}

// IsNumeric reports whether the cost carries an amount.
func (c Cost) IsNumeric() bool {
	return c.Kind == CostKindNumeric
}

// String implements fmt.Stringer.
func (c Cost) String() string {
	if c.IsNumeric() {
		return fmt.Sprintf("%.2f", c.Amount)
	}
	return fmt.Sprintf("placeholder(%q)", c.Reason)
}

// PricingResult is the outcome of applying a pricing policy to a cost.
// Price is nil when Status is ASK_FOR_PRICING.
type PricingResult struct {
	Price  *float64      `json:"price"`
	Status PricingStatus `json:"pricingStatus"`
}

// PriceRangeCheck is the guardrail verdict for a proposed selling price.
type PriceRangeCheck struct {
	Valid   bool    `json:"valid"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Message string  `json:"message,omitempty"`
}
