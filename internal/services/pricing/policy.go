// Package pricing turns wholesale costs into selling prices and guards proposed
// prices against a band around the listed price.
package pricing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/models"
)

// Policy is a markup-with-profit-floor pricing rule:
//
//	price = max(cost * MarkupFactor, cost + MinProfitFloor)
//
// The floor wins on cheap units, the markup on expensive ones. For the standard
// preset the two agree at cost = 1400 / 0.25 = 5600.
type Policy struct {
	Name           string  `json:"name"`
	MarkupFactor   float64 `json:"markup_factor"`
	MinProfitFloor float64 `json:"min_profit_floor"`
}

// Named presets.
var (
	StandardPolicy = Policy{Name: config.PricingPresetStandard, MarkupFactor: 1.25, MinProfitFloor: 1400}
	PremiumPolicy  = Policy{Name: config.PricingPresetPremium, MarkupFactor: 1.5, MinProfitFloor: 1500}
)

// Presets maps preset names to policies.
var Presets = map[string]Policy{
	StandardPolicy.Name: StandardPolicy,
	PremiumPolicy.Name:  PremiumPolicy,
}

// PolicyFromConfig resolves the configured preset and applies any overrides.
// Unknown preset names fall back to the standard preset.
func PolicyFromConfig(cfg *config.Config) Policy {
	policy, ok := Presets[cfg.PricingPreset]
	if !ok {
		policy = StandardPolicy
	}
	if cfg.PriceMarkupOverride > 0 {
		policy.MarkupFactor = cfg.PriceMarkupOverride
		policy.Name += "+custom"
	}
	if cfg.PriceMinProfitOverride > 0 {
		policy.MinProfitFloor = cfg.PriceMinProfitOverride
		if !strings.HasSuffix(policy.Name, "+custom") {
			policy.Name += "+custom"
		}
	}
	return policy
}

// Validate rejects policies that would price below cost.
func (p Policy) Validate() error {
	if !isFinite(p.MarkupFactor) || p.MarkupFactor < 1 {
		return fmt.Errorf("%w: markup factor must be at least 1", models.ErrInvalidInput)
	}
	if !isFinite(p.MinProfitFloor) || p.MinProfitFloor < 0 {
		return fmt.Errorf("%w: minimum profit floor cannot be negative", models.ErrInvalidInput)
	}
	return nil
}

// SellingPrice applies the policy to a cost. Placeholder costs ask for pricing.
// Prices are rounded to the nearest dollar.
func (p Policy) SellingPrice(cost models.Cost) models.PricingResult {
	if !cost.IsNumeric() {
		return models.PricingResult{Status: models.PricingStatusAskForPricing}
	}

	target := cost.Amount * p.MarkupFactor
	floor := cost.Amount + p.MinProfitFloor
	price := math.Round(math.Max(target, floor))

	return models.PricingResult{
		Price:  &price,
		Status: models.PricingStatusPriced,
	}
}

// ComputeSellingPrice parses a raw cost and prices it with the standard preset.
func ComputeSellingPrice(costRaw any) models.PricingResult {
	return StandardPolicy.SellingPrice(ParseCost(costRaw))
}

var (
	placeholderPattern = regexp.MustCompile(`(?i)call|offer|tbd|n/a|price|contact`)
	nonNumericPattern  = regexp.MustCompile(`[^0-9.\-]`)
)

// ParseCost decides once, at the boundary, whether a raw feed value is a usable
// cost. Missing, zero, negative, unparsable and placeholder text all become
// placeholders.
func ParseCost(raw any) models.Cost {
	switch v := raw.(type) {
	case nil:
		return models.PlaceholderCost("missing")
	case models.Cost:
		return v
	case float64:
		return numericOrPlaceholder(v, fmt.Sprint(v))
	case float32:
		return numericOrPlaceholder(float64(v), fmt.Sprint(v))
	case int:
		return numericOrPlaceholder(float64(v), strconv.Itoa(v))
	case int64:
		return numericOrPlaceholder(float64(v), strconv.FormatInt(v, 10))
	case *float64:
		if v == nil {
			return models.PlaceholderCost("missing")
		}
		return numericOrPlaceholder(*v, fmt.Sprint(*v))
	case fmt.Stringer:
		return parseCostString(v.String())
	case string:
		return parseCostString(v)
	default:
		return models.PlaceholderCost(fmt.Sprint(v))
	}
}

func parseCostString(s string) models.Cost {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return models.PlaceholderCost("missing")
	}
	if placeholderPattern.MatchString(trimmed) {
		return models.PlaceholderCost(trimmed)
	}

	cleaned := nonNumericPattern.ReplaceAllString(trimmed, "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return models.PlaceholderCost(trimmed)
	}
	return numericOrPlaceholder(amount, trimmed)
}

func numericOrPlaceholder(amount float64, original string) models.Cost {
	if !isFinite(amount) || amount <= 0 {
		return models.PlaceholderCost(original)
	}
	return models.NumericCost(amount)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
