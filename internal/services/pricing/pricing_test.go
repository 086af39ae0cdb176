package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/models"
)

func TestComputeSellingPrice_FloorAndMarkup(t *testing.T) {
	tests := []struct {
		name     string
		cost     any
		expected float64
	}{
		{"crossover both rules agree", 5600, 7000},
		{"profit floor wins", 3425, 4825},
		{"markup wins", 18425, 23031},
		{"string with currency", "$18,425.00", 23031},
		{"float cost", 12000.0, 15000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeSellingPrice(tt.cost)
			require.NotNil(t, result.Price)
			assert.Equal(t, models.PricingStatusPriced, result.Status)
			assert.Equal(t, tt.expected, *result.Price)
		})
	}
}

func TestComputeSellingPrice_Placeholders(t *testing.T) {
	inputs := []any{
		"Call for Price",
		"Make an Offer",
		"TBD",
		"n/a",
		"Contact dealer",
		"",
		"   ",
		nil,
		0,
		0.0,
		-250,
		"abc",
		false,
	}

	for _, input := range inputs {
		result := ComputeSellingPrice(input)
		assert.Equal(t, models.PricingStatusAskForPricing, result.Status, "input %#v", input)
		assert.Nil(t, result.Price, "input %#v", input)
	}
}

func TestParseCost(t *testing.T) {
	assert.Equal(t, models.NumericCost(12500), ParseCost("12,500"))
	assert.Equal(t, models.NumericCost(899.99), ParseCost(" $899.99 "))
	assert.Equal(t, models.NumericCost(3000), ParseCost(int64(3000)))

	placeholder := ParseCost("Call For Pricing")
	assert.False(t, placeholder.IsNumeric())
	assert.Equal(t, "Call For Pricing", placeholder.Reason)

	assert.False(t, ParseCost(math.NaN()).IsNumeric())
	assert.Equal(t, models.NumericCost(42), ParseCost(models.NumericCost(42)))
}

func TestPremiumPolicy(t *testing.T) {
	// floor: 2000 + 1500 = 3500 > 3000
	result := PremiumPolicy.SellingPrice(models.NumericCost(2000))
	require.NotNil(t, result.Price)
	assert.Equal(t, 3500.0, *result.Price)

	// markup: 10000 * 1.5 = 15000 > 11500
	result = PremiumPolicy.SellingPrice(models.NumericCost(10000))
	require.NotNil(t, result.Price)
	assert.Equal(t, 15000.0, *result.Price)
}

func TestPolicyFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		expected Policy
	}{
		{
			name:     "standard default",
			cfg:      config.Config{PricingPreset: "standard"},
			expected: StandardPolicy,
		},
		{
			name:     "premium preset",
			cfg:      config.Config{PricingPreset: "premium"},
			expected: PremiumPolicy,
		},
		{
			name:     "unknown preset falls back",
			cfg:      config.Config{PricingPreset: "mystery"},
			expected: StandardPolicy,
		},
		{
			name:     "overrides",
			cfg:      config.Config{PricingPreset: "premium", PriceMarkupOverride: 1.3, PriceMinProfitOverride: 2000},
			expected: Policy{Name: "premium+custom", MarkupFactor: 1.3, MinProfitFloor: 2000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			assert.Equal(t, tt.expected, PolicyFromConfig(&cfg))
		})
	}
}

func TestPolicyFromConfig_DoesNotMutatePresets(t *testing.T) {
	cfg := config.Config{PricingPreset: "standard", PriceMarkupOverride: 2}
	_ = PolicyFromConfig(&cfg)

	assert.Equal(t, 1.25, StandardPolicy.MarkupFactor)
	assert.Equal(t, 1.25, Presets["standard"].MarkupFactor)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, StandardPolicy.Validate())
	assert.NoError(t, PremiumPolicy.Validate())
	assert.ErrorIs(t, Policy{MarkupFactor: 0.9}.Validate(), models.ErrInvalidInput)
	assert.ErrorIs(t, Policy{MarkupFactor: 1.2, MinProfitFloor: -1}.Validate(), models.ErrInvalidInput)
}

func TestValidatePriceRange_Boundaries(t *testing.T) {
	tests := []struct {
		selling float64
		valid   bool
	}{
		{7000, true},
		{6999, false},
		{10000, true},
		{20000, true},
		{20001, false},
	}

	for _, tt := range tests {
		check := ValidatePriceRange(tt.selling, 10000)
		assert.Equal(t, tt.valid, check.Valid, "selling %.0f", tt.selling)
		assert.Equal(t, 7000.0, check.Min)
		assert.Equal(t, 20000.0, check.Max)
		if tt.valid {
			assert.Empty(t, check.Message)
		} else {
			assert.Contains(t, check.Message, "$7000.00 to $20000.00")
		}
	}
}

func TestValidatePriceRange_NonFinite(t *testing.T) {
	assert.False(t, ValidatePriceRange(math.NaN(), 10000).Valid)
}

func TestSellingPrice_Idempotent(t *testing.T) {
	a := ComputeSellingPrice("18425")
	b := ComputeSellingPrice("18425")
	require.NotNil(t, a.Price)
	require.NotNil(t, b.Price)
	assert.Equal(t, *a.Price, *b.Price)
	assert.Equal(t, a.Status, b.Status)
}
