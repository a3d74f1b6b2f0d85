package borealair

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricingRef() *Memory {
	return &Memory{
		Pricing: []CityPricing{
			{
				City:         "Yellowknife",
				MinPrice:     decimal.NewFromFloat(18.00),
				CutoffWeight: decimal.NewFromInt(25),
				PricePerUnit: decimal.NewFromFloat(0.45),
			},
		},
	}
}

func TestLegCharge_BelowCutoff(t *testing.T) {
	charge, ok, err := legCharge(context.Background(), pricingRef(), "Yellowknife", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "18.00", charge.StringFixed(2))
}

func TestLegCharge_AboveCutoff(t *testing.T) {
	// 18.00 + (40 - 25) * 0.45 = 24.75
	charge, ok, err := legCharge(context.Background(), pricingRef(), "Yellowknife", decimal.NewFromInt(40))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "24.75", charge.StringFixed(2))
}

func TestLegCharge_CityMatchIsCaseInsensitive(t *testing.T) {
	charge, ok, err := legCharge(context.Background(), pricingRef(), "YELLOWKNIFE", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "18.00", charge.StringFixed(2))
}

func TestLegCharge_UnknownCity(t *testing.T) {
	_, ok, err := legCharge(context.Background(), pricingRef(), "Resolute", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.False(t, ok, "an unpriced city is not an error")
}

func TestTaxedLegTotal(t *testing.T) {
	taxes, total, taxPercent := taxedLegTotal(decimal.NewFromFloat(18.00))

	assert.Equal(t, "0.90", taxes.StringFixed(2))
	assert.Equal(t, "18.90", total.StringFixed(2))
	// Independent rounding makes the derived percentage drift off the
	// nominal 5% rate; that is the published behavior.
	assert.Equal(t, "4.76", taxPercent.StringFixed(2))
}

func TestTaxedLegTotal_ZeroFreight(t *testing.T) {
	taxes, total, taxPercent := taxedLegTotal(decimal.Zero)

	assert.True(t, taxes.IsZero())
	assert.True(t, total.IsZero())
	assert.True(t, taxPercent.IsZero())
}
