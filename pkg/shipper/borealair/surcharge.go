package borealair

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// regionalTaxRate is the fixed tax rate applied to pickup/delivery-only
// quotes.
var regionalTaxRate = decimal.NewFromFloat(0.05)

var oneHundred = decimal.NewFromInt(100)

// legCharge computes the flat pickup or delivery accessorial charge for a
// city. A city with no pricing record returns found=false, not an error; the
// caller may omit the leg entirely.
func legCharge(ctx context.Context, ref ReferenceData, city string, chargeable decimal.Decimal) (decimal.Decimal, bool, error) {
	pricing, ok, err := ref.CityPricing(ctx, city)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("city pricing lookup: %w", err)
	}
	if !ok {
		return decimal.Zero, false, nil
	}

	if chargeable.LessThan(pricing.CutoffWeight) {
		return pricing.MinPrice.Round(2), true, nil
	}
	over := chargeable.Sub(pricing.CutoffWeight)
	return pricing.MinPrice.Add(over.Mul(pricing.PricePerUnit)).Round(2), true, nil
}

// taxedLegTotal composes the taxed total for a pickup/delivery-only quote.
// Freight and tax are rounded independently, so the derived tax percentage
// does not have to equal the nominal rate exactly; that property is part of
// the pricing contract and must not be "fixed" by recomputing from the rate.
func taxedLegTotal(freight decimal.Decimal) (taxes, total, taxPercent decimal.Decimal) {
	taxes = freight.Mul(regionalTaxRate).Round(2)
	total = freight.Add(taxes).Round(2)
	if total.IsZero() {
		return taxes, total, decimal.Zero
	}
	taxPercent = taxes.Div(total).Mul(oneHundred).Round(2)
	return taxes, total, taxPercent
}
