package borealair

import (
	"strings"

	"github.com/delivro/freightbridge/pkg/shipper"
	"github.com/shopspring/decimal"
)

const (
	// Billing constants for the carrier's weight model.
	dimensionPrecision = 2
	descriptionMaxLen  = 100
	accountIDMaxLen    = 20

	// Commodity ids with special handling.
	generalCargoCommodityID   = 1
	priorityCargoCommodityID  = 2
	dangerousGoodsCommodityID = 17

	// The expedited tier remaps general cargo to priority cargo.
	expeditedRatePriority = 2

	timeSensitiveToken    = " TIME SENSITIVE"
	chainOfSignatureToken = " COS"
)

var (
	// minUnitWeight is the minimum billable weight per unit; anything
	// lighter is raised before totals are computed.
	minUnitWeight = decimal.NewFromInt(1)

	// envelopeMaxWeight is the exclusive ceiling for the small-parcel
	// envelope rate.
	envelopeMaxWeight = decimal.NewFromInt(2)

	// dimFactor converts volume to dimensional weight.
	dimFactor = decimal.NewFromInt(6000)
)

// NormalizedPackage is one package line in the carrier's billing model.
type NormalizedPackage struct {
	Quantity       int
	Description    string
	Length         decimal.Decimal
	Width          decimal.Decimal
	Height         decimal.Decimal
	Weight         decimal.Decimal // unit weight after floor
	TotalWeight    decimal.Decimal // floored unit weight x quantity
	DimWeight      decimal.Decimal
	DangerousGoods bool
	UNNumber       int
	Envelope       bool // small-parcel eligible; commodity resolution may clear it
	CommodityID    int
	NOGCode        string
	RatePriorityID int
}

// Totals carries the running aggregates across a shipment's packages.
type Totals struct {
	Pieces    int
	Weight    decimal.Decimal
	DimWeight decimal.Decimal
}

// chargeable returns the weight used for accessorial pricing: the greater of
// actual and dimensional weight.
func (t Totals) chargeable() decimal.Decimal {
	if t.DimWeight.GreaterThan(t.Weight) {
		return t.DimWeight
	}
	return t.Weight
}

// aggregatePackages normalizes raw package lines into carrier billing records
// and running totals. It performs no I/O and never mutates its input.
func aggregatePackages(inputs []shipper.PackageInput) ([]NormalizedPackage, Totals) {
	totals := Totals{
		Weight:    decimal.Zero,
		DimWeight: decimal.Zero,
	}
	packages := make([]NormalizedPackage, 0, len(inputs))

	for _, in := range inputs {
		qty := decimal.NewFromInt(int64(in.Quantity))

		weight := in.Weight
		if weight.LessThan(minUnitWeight) {
			weight = minUnitWeight
		}

		p := NormalizedPackage{
			Quantity:    in.Quantity,
			Description: composeDescription(in),
			Length:      in.Length.Round(dimensionPrecision),
			Width:       in.Width.Round(dimensionPrecision),
			Height:      in.Height.Round(dimensionPrecision),
			Weight:      weight,
			TotalWeight: weight.Mul(qty).Round(2),
			DimWeight:   in.Length.Mul(in.Width).Mul(in.Height).Div(dimFactor).Mul(qty).Round(2),
			Envelope:    weight.LessThan(envelopeMaxWeight),
			CommodityID: in.CommodityID,
		}

		if in.UNNumber != 0 {
			p.DangerousGoods = true
			p.UNNumber = in.UNNumber
			p.CommodityID = dangerousGoodsCommodityID
		}

		totals.Pieces += in.Quantity
		totals.Weight = totals.Weight.Add(p.TotalWeight)
		totals.DimWeight = totals.DimWeight.Add(p.DimWeight)

		packages = append(packages, p)
	}

	return packages, totals
}

// composeDescription builds the carrier-facing package description. Pharma
// shipments get the package type and account id prefixed; time-sensitive and
// chain-of-signature suffixes are appended after the line is truncated.
func composeDescription(in shipper.PackageInput) string {
	if !in.Pharma {
		return truncate(in.Description, descriptionMaxLen)
	}

	parts := make([]string, 0, 3)
	if in.PackageTypeName != "" {
		parts = append(parts, in.PackageTypeName)
	}
	if in.AccountPackageID != "" {
		parts = append(parts, truncate(in.AccountPackageID, accountIDMaxLen))
	}
	if in.Description != "" {
		parts = append(parts, in.Description)
	}

	line := truncate(strings.Join(parts, " "), descriptionMaxLen)
	if in.TimeSensitive {
		line += timeSensitiveToken
	}
	if in.ChainOfSignature {
		line += chainOfSignatureToken
	}
	return line
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
