package borealair

import (
	"context"
	"fmt"

	"github.com/delivro/freightbridge/pkg/shipper"
)

// resolveCommodities attaches the carrier nature-of-goods code for one rate
// priority to every package. It returns a new slice and never mutates its
// input.
//
// The effective lookup commodity is the dangerous-goods commodity when the
// package is flagged, otherwise the priority-specific override, otherwise the
// declared default. A missing mapping fails with ErrCommodityNotFound; an
// envelope-only rate code applied to a non-envelope package fails with
// ErrServiceNotAvailable so callers can tell the two apart.
func resolveCommodities(ctx context.Context, ref ReferenceData, packages []NormalizedPackage, ratePriority int, scopeID string) ([]NormalizedPackage, error) {
	resolved := make([]NormalizedPackage, len(packages))
	copy(resolved, packages)

	for i := range resolved {
		commodityID := resolved[i].CommodityID
		switch {
		case resolved[i].DangerousGoods:
			commodityID = dangerousGoodsCommodityID
		case commodityID == generalCargoCommodityID && ratePriority == expeditedRatePriority:
			commodityID = priorityCargoCommodityID
		}

		mapping, ok, err := ref.CommodityMapping(ctx, scopeID, ratePriority, commodityID)
		if err != nil {
			return nil, fmt.Errorf("commodity lookup: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("commodity %d priority %d: %w", commodityID, ratePriority, shipper.ErrCommodityNotFound)
		}

		if mapping.EnvelopeRate && !resolved[i].Envelope {
			return nil, fmt.Errorf("package %d rate code %s: %w", i+1, mapping.RateCode, shipper.ErrServiceNotAvailable)
		}
		if !mapping.EnvelopeRate {
			resolved[i].Envelope = false
		}

		resolved[i].CommodityID = commodityID
		resolved[i].NOGCode = mapping.NOGCode
		resolved[i].RatePriorityID = ratePriority
	}

	return resolved, nil
}
