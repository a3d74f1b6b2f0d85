package borealair

import (
	"context"
	"testing"

	"github.com/delivro/freightbridge/pkg/shipper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commodityRef() *Memory {
	return &Memory{
		Commodities: []MemoryCommodity{
			{ScopeID: "scope-1", Mapping: CommodityMapping{RatePriorityID: 1, CommodityID: 1, NOGCode: "GEN", RateCode: "GC100"}},
			{ScopeID: "scope-1", Mapping: CommodityMapping{RatePriorityID: 2, CommodityID: 2, NOGCode: "PRI", RateCode: "PC200"}},
			{ScopeID: "scope-1", Mapping: CommodityMapping{RatePriorityID: 1, CommodityID: 17, NOGCode: "DGR", RateCode: "DG900"}},
			{ScopeID: "scope-1", Mapping: CommodityMapping{RatePriorityID: 3, CommodityID: 1, NOGCode: "ENV", RateCode: "EN050", EnvelopeRate: true}},
		},
	}
}

func TestResolveCommodities_AttachesNOGCode(t *testing.T) {
	packages := []NormalizedPackage{{Quantity: 1, CommodityID: 1}}

	resolved, err := resolveCommodities(context.Background(), commodityRef(), packages, 1, "scope-1")
	require.NoError(t, err)

	assert.Equal(t, "GEN", resolved[0].NOGCode)
	assert.Equal(t, 1, resolved[0].RatePriorityID)
	assert.Empty(t, packages[0].NOGCode, "input slice must not be mutated")
}

func TestResolveCommodities_ExpeditedOverride(t *testing.T) {
	packages := []NormalizedPackage{{Quantity: 1, CommodityID: 1}}

	resolved, err := resolveCommodities(context.Background(), commodityRef(), packages, 2, "scope-1")
	require.NoError(t, err)

	// General cargo is remapped to priority cargo on the expedited tier.
	assert.Equal(t, priorityCargoCommodityID, resolved[0].CommodityID)
	assert.Equal(t, "PRI", resolved[0].NOGCode)
}

func TestResolveCommodities_DangerousGoodsWinsOverOverride(t *testing.T) {
	packages := []NormalizedPackage{{Quantity: 1, CommodityID: 1, DangerousGoods: true}}

	// Priority 2 has no dangerous-goods mapping, so the lookup must target
	// commodity 17 and fail, not fall back to the priority override.
	_, err := resolveCommodities(context.Background(), commodityRef(), packages, 2, "scope-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, shipper.ErrCommodityNotFound)
}

func TestResolveCommodities_MissingMapping(t *testing.T) {
	packages := []NormalizedPackage{{Quantity: 1, CommodityID: 42}}

	_, err := resolveCommodities(context.Background(), commodityRef(), packages, 1, "scope-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, shipper.ErrCommodityNotFound)
	assert.NotErrorIs(t, err, shipper.ErrServiceNotAvailable)
}

func TestResolveCommodities_EnvelopeOnlyRateRejectsHeavyPackage(t *testing.T) {
	packages := []NormalizedPackage{{Quantity: 1, CommodityID: 1, Envelope: false}}

	_, err := resolveCommodities(context.Background(), commodityRef(), packages, 3, "scope-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, shipper.ErrServiceNotAvailable)
	assert.NotErrorIs(t, err, shipper.ErrCommodityNotFound)
}

func TestResolveCommodities_EnvelopeClearedOnStandardRate(t *testing.T) {
	packages := []NormalizedPackage{{Quantity: 1, CommodityID: 1, Envelope: true}}

	resolved, err := resolveCommodities(context.Background(), commodityRef(), packages, 1, "scope-1")
	require.NoError(t, err)

	assert.False(t, resolved[0].Envelope, "envelope flag only survives on an envelope rate code")
	assert.True(t, packages[0].Envelope, "input slice must not be mutated")
}

func TestResolveCommodities_EnvelopeKeptOnEnvelopeRate(t *testing.T) {
	packages := []NormalizedPackage{{Quantity: 1, CommodityID: 1, Envelope: true}}

	resolved, err := resolveCommodities(context.Background(), commodityRef(), packages, 3, "scope-1")
	require.NoError(t, err)

	assert.True(t, resolved[0].Envelope)
	assert.Equal(t, "ENV", resolved[0].NOGCode)
}
