package shipper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/delivro/freightbridge/pkg/shipper"
	"github.com/delivro/freightbridge/pkg/shipper/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShipment() *shipper.ShipmentRequest {
	return &shipper.ShipmentRequest{
		Origin: shipper.Address{
			Name:         "Sender",
			Line1:        "123 Main St",
			City:         "Yellowknife",
			ProvinceCode: "NT",
			PostalCode:   "X1A 2P8",
			CountryCode:  "CA",
			AirportCode:  "YZF",
			Phone:        "867-555-1234",
		},
		Destination: shipper.Address{
			Name:         "Receiver",
			Line1:        "456 Oak Ave",
			City:         "Iqaluit",
			ProvinceCode: "NU",
			PostalCode:   "X0A 0H0",
			CountryCode:  "CA",
			AirportCode:  "YFB",
			Phone:        "867-555-5678",
		},
		Packages: []shipper.PackageInput{
			{
				Quantity: 1,
				Length:   decimal.NewFromInt(10),
				Width:    decimal.NewFromInt(10),
				Height:   decimal.NewFromInt(10),
				Weight:   decimal.NewFromInt(5),
			},
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := shipper.NewRegistry()

	mockShipper := mock.New("test-shipper")
	registry.Register(mockShipper)

	got, err := registry.Get("test-shipper")
	require.NoError(t, err, "shipper should be registered")
	assert.Equal(t, "test-shipper", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := shipper.NewRegistry()

	// Register first shipper
	registry.Register(mock.New("test-shipper"))
	assert.Equal(t, 1, registry.Count())

	// Register again with same name should override
	registry.Register(mock.New("test-shipper"))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := shipper.NewRegistry()

	_, err := registry.Get("nonexistent")
	assert.Error(t, err, "should return error for unregistered shipper")
	assert.True(t, errors.Is(err, shipper.ErrCarrierNotFound))
}

func TestRegistry_All(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("shipper-a"))
	registry.Register(mock.New("shipper-b"))
	registry.Register(mock.New("shipper-c"))

	all := registry.All()
	assert.Len(t, all, 3)
}

func TestRegistry_Names(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("borealair"))
	registry.Register(mock.New("freightcom"))
	registry.Register(mock.New("canadapost"))

	names := registry.Names()
	assert.Len(t, names, 3)
	assert.Contains(t, names, "borealair")
	assert.Contains(t, names, "freightcom")
	assert.Contains(t, names, "canadapost")
}

func TestRegistry_Count(t *testing.T) {
	registry := shipper.NewRegistry()
	assert.Equal(t, 0, registry.Count())

	registry.Register(mock.New("shipper-a"))
	assert.Equal(t, 1, registry.Count())

	registry.Register(mock.New("shipper-b"))
	assert.Equal(t, 2, registry.Count())
}

func TestRegistry_RateAll(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("borealair"))
	registry.Register(mock.New("freightcom"))

	ctx := context.Background()
	quotes, errs := registry.RateAll(ctx, testShipment())

	assert.Empty(t, errs, "should have no errors from mock shippers")
	assert.Len(t, quotes, 4, "each mock shipper returns two quotes")

	for _, q := range quotes {
		assert.NotEmpty(t, q.QuoteID)
		assert.True(t, q.Total.IsPositive())
	}
}

func TestRegistry_RateAll_Empty(t *testing.T) {
	registry := shipper.NewRegistry()

	ctx := context.Background()
	quotes, errs := registry.RateAll(ctx, testShipment())

	assert.Empty(t, quotes, "should return empty results for empty registry")
	assert.NotEmpty(t, errs, "should return error for empty registry")
}

func TestRegistry_RateAll_PartialFailure(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("borealair"))

	failing := mock.New("broken")
	failing.OnRate = func(ctx context.Context, req *shipper.ShipmentRequest) ([]shipper.NormalizedQuote, error) {
		return nil, errors.New("carrier endpoint down")
	}
	registry.Register(failing)

	ctx := context.Background()
	quotes, errs := registry.RateAll(ctx, testShipment())

	assert.Len(t, quotes, 2, "healthy carrier still quotes")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "broken")
}

func TestRegistry_RateCarriers_Success(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("borealair"))
	registry.Register(mock.New("freightcom"))
	registry.Register(mock.New("canadapost"))

	ctx := context.Background()
	// Only request quotes from 2 carriers
	quotes, errs := registry.RateCarriers(ctx, testShipment(), []string{"borealair", "canadapost"})

	assert.Empty(t, errs)
	assert.Len(t, quotes, 4)
}

func TestRegistry_RateCarriers_EmptyCarriers(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("borealair"))
	registry.Register(mock.New("freightcom"))

	ctx := context.Background()
	// Empty carriers list should rate with all carriers
	quotes, errs := registry.RateCarriers(ctx, testShipment(), []string{})

	assert.Empty(t, errs)
	assert.Len(t, quotes, 4, "should get quotes from all carriers when empty list")
}

func TestRegistry_RateCarriers_NotFound(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("borealair"))

	ctx := context.Background()
	quotes, errs := registry.RateCarriers(ctx, testShipment(), []string{"nonexistent"})

	assert.Len(t, quotes, 0)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], shipper.ErrCarrierNotFound))
}
