// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/delivro/freightbridge/pkg/shipper"
	"github.com/shopspring/decimal"
)

// Client is a mock shipper for testing.
type Client struct {
	name string

	// Optional hooks to override default behavior per test.
	OnRate func(ctx context.Context, req *shipper.ShipmentRequest) ([]shipper.NormalizedQuote, error)
	OnShip func(ctx context.Context, req *shipper.ShipmentRequest) (*shipper.BookingResult, error)
}

// New creates a new mock shipper.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Rate returns mock rate quotes.
func (c *Client) Rate(ctx context.Context, req *shipper.ShipmentRequest) ([]shipper.NormalizedQuote, error) {
	if c.OnRate != nil {
		return c.OnRate(ctx, req)
	}

	now := time.Now()
	standardDelivery := now.AddDate(0, 0, 4)
	expressDelivery := now.AddDate(0, 0, 1)

	return []shipper.NormalizedQuote{
		{
			QuoteID:           fmt.Sprintf("%s-quote-%d", c.name, now.UnixNano()),
			CarrierID:         c.name,
			CarrierName:       c.name,
			ServiceCode:       "1",
			ServiceName:       "General",
			Freight:           decimal.NewFromFloat(89.50),
			Surcharge:         decimal.NewFromFloat(12.10),
			Taxes:             decimal.NewFromFloat(5.08),
			TaxPercent:        decimal.NewFromFloat(5.00),
			Total:             decimal.NewFromFloat(106.68),
			TransitDays:       4,
			EstimatedDelivery: &standardDelivery,
			Reference:         req.Reference,
		},
		{
			QuoteID:           fmt.Sprintf("%s-quote-%d-x", c.name, now.UnixNano()),
			CarrierID:         c.name,
			CarrierName:       c.name,
			ServiceCode:       "2",
			ServiceName:       "Guaranteed",
			Freight:           decimal.NewFromFloat(154.00),
			Surcharge:         decimal.NewFromFloat(18.48),
			Taxes:             decimal.NewFromFloat(8.62),
			TaxPercent:        decimal.NewFromFloat(5.00),
			Total:             decimal.NewFromFloat(181.10),
			TransitDays:       1,
			EstimatedDelivery: &expressDelivery,
			Reference:         req.Reference,
		},
	}, nil
}

// Ship books a mock shipment.
func (c *Client) Ship(ctx context.Context, req *shipper.ShipmentRequest) (*shipper.BookingResult, error) {
	if c.OnShip != nil {
		return c.OnShip(ctx, req)
	}

	return &shipper.BookingResult{
		TrackingNumber: fmt.Sprintf("%s-%d", c.name, time.Now().UnixNano()%100000000),
		CarrierName:    c.name,
		ServiceName:    "General",
		Freight:        decimal.NewFromFloat(89.50),
		Surcharge:      decimal.NewFromFloat(12.10),
		Taxes:          decimal.NewFromFloat(5.08),
		TaxPercent:     decimal.NewFromFloat(4.76),
		Total:          decimal.NewFromFloat(106.68),
		Reference:      req.Reference,
	}, nil
}

var _ shipper.Shipper = (*Client)(nil)
