// Package shipper provides an abstraction layer for shipping carriers.
package shipper

import (
	"context"
)

// Shipper defines the interface that all shipping carriers must implement.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "borealair").
	Name() string

	// Rate returns normalized rate quotes for a shipment. Rating degrades
	// gracefully: individual service tiers that cannot be quoted are
	// omitted, and an empty slice with a nil error means no quotes were
	// available.
	Rate(ctx context.Context, req *ShipmentRequest) ([]NormalizedQuote, error)

	// Ship books a shipment with the carrier and returns tracking plus
	// billing documents. Booking fails loudly and atomically: any error
	// means no partial booking is returned.
	Ship(ctx context.Context, req *ShipmentRequest) (*BookingResult, error)
}
