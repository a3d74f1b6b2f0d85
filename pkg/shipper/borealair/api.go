package borealair

import (
	"context"
	"encoding/json"
)

// APIClient defines the interface for Boreal Air cargo API operations.
// This abstraction allows for mock implementations during testing and real
// implementations in production.
type APIClient interface {
	// Rate fetches a quote for a single rate priority
	Rate(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// Ship books a shipment
	Ship(ctx context.Context, req *ShipRequest) (*ShipResponse, error)

	// FetchWaybill downloads the bill-of-lading/waybill PDF by lookup key
	FetchWaybill(ctx context.Context, key string) ([]byte, error)

	// FetchLabel downloads the shipping label PDF by lookup key
	FetchLabel(ctx context.Context, key string) ([]byte, error)
}

// ============================================================================
// API Request/Response Types (match the Boreal Air cargo REST structure)
// ============================================================================

// WirePackage is one package line on an outbound request.
type WirePackage struct {
	Quantity       int    `json:"quantity"`
	Length         string `json:"length"`
	Width          string `json:"width"`
	Height         string `json:"height"`
	Weight         string `json:"weight"`
	TotalWeight    string `json:"total_weight"`
	NOGCode        string `json:"nog_code"`
	RatePriorityID string `json:"rate_priority_id"`
	Description    string `json:"description,omitempty"`
	UNNumber       int    `json:"un_number,omitempty"`
}

// RateRequest is one outbound rate request for a single rate priority.
// POST /rates endpoint
type RateRequest struct {
	CustomerID       string        `json:"customer_id"`
	Origin           string        `json:"origin"`      // IATA airport code
	Destination      string        `json:"destination"` // IATA airport code
	RatePriorityID   string        `json:"rate_priority_id"`
	TotalPieces      int           `json:"total_pieces"`
	TotalWeight      string        `json:"total_weight"`
	TotalDimWeight   string        `json:"total_dim_weight"`
	Packages         []WirePackage `json:"packages"`
	InterlineGroupID string        `json:"interline_group_id,omitempty"`
}

// PriceLine is one package-price line item.
type PriceLine struct {
	Name   string      `json:"name"`
	Amount json.Number `json:"amount"`
}

// TaxLine is one tax line item. Rate is the fractional tax rate
// (e.g. 0.05 for 5%).
type TaxLine struct {
	Name   string      `json:"name"`
	Rate   json.Number `json:"rate"`
	Amount json.Number `json:"amount"`
}

// ChargeLine is one surcharge line item. Percent may be null.
type ChargeLine struct {
	Name    string      `json:"name"`
	Amount  json.Number `json:"amount"`
	Percent *float64    `json:"percent"`
}

// APIErrorDetail is one application-level error from the carrier.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RateResponse is the carrier's rate quote for one rate priority. The three
// charge lists are required: a response missing any of them cannot be
// normalized.
type RateResponse struct {
	Errors        []APIErrorDetail `json:"errors,omitempty"`
	ServiceID     string           `json:"service_id"`
	ServiceName   string           `json:"service_name"`
	PackagePrices []PriceLine      `json:"package_prices"`
	Taxes         []TaxLine        `json:"taxes"`
	Surcharges    []ChargeLine     `json:"surcharges"`
	Total         json.Number      `json:"total"`
}

// Party is a sender or recipient address block.
type Party struct {
	Name       string `json:"name"`
	Address1   string `json:"address_1"`
	Address2   string `json:"address_2,omitempty"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// ShipRequest books a shipment.
// POST /shipments endpoint
type ShipRequest struct {
	UniqueID         string        `json:"unique_id"` // prevents duplicate bookings
	CustomerID       string        `json:"customer_id"`
	ServiceID        string        `json:"service_id"`
	RatePriorityID   string        `json:"rate_priority_id"`
	Origin           string        `json:"origin"`
	Destination      string        `json:"destination"`
	Sender           Party         `json:"sender"`
	Recipient        Party         `json:"recipient"`
	TotalPieces      int           `json:"total_pieces"`
	TotalWeight      string        `json:"total_weight"`
	Packages         []WirePackage `json:"packages"`
	InterlineGroupID string        `json:"interline_group_id,omitempty"`
	DangerousGoods   bool          `json:"dangerous_goods"`
	Instructions     string        `json:"instructions,omitempty"`
	Reference        string        `json:"reference,omitempty"`
}

// ShipResponse is the carrier's booking confirmation.
type ShipResponse struct {
	Errors         []APIErrorDetail `json:"errors,omitempty"`
	TrackingNumber string           `json:"tracking_number"`
	ServiceID      string           `json:"service_id"`
	ServiceName    string           `json:"service_name"`
	Freight        json.Number      `json:"freight"`
	Taxes          json.Number      `json:"taxes"`
	Total          json.Number      `json:"total"`
	Surcharges     []ChargeLine     `json:"surcharges,omitempty"`
}

// APIError represents a transport-level error from the carrier API.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
