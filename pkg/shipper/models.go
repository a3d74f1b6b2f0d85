package shipper

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType represents the shipping service tier.
type ServiceType string

const (
	ServiceGeneral    ServiceType = "general"
	ServiceExpedited  ServiceType = "expedited"
	ServiceGuaranteed ServiceType = "guaranteed"
	ServiceEnvelope   ServiceType = "envelope"
	ServiceFreight    ServiceType = "freight"
)

// ServicePickupDelivery is the synthetic service code used when a shipment
// has only a pickup and/or delivery leg and no main carrier leg.
const ServicePickupDelivery = "PUD"

// DocumentType identifies a booking document artifact.
type DocumentType string

const (
	DocumentLabel          DocumentType = "label"
	DocumentWaybill        DocumentType = "waybill"
	DocumentDangerousGoods DocumentType = "dangerous_goods"
	DocumentCargoLabel     DocumentType = "cargo_label"
)

// TransitUnknown is the transit-days value used when no lane data exists.
const TransitUnknown = -1

// Address represents a shipping address.
type Address struct {
	Name         string
	Company      string
	Line1        string
	Line2        string
	City         string
	ProvinceCode string // e.g., "ON", "QC", "NU"
	PostalCode   string
	CountryCode  string // ISO 3166-1 alpha-2, e.g., "CA", "US"
	AirportCode  string // IATA code for air-cargo lanes, e.g., "YZF"
	Phone        string
	Email        string
}

// CarrierAccount references the caller's account with a carrier.
// Credentials are assumed decrypted by the caller.
type CarrierAccount struct {
	CustomerID string
	ScopeID    string // commodity-mapping scope for this account
}

// PackageInput is one raw package line as submitted by the customer.
type PackageInput struct {
	Quantity         int
	Length           decimal.Decimal
	Width            decimal.Decimal
	Height           decimal.Decimal
	Weight           decimal.Decimal
	Description      string
	PackageTypeName  string // e.g., "COOLER", "CARTON"
	AccountPackageID string // external package-account id, pharma shipments
	CommodityID      int    // declared default commodity
	UNNumber         int    // dangerous-goods UN number, 0 if none
	Pharma           bool
	TimeSensitive    bool
	ChainOfSignature bool
}

// ShipmentRequest describes one shipment for rating or booking.
// It is immutable for the duration of a single adapter call.
type ShipmentRequest struct {
	Origin      Address
	Destination Address
	Packages    []PackageInput
	Account     CarrierAccount

	IsPickup         bool
	IsDelivery       bool
	IsFood           bool
	IsDangerousGoods bool

	// PickupOnly/DeliveryOnly request an accessorial-leg-only quote with no
	// main carrier leg.
	PickupOnly   bool
	DeliveryOnly bool

	// Booking-only fields.
	DoNotShip            bool
	SelectedServiceID    string
	SelectedRatePriority int
	Instructions         string
	Reference            string
}

// NormalizedQuote is the platform's stable rate-quote shape, produced by
// every carrier adapter regardless of the carrier's own response format.
type NormalizedQuote struct {
	QuoteID           string
	CarrierID         string
	CarrierName       string
	ServiceCode       string
	ServiceName       string
	Freight           decimal.Decimal
	Surcharge         decimal.Decimal
	Taxes             decimal.Decimal
	TaxPercent        decimal.Decimal
	Total             decimal.Decimal
	TransitDays       int // TransitUnknown if no lane data
	EstimatedDelivery *time.Time
	Reference         string
}

// SurchargeLine is one named accessorial charge on a booking.
type SurchargeLine struct {
	Name    string
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// Document is a booking document artifact.
type Document struct {
	Type DocumentType
	Data string // base64-encoded payload
}

// BookingResult is the outcome of a successful booking. Documents are
// appended by the document-retrieval stage; the value is immutable once
// returned to the caller.
type BookingResult struct {
	TrackingNumber string
	CarrierName    string
	ServiceName    string
	Freight        decimal.Decimal
	Surcharge      decimal.Decimal
	Taxes          decimal.Decimal
	TaxPercent     decimal.Decimal
	Total          decimal.Decimal
	Surcharges     []SurchargeLine
	Documents      []Document
	Reference      string
}
