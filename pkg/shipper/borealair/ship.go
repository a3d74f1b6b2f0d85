package borealair

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/delivro/freightbridge/internal/notify"
	"github.com/delivro/freightbridge/pkg/shipper"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	instructionsMaxLen = 200
	waybillKeyLen      = 8

	pickupNote   = "PICKUP FROM SHIPPER"
	deliveryNote = "DELIVER TO CONSIGNEE"
	holdNote     = "HOLD AT DESTINATION CARGO COUNTER"
)

// Ship books a shipment with Boreal Air. Unlike rating, booking fails loudly
// and atomically: the first fatal error aborts the invocation and no partial
// booking is returned.
func (c *Client) Ship(ctx context.Context, req *shipper.ShipmentRequest) (*shipper.BookingResult, error) {
	start := time.Now()

	// Do-not-ship short-circuit: no network calls at all.
	if req.DoNotShip || req.SelectedServiceID == shipper.ServicePickupDelivery {
		return &shipper.BookingResult{
			CarrierName: carrierDisplayName,
			ServiceName: req.SelectedServiceID,
			Freight:     decimal.Zero,
			Surcharge:   decimal.Zero,
			Taxes:       decimal.Zero,
			TaxPercent:  decimal.Zero,
			Total:       decimal.Zero,
			Documents:   []shipper.Document{},
			Reference:   req.Reference,
		}, nil
	}

	c.logger.Info("Booking Boreal Air shipment",
		zap.String("origin", req.Origin.AirportCode),
		zap.String("destination", req.Destination.AirportCode),
		zap.Int("rate_priority", req.SelectedRatePriority),
	)

	wireReq, err := c.buildShipRequest(ctx, req)
	if err != nil {
		c.recordRequest("ship", start, false)
		return nil, err
	}

	result, err := c.book(ctx, req, wireReq)
	if err != nil {
		c.recordError("booking")
		c.recordRequest("ship", start, false)
		return nil, err
	}

	if err := c.fetchDocuments(ctx, req, result); err != nil {
		c.recordError("document_fetch")
		c.recordRequest("ship", start, false)
		return nil, err
	}

	c.dispatchLegNotifications(ctx, req, result)

	c.recordRequest("ship", start, true)
	return result, nil
}

// buildShipRequest resolves commodities and interline for the selected rate
// priority and composes the outbound booking request. Every resolution
// failure here is fatal; booking has no skip-and-continue option.
func (c *Client) buildShipRequest(ctx context.Context, req *shipper.ShipmentRequest) (*ShipRequest, error) {
	packages, totals := aggregatePackages(req.Packages)

	resolved, err := resolveCommodities(ctx, c.ref, packages, req.SelectedRatePriority, req.Account.ScopeID)
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, "BUILD_FAILED", "commodity resolution failed").WithCause(err)
	}

	wireReq := &ShipRequest{
		UniqueID:       bookingUniqueID(req),
		CustomerID:     req.Account.CustomerID,
		ServiceID:      req.SelectedServiceID,
		RatePriorityID: strconv.Itoa(req.SelectedRatePriority),
		Origin:         req.Origin.AirportCode,
		Destination:    req.Destination.AirportCode,
		Sender:         c.partyFromAddress(ctx, req.Origin),
		Recipient:      c.partyFromAddress(ctx, req.Destination),
		TotalPieces:    totals.Pieces,
		TotalWeight:    totals.Weight.StringFixed(2),
		Packages:       packagesToWire(resolved),
		DangerousGoods: req.IsDangerousGoods,
		Instructions:   c.composeInstructions(req),
		Reference:      req.Reference,
	}

	isInterline, err := c.interline.IsInterlineLane(ctx, req.Origin.AirportCode, req.Destination.AirportCode)
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, "INTERLINE_LOOKUP_FAILED", "interline lane check failed").WithCause(err)
	}
	if isInterline {
		groupID, ok, err := c.interline.ResolveID(ctx, req.Origin.AirportCode, req.Destination.AirportCode)
		if err != nil || !ok {
			return nil, shipper.NewShipperError(carrierName, "INTERLINE_UNRESOLVED", "lane requires interline routing").WithCause(shipper.ErrInterlineUnresolved)
		}
		wireReq.InterlineGroupID = groupID
	}

	return wireReq, nil
}

// book performs the single booking network call and parses the charge
// response. Any transport error, carrier-side error, or unparsable monetary
// field aborts the booking.
func (c *Client) book(ctx context.Context, req *shipper.ShipmentRequest, wireReq *ShipRequest) (*shipper.BookingResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.apiClient.Ship(callCtx, wireReq)
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, "REQUEST_FAILED", "booking request failed").WithCause(err)
	}
	if len(resp.Errors) > 0 {
		return nil, shipper.NewShipperError(carrierName, "REQUEST_FAILED", resp.Errors[0].Message)
	}

	freight, err := parseMoney(resp.Freight.String())
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, "RESPONSE_INVALID", "freight is not numeric").WithCause(err)
	}
	taxes, err := parseMoney(resp.Taxes.String())
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, "RESPONSE_INVALID", "taxes is not numeric").WithCause(err)
	}
	total, err := parseMoney(resp.Total.String())
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, "RESPONSE_INVALID", "total is not numeric").WithCause(err)
	}

	surchargeLines := make([]shipper.SurchargeLine, 0, len(resp.Surcharges))
	surchargeTotal := decimal.Zero
	for _, s := range resp.Surcharges {
		amount, err := parseMoney(s.Amount.String())
		if err != nil {
			return nil, shipper.NewShipperError(carrierName, "RESPONSE_INVALID", fmt.Sprintf("surcharge %q is not numeric", s.Name)).WithCause(err)
		}
		percent := decimal.Zero
		if s.Percent != nil {
			percent = decimal.NewFromFloat(*s.Percent)
		}
		surchargeLines = append(surchargeLines, shipper.SurchargeLine{
			Name:    s.Name,
			Amount:  amount,
			Percent: percent,
		})
		surchargeTotal = surchargeTotal.Add(amount)
	}

	// Booking tax percentage is always derived locally; the booking
	// response carries no tax-line rates.
	taxPercent := decimal.Zero
	if !total.IsZero() {
		taxPercent = taxes.Div(total).Mul(oneHundred).Round(2)
	}

	return &shipper.BookingResult{
		TrackingNumber: resp.TrackingNumber,
		CarrierName:    carrierDisplayName,
		ServiceName:    resp.ServiceName,
		Freight:        freight,
		Surcharge:      surchargeTotal.Round(2),
		Taxes:          taxes,
		TaxPercent:     taxPercent,
		Total:          total,
		Surcharges:     surchargeLines,
		Reference:      req.Reference,
	}, nil
}

// fetchDocuments retrieves the shipping label and waybill concurrently.
// Unlike rating's collection stage this is all-or-nothing: the first failed
// download aborts the whole booking. Locally generated documents (dangerous
// goods declaration, cargo label) are appended only after both downloads
// complete.
func (c *Client) fetchDocuments(ctx context.Context, req *shipper.ShipmentRequest, result *shipper.BookingResult) error {
	key := waybillKey(result.TrackingNumber)

	var label, waybill []byte
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, requestTimeout)
		defer cancel()
		data, err := c.apiClient.FetchLabel(callCtx, key)
		if err != nil {
			return fmt.Errorf("label download: %w", err)
		}
		label = data
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, requestTimeout)
		defer cancel()
		data, err := c.apiClient.FetchWaybill(callCtx, key)
		if err != nil {
			return fmt.Errorf("waybill download: %w", err)
		}
		waybill = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return shipper.NewShipperError(carrierName, "DOCUMENT_FETCH_FAILED", "document retrieval failed").WithCause(err)
	}

	result.Documents = append(result.Documents,
		shipper.Document{Type: shipper.DocumentLabel, Data: base64.StdEncoding.EncodeToString(label)},
		shipper.Document{Type: shipper.DocumentWaybill, Data: base64.StdEncoding.EncodeToString(waybill)},
	)

	if req.IsDangerousGoods {
		result.Documents = append(result.Documents, shipper.Document{
			Type: shipper.DocumentDangerousGoods,
			Data: base64.StdEncoding.EncodeToString(dangerousGoodsDeclaration(req, result.TrackingNumber)),
		})
	}

	if c.cargoLabelAllowed(req.Account.CustomerID) {
		result.Documents = append(result.Documents, shipper.Document{
			Type: shipper.DocumentCargoLabel,
			Data: base64.StdEncoding.EncodeToString(cargoLabel(req, result.TrackingNumber)),
		})
	}

	return nil
}

// dispatchLegNotifications fires pickup/delivery leg events after documents
// are assembled. The tasks are fire-and-forget: a publish failure is logged
// and never affects the returned result.
func (c *Client) dispatchLegNotifications(ctx context.Context, req *shipper.ShipmentRequest, result *shipper.BookingResult) {
	events := make([]notify.LegEvent, 0, 2)
	if req.IsPickup {
		events = append(events, notify.LegEvent{
			Type:           "pickup",
			Carrier:        carrierName,
			TrackingNumber: result.TrackingNumber,
			City:           req.Origin.City,
			Reference:      req.Reference,
		})
	}
	if req.IsDelivery {
		events = append(events, notify.LegEvent{
			Type:           "delivery",
			Carrier:        carrierName,
			TrackingNumber: result.TrackingNumber,
			City:           req.Destination.City,
			Reference:      req.Reference,
		})
	}

	for _, event := range events {
		event := event
		go func() {
			publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requestTimeout)
			defer cancel()
			if err := c.publisher.Publish(publishCtx, event.TrackingNumber, event); err != nil {
				c.logger.Warn("Leg notification publish failed",
					zap.String("type", event.Type),
					zap.Error(err),
				)
			}
		}()
	}
}

// partyFromAddress builds an address block, substituting the carrier's
// preferred city name when an alias is configured.
func (c *Client) partyFromAddress(ctx context.Context, addr shipper.Address) Party {
	city := addr.City
	if alias, ok, err := c.ref.CityAlias(ctx, carrierName, addr.City, addr.ProvinceCode, addr.CountryCode); err != nil {
		c.logger.Warn("City alias lookup failed", zap.String("city", addr.City), zap.Error(err))
	} else if ok {
		city = alias
	}

	return Party{
		Name:       addr.Name,
		Address1:   addr.Line1,
		Address2:   addr.Line2,
		City:       city,
		Province:   addr.ProvinceCode,
		PostalCode: addr.PostalCode,
		Country:    addr.CountryCode,
		Phone:      addr.Phone,
	}
}

// composeInstructions concatenates the shipment's handling text from up to
// three sources, single-space separated and truncated to the carrier's
// limit. Whether undelivered freight is held or delivered keys off the
// configured home carrier.
func (c *Client) composeInstructions(req *shipper.ShipmentRequest) string {
	parts := make([]string, 0, 3)
	if req.Instructions != "" {
		parts = append(parts, req.Instructions)
	}
	if req.IsPickup {
		parts = append(parts, pickupNote)
	}
	if req.IsDelivery {
		parts = append(parts, deliveryNote)
	} else if c.config.HomeCarrierID == carrierName {
		parts = append(parts, holdNote)
	}
	return truncate(strings.Join(parts, " "), instructionsMaxLen)
}

func (c *Client) cargoLabelAllowed(customerID string) bool {
	for _, id := range c.config.CargoLabelAccounts {
		if id == customerID {
			return true
		}
	}
	return false
}

// waybillKey is the carrier's document lookup key: the last 8 characters of
// the tracking identifier.
func waybillKey(trackingNumber string) string {
	if len(trackingNumber) <= waybillKeyLen {
		return trackingNumber
	}
	return trackingNumber[len(trackingNumber)-waybillKeyLen:]
}

func bookingUniqueID(req *shipper.ShipmentRequest) string {
	if req.Reference != "" {
		return req.Reference
	}
	return uuid.New().String()
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// dangerousGoodsDeclaration generates the dangerous-goods paperwork locally;
// the carrier does not produce this document.
func dangerousGoodsDeclaration(req *shipper.ShipmentRequest, trackingNumber string) []byte {
	var b strings.Builder
	b.WriteString("SHIPPER'S DECLARATION FOR DANGEROUS GOODS\n")
	fmt.Fprintf(&b, "Air Waybill: %s\n", trackingNumber)
	fmt.Fprintf(&b, "Shipper: %s, %s\n", req.Origin.Name, req.Origin.City)
	fmt.Fprintf(&b, "Consignee: %s, %s\n", req.Destination.Name, req.Destination.City)
	for _, p := range req.Packages {
		if p.UNNumber == 0 {
			continue
		}
		fmt.Fprintf(&b, "UN%04d x%d %s\n", p.UNNumber, p.Quantity, p.Description)
	}
	return []byte(b.String())
}

// cargoLabel generates the commercial cargo label for allow-listed accounts.
func cargoLabel(req *shipper.ShipmentRequest, trackingNumber string) []byte {
	pieces := 0
	for _, p := range req.Packages {
		pieces += p.Quantity
	}

	var b strings.Builder
	b.WriteString("BOREAL AIR CARGO\n")
	fmt.Fprintf(&b, "AWB %s\n", trackingNumber)
	fmt.Fprintf(&b, "FROM %s (%s)\n", req.Origin.City, req.Origin.AirportCode)
	fmt.Fprintf(&b, "TO %s (%s)\n", req.Destination.City, req.Destination.AirportCode)
	fmt.Fprintf(&b, "PIECES %d\n", pieces)
	return []byte(b.String())
}
