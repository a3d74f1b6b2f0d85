// Package borealair provides integration with the Boreal Air cargo API.
package borealair

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/delivro/freightbridge/internal/notify"
	"github.com/delivro/freightbridge/internal/telemetry"
	"github.com/delivro/freightbridge/pkg/shipper"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	carrierName        = "borealair"
	carrierDisplayName = "Boreal Air Cargo"

	// requestTimeout bounds each outbound carrier call independently.
	requestTimeout = 30 * time.Second
)

// Config holds Boreal Air configuration.
type Config struct {
	APIKey  string
	BaseURL string
	// HomeCarrierID controls the hold-vs-deliver instruction wording on
	// bookings: if this adapter is the home carrier, undelivered freight is
	// held at the destination cargo counter.
	HomeCarrierID string
	// CargoLabelAccounts is the allow-list of customer ids that get a
	// locally generated cargo label on every booking.
	CargoLabelAccounts []string
	UseMock            bool
}

// Client is the Boreal Air shipper client. It implements the shipper.Shipper
// interface and delegates API calls to the underlying APIClient (mock or
// HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	ref       ReferenceData
	interline *interlineResolver
	transit   *transitResolver
	publisher notify.Publisher
	metrics   *telemetry.Metrics
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Boreal Air client. If cfg.UseMock is true, it uses a mock
// API client for testing. Otherwise, it uses the real HTTP API client.
func New(cfg Config, ref ReferenceData, publisher notify.Publisher, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: requestTimeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, ref, publisher, logger, tracer)
}

// NewWithAPIClient creates a new Boreal Air client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, ref ReferenceData, publisher notify.Publisher, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		ref:       ref,
		interline: newInterlineResolver(ref),
		transit:   newTransitResolver(ref),
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
	}
}

// WithMetrics attaches request metrics recording to the client.
func (c *Client) WithMetrics(m *telemetry.Metrics) *Client {
	c.metrics = m
	return c
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Rate returns normalized quotes from Boreal Air, one per rate priority the
// account can book. Rating degrades gracefully: priorities that cannot be
// quoted are skipped and malformed carrier responses are dropped. The only
// hard failure is a lane that requires interline routing with no resolvable
// group id.
func (c *Client) Rate(ctx context.Context, req *shipper.ShipmentRequest) ([]shipper.NormalizedQuote, error) {
	start := time.Now()

	if req.PickupOnly || req.DeliveryOnly {
		return c.rateAccessorialOnly(ctx, req)
	}

	c.logger.Info("Rating Boreal Air shipment",
		zap.String("origin", req.Origin.AirportCode),
		zap.String("destination", req.Destination.AirportCode),
		zap.Int("package_count", len(req.Packages)),
	)

	packages, totals := aggregatePackages(req.Packages)

	priorities, err := c.ref.RatePriorities(ctx, req.Account.ScopeID)
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, "SCOPE_LOOKUP_FAILED", "rate priority scope lookup failed").WithCause(err)
	}

	requests := make([]*RateRequest, 0, len(priorities))
	for _, priority := range priorities {
		resolved, err := resolveCommodities(ctx, c.ref, packages, priority, req.Account.ScopeID)
		if err != nil {
			c.logger.Warn("Skipping rate priority",
				zap.Int("rate_priority", priority),
				zap.Error(err),
			)
			continue
		}
		requests = append(requests, c.buildRateRequest(req, resolved, totals, priority))
	}

	// Interline is resolved once per batch, not per priority.
	isInterline, err := c.interline.IsInterlineLane(ctx, req.Origin.AirportCode, req.Destination.AirportCode)
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, "INTERLINE_LOOKUP_FAILED", "interline lane check failed").WithCause(err)
	}
	if isInterline {
		groupID, ok, err := c.interline.ResolveID(ctx, req.Origin.AirportCode, req.Destination.AirportCode)
		if err != nil || !ok {
			return nil, shipper.NewShipperError(carrierName, "INTERLINE_UNRESOLVED", "lane requires interline routing").WithCause(shipper.ErrInterlineUnresolved)
		}
		for _, r := range requests {
			r.InterlineGroupID = groupID
		}
	}

	if len(requests) == 0 {
		// No priority survived commodity resolution; rating yields no
		// quotes rather than failing the caller.
		return []shipper.NormalizedQuote{}, nil
	}

	responses := c.dispatchRates(ctx, requests)

	quotes := make([]shipper.NormalizedQuote, 0, len(responses))
	for _, resp := range responses {
		quote, err := c.normalizeRate(ctx, req, resp)
		if err != nil {
			c.logger.Error("Dropping malformed rate response",
				zap.String("service_id", resp.ServiceID),
				zap.Error(err),
			)
			continue
		}
		quotes = append(quotes, *quote)
	}

	c.enrichAccessorials(ctx, req, totals, quotes)

	c.recordRequest("rate", start, true)
	return quotes, nil
}

func sumPriceLines(lines []PriceLine) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range lines {
		amount, err := decimal.NewFromString(l.Amount.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("price line %q amount %q is not numeric: %w", l.Name, l.Amount.String(), err)
		}
		sum = sum.Add(amount)
	}
	return sum, nil
}

func sumTaxLines(lines []TaxLine) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range lines {
		amount, err := decimal.NewFromString(l.Amount.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("tax line %q amount %q is not numeric: %w", l.Name, l.Amount.String(), err)
		}
		sum = sum.Add(amount)
	}
	return sum, nil
}

func sumChargeLines(lines []ChargeLine) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range lines {
		amount, err := decimal.NewFromString(l.Amount.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("surcharge line %q amount %q is not numeric: %w", l.Name, l.Amount.String(), err)
		}
		sum = sum.Add(amount)
	}
	return sum, nil
}

// dispatchRates submits every per-priority request as an independent
// concurrent unit with its own timeout, waits for all of them, and collects
// the survivors. Failed or carrier-rejected units are dropped, not
// re-raised.
func (c *Client) dispatchRates(ctx context.Context, requests []*RateRequest) []*RateResponse {
	responses := make([]*RateResponse, 0, len(requests))
	mu := &sync.Mutex{}

	var g errgroup.Group
	for _, r := range requests {
		r := r // capture loop variable
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			defer cancel()

			resp, err := c.apiClient.Rate(callCtx, r)
			if err != nil {
				c.logger.Warn("Rate priority request failed",
					zap.String("rate_priority", r.RatePriorityID),
					zap.Error(err),
				)
				c.recordError("rate_request")
				return nil
			}
			if len(resp.Errors) > 0 {
				c.logger.Warn("Rate priority rejected by carrier",
					zap.String("rate_priority", r.RatePriorityID),
					zap.String("carrier_error", resp.Errors[0].Message),
				)
				c.recordError("rate_rejected")
				return nil
			}

			mu.Lock()
			responses = append(responses, resp)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return responses
}

// buildRateRequest assembles one outbound rate request for a priority from
// already-resolved packages.
func (c *Client) buildRateRequest(req *shipper.ShipmentRequest, packages []NormalizedPackage, totals Totals, priority int) *RateRequest {
	return &RateRequest{
		CustomerID:     req.Account.CustomerID,
		Origin:         req.Origin.AirportCode,
		Destination:    req.Destination.AirportCode,
		RatePriorityID: strconv.Itoa(priority),
		TotalPieces:    totals.Pieces,
		TotalWeight:    totals.Weight.StringFixed(2),
		TotalDimWeight: totals.DimWeight.StringFixed(2),
		Packages:       packagesToWire(packages),
	}
}

func packagesToWire(packages []NormalizedPackage) []WirePackage {
	wire := make([]WirePackage, len(packages))
	for i, p := range packages {
		wire[i] = WirePackage{
			Quantity:       p.Quantity,
			Length:         p.Length.StringFixed(2),
			Width:          p.Width.StringFixed(2),
			Height:         p.Height.StringFixed(2),
			Weight:         p.Weight.StringFixed(2),
			TotalWeight:    p.TotalWeight.StringFixed(2),
			NOGCode:        p.NOGCode,
			RatePriorityID: strconv.Itoa(p.RatePriorityID),
			Description:    p.Description,
			UNNumber:       p.UNNumber,
		}
	}
	return wire
}

// normalizeRate converts one carrier rate response into the platform quote
// shape. Freight, tax, and surcharge totals are summed from the carrier's
// three line-item lists; the carrier's own total field is authoritative and
// is never recomputed locally.
func (c *Client) normalizeRate(ctx context.Context, req *shipper.ShipmentRequest, resp *RateResponse) (*shipper.NormalizedQuote, error) {
	if resp.PackagePrices == nil || resp.Taxes == nil || resp.Surcharges == nil {
		return nil, fmt.Errorf("response for service %q is missing a charge breakdown list", resp.ServiceID)
	}

	total, err := decimal.NewFromString(resp.Total.String())
	if err != nil {
		return nil, fmt.Errorf("total %q is not numeric: %w", resp.Total.String(), err)
	}

	freight, err := sumPriceLines(resp.PackagePrices)
	if err != nil {
		return nil, err
	}
	taxes, err := sumTaxLines(resp.Taxes)
	if err != nil {
		return nil, err
	}
	surcharge, err := sumChargeLines(resp.Surcharges)
	if err != nil {
		return nil, err
	}

	// Prefer the carrier's first supplied tax-line percentage; derive only
	// when no tax lines are present.
	var taxPercent decimal.Decimal
	if len(resp.Taxes) > 0 {
		rate, err := decimal.NewFromString(resp.Taxes[0].Rate.String())
		if err != nil {
			return nil, fmt.Errorf("tax rate %q is not numeric: %w", resp.Taxes[0].Rate.String(), err)
		}
		taxPercent = rate.Mul(oneHundred).Round(2)
	} else if !total.IsZero() {
		taxPercent = taxes.Div(total).Mul(oneHundred).Round(2)
	}

	days, err := c.transit.Days(ctx, req.Origin.AirportCode, req.Destination.AirportCode, resp.ServiceID)
	if err != nil {
		// Transit enrichment degrades to unknown, never aborts the quote.
		c.logger.Warn("Transit lookup failed", zap.Error(err))
		days = shipper.TransitUnknown
	}

	var estimated *time.Time
	if days != shipper.TransitUnknown {
		t := time.Now().AddDate(0, 0, days)
		estimated = &t
	}

	return &shipper.NormalizedQuote{
		QuoteID:           "ba-quote-" + uuid.New().String()[:8],
		CarrierID:         carrierName,
		CarrierName:       carrierDisplayName,
		ServiceCode:       resp.ServiceID,
		ServiceName:       resp.ServiceName,
		Freight:           freight.Round(2),
		Surcharge:         surcharge.Round(2),
		Taxes:             taxes.Round(2),
		TaxPercent:        taxPercent,
		Total:             total.Round(2),
		TransitDays:       days,
		EstimatedDelivery: estimated,
		Reference:         req.Reference,
	}, nil
}

// enrichAccessorials adds pickup/delivery leg charges to every quote when the
// shipment carries those flags and the city has a pricing record. A missing
// record silently omits the leg.
func (c *Client) enrichAccessorials(ctx context.Context, req *shipper.ShipmentRequest, totals Totals, quotes []shipper.NormalizedQuote) {
	chargeable := totals.chargeable()

	var extra decimal.Decimal
	if req.IsPickup {
		charge, ok, err := legCharge(ctx, c.ref, req.Origin.City, chargeable)
		if err != nil {
			c.logger.Warn("Pickup pricing lookup failed", zap.Error(err))
		} else if ok {
			extra = extra.Add(charge)
		}
	}
	if req.IsDelivery {
		charge, ok, err := legCharge(ctx, c.ref, req.Destination.City, chargeable)
		if err != nil {
			c.logger.Warn("Delivery pricing lookup failed", zap.Error(err))
		} else if ok {
			extra = extra.Add(charge)
		}
	}

	if extra.IsZero() {
		return
	}
	for i := range quotes {
		quotes[i].Surcharge = quotes[i].Surcharge.Add(extra).Round(2)
		quotes[i].Total = quotes[i].Total.Add(extra).Round(2)
	}
}

// rateAccessorialOnly bypasses the priority/dispatch pipeline for shipments
// with no main carrier leg and prices the pickup and/or delivery legs
// directly. A city without pricing yields no quote rather than an error.
func (c *Client) rateAccessorialOnly(ctx context.Context, req *shipper.ShipmentRequest) ([]shipper.NormalizedQuote, error) {
	_, totals := aggregatePackages(req.Packages)
	chargeable := totals.chargeable()

	freight := decimal.Zero
	found := false

	if req.PickupOnly {
		charge, ok, err := legCharge(ctx, c.ref, req.Origin.City, chargeable)
		if err != nil {
			return nil, shipper.NewShipperError(carrierName, "PRICING_LOOKUP_FAILED", "pickup pricing lookup failed").WithCause(err)
		}
		if ok {
			freight = freight.Add(charge)
			found = true
		}
	}
	if req.DeliveryOnly {
		charge, ok, err := legCharge(ctx, c.ref, req.Destination.City, chargeable)
		if err != nil {
			return nil, shipper.NewShipperError(carrierName, "PRICING_LOOKUP_FAILED", "delivery pricing lookup failed").WithCause(err)
		}
		if ok {
			freight = freight.Add(charge)
			found = true
		}
	}

	if !found {
		return []shipper.NormalizedQuote{}, nil
	}

	taxes, total, taxPercent := taxedLegTotal(freight)

	return []shipper.NormalizedQuote{{
		QuoteID:     "ba-quote-" + uuid.New().String()[:8],
		CarrierID:   carrierName,
		CarrierName: carrierDisplayName,
		ServiceCode: shipper.ServicePickupDelivery,
		ServiceName: "Pickup / Delivery",
		Freight:     freight,
		Surcharge:   decimal.Zero,
		Taxes:       taxes,
		TaxPercent:  taxPercent,
		Total:       total,
		TransitDays: shipper.TransitUnknown,
		Reference:   req.Reference,
	}}, nil
}

func (c *Client) recordRequest(operation string, start time.Time, ok bool) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	c.metrics.RecordRequest(operation, carrierName, status, time.Since(start).Seconds())
}

func (c *Client) recordError(errorType string) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordError(carrierName, errorType)
}
