package borealair

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// CommodityMapping maps a commodity to the carrier's nature-of-goods code for
// one rate priority.
type CommodityMapping struct {
	RatePriorityID int
	CommodityID    int
	NOGCode        string
	RateCode       string
	// EnvelopeRate marks a rate code restricted to envelope-eligible
	// packages (under the small-parcel weight ceiling).
	EnvelopeRate bool
}

// InterlineLane is a directed origin/destination pair served through a
// partner carrier, with the interline group id the carrier requires.
type InterlineLane struct {
	Origin      string
	Destination string
	GroupID     string
}

// CityPricing is the tiered pickup/delivery pricing record for one city.
type CityPricing struct {
	City          string
	MinPrice      decimal.Decimal
	CutoffWeight  decimal.Decimal
	PricePerUnit  decimal.Decimal
}

// ReferenceData is the read-only business-rule lookup collaborator. The
// adapter treats it as instantaneous key lookups and does not own its
// persistence.
type ReferenceData interface {
	// RatePriorities returns the distinct rate priorities known to the
	// account's commodity scope.
	RatePriorities(ctx context.Context, scopeID string) ([]int, error)

	// CommodityMapping finds the scope entry for (rate priority, commodity).
	CommodityMapping(ctx context.Context, scopeID string, ratePriority, commodityID int) (CommodityMapping, bool, error)

	// InterlineLane looks up a directed lane. Ordering matters: the check is
	// not bidirectional.
	InterlineLane(ctx context.Context, origin, destination string) (InterlineLane, bool, error)

	// TransitLane returns the transit days for a directed lane and service.
	TransitLane(ctx context.Context, origin, destination, serviceID string) (int, bool, error)

	// CityPricing finds the pickup/delivery pricing record for a city.
	// Matching is case-insensitive.
	CityPricing(ctx context.Context, city string) (CityPricing, bool, error)

	// CityAlias returns the carrier's preferred name for a city, if one is
	// configured for (carrier, city, province, country).
	CityAlias(ctx context.Context, carrierID, city, province, country string) (string, bool, error)
}

// ============================================================================
// In-memory reference data
// ============================================================================

// MemoryCommodity is one commodity-scope row for the in-memory provider.
type MemoryCommodity struct {
	ScopeID string
	Mapping CommodityMapping
}

// MemoryTransit is one transit-time row for the in-memory provider.
type MemoryTransit struct {
	Origin      string
	Destination string
	ServiceID   string
	Days        int
}

// MemoryAlias is one city-name alias row for the in-memory provider.
type MemoryAlias struct {
	CarrierID string
	City      string
	Province  string
	Country   string
	Alias     string
}

// Memory is an in-memory ReferenceData used by tests and the CLI driver.
// It counts lookups per method so cache behavior can be asserted.
type Memory struct {
	Commodities []MemoryCommodity
	Interlines  []InterlineLane
	Transits    []MemoryTransit
	Pricing     []CityPricing
	Aliases     []MemoryAlias

	mu    sync.Mutex
	calls map[string]int
}

func (m *Memory) count(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how many times the named lookup method has been invoked.
func (m *Memory) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *Memory) RatePriorities(ctx context.Context, scopeID string) ([]int, error) {
	m.count("RatePriorities")
	seen := make(map[int]bool)
	var priorities []int
	for _, c := range m.Commodities {
		if c.ScopeID != scopeID || seen[c.Mapping.RatePriorityID] {
			continue
		}
		seen[c.Mapping.RatePriorityID] = true
		priorities = append(priorities, c.Mapping.RatePriorityID)
	}
	return priorities, nil
}

func (m *Memory) CommodityMapping(ctx context.Context, scopeID string, ratePriority, commodityID int) (CommodityMapping, bool, error) {
	m.count("CommodityMapping")
	for _, c := range m.Commodities {
		if c.ScopeID == scopeID && c.Mapping.RatePriorityID == ratePriority && c.Mapping.CommodityID == commodityID {
			return c.Mapping, true, nil
		}
	}
	return CommodityMapping{}, false, nil
}

func (m *Memory) InterlineLane(ctx context.Context, origin, destination string) (InterlineLane, bool, error) {
	m.count("InterlineLane")
	for _, l := range m.Interlines {
		if l.Origin == origin && l.Destination == destination {
			return l, true, nil
		}
	}
	return InterlineLane{}, false, nil
}

func (m *Memory) TransitLane(ctx context.Context, origin, destination, serviceID string) (int, bool, error) {
	m.count("TransitLane")
	for _, t := range m.Transits {
		if t.Origin == origin && t.Destination == destination && t.ServiceID == serviceID {
			return t.Days, true, nil
		}
	}
	return 0, false, nil
}

func (m *Memory) CityPricing(ctx context.Context, city string) (CityPricing, bool, error) {
	m.count("CityPricing")
	for _, p := range m.Pricing {
		if strings.EqualFold(p.City, city) {
			return p, true, nil
		}
	}
	return CityPricing{}, false, nil
}

func (m *Memory) CityAlias(ctx context.Context, carrierID, city, province, country string) (string, bool, error) {
	m.count("CityAlias")
	for _, a := range m.Aliases {
		if a.CarrierID == carrierID && strings.EqualFold(a.City, city) && a.Province == province && a.Country == country {
			return a.Alias, true, nil
		}
	}
	return "", false, nil
}

var _ ReferenceData = (*Memory)(nil)
