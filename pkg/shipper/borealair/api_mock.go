package borealair

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnRate         func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnShip         func(ctx context.Context, req *ShipRequest) (*ShipResponse, error)
	OnFetchWaybill func(ctx context.Context, key string) ([]byte, error)
	OnFetchLabel   func(ctx context.Context, key string) ([]byte, error)

	mu    sync.Mutex
	calls map[string]int
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

// Calls returns how many times the named operation was invoked.
func (m *MockAPIClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Rate returns a mock rate quote for one priority.
func (m *MockAPIClient) Rate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	m.record("Rate")
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnRate != nil {
		return m.OnRate(ctx, req)
	}

	serviceName := "General"
	if req.RatePriorityID == "2" {
		serviceName = "Guaranteed"
	}

	return &RateResponse{
		ServiceID:   req.RatePriorityID,
		ServiceName: serviceName,
		PackagePrices: []PriceLine{
			{Name: "Freight", Amount: "84.00"},
			{Name: "Valuation", Amount: "5.50"},
		},
		Taxes: []TaxLine{
			{Name: "GST", Rate: "0.05", Amount: "5.08"},
		},
		Surcharges: []ChargeLine{
			{Name: "Fuel", Amount: "12.10", Percent: nil},
		},
		Total: "106.68",
	}, nil
}

// Ship books a mock shipment.
func (m *MockAPIClient) Ship(ctx context.Context, req *ShipRequest) (*ShipResponse, error) {
	m.record("Ship")
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnShip != nil {
		return m.OnShip(ctx, req)
	}

	tracking := fmt.Sprintf("871%09d", time.Now().UnixNano()%1000000000)

	percent := 10.0
	return &ShipResponse{
		TrackingNumber: tracking,
		ServiceID:      req.RatePriorityID,
		ServiceName:    "General",
		Freight:        "89.50",
		Taxes:          "5.08",
		Total:          "106.68",
		Surcharges: []ChargeLine{
			{Name: "Fuel", Amount: "8.95", Percent: &percent},
			{Name: "Security", Amount: "3.15", Percent: nil},
		},
	}, nil
}

// FetchWaybill returns a mock waybill document.
func (m *MockAPIClient) FetchWaybill(ctx context.Context, key string) ([]byte, error) {
	m.record("FetchWaybill")
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnFetchWaybill != nil {
		return m.OnFetchWaybill(ctx, key)
	}

	return []byte("%PDF-1.4 mock waybill " + key), nil
}

// FetchLabel returns a mock shipping label document.
func (m *MockAPIClient) FetchLabel(ctx context.Context, key string) ([]byte, error) {
	m.record("FetchLabel")
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnFetchLabel != nil {
		return m.OnFetchLabel(ctx, key)
	}

	return []byte("%PDF-1.4 mock label " + key), nil
}

var _ APIClient = (*MockAPIClient)(nil)
