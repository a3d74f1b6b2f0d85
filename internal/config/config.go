package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Boreal Air
	BorealAirAPIKey      string   `envconfig:"BOREALAIR_API_KEY"`
	BorealAirBaseURL     string   `envconfig:"BOREALAIR_BASE_URL" default:"https://cargo.borealair.ca/api/v2"`
	BorealAirEnabled     bool     `envconfig:"BOREALAIR_ENABLED" default:"true"`
	BorealAirUseMock     bool     `envconfig:"BOREALAIR_USE_MOCK" default:"false"`
	CargoLabelAccounts   []string `envconfig:"BOREALAIR_CARGO_LABEL_ACCOUNTS"`

	// HomeCarrierID is the carrier whose destination stations hold freight
	// for pickup instead of delivering it. Instruction wording on bookings
	// keys off this.
	HomeCarrierID string `envconfig:"HOME_CARRIER_ID" default:"borealair"`

	// Notifications
	KafkaBrokerURL string `envconfig:"KAFKA_BROKER_URL"`
	KafkaTopic     string `envconfig:"KAFKA_TOPIC" default:"shipment-legs"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.observability.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"freightbridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("borealair.enabled", c.BorealAirEnabled),
		attribute.String("home.carrier", c.HomeCarrierID),
	}
}
