package main

import (
	"context"

	"github.com/delivro/freightbridge/internal/config"
	"github.com/delivro/freightbridge/internal/notify"
	"github.com/delivro/freightbridge/internal/telemetry"
	"github.com/delivro/freightbridge/pkg/shipper"
	"github.com/delivro/freightbridge/pkg/shipper/borealair"
	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// defaultScopeID is the commodity scope the CLI account rates under.
const defaultScopeID = "scope-default"

// App bundles the wired service dependencies for one CLI invocation.
type App struct {
	Config   *config.Config
	Logger   *otelzap.Logger
	Registry *shipper.Registry

	publisher      notify.Publisher
	tracerShutdown func(context.Context) error
}

func newApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var tracer trace.Tracer
	tracerShutdown := func(context.Context) error { return nil }
	if cfg.OTELEnabled {
		t, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
		if err != nil {
			logger.Warn("Failed to initialize tracer", zap.Error(err))
		} else {
			tracer = t
			tracerShutdown = shutdown
		}
	}

	publisher := newPublisher(cfg, logger)
	registry := newShipperRegistry(cfg, publisher, logger, tracer)

	logger.Info("Freight bridge initialized",
		zap.Strings("carriers", registry.Names()),
		zap.String("version", cfg.Version),
	)

	return &App{
		Config:         cfg,
		Logger:         logger,
		Registry:       registry,
		publisher:      publisher,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Close flushes telemetry and the event producer; safe to call once per App.
func (a *App) Close(ctx context.Context) {
	if err := a.publisher.Close(); err != nil {
		a.Logger.Warn("Publisher close failed", zap.Error(err))
	}
	a.Logger.Sync()
	if err := a.tracerShutdown(ctx); err != nil {
		a.Logger.Warn("Tracer shutdown failed", zap.Error(err))
	}
}

func newPublisher(cfg *config.Config, logger *otelzap.Logger) notify.Publisher {
	if cfg.KafkaBrokerURL == "" {
		logger.Info("Leg notifications disabled, no broker configured")
		return notify.Nop{}
	}
	return notify.NewKafkaPublisher(cfg.KafkaBrokerURL, cfg.KafkaTopic)
}

func newShipperRegistry(cfg *config.Config, publisher notify.Publisher, logger *otelzap.Logger, tracer trace.Tracer) *shipper.Registry {
	registry := shipper.NewRegistry()

	if cfg.BorealAirEnabled {
		ba := borealair.New(borealair.Config{
			APIKey:             cfg.BorealAirAPIKey,
			BaseURL:            cfg.BorealAirBaseURL,
			HomeCarrierID:      cfg.HomeCarrierID,
			CargoLabelAccounts: cfg.CargoLabelAccounts,
			UseMock:            cfg.BorealAirUseMock,
		}, seedReferenceData(), publisher, logger, tracer)
		registry.Register(ba.WithMetrics(telemetry.NewMetrics()))
	}

	return registry
}

// seedReferenceData builds the in-memory lookup tables the CLI driver runs
// against. A deployment would back ReferenceData with the rating database
// instead.
func seedReferenceData() *borealair.Memory {
	return &borealair.Memory{
		Commodities: []borealair.MemoryCommodity{
			{ScopeID: defaultScopeID, Mapping: borealair.CommodityMapping{RatePriorityID: 1, CommodityID: 1, NOGCode: "GEN", RateCode: "GC100"}},
			{ScopeID: defaultScopeID, Mapping: borealair.CommodityMapping{RatePriorityID: 1, CommodityID: 17, NOGCode: "DGR", RateCode: "DG900"}},
			{ScopeID: defaultScopeID, Mapping: borealair.CommodityMapping{RatePriorityID: 2, CommodityID: 2, NOGCode: "PRI", RateCode: "PC200"}},
			{ScopeID: defaultScopeID, Mapping: borealair.CommodityMapping{RatePriorityID: 2, CommodityID: 17, NOGCode: "DGR", RateCode: "DG900"}},
		},
		Interlines: []borealair.InterlineLane{
			{Origin: "YZF", Destination: "YRT", GroupID: "IL-117"},
			{Origin: "YFB", Destination: "YRB", GroupID: "IL-204"},
		},
		Transits: []borealair.MemoryTransit{
			{Origin: "YZF", Destination: "YFB", ServiceID: "1", Days: 3},
			{Origin: "YZF", Destination: "YFB", ServiceID: "2", Days: 1},
			{Origin: "YZF", Destination: "YEV", ServiceID: "1", Days: 2},
		},
		Pricing: []borealair.CityPricing{
			{City: "Yellowknife", MinPrice: decimal.NewFromFloat(18.00), CutoffWeight: decimal.NewFromInt(25), PricePerUnit: decimal.NewFromFloat(0.45)},
			{City: "Iqaluit", MinPrice: decimal.NewFromFloat(24.00), CutoffWeight: decimal.NewFromInt(25), PricePerUnit: decimal.NewFromFloat(0.60)},
		},
		Aliases: []borealair.MemoryAlias{
			{CarrierID: "borealair", City: "Iqaluit", Province: "NU", Country: "CA", Alias: "IQALUIT APT"},
		},
	}
}
