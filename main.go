package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/delivro/freightbridge/pkg/shipper"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "freightbridge",
	Short:   "Delivro Freight Bridge - Multi-carrier freight rating and booking",
	Version: version,
}

var (
	flagOrigin      string
	flagDestination string
	flagOriginCity  string
	flagDestCity    string
	flagWeight      float64
	flagQuantity    int
	flagCommodity   int
	flagPickup      bool
	flagDelivery    bool
	flagService     string
	flagPriority    int
	flagReference   string
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Fetch quotes from all enabled carriers",
	RunE:  runRate,
}

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Book a shipment with the selected carrier",
	RunE:  runShip,
}

func init() {
	for _, cmd := range []*cobra.Command{rateCmd, shipCmd} {
		cmd.Flags().StringVar(&flagOrigin, "origin", "YZF", "origin airport code")
		cmd.Flags().StringVar(&flagDestination, "destination", "YFB", "destination airport code")
		cmd.Flags().StringVar(&flagOriginCity, "origin-city", "Yellowknife", "origin city")
		cmd.Flags().StringVar(&flagDestCity, "destination-city", "Iqaluit", "destination city")
		cmd.Flags().Float64Var(&flagWeight, "weight", 5.0, "package weight")
		cmd.Flags().IntVar(&flagQuantity, "quantity", 1, "package quantity")
		cmd.Flags().IntVar(&flagCommodity, "commodity", 1, "commodity id")
		cmd.Flags().BoolVar(&flagPickup, "pickup", false, "include a pickup leg")
		cmd.Flags().BoolVar(&flagDelivery, "delivery", false, "include a delivery leg")
	}
	shipCmd.Flags().StringVar(&flagService, "service", "1", "selected service id")
	shipCmd.Flags().IntVar(&flagPriority, "priority", 1, "selected rate priority")
	shipCmd.Flags().StringVar(&flagReference, "reference", "", "order reference")

	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(shipCmd)
}

func shipmentFromFlags() *shipper.ShipmentRequest {
	return &shipper.ShipmentRequest{
		Origin: shipper.Address{
			City:        flagOriginCity,
			AirportCode: flagOrigin,
			CountryCode: "CA",
		},
		Destination: shipper.Address{
			City:        flagDestCity,
			AirportCode: flagDestination,
			CountryCode: "CA",
		},
		Packages: []shipper.PackageInput{
			{
				Quantity:    flagQuantity,
				Weight:      decimal.NewFromFloat(flagWeight),
				CommodityID: flagCommodity,
			},
		},
		Account:    shipper.CarrierAccount{CustomerID: "CLI", ScopeID: defaultScopeID},
		IsPickup:   flagPickup,
		IsDelivery: flagDelivery,
		Reference:  flagReference,
	}
}

func runRate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	quotes, errs := app.Registry.RateAll(ctx, shipmentFromFlags())
	for _, rateErr := range errs {
		app.Logger.Warn("Carrier rating failed", zap.Error(rateErr))
	}

	app.Logger.Info("Rating complete", zap.Int("quotes", len(quotes)))
	return printJSON(quotes)
}

func runShip(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	carrier, err := app.Registry.Get(app.Config.HomeCarrierID)
	if err != nil {
		return err
	}

	req := shipmentFromFlags()
	req.SelectedServiceID = flagService
	req.SelectedRatePriority = flagPriority

	result, err := carrier.Ship(ctx, req)
	if err != nil {
		return fmt.Errorf("booking failed: %w", err)
	}

	app.Logger.Info("Booking complete",
		zap.String("tracking_number", result.TrackingNumber),
		zap.Int("documents", len(result.Documents)),
	)
	return printJSON(result)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
