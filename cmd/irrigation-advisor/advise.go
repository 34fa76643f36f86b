package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/irrigation-advisor/internal/advisory"
	"github.com/couchcryptid/irrigation-advisor/internal/config"
	"github.com/couchcryptid/irrigation-advisor/internal/observability"
)

type adviseFlags struct {
	req         advisory.Request
	weatherFile string
}

func newAdviseCmd() *cobra.Command {
	var f adviseFlags
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Compute one advisory and print it as JSON",
		Example: `  irrigation-advisor advise --lat 39.92 --lon 32.85 --crop maize --stage mid --soil loam --method drip
  irrigation-advisor advise --lat 39.92 --lon 32.85 --crop wheat --stage late --soil sandy \
      --method sprinkler --last-irrigation 2025-06-05 --weather-file forecast.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAdvise(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&f.req.Latitude, "lat", 0, "latitude in decimal degrees")
	flags.Float64Var(&f.req.Longitude, "lon", 0, "longitude in decimal degrees")
	flags.StringVar(&f.req.Crop, "crop", "", "crop key (see \"parameters\")")
	flags.StringVar(&f.req.Stage, "stage", "", "growth stage: initial, mid, or late")
	flags.StringVar(&f.req.Soil, "soil", "", "soil key")
	flags.StringVar(&f.req.Method, "method", "", "irrigation method key")
	flags.Float64Var(&f.req.RootDepthMeters, "root-depth", 0, "effective root depth in meters (default: crop default)")
	flags.StringVar(&f.req.LastIrrigation, "last-irrigation", "", "last irrigation date, YYYY-MM-DD")
	flags.IntVar(&f.req.HorizonDays, "days", 0, "forecast horizon in days, 1-16 (default: FORECAST_DAYS)")
	flags.StringVar(&f.weatherFile, "weather-file", "", "read the daily series from an Open-Meteo JSON response instead of the API")
	for _, name := range []string{"lat", "lon", "crop", "stage", "soil", "method"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runAdvise(cmd *cobra.Command, f adviseFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only the advisory.
	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewUnregisteredMetrics()

	tables, err := loadTables(cfg.ParameterTablesPath)
	if err != nil {
		return err
	}
	weather := newWeatherProvider(cfg, f.weatherFile, metrics, logger)
	svc := advisory.NewService(tables, weather, nil, serviceOptions(cfg), logger, metrics)

	event, err := svc.Advise(cmd.Context(), f.req)
	if err != nil {
		return fmt.Errorf("%s: %w", advisory.Classify(err), err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(event)
}
