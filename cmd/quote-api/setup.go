package main

import (
	"fmt"
	"time"

	"github.com/landclear/quote-planner/internal/config"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/estimation/calculators"
	"github.com/landclear/quote-planner/internal/events"
	"github.com/landclear/quote-planner/internal/geocoding"
	"github.com/landclear/quote-planner/pkg/log"
	"github.com/landclear/quote-planner/pkg/metrics"
	"go.uber.org/zap"
)

// loadConfig reads the environment and installs the global logger. The
// returned func flushes and restores the previous logger.
func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, fmt.Errorf("reading configuration: %w", err)
	}
	if pricingFile != "" {
		cfg.Service.PricingFile = pricingFile
	}

	logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
	undo := zap.ReplaceGlobals(logger)

	return cfg, func() {
		_ = logger.Sync()
		undo()
	}, nil
}

func newAssembler(cfg *config.Config) (*estimation.Assembler, error) {
	tables, err := cfg.PricingTables()
	if err != nil {
		return nil, err
	}
	return calculators.NewAssembler(tables)
}

func newResolver(cfg *config.Config, tables *estimation.Tables) (*geocoding.Resolver, error) {
	zips, err := geocoding.NewZipTable(geocoding.DefaultZipCentroids())
	if err != nil {
		return nil, fmt.Errorf("loading zip centroids: %w", err)
	}

	opts := []geocoding.ResolverOption{
		geocoding.WithZipTable(zips),
		geocoding.WithDriveTimeEstimator(geocoding.NewDriveTimeEstimator(geocoding.WithDriveTimeZips(zips))),
		geocoding.WithZoneTables(tables),
		geocoding.WithFallbackObserver(metrics.IncreaseGeocodeFallbacksMetric),
	}

	if url := cfg.Service.Geocoder.URL; url != "" {
		zap.S().Named("setup").Infow("using nominatim geocoder", "url", url)
		opts = append(opts, geocoding.WithGeocoder(
			geocoding.NewNominatimClient(url, cfg.Service.Geocoder.UserAgent, cfg.Service.Geocoder.Timeout),
		))
	}

	if cfg.Service.Overpass.Enabled {
		zap.S().Named("setup").Infow("using overpass site classifier", "url", cfg.Service.Overpass.URL)
		opts = append(opts, geocoding.WithSiteClassifier(
			geocoding.NewOverpassClassifier(cfg.Service.Overpass.URL, cfg.Service.Overpass.Timeout),
		))
	}

	return geocoding.NewResolver(cfg.BaseCoordinates(), opts...), nil
}

func newEventProducer(cfg *config.Config) (*events.EventProducer, error) {
	switch cfg.Service.Events.Sink {
	case "", "stdout":
		return events.NewEventProducer(&events.StdoutWriter{}), nil
	case "http":
		w, err := events.NewHTTPWriter(cfg.Service.Events.Target, 10*time.Second)
		if err != nil {
			return nil, err
		}
		return events.NewEventProducer(w), nil
	default:
		return nil, fmt.Errorf("unknown events sink %q", cfg.Service.Events.Sink)
	}
}

func closeProducer(p *events.EventProducer) {
	if err := p.Close(); err != nil {
		zap.S().Named("setup").Warnw("failed to flush pending events", "error", err, "pending", p.Pending())
	}
}
