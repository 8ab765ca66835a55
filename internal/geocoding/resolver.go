package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/landclear/quote-planner/pkg/log"
	"golang.org/x/sync/errgroup"
)

const defaultLookupTimeout = 5 * time.Second

// Resolver produces a PropertyLocation for a LocationQuery.
type Resolver struct {
	base       geo.Coordinates
	tables     *estimation.Tables
	geocoder   Geocoder
	classifier SiteClassifier
	zips       *ZipTable
	driveTime  *DriveTimeEstimator
	timeout    time.Duration
	onFallback FallbackObserver
}

type ResolverOption func(*Resolver)

func WithGeocoder(g Geocoder) ResolverOption {
	return func(r *Resolver) {
		r.geocoder = g
	}
}

func WithSiteClassifier(c SiteClassifier) ResolverOption {
	return func(r *Resolver) {
		r.classifier = c
	}
}

func WithZipTable(t *ZipTable) ResolverOption {
	return func(r *Resolver) {
		r.zips = t
	}
}

func WithDriveTimeEstimator(d *DriveTimeEstimator) ResolverOption {
	return func(r *Resolver) {
		r.driveTime = d
	}
}

// WithZoneTables sets the tables used to label the zone of the location.
func WithZoneTables(t *estimation.Tables) ResolverOption {
	return func(r *Resolver) {
		r.tables = t
	}
}

// WithLookupTimeout bounds each external lookup.
func WithLookupTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.timeout = d
	}
}

func WithFallbackObserver(fn FallbackObserver) ResolverOption {
	return func(r *Resolver) {
		r.onFallback = fn
	}
}

// NewResolver measures distances from base, which is also the fallback
// position for addresses that cannot be resolved.
func NewResolver(base geo.Coordinates, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		base:       base,
		tables:     estimation.DefaultTables(),
		timeout:    defaultLookupTimeout,
		onFallback: func(string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.driveTime == nil {
		r.driveTime = NewDriveTimeEstimator(WithDriveTimeZips(r.zips))
	}
	return r
}

// ResolveLocation returns an error only when the query carries coordinates
// that are out of range. Lookup failures degrade to an unverified location.
func (r *Resolver) ResolveLocation(ctx context.Context, q LocationQuery) (estimation.PropertyLocation, error) {
	tracer := log.NewDebugLogger("geocoding").
		WithContext(ctx).
		Operation("resolve_location").
		WithString("address", q.Address).
		WithBool("pin", q.Coordinates != nil).
		Build()

	var (
		loc estimation.PropertyLocation
		zip = q.ZipCode
	)
	if zip == "" {
		zip = ExtractZip(q.Address)
	}

	if q.Coordinates != nil {
		if err := q.Coordinates.Validate(); err != nil {
			err = fmt.Errorf("%w: %w", estimation.ErrInvalidInput, err)
			tracer.Error(err).Log()
			return estimation.PropertyLocation{}, err
		}
		loc.Coordinates = *q.Coordinates
		loc.Verified = true
		loc.FormattedAddress = strings.TrimSpace(q.Address)
		if loc.FormattedAddress == "" {
			loc.FormattedAddress = q.Coordinates.String()
		}
	} else {
		loc = r.geocode(ctx, q.Address, &zip)
		tracer.Step("geocoded").
			WithBool("verified", loc.Verified).
			WithString("coordinates", loc.Coordinates.String()).
			Log()
	}

	loc.DistanceMeters = geo.Haversine(r.base, loc.Coordinates)
	loc.Zone = r.tables.ClassifyZone(loc.DistanceMeters).Name

	// site classification and drive time do not depend on each other
	var (
		site  SiteInfo
		drive int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		site = r.classify(gctx, loc.Coordinates)
		return nil
	})
	g.Go(func() error {
		drive = r.driveTime.Estimate(zip, loc.Coordinates, loc.DistanceMeters)
		return nil
	})
	_ = g.Wait()

	loc.PropertyType = site.PropertyType
	loc.AccessibilityScore = site.AccessibilityScore
	loc.DriveTimeSeconds = drive

	tracer.Success().
		WithFloat("distance_m", loc.DistanceMeters).
		WithString("zone", loc.Zone).
		Log()

	return loc, nil
}

// geocode never fails: it falls back to the ZIP centroid, then to the base.
func (r *Resolver) geocode(ctx context.Context, address string, zip *string) estimation.PropertyLocation {
	logger := log.NewDebugLogger("geocoding").WithContext(ctx).Operation("geocode").WithString("address", address).Build()

	if r.geocoder != nil && strings.TrimSpace(address) != "" {
		lctx, cancel := context.WithTimeout(ctx, r.timeout)
		res, err := r.geocoder.Geocode(lctx, address)
		cancel()
		if err == nil && res != nil {
			if *zip == "" {
				*zip = res.PostalCode
			}
			return estimation.PropertyLocation{
				Coordinates:      res.Coordinates,
				FormattedAddress: res.FormattedAddress,
				Verified:         res.Canonical,
			}
		}
		if err != nil && !errors.Is(err, ErrNoMatch) {
			logger.Error(err).Log()
		}
	}

	if c, ok := r.zips.Lookup(*zip); ok {
		r.onFallback(FallbackZipCentroid)
		logger.Step("zip_centroid_fallback").WithString("zip", *zip).Log()
		return estimation.PropertyLocation{
			Coordinates:      c.Coordinates,
			FormattedAddress: strings.TrimSpace(address),
		}
	}

	r.onFallback(FallbackServiceRegion)
	logger.Step("service_region_fallback").Log()
	return estimation.PropertyLocation{
		Coordinates:      r.base,
		FormattedAddress: strings.TrimSpace(address),
	}
}

func (r *Resolver) classify(ctx context.Context, c geo.Coordinates) SiteInfo {
	if r.classifier == nil {
		return SiteInfo{}
	}
	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := r.classifier.Classify(lctx, c)
	if err != nil {
		r.onFallback(FallbackClassifier)
		log.NewDebugLogger("geocoding").WithContext(ctx).Operation("classify_site").Build().Error(err).Log()
		return SiteInfo{}
	}
	return info
}
