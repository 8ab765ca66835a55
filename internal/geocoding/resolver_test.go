package geocoding

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
)

var base = geo.Coordinates{Lat: 35.2271, Lng: -80.8431}

type fakeGeocoder struct {
	result *GeocodeResult
	err    error
	delay  time.Duration
}

func (f *fakeGeocoder) Geocode(ctx context.Context, _ string) (*GeocodeResult, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

type fakeClassifier struct {
	info SiteInfo
	err  error
}

func (f *fakeClassifier) Classify(context.Context, geo.Coordinates) (SiteInfo, error) {
	return f.info, f.err
}

type fallbackRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (f *fallbackRecorder) observe(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
}

func (f *fallbackRecorder) has(reason string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reasons {
		if r == reason {
			return true
		}
	}
	return false
}

func zipTable(t *testing.T) *ZipTable {
	t.Helper()
	zt, err := NewZipTable(DefaultZipCentroids())
	if err != nil {
		t.Fatalf("failed to build zip table: %v", err)
	}
	return zt
}

func TestResolveLocation_Pin(t *testing.T) {
	t.Parallel()
	agricultural := estimation.PropertyAgricultural
	score := 6
	r := NewResolver(base,
		WithGeocoder(&fakeGeocoder{err: errors.New("must not be called")}),
		WithSiteClassifier(&fakeClassifier{info: SiteInfo{PropertyType: &agricultural, AccessibilityScore: &score}}),
	)

	pin := geo.Coordinates{Lat: 35.6, Lng: -80.8431}
	loc, err := r.ResolveLocation(context.Background(), LocationQuery{Coordinates: &pin})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !loc.Verified {
		t.Error("expected a placed pin to be verified")
	}
	if loc.Coordinates != pin || loc.FormattedAddress != pin.String() {
		t.Errorf("unexpected location: %+v", loc)
	}
	if math.Abs(loc.DistanceMeters-41465) > 100 {
		t.Errorf("expected about 41.5 km, got %v", loc.DistanceMeters)
	}
	if loc.Zone != "Primary" {
		t.Errorf("expected Primary zone, got %s", loc.Zone)
	}
	if loc.PropertyType == nil || *loc.PropertyType != agricultural || loc.AccessibilityScore == nil || *loc.AccessibilityScore != 6 {
		t.Errorf("expected site classification to be copied, got %+v", loc)
	}
	if loc.DriveTimeSeconds <= 0 {
		t.Errorf("expected a drive time, got %d", loc.DriveTimeSeconds)
	}
}

func TestResolveLocation_InvalidPin(t *testing.T) {
	t.Parallel()
	r := NewResolver(base)
	_, err := r.ResolveLocation(context.Background(), LocationQuery{Coordinates: &geo.Coordinates{Lat: 95, Lng: 0}})
	if !errors.Is(err, estimation.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResolveLocation_Geocoded(t *testing.T) {
	t.Parallel()
	r := NewResolver(base,
		WithZipTable(zipTable(t)),
		WithGeocoder(&fakeGeocoder{result: &GeocodeResult{
			Coordinates:      geo.Coordinates{Lat: 35.1168, Lng: -80.7137},
			FormattedAddress: "100 Main St, Matthews, NC 28105",
			PostalCode:       "28105",
			Canonical:        true,
		}}),
	)

	loc, err := r.ResolveLocation(context.Background(), LocationQuery{Address: "100 main st matthews"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !loc.Verified || loc.FormattedAddress != "100 Main St, Matthews, NC 28105" {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.DriveTimeSeconds != 24*60 {
		t.Errorf("expected the scheduled drive time of 28105, got %d", loc.DriveTimeSeconds)
	}
	if loc.PropertyType != nil || loc.AccessibilityScore != nil {
		t.Error("expected no site classification without a classifier")
	}
}

func TestResolveLocation_ZipFallback(t *testing.T) {
	t.Parallel()
	rec := &fallbackRecorder{}
	r := NewResolver(base,
		WithZipTable(zipTable(t)),
		WithGeocoder(&fakeGeocoder{err: errors.New("provider down")}),
		WithFallbackObserver(rec.observe),
	)

	loc, err := r.ResolveLocation(context.Background(), LocationQuery{Address: "somewhere rural, Concord NC 28025"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if loc.Verified {
		t.Error("expected an unverified location")
	}
	if loc.Coordinates != (geo.Coordinates{Lat: 35.3316, Lng: -80.5565}) {
		t.Errorf("expected the 28025 centroid, got %v", loc.Coordinates)
	}
	if !rec.has(FallbackZipCentroid) {
		t.Errorf("expected zip fallback to be reported, got %v", rec.reasons)
	}
}

func TestResolveLocation_ServiceRegionFallback(t *testing.T) {
	t.Parallel()
	rec := &fallbackRecorder{}
	r := NewResolver(base,
		WithGeocoder(&fakeGeocoder{err: ErrNoMatch}),
		WithFallbackObserver(rec.observe),
	)

	for _, address := range []string{"", "   ", "%%%??", "no such place 99999"} {
		loc, err := r.ResolveLocation(context.Background(), LocationQuery{Address: address})
		if err != nil {
			t.Fatalf("%q: expected no error, got: %v", address, err)
		}
		if loc.Verified || loc.Coordinates != base || loc.DistanceMeters != 0 || loc.Zone != "Core" {
			t.Errorf("%q: expected the unverified service region, got %+v", address, loc)
		}
	}
	if !rec.has(FallbackServiceRegion) {
		t.Error("expected service region fallback to be reported")
	}
}

func TestResolveLocation_GeocoderTimeout(t *testing.T) {
	t.Parallel()
	r := NewResolver(base,
		WithGeocoder(&fakeGeocoder{delay: time.Second, result: &GeocodeResult{Canonical: true}}),
		WithLookupTimeout(20*time.Millisecond),
	)

	start := time.Now()
	loc, err := r.ResolveLocation(context.Background(), LocationQuery{Address: "slow street"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("expected the lookup timeout to cut the geocoder short")
	}
	if loc.Verified {
		t.Error("expected an unverified location after a timeout")
	}
}

func TestResolveLocation_ClassifierFailureIsNeutral(t *testing.T) {
	t.Parallel()
	rec := &fallbackRecorder{}
	r := NewResolver(base,
		WithSiteClassifier(&fakeClassifier{err: errors.New("overpass busy")}),
		WithFallbackObserver(rec.observe),
	)

	loc, err := r.ResolveLocation(context.Background(), LocationQuery{Coordinates: &base})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if loc.PropertyType != nil || loc.AccessibilityScore != nil {
		t.Errorf("expected neutral site info, got %+v", loc)
	}
	if !rec.has(FallbackClassifier) {
		t.Error("expected classifier fallback to be reported")
	}
}
