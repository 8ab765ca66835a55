// Package geocoding turns what the customer typed (or where they dropped the
// pin) into an estimation.PropertyLocation. Every external lookup has a
// fallback, so ResolveLocation only fails on coordinates that are out of
// range.
package geocoding

import (
	"context"
	"errors"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
)

var ErrNoMatch = errors.New("no geocoding match")

// LocationQuery is either an address or a pin. When Coordinates is set the
// address is kept for display only.
type LocationQuery struct {
	Address     string           `json:"address,omitempty"`
	ZipCode     string           `json:"zipCode,omitempty"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
}

type GeocodeResult struct {
	Coordinates      geo.Coordinates
	FormattedAddress string
	PostalCode       string
	// Canonical is set when the provider matched a street address rather
	// than a town or region.
	Canonical bool
}

// Geocoder resolves free-form addresses.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

// SiteInfo is what can be inferred about a site from map data. Fields are nil
// when nothing could be inferred.
type SiteInfo struct {
	PropertyType       *estimation.PropertyType
	AccessibilityScore *int
}

type SiteClassifier interface {
	Classify(ctx context.Context, c geo.Coordinates) (SiteInfo, error)
}

// Fallback reasons reported to the FallbackObserver.
const (
	FallbackZipCentroid   = "zip_centroid"
	FallbackServiceRegion = "service_region"
	FallbackClassifier    = "site_classifier"
)

// FallbackObserver is notified whenever a lookup could not be served by its
// primary source.
type FallbackObserver func(reason string)
