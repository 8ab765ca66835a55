// Package geo holds the coordinate primitives shared by the geocoding layer
// and the estimation core.
package geo

import (
	"errors"
	"fmt"
	"math"
)

const (
	// EarthRadiusMeters is the mean earth radius used by Haversine.
	EarthRadiusMeters = 6371000.0

	// MetersPerDegree approximates the length of one degree of latitude.
	MetersPerDegree = 111000.0
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return fmt.Errorf("%w: NaN component", ErrInvalidCoordinates)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinates, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinates, c.Lng)
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Coordinates) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// BoundingBox is an axis-aligned lat/lng rectangle, typically a property
// boundary drawn by the customer.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

func (b BoundingBox) Validate() error {
	if err := (Coordinates{Lat: b.MinLat, Lng: b.MinLng}).Validate(); err != nil {
		return fmt.Errorf("bounding box min corner: %w", err)
	}
	if err := (Coordinates{Lat: b.MaxLat, Lng: b.MaxLng}).Validate(); err != nil {
		return fmt.Errorf("bounding box max corner: %w", err)
	}
	if b.MinLat > b.MaxLat || b.MinLng > b.MaxLng {
		return fmt.Errorf("%w: bounding box min corner exceeds max corner", ErrInvalidCoordinates)
	}
	return nil
}

// ApproxAreaSqM approximates the box area as Δlat × Δlng × 111000².
// It ignores the narrowing of longitude degrees towards the poles.
func (b BoundingBox) ApproxAreaSqM() float64 {
	return (b.MaxLat - b.MinLat) * (b.MaxLng - b.MinLng) * MetersPerDegree * MetersPerDegree
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Coordinates {
	return Coordinates{Lat: (b.MinLat + b.MaxLat) / 2, Lng: (b.MinLng + b.MaxLng) / 2}
}

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}
