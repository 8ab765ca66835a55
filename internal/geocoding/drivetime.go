package geocoding

import (
	"math"

	"github.com/landclear/quote-planner/internal/geo"
)

const (
	// DefaultRoadFactor converts straight-line distance into road distance.
	DefaultRoadFactor = 1.3
	// DefaultAverageSpeedKmh is the average trailer-towing speed.
	DefaultAverageSpeedKmh = 72.0
	// DefaultNearestZipMeters bounds the nearest-centroid lookup.
	DefaultNearestZipMeters = 5000.0
)

// DriveTimeEstimator estimates the drive from the yard to the site. The
// scheduled minutes of the site's ZIP code win; otherwise the nearest known
// centroid within range is used, and as a last resort the straight-line
// distance is stretched by a road factor.
type DriveTimeEstimator struct {
	zips          *ZipTable
	roadFactor    float64
	speedKmh      float64
	nearestMeters float64
}

type DriveTimeOption func(*DriveTimeEstimator)

func WithDriveTimeZips(t *ZipTable) DriveTimeOption {
	return func(d *DriveTimeEstimator) {
		d.zips = t
	}
}

func WithRoadFactor(factor, speedKmh float64) DriveTimeOption {
	return func(d *DriveTimeEstimator) {
		d.roadFactor = factor
		d.speedKmh = speedKmh
	}
}

func NewDriveTimeEstimator(opts ...DriveTimeOption) *DriveTimeEstimator {
	d := &DriveTimeEstimator{
		roadFactor:    DefaultRoadFactor,
		speedKmh:      DefaultAverageSpeedKmh,
		nearestMeters: DefaultNearestZipMeters,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Estimate returns the drive time in seconds.
func (d *DriveTimeEstimator) Estimate(zip string, site geo.Coordinates, distanceMeters float64) int {
	if c, ok := d.zips.Lookup(zip); ok && c.DriveMinutes > 0 {
		return c.DriveMinutes * 60
	}
	if c, ok := d.zips.Nearest(site, d.nearestMeters); ok && c.DriveMinutes > 0 {
		return c.DriveMinutes * 60
	}

	metersPerSecond := d.speedKmh * 1000 / 3600
	return int(math.Round(distanceMeters * d.roadFactor / metersPerSecond))
}
