package geocoding

import (
	"fmt"
	"regexp"

	"github.com/dhconnelly/rtreego"
	"github.com/landclear/quote-planner/internal/geo"
)

// ZipCentroid is the center of a ZIP code area and the scheduled drive time
// to it from the yard.
type ZipCentroid struct {
	Zip          string          `json:"zip"`
	Coordinates  geo.Coordinates `json:"coordinates"`
	DriveMinutes int             `json:"driveMinutes"`
}

type zipItem struct {
	centroid ZipCentroid
	rect     rtreego.Rect
}

func (z *zipItem) Bounds() rtreego.Rect {
	return z.rect
}

// ZipTable answers exact ZIP lookups and nearest-centroid queries.
type ZipTable struct {
	byZip map[string]ZipCentroid
	tree  *rtreego.Rtree
}

func NewZipTable(centroids []ZipCentroid) (*ZipTable, error) {
	t := &ZipTable{
		byZip: make(map[string]ZipCentroid, len(centroids)),
		tree:  rtreego.NewTree(2, 2, 16),
	}
	for _, c := range centroids {
		if err := c.Coordinates.Validate(); err != nil {
			return nil, fmt.Errorf("zip %s: %w", c.Zip, err)
		}
		if _, ok := t.byZip[c.Zip]; ok {
			return nil, fmt.Errorf("zip %s listed twice", c.Zip)
		}
		t.byZip[c.Zip] = c
		t.tree.Insert(&zipItem{
			centroid: c,
			rect:     rtreego.Point{c.Coordinates.Lat, c.Coordinates.Lng}.ToRect(pointTolerance),
		})
	}
	return t, nil
}

func (t *ZipTable) Lookup(zip string) (ZipCentroid, bool) {
	if t == nil {
		return ZipCentroid{}, false
	}
	c, ok := t.byZip[zip]
	return c, ok
}

// Nearest returns the centroid closest to c if it lies within maxMeters.
func (t *ZipTable) Nearest(c geo.Coordinates, maxMeters float64) (ZipCentroid, bool) {
	if t == nil || t.tree.Size() == 0 {
		return ZipCentroid{}, false
	}
	hit := t.tree.NearestNeighbor(rtreego.Point{c.Lat, c.Lng})
	if hit == nil {
		return ZipCentroid{}, false
	}
	centroid := hit.(*zipItem).centroid
	if geo.Haversine(c, centroid.Coordinates) > maxMeters {
		return ZipCentroid{}, false
	}
	return centroid, true
}

const pointTolerance = 1e-9

var zipPattern = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

// ExtractZip returns the last five digit ZIP code found in an address.
func ExtractZip(address string) string {
	matches := zipPattern.FindAllStringSubmatch(address, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

// DefaultZipCentroids covers the default service region around Charlotte, NC.
func DefaultZipCentroids() []ZipCentroid {
	return []ZipCentroid{
		{Zip: "28202", Coordinates: geo.Coordinates{Lat: 35.2272, Lng: -80.8444}, DriveMinutes: 5},
		{Zip: "28012", Coordinates: geo.Coordinates{Lat: 35.2432, Lng: -81.0373}, DriveMinutes: 22},
		{Zip: "28025", Coordinates: geo.Coordinates{Lat: 35.3316, Lng: -80.5565}, DriveMinutes: 33},
		{Zip: "28052", Coordinates: geo.Coordinates{Lat: 35.2621, Lng: -81.1873}, DriveMinutes: 30},
		{Zip: "28078", Coordinates: geo.Coordinates{Lat: 35.4107, Lng: -80.8429}, DriveMinutes: 25},
		{Zip: "28081", Coordinates: geo.Coordinates{Lat: 35.4874, Lng: -80.6217}, DriveMinutes: 35},
		{Zip: "28105", Coordinates: geo.Coordinates{Lat: 35.1168, Lng: -80.7137}, DriveMinutes: 24},
		{Zip: "28110", Coordinates: geo.Coordinates{Lat: 35.0011, Lng: -80.5533}, DriveMinutes: 40},
		{Zip: "28115", Coordinates: geo.Coordinates{Lat: 35.5849, Lng: -80.8101}, DriveMinutes: 38},
		{Zip: "28144", Coordinates: geo.Coordinates{Lat: 35.6710, Lng: -80.4742}, DriveMinutes: 50},
		{Zip: "28150", Coordinates: geo.Coordinates{Lat: 35.2924, Lng: -81.5356}, DriveMinutes: 55},
		{Zip: "28173", Coordinates: geo.Coordinates{Lat: 34.9246, Lng: -80.7434}, DriveMinutes: 42},
		{Zip: "28001", Coordinates: geo.Coordinates{Lat: 35.3501, Lng: -80.2001}, DriveMinutes: 58},
		{Zip: "28601", Coordinates: geo.Coordinates{Lat: 35.7332, Lng: -81.3412}, DriveMinutes: 70},
		{Zip: "29730", Coordinates: geo.Coordinates{Lat: 34.9249, Lng: -81.0251}, DriveMinutes: 36},
		{Zip: "27101", Coordinates: geo.Coordinates{Lat: 36.0999, Lng: -80.2442}, DriveMinutes: 85},
	}
}
