package geo

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinates_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		c       Coordinates
		wantErr bool
	}{
		{name: "origin", c: Coordinates{}, wantErr: false},
		{name: "corners", c: Coordinates{Lat: 90, Lng: -180}, wantErr: false},
		{name: "lat too high", c: Coordinates{Lat: 90.0001, Lng: 0}, wantErr: true},
		{name: "lat too low", c: Coordinates{Lat: -91, Lng: 0}, wantErr: true},
		{name: "lng too high", c: Coordinates{Lat: 0, Lng: 180.5}, wantErr: true},
		{name: "NaN", c: Coordinates{Lat: math.NaN(), Lng: 0}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.c.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCoordinates) {
					t.Errorf("expected ErrInvalidCoordinates, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestHaversine(t *testing.T) {
	t.Parallel()

	same := Coordinates{Lat: 35.0, Lng: -80.0}
	if d := Haversine(same, same); d != 0 {
		t.Errorf("expected 0 for identical points, got %v", d)
	}

	// one degree of latitude along a meridian is R * pi / 180
	a := Coordinates{Lat: 0, Lng: 0}
	b := Coordinates{Lat: 1, Lng: 0}
	want := EarthRadiusMeters * math.Pi / 180
	if d := Haversine(a, b); math.Abs(d-want) > 1e-6 {
		t.Errorf("expected %v, got %v", want, d)
	}

	if Haversine(a, b) != Haversine(b, a) {
		t.Error("expected symmetric distance")
	}
}

func TestBoundingBox(t *testing.T) {
	t.Parallel()

	box := BoundingBox{MinLat: 35.0, MinLng: -80.0, MaxLat: 35.001, MaxLng: -79.999}
	if err := box.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 0.001 * 0.001 * MetersPerDegree * MetersPerDegree
	if got := box.ApproxAreaSqM(); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected area %v, got %v", want, got)
	}

	if !box.Contains(box.Center()) {
		t.Error("expected box to contain its center")
	}

	inverted := BoundingBox{MinLat: 36, MinLng: -80, MaxLat: 35, MaxLng: -79}
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates for inverted box, got %v", err)
	}
}
