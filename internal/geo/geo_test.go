// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package geo

import (
	"math"
	"testing"
)

func TestHaversineIdenticalPoints(t *testing.T) {
	points := []Coordinates{
		{Latitude: 25.2048, Longitude: 55.2708},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 51.5074, Longitude: -0.1278},
	}

	for _, p := range points {
		if d := Haversine(p, p); d != 0 {
			t.Errorf("Haversine(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	b := Coordinates{Latitude: 51.5074, Longitude: -0.1278}

	ab := Haversine(a, b)
	ba := Haversine(b, a)

	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Haversine not symmetric: %f vs %f", ab, ba)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// NYC to London, roughly 5570 km.
	nyc := Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	london := Coordinates{Latitude: 51.5074, Longitude: -0.1278}

	d := Haversine(nyc, london)
	if d < 5500 || d > 5650 {
		t.Errorf("Haversine(NYC, London) = %f km, want ~5570 km", d)
	}
}

func TestHaversineShortDistance(t *testing.T) {
	// Two points about 1.1 km apart in central Dubai.
	a := Coordinates{Latitude: 25.2048, Longitude: 55.2708}
	b := Coordinates{Latitude: 25.2148, Longitude: 55.2708}

	d := Haversine(a, b)
	if d < 1.0 || d > 1.2 {
		t.Errorf("Haversine short distance = %f km, want ~1.1 km", d)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		c    Coordinates
		want bool
	}{
		{"valid city", Coordinates{Latitude: 25.2048, Longitude: 55.2708}, true},
		{"null island", Coordinates{Latitude: 0, Longitude: 0}, false},
		{"near zero", Coordinates{Latitude: 1e-9, Longitude: -1e-9}, false},
		{"lat out of range", Coordinates{Latitude: 91, Longitude: 10}, false},
		{"lon out of range", Coordinates{Latitude: 10, Longitude: 181}, false},
		{"southern hemisphere", Coordinates{Latitude: -33.8688, Longitude: 151.2093}, true},
		{"zero lat only", Coordinates{Latitude: 0, Longitude: 101.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.c); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestUnknown(t *testing.T) {
	if !Unknown(Coordinates{}) {
		t.Error("zero value should be unknown")
	}
	if Unknown(Coordinates{Latitude: 25.2, Longitude: 55.3}) {
		t.Error("real location should not be unknown")
	}
}
