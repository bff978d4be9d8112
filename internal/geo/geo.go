// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

// Package geo provides distance and coordinate-validity utilities.
//
// All functions are pure and safe for concurrent use. Distances are computed
// with the Haversine formula on a spherical Earth model, which is accurate to
// well under 0.5% for the city-scale distances this engine cares about.
package geo

import "math"

const earthRadiusKm = 6371.0

// coordEpsilon is the threshold below which a coordinate is treated as zero.
// Direct float equality with 0 is unreliable due to IEEE 754 representation,
// and (0, 0) is the conventional "no location" sentinel in venue records.
const coordEpsilon = 1e-6

// Coordinates is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether c is a usable location: within WGS84 bounds and not
// the (0, 0) null-island sentinel.
func Valid(c Coordinates) bool {
	if c.Latitude < -90 || c.Latitude > 90 {
		return false
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return false
	}
	return !Unknown(c)
}

// Unknown reports whether c is the (0, 0) sentinel used for missing locations.
func Unknown(c Coordinates) bool {
	return math.Abs(c.Latitude) < coordEpsilon && math.Abs(c.Longitude) < coordEpsilon
}

// Haversine returns the great-circle distance between a and b in kilometers.
// It is symmetric and returns 0 for identical points.
func Haversine(a, b Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
