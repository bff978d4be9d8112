// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/plateworks/tablescout/internal/geo"
	"github.com/plateworks/tablescout/internal/recommend"
	"github.com/plateworks/tablescout/internal/validation"
)

// recommendationsRequest carries the validated query parameters of
// GET /api/v1/recommendations. Lat and Lon are optional but must be supplied
// together.
type recommendationsRequest struct {
	UserID    string   `validate:"required"`
	Weather   string   `validate:"omitempty,oneof=sunny rainy"`
	Occasion  string   `validate:"omitempty,max=50"`
	PartySize int      `validate:"omitempty,min=1,max=50"`
	Lat       *float64 `validate:"omitempty,latitude"`
	Lon       *float64 `validate:"omitempty,longitude"`
}

// parseRecommendationsRequest binds and validates the query string.
func parseRecommendationsRequest(r *http.Request) (*recommendationsRequest, error) {
	q := r.URL.Query()
	req := &recommendationsRequest{
		UserID:   q.Get("user_id"),
		Weather:  q.Get("weather"),
		Occasion: q.Get("occasion"),
	}

	if raw := q.Get("party_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("party_size must be an integer")
		}
		req.PartySize = size
	}

	var err error
	if req.Lat, err = parseCoord(q.Get("lat"), "lat"); err != nil {
		return nil, err
	}
	if req.Lon, err = parseCoord(q.Get("lon"), "lon"); err != nil {
		return nil, err
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		return nil, fmt.Errorf("lat and lon must be supplied together")
	}

	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	return req, nil
}

func parseCoord(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}

// overrides converts the request into ranking context overrides.
func (req *recommendationsRequest) overrides() recommend.ContextOverrides {
	ov := recommend.ContextOverrides{
		Occasion:  req.Occasion,
		Weather:   recommend.Weather(req.Weather),
		PartySize: req.PartySize,
	}
	if req.Lat != nil && req.Lon != nil {
		ov.Location = &geo.Coordinates{Latitude: *req.Lat, Longitude: *req.Lon}
	}
	return ov
}
