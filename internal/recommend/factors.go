// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package recommend

import (
	"fmt"
	"strings"

	"github.com/plateworks/tablescout/internal/geo"
	"github.com/plateworks/tablescout/internal/hours"
)

// contribution is one factor's verdict on one venue. Amount is what the
// factor adds to the score; Weighted marks contributions that also count
// toward confidence, as opposed to score-only bonuses.
type contribution struct {
	Amount   float64
	Weighted bool
	Reason   Reason
}

// factorInput bundles everything a factor may inspect. Resolved hours and
// caller coordinates are fetched once per venue by the scorer, so factors
// stay pure functions.
type factorInput struct {
	Venue    *Venue
	Profile  *UserProfile
	Context  *Context
	Open     bool             // open during Context.TimeOfDay
	Location *geo.Coordinates // caller position, nil when unknown
}

// factorEvaluator computes zero or more contributions for one venue.
// Returning no contributions means the factor does not apply; that is not an
// error.
type factorEvaluator func(in factorInput, cfg *Config) []contribution

// scoringFactors is the full evaluation set, run uniformly per venue.
// Adding a factor means appending here.
var scoringFactors = []factorEvaluator{
	cuisineFactor,
	priceFactor,
	dietaryFactor,
	proximityFactor,
	timeOfDayFactor,
	weatherFactor,
	socialProofFactor,
	trendingFactor,
}

// cuisineFactor rewards venues serving a cuisine the user prefers,
// proportionally to the learned preference strength.
func cuisineFactor(in factorInput, cfg *Config) []contribution {
	pref := in.Profile.CuisinePreferences[in.Venue.CuisineType]
	if pref <= 0 {
		return nil
	}

	amount := pref * cfg.Weights.Cuisine
	return []contribution{{
		Amount:   amount,
		Weighted: true,
		Reason: Reason{
			Type:        ReasonCuisinePreference,
			Weight:      amount,
			Description: fmt.Sprintf("You often book %s restaurants", in.Venue.CuisineType),
		},
	}}
}

// priceFactor rewards venues in a price tier the user has booked before.
func priceFactor(in factorInput, cfg *Config) []contribution {
	if _, ok := in.Profile.PriceRangePref[in.Venue.PriceRange]; !ok {
		return nil
	}

	return []contribution{{
		Amount:   cfg.Weights.Price,
		Weighted: true,
		Reason: Reason{
			Type:        ReasonPriceRange,
			Weight:      cfg.Weights.Price,
			Description: "Matches your usual price range",
		},
	}}
}

// dietaryFactor rewards venues covering the user's dietary restrictions,
// proportionally to how many restrictions the venue's options satisfy.
// Skipped entirely when the user has no restrictions.
func dietaryFactor(in factorInput, cfg *Config) []contribution {
	restrictions := in.Profile.DietaryRestrictions
	if len(restrictions) == 0 {
		return nil
	}

	matched := 0
	for _, restriction := range restrictions {
		if venueOffersDietary(in.Venue.DietaryOptions, restriction) {
			matched++
		}
	}
	if matched == 0 {
		return nil
	}

	ratio := float64(matched) / float64(len(restrictions))
	amount := ratio * cfg.Weights.Dietary
	return []contribution{{
		Amount:   amount,
		Weighted: true,
		Reason: Reason{
			Type:        ReasonDietaryMatch,
			Weight:      amount,
			Description: "Accommodates your dietary preferences",
		},
	}}
}

// venueOffersDietary matches a restriction against venue options with
// case-insensitive substring semantics in both directions, so "vegan"
// matches "Vegan options" and vice versa.
func venueOffersDietary(options []string, restriction string) bool {
	want := strings.ToLower(restriction)
	for _, opt := range options {
		have := strings.ToLower(opt)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return true
		}
	}
	return false
}

// proximityFactor rewards venues within the user's travel tolerance, scaled
// linearly from full weight at zero distance to nothing at the limit.
// Requires both a caller position and valid venue coordinates.
func proximityFactor(in factorInput, cfg *Config) []contribution {
	if in.Location == nil || !geo.Valid(in.Venue.Coordinates) {
		return nil
	}

	maxKm := in.Profile.Location.MaxDistanceKm
	if maxKm <= 0 {
		return nil
	}

	distance := geo.Haversine(*in.Location, in.Venue.Coordinates)
	if distance > maxKm {
		return nil
	}

	amount := (1 - distance/maxKm) * cfg.Weights.Proximity
	return []contribution{{
		Amount:   amount,
		Weighted: true,
		Reason: Reason{
			Type:        ReasonLocationProximity,
			Weight:      amount,
			Description: fmt.Sprintf("Only %.1f km away", distance),
		},
	}}
}

// timeOfDayFactor rewards venues open during the request's meal period, with
// a score-only brunch bonus at breakfast time.
func timeOfDayFactor(in factorInput, cfg *Config) []contribution {
	if !in.Open {
		return nil
	}

	contribs := []contribution{{
		Amount:   cfg.Weights.TimeOfDay,
		Weighted: true,
		Reason: Reason{
			Type:        ReasonTimeBased,
			Weight:      cfg.Weights.TimeOfDay,
			Description: fmt.Sprintf("Open for %s now", displayPeriod(in.Context.TimeOfDay)),
		},
	}}

	if in.Context.TimeOfDay == hours.PeriodBreakfast && in.Venue.HasTag("brunch") {
		contribs = append(contribs, contribution{
			Amount: cfg.Bonuses.Brunch,
			Reason: Reason{
				Type:        ReasonTimeBased,
				Weight:      cfg.Bonuses.Brunch,
				Description: "Great brunch spot",
			},
		})
	}

	return contribs
}

// weatherFactor grants score-only bonuses for weather-appropriate venues.
// Rainy weather favors cozy ambiance; sunny weather favors outdoor seating.
func weatherFactor(in factorInput, cfg *Config) []contribution {
	var contribs []contribution

	if in.Context.Weather == WeatherRainy && in.Venue.HasAmbiance("cozy") {
		contribs = append(contribs, contribution{
			Amount: cfg.Bonuses.Weather,
			Reason: Reason{
				Type:        ReasonWeatherBased,
				Weight:      cfg.Bonuses.Weather,
				Description: "Cozy atmosphere for a rainy day",
			},
		})
	}

	if in.Context.Weather == WeatherSunny && in.Venue.OutdoorSeating {
		contribs = append(contribs, contribution{
			Amount: cfg.Bonuses.Weather,
			Reason: Reason{
				Type:        ReasonWeatherBased,
				Weight:      cfg.Bonuses.Weather,
				Description: "Outdoor seating for sunny weather",
			},
		})
	}

	return contribs
}

// socialProofFactor rewards venues with both a high average rating and a
// meaningful review volume.
func socialProofFactor(in factorInput, cfg *Config) []contribution {
	if in.Venue.AverageRating < cfg.Thresholds.SocialProofRating {
		return nil
	}
	if in.Venue.TotalReviews < cfg.Thresholds.SocialProofReviews {
		return nil
	}

	return []contribution{{
		Amount:   cfg.Weights.SocialProof,
		Weighted: true,
		Reason: Reason{
			Type:        ReasonSocialProof,
			Weight:      cfg.Weights.SocialProof,
			Description: fmt.Sprintf("Rated %.1f by %d diners", in.Venue.AverageRating, in.Venue.TotalReviews),
		},
	}}
}

// trendingFactor grants a score-only bonus to featured venues.
func trendingFactor(in factorInput, cfg *Config) []contribution {
	if !in.Venue.Featured {
		return nil
	}

	return []contribution{{
		Amount: cfg.Bonuses.Trending,
		Reason: Reason{
			Type:        ReasonTrending,
			Weight:      cfg.Bonuses.Trending,
			Description: "Trending on Tablescout",
		},
	}}
}

// displayPeriod renders a meal period for reason text.
func displayPeriod(p hours.MealPeriod) string {
	if p == hours.PeriodLateNight {
		return "late night"
	}
	return string(p)
}
