// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package recommend

import (
	"context"
	"time"

	"github.com/plateworks/tablescout/internal/geo"
	"github.com/plateworks/tablescout/internal/hours"
)

// ReasonType classifies a recommendation reason for display and analytics.
type ReasonType string

const (
	ReasonCuisinePreference ReasonType = "cuisine_preference"
	ReasonAmbianceMatch     ReasonType = "ambiance_match"
	ReasonPriceRange        ReasonType = "price_range"
	ReasonLocationProximity ReasonType = "location_proximity"
	ReasonPopularWithUsers  ReasonType = "popular_with_similar_users"
	ReasonTrending          ReasonType = "trending"
	ReasonDietaryMatch      ReasonType = "dietary_match"
	ReasonSpecialOccasion   ReasonType = "special_occasion"
	ReasonTimeBased         ReasonType = "time_based"
	ReasonWeatherBased      ReasonType = "weather_based"
	ReasonSocialProof       ReasonType = "social_proof"
)

// Reason is one typed, human-readable justification for a recommendation.
// Weight is the amount the underlying factor contributed to the score.
type Reason struct {
	Type        ReasonType `json:"type"`
	Weight      float64    `json:"weight"`
	Description string     `json:"description"`
}

// Weather describes current conditions for weather-aware scoring.
type Weather string

const (
	WeatherSunny Weather = "sunny"
	WeatherRainy Weather = "rainy"
)

// Venue is a bookable restaurant entity. Read-only to this engine.
type Venue struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CuisineType    string          `json:"cuisine_type"`
	PriceRange     int             `json:"price_range"` // 1..4
	DietaryOptions []string        `json:"dietary_options,omitempty"`
	AmbianceTags   []string        `json:"ambiance_tags,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	Coordinates    geo.Coordinates `json:"coordinates"`
	AverageRating  float64         `json:"average_rating"` // 0..5
	TotalReviews   int             `json:"total_reviews"`
	OutdoorSeating bool            `json:"outdoor_seating"`
	Featured       bool            `json:"featured"`
	Status         string          `json:"status"`
}

// Active reports whether the venue is accepting bookings.
func (v *Venue) Active() bool {
	return v.Status == "active"
}

// HasTag reports whether the venue carries the given general tag.
func (v *Venue) HasTag(tag string) bool {
	return containsString(v.Tags, tag)
}

// HasAmbiance reports whether the venue carries the given ambiance tag.
func (v *Venue) HasAmbiance(tag string) bool {
	return containsString(v.AmbianceTags, tag)
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// Booking is one completed booking from a user's history.
type Booking struct {
	VenueID     string    `json:"venue_id"`
	CuisineType string    `json:"cuisine_type"`
	PriceRange  int       `json:"price_range"`
	PartySize   int       `json:"party_size,omitempty"`
	Occasion    string    `json:"occasion,omitempty"`
	BookingTime time.Time `json:"booking_time"`
}

// Review is one user review, reduced to what profile building needs.
type Review struct {
	VenueID     string  `json:"venue_id"`
	CuisineType string  `json:"cuisine_type"`
	Rating      float64 `json:"rating"`
}

// BookingPatterns captures when and why a user tends to book.
type BookingPatterns struct {
	PreferredDays     map[time.Weekday]struct{}     `json:"-"`
	PreferredPeriods  map[hours.MealPeriod]struct{} `json:"-"`
	OccasionFrequency map[string]int                `json:"occasion_frequency,omitempty"`
}

// LocationPreferences captures how far a user will travel.
type LocationPreferences struct {
	MaxDistanceKm  float64  `json:"max_distance_km"`
	PreferredAreas []string `json:"preferred_areas,omitempty"`
}

// UserProfile is an implicit preference profile built from a user's history.
// It is immutable once built and owned by the ranking session that built it.
type UserProfile struct {
	CuisinePreferences  map[string]float64  `json:"cuisine_preferences"` // cuisine name -> [0,1]
	PriceRangePref      map[int]struct{}    `json:"-"`
	DietaryRestrictions []string            `json:"dietary_restrictions,omitempty"`
	AveragePartySize    int                 `json:"average_party_size"`
	BookingPatterns     BookingPatterns     `json:"booking_patterns"`
	Location            LocationPreferences `json:"location_preferences"`
}

// Context is the request-time situation a ranking is computed against.
// Built fresh per request from wall-clock time plus caller overrides.
type Context struct {
	TimeOfDay hours.MealPeriod `json:"time_of_day"`
	DayOfWeek time.Weekday     `json:"day_of_week"`
	Weather   Weather          `json:"weather,omitempty"`
	Occasion  string           `json:"occasion,omitempty"`
	PartySize int              `json:"party_size,omitempty"`
	Date      time.Time        `json:"date,omitempty"`

	// Location is the caller's position, nil when unknown. Resolved at most
	// once per ranking request, never per candidate.
	Location *geo.Coordinates `json:"location,omitempty"`
}

// ContextOverrides are optional caller-supplied overrides for NewContext.
type ContextOverrides struct {
	TimeOfDay hours.MealPeriod
	Weather   Weather
	Occasion  string
	PartySize int
	Date      time.Time
	Location  *geo.Coordinates
}

// NewContext derives a Context from the given wall-clock time, applying any
// caller overrides.
func NewContext(now time.Time, ov ContextOverrides) Context {
	ctx := Context{
		TimeOfDay: hours.PeriodForHour(now.Hour()),
		DayOfWeek: now.Weekday(),
		Date:      now,
	}

	if ov.TimeOfDay != "" {
		ctx.TimeOfDay = ov.TimeOfDay
	}
	if ov.Weather != "" {
		ctx.Weather = ov.Weather
	}
	if ov.Occasion != "" {
		ctx.Occasion = ov.Occasion
	}
	if ov.PartySize > 0 {
		ctx.PartySize = ov.PartySize
	}
	if !ov.Date.IsZero() {
		ctx.Date = ov.Date
		ctx.DayOfWeek = ov.Date.Weekday()
	}
	if ov.Location != nil {
		ctx.Location = ov.Location
	}

	return ctx
}

// ScoredVenue is the scoring engine's verdict on one candidate.
// Ephemeral: produced and consumed within a single ranking request.
type ScoredVenue struct {
	VenueID    string   `json:"venue_id"`
	Score      float64  `json:"score"`
	Reasons    []Reason `json:"reasons"`
	Confidence float64  `json:"confidence"` // [0,1]
}

// RankedVenue is a venue enriched with its recommendation verdict.
type RankedVenue struct {
	Venue
	RecommendationScore   float64  `json:"recommendation_score"`
	RecommendationReasons []Reason `json:"recommendation_reasons"`
	Confidence            float64  `json:"confidence"`
}

// HistoryStore provides a user's historical activity.
type HistoryStore interface {
	// CompletedBookings returns up to limit most recent completed bookings.
	CompletedBookings(ctx context.Context, userID string, limit int) ([]Booking, error)

	// PositiveReviews returns the user's reviews rated at or above minRating.
	PositiveReviews(ctx context.Context, userID string, minRating float64) ([]Review, error)

	// DietaryRestrictions returns the user's declared dietary restrictions,
	// in declaration order.
	DietaryRestrictions(ctx context.Context, userID string) ([]string, error)
}

// VenueDirectory provides the candidate pool and popularity data.
type VenueDirectory interface {
	// ListActive returns up to limit venues accepting bookings, in no
	// particular order.
	ListActive(ctx context.Context, limit int) ([]Venue, error)

	// ListPopular returns venue IDs popular across the whole user base.
	ListPopular(ctx context.Context, limit int) ([]string, error)

	// Venue returns a single venue by ID.
	Venue(ctx context.Context, id string) (*Venue, error)
}

// Geolocation supplies the caller's current position, when available.
type Geolocation interface {
	// Current returns the caller's coordinates, or nil when unknown.
	Current(ctx context.Context) (*geo.Coordinates, error)
}
