// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/plateworks/tablescout/internal/hours"
)

// ProfileBuilder derives an implicit preference profile from a user's
// completed bookings and positive reviews.
type ProfileBuilder struct {
	history HistoryStore
	cfg     ProfileConfig
	logger  zerolog.Logger
}

// NewProfileBuilder creates a ProfileBuilder over the given history store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileBuilder(history HistoryStore, cfg ProfileConfig, logger zerolog.Logger) *ProfileBuilder {
	return &ProfileBuilder{
		history: history,
		cfg:     cfg,
		logger:  logger.With().Str("component", "profile").Logger(),
	}
}

// Build produces a profile for the user, or nil when the user has no usable
// history. A nil profile is not an error; it means "cannot personalize".
// Fetch failures also resolve to nil so a degraded history store never takes
// the ranking path down with a crash.
func (b *ProfileBuilder) Build(ctx context.Context, userID string) (*UserProfile, error) {
	bookings, err := b.history.CompletedBookings(ctx, userID, b.cfg.BookingHistoryLimit)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("booking history fetch failed")
		return nil, nil
	}

	reviews, err := b.history.PositiveReviews(ctx, userID, b.cfg.MinReviewRating)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("review fetch failed")
		return nil, nil
	}

	if len(bookings) == 0 {
		return nil, nil
	}

	// Restrictions are an auxiliary signal: a failed fetch degrades to
	// "no restrictions" rather than discarding the whole profile.
	restrictions, err := b.history.DietaryRestrictions(ctx, userID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("dietary restrictions fetch failed")
		restrictions = nil
	}

	profile := &UserProfile{
		CuisinePreferences:  b.cuisinePreferences(bookings, reviews),
		PriceRangePref:      priceRanges(bookings, b.cfg.DefaultPriceRanges),
		DietaryRestrictions: restrictions,
		AveragePartySize:    averagePartySize(bookings),
		BookingPatterns:     bookingPatterns(bookings),
		Location: LocationPreferences{
			MaxDistanceKm: b.cfg.DefaultMaxDistanceKm,
		},
	}

	b.logger.Debug().
		Str("user_id", userID).
		Int("bookings", len(bookings)).
		Int("reviews", len(reviews)).
		Int("cuisines", len(profile.CuisinePreferences)).
		Msg("profile built")

	return profile, nil
}

// cuisinePreferences scores each cuisine the user has booked as
// (booking share) * (average positive-review rating / 5). Cuisines the user
// booked but never reviewed use a neutral rating.
func (b *ProfileBuilder) cuisinePreferences(bookings []Booking, reviews []Review) map[string]float64 {
	counts := make(map[string]int)
	for _, bk := range bookings {
		if bk.CuisineType == "" {
			continue
		}
		counts[bk.CuisineType]++
	}

	ratingSum := make(map[string]float64)
	ratingCount := make(map[string]int)
	for _, rv := range reviews {
		if rv.CuisineType == "" {
			continue
		}
		ratingSum[rv.CuisineType] += rv.Rating
		ratingCount[rv.CuisineType]++
	}

	total := float64(len(bookings))
	prefs := make(map[string]float64, len(counts))
	for cuisine, count := range counts {
		avg := b.cfg.NeutralRating
		if n := ratingCount[cuisine]; n > 0 {
			avg = ratingSum[cuisine] / float64(n)
		}
		prefs[cuisine] = (float64(count) / total) * (avg / 5)
	}
	return prefs
}

// priceRanges collects the distinct price tiers observed in bookings, falling
// back to the configured defaults when bookings carry no tier data.
func priceRanges(bookings []Booking, defaults []int) map[int]struct{} {
	observed := make(map[int]struct{})
	for _, bk := range bookings {
		if bk.PriceRange > 0 {
			observed[bk.PriceRange] = struct{}{}
		}
	}
	if len(observed) > 0 {
		return observed
	}

	fallback := make(map[int]struct{}, len(defaults))
	for _, tier := range defaults {
		fallback[tier] = struct{}{}
	}
	return fallback
}

// averagePartySize is the rounded mean of recorded party sizes, 0 when none
// were recorded.
func averagePartySize(bookings []Booking) int {
	sum, n := 0, 0
	for _, bk := range bookings {
		if bk.PartySize > 0 {
			sum += bk.PartySize
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return (sum + n/2) / n
}

// bookingPatterns derives preferred weekdays, meal periods, and occasion
// frequency from booking timestamps.
func bookingPatterns(bookings []Booking) BookingPatterns {
	patterns := BookingPatterns{
		PreferredDays:     make(map[time.Weekday]struct{}),
		PreferredPeriods:  make(map[hours.MealPeriod]struct{}),
		OccasionFrequency: make(map[string]int),
	}

	for _, bk := range bookings {
		if !bk.BookingTime.IsZero() {
			patterns.PreferredDays[bk.BookingTime.Weekday()] = struct{}{}
			patterns.PreferredPeriods[hours.PeriodForHour(bk.BookingTime.Hour())] = struct{}{}
		}
		if bk.Occasion != "" {
			patterns.OccasionFrequency[bk.Occasion]++
		}
	}

	return patterns
}
