// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package recommend

import (
	"fmt"
	"time"
)

// Config contains all tuning parameters for the recommendation engine.
type Config struct {
	// Weights defines the contribution cap of each weighted scoring factor.
	// The sum of all weights is the confidence denominator, so they should
	// sum to 1.0.
	Weights FactorWeights `json:"weights" koanf:"weights"`

	// Bonuses defines additive score bonuses that do not count toward
	// confidence.
	Bonuses BonusConfig `json:"bonuses" koanf:"bonuses"`

	// Thresholds contains factor qualification thresholds.
	Thresholds ThresholdConfig `json:"thresholds" koanf:"thresholds"`

	// Profile contains profile-building parameters.
	Profile ProfileConfig `json:"profile" koanf:"profile"`

	// Limits contains ranking pipeline limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// MinScore is the minimum score a candidate must exceed to be ranked.
	MinScore float64 `json:"min_score" koanf:"min_score"`
}

// FactorWeights caps each weighted factor's contribution to score and
// confidence.
type FactorWeights struct {
	// Cuisine is the cuisine-preference factor cap. Default: 0.30.
	Cuisine float64 `json:"cuisine" koanf:"cuisine"`

	// Price is the flat price-range match contribution. Default: 0.20.
	Price float64 `json:"price" koanf:"price"`

	// Dietary is the dietary-restrictions match cap. Default: 0.25.
	Dietary float64 `json:"dietary" koanf:"dietary"`

	// Proximity is the location-proximity cap. Default: 0.15.
	Proximity float64 `json:"proximity" koanf:"proximity"`

	// TimeOfDay is the open-during-period contribution. Default: 0.10.
	TimeOfDay float64 `json:"time_of_day" koanf:"time_of_day"`

	// SocialProof is the high-rating contribution. Default: 0.10.
	SocialProof float64 `json:"social_proof" koanf:"social_proof"`
}

// BonusConfig defines score-only bonuses. Bonuses raise the score past the
// weighted caps but never raise confidence; a bonus-heavy score is a weaker
// personalization signal than a factor-heavy one.
type BonusConfig struct {
	// Brunch applies at breakfast for venues tagged "brunch". Default: 0.05.
	Brunch float64 `json:"brunch" koanf:"brunch"`

	// Weather applies per matching weather condition. Default: 0.05.
	Weather float64 `json:"weather" koanf:"weather"`

	// Trending applies to featured venues. Default: 0.05.
	Trending float64 `json:"trending" koanf:"trending"`

	// PopularityMultiplier scales the score of venues in the popular set.
	// Default: 1.1.
	PopularityMultiplier float64 `json:"popularity_multiplier" koanf:"popularity_multiplier"`

	// PopularityReasonWeight is the reason weight attached to the
	// popularity boost. Default: 0.1.
	PopularityReasonWeight float64 `json:"popularity_reason_weight" koanf:"popularity_reason_weight"`
}

// ThresholdConfig contains factor qualification thresholds.
type ThresholdConfig struct {
	// SocialProofRating is the minimum average rating. Default: 4.5.
	SocialProofRating float64 `json:"social_proof_rating" koanf:"social_proof_rating"`

	// SocialProofReviews is the minimum review count. Default: 50.
	SocialProofReviews int `json:"social_proof_reviews" koanf:"social_proof_reviews"`
}

// ProfileConfig contains profile-building parameters.
type ProfileConfig struct {
	// TTL is how long a built profile stays valid. Default: 24h.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// BookingHistoryLimit caps how many recent completed bookings are
	// analyzed. Default: 100.
	BookingHistoryLimit int `json:"booking_history_limit" koanf:"booking_history_limit"`

	// MinReviewRating is the rating floor for reviews that count as a
	// positive signal. Default: 4.
	MinReviewRating float64 `json:"min_review_rating" koanf:"min_review_rating"`

	// NeutralRating substitutes for a cuisine's average rating when the
	// user never reviewed it. Default: 3.
	NeutralRating float64 `json:"neutral_rating" koanf:"neutral_rating"`

	// DefaultMaxDistanceKm is the location tolerance when the user has no
	// recorded preference. Default: 10.
	DefaultMaxDistanceKm float64 `json:"default_max_distance_km" koanf:"default_max_distance_km"`

	// DefaultPriceRanges substitutes when no bookings establish a price
	// preference. Default: [1, 2, 3].
	DefaultPriceRanges []int `json:"default_price_ranges" koanf:"default_price_ranges"`
}

// LimitsConfig contains ranking pipeline limits.
type LimitsConfig struct {
	// PoolLimit is the maximum candidate pool size. Default: 100.
	PoolLimit int `json:"pool_limit" koanf:"pool_limit"`

	// ResultLimit is the maximum ranked result size. Default: 20.
	ResultLimit int `json:"result_limit" koanf:"result_limit"`

	// PopularLimit is how many popular venue IDs to fetch for boosting.
	// Default: 10.
	PopularLimit int `json:"popular_limit" koanf:"popular_limit"`
}

// DefaultConfig returns the production scoring model.
func DefaultConfig() *Config {
	return &Config{
		Weights: FactorWeights{
			Cuisine:     0.30,
			Price:       0.20,
			Dietary:     0.25,
			Proximity:   0.15,
			TimeOfDay:   0.10,
			SocialProof: 0.10,
		},
		Bonuses: BonusConfig{
			Brunch:                 0.05,
			Weather:                0.05,
			Trending:               0.05,
			PopularityMultiplier:   1.1,
			PopularityReasonWeight: 0.1,
		},
		Thresholds: ThresholdConfig{
			SocialProofRating:  4.5,
			SocialProofReviews: 50,
		},
		Profile: ProfileConfig{
			TTL:                  24 * time.Hour,
			BookingHistoryLimit:  100,
			MinReviewRating:      4,
			NeutralRating:        3,
			DefaultMaxDistanceKm: 10,
			DefaultPriceRanges:   []int{1, 2, 3},
		},
		Limits: LimitsConfig{
			PoolLimit:    100,
			ResultLimit:  20,
			PopularLimit: 10,
		},
		MinScore: 0.1,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"weights.cuisine", c.Weights.Cuisine},
		{"weights.price", c.Weights.Price},
		{"weights.dietary", c.Weights.Dietary},
		{"weights.proximity", c.Weights.Proximity},
		{"weights.time_of_day", c.Weights.TimeOfDay},
		{"weights.social_proof", c.Weights.SocialProof},
		{"bonuses.brunch", c.Bonuses.Brunch},
		{"bonuses.weather", c.Bonuses.Weather},
		{"bonuses.trending", c.Bonuses.Trending},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", w.name, w.value)
		}
	}

	if c.Bonuses.PopularityMultiplier < 1 {
		return fmt.Errorf("bonuses.popularity_multiplier must be >= 1, got %f", c.Bonuses.PopularityMultiplier)
	}
	if c.MinScore < 0 {
		return fmt.Errorf("min_score must be non-negative, got %f", c.MinScore)
	}

	if c.Profile.TTL <= 0 {
		return fmt.Errorf("profile.ttl must be positive, got %v", c.Profile.TTL)
	}
	if c.Profile.BookingHistoryLimit < 1 {
		return fmt.Errorf("profile.booking_history_limit must be positive, got %d", c.Profile.BookingHistoryLimit)
	}
	if c.Profile.DefaultMaxDistanceKm <= 0 {
		return fmt.Errorf("profile.default_max_distance_km must be positive, got %f", c.Profile.DefaultMaxDistanceKm)
	}

	if c.Limits.PoolLimit < 1 {
		return fmt.Errorf("limits.pool_limit must be positive, got %d", c.Limits.PoolLimit)
	}
	if c.Limits.ResultLimit < 1 {
		return fmt.Errorf("limits.result_limit must be positive, got %d", c.Limits.ResultLimit)
	}
	if c.Limits.ResultLimit > c.Limits.PoolLimit {
		return fmt.Errorf("limits.result_limit must be <= limits.pool_limit, got %d > %d",
			c.Limits.ResultLimit, c.Limits.PoolLimit)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Profile.DefaultPriceRanges = append([]int(nil), c.Profile.DefaultPriceRanges...)
	return &clone
}
