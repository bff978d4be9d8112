// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package recommend

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/plateworks/tablescout/internal/hours"
)

// Scorer computes a relevance score, typed reasons, and a confidence value
// for one venue against one profile and request context.
//
// Deterministic given identical inputs apart from the hours lookup, which
// may change between calls as the venue's schedule changes. The caller
// position comes in on the Context; the ranker resolves it once per request
// rather than per candidate.
type Scorer struct {
	resolver *hours.Resolver
	cfg      *Config
	logger   zerolog.Logger
}

// NewScorer creates a Scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScorer(resolver *hours.Resolver, cfg *Config, logger zerolog.Logger) *Scorer {
	return &Scorer{
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.With().Str("component", "scorer").Logger(),
	}
}

// Score evaluates every factor against the venue and aggregates the result.
//
// Score is the sum of all contributed amounts, weighted factors and bonuses
// alike. Confidence accumulates only the weighted contributions, so bonuses
// can push score past confidence. A venue matching nothing scores zero with
// no reasons; that venue is still returned, filtering is the ranker's call.
//
// Per-factor data failures (hours, geolocation) collapse to "factor does not
// contribute" and never fail the venue.
func (s *Scorer) Score(ctx context.Context, venue *Venue, profile *UserProfile, rc *Context) ScoredVenue {
	in := factorInput{
		Venue:    venue,
		Profile:  profile,
		Context:  rc,
		Open:     s.openDuring(ctx, venue.ID, rc),
		Location: rc.Location,
	}

	var (
		score      float64
		confidence float64
		reasons    []Reason
	)
	for _, factor := range scoringFactors {
		for _, c := range factor(in, s.cfg) {
			score += c.Amount
			if c.Weighted {
				confidence += c.Amount
			}
			reasons = append(reasons, c.Reason)
		}
	}

	if confidence > 1 {
		confidence = 1
	}

	sortReasons(reasons)
	if reasons == nil {
		reasons = []Reason{}
	}

	return ScoredVenue{
		VenueID:    venue.ID,
		Score:      score,
		Reasons:    reasons,
		Confidence: confidence,
	}
}

// openDuring resolves the venue's hours for the request date and checks the
// meal period. Resolution failures already fail closed inside the resolver.
func (s *Scorer) openDuring(ctx context.Context, venueID string, rc *Context) bool {
	resolved := s.resolver.Resolve(ctx, venueID, rc.Date)
	if !resolved.IsOpen {
		return false
	}
	return hours.OpenDuring(resolved.Shifts, rc.TimeOfDay)
}

// sortReasons orders reasons by descending weight, breaking ties by type so
// identical inputs always render identically.
func sortReasons(reasons []Reason) {
	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Weight != reasons[j].Weight {
			return reasons[i].Weight > reasons[j].Weight
		}
		return reasons[i].Type < reasons[j].Type
	})
}
