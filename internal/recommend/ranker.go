// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

// Package recommend implements personalized venue ranking: profile building
// from booking history, multi-factor scoring, and the candidate ranking
// pipeline that ties them together.
package recommend

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/plateworks/tablescout/internal/metrics"
)

// ErrNoProfile is returned when a user has no usable history, so no
// personalized ranking is possible.
var ErrNoProfile = errors.New("no usable history to personalize from")

// profileEntry is one immutable cached profile snapshot. Entries are swapped
// whole under the engine lock, never mutated field by field, so a reader
// holding an entry sees a consistent value.
type profileEntry struct {
	profile *UserProfile
	builtAt time.Time
}

// Engine ranks candidate venues for a user. Safe for concurrent use.
type Engine struct {
	builder *ProfileBuilder
	scorer  *Scorer
	venues  VenueDirectory
	geo     Geolocation
	cfg     *Config
	logger  zerolog.Logger
	now     func() time.Time

	mu        sync.Mutex
	profiles  map[string]*profileEntry
	dismissed map[string]map[string]struct{} // userID -> venueID set
}

// NewEngine creates a ranking engine. geolocation may be nil when no fallback
// position source exists; proximity then contributes only for requests that
// carry their own coordinates.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(builder *ProfileBuilder, scorer *Scorer, venues VenueDirectory, geolocation Geolocation, cfg *Config, logger zerolog.Logger) *Engine {
	return &Engine{
		builder:   builder,
		scorer:    scorer,
		venues:    venues,
		geo:       geolocation,
		cfg:       cfg,
		logger:    logger.With().Str("component", "ranker").Logger(),
		now:       time.Now,
		profiles:  make(map[string]*profileEntry),
		dismissed: make(map[string]map[string]struct{}),
	}
}

// Rank produces the top venues for a user under the given request context.
//
// Candidates are scored concurrently and correlated back by venue ID, never
// by completion order. Results below the minimum score are dropped, the rest
// sorted descending by score with venue ID as the deterministic tiebreak,
// truncated, boosted by platform-wide popularity, then re-sorted and
// truncated again.
//
// A candidate-pool fetch failure is fatal. A popularity fetch failure is
// not: the ranking simply goes out unboosted.
func (e *Engine) Rank(ctx context.Context, userID string, rc Context) ([]RankedVenue, error) {
	start := e.now()

	ranked, err := e.rank(ctx, userID, &rc)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RankRequests.WithLabelValues(outcome).Inc()
	metrics.RankDuration.Observe(e.now().Sub(start).Seconds())

	return ranked, err
}

func (e *Engine) rank(ctx context.Context, userID string, rc *Context) ([]RankedVenue, error) {
	profile, err := e.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Resolve the caller position once for the whole request. The context's
	// own coordinates win; the geolocation collaborator is the fallback, and
	// its failure just means proximity does not contribute.
	if rc.Location == nil && e.geo != nil {
		loc, err := e.geo.Current(ctx)
		if err != nil {
			e.logger.Debug().Err(err).Msg("geolocation unavailable")
		} else {
			rc.Location = loc
		}
	}

	pool, err := e.venues.ListActive(ctx, e.cfg.Limits.PoolLimit)
	if err != nil {
		return nil, err
	}
	pool = e.withoutDismissed(userID, pool)
	if len(pool) == 0 {
		return []RankedVenue{}, nil
	}

	scored := e.scoreAll(ctx, pool, profile, rc)
	metrics.CandidatesScored.Observe(float64(len(scored)))

	byID := make(map[string]Venue, len(pool))
	for _, v := range pool {
		byID[v.ID] = v
	}

	ranked := make([]RankedVenue, 0, len(scored))
	for _, sv := range scored {
		if sv.Score <= e.cfg.MinScore {
			continue
		}
		venue, ok := byID[sv.VenueID]
		if !ok {
			continue
		}
		ranked = append(ranked, RankedVenue{
			Venue:                 venue,
			RecommendationScore:   sv.Score,
			RecommendationReasons: sv.Reasons,
			Confidence:            sv.Confidence,
		})
	}

	sortRanked(ranked)
	ranked = truncate(ranked, e.cfg.Limits.ResultLimit)

	ranked = e.boostPopular(ctx, ranked)
	sortRanked(ranked)
	ranked = truncate(ranked, e.cfg.Limits.ResultLimit)

	e.logger.Debug().
		Str("user_id", userID).
		Int("pool", len(pool)).
		Int("ranked", len(ranked)).
		Msg("ranking complete")

	return ranked, nil
}

// scoreAll fans scoring out across all candidates and joins. Each candidate
// is independent read-only work, so the fan-out is unbounded. Results land
// in per-candidate slots; downstream correlation is by venue ID.
func (e *Engine) scoreAll(ctx context.Context, pool []Venue, profile *UserProfile, rc *Context) []ScoredVenue {
	scored := make([]ScoredVenue, len(pool))

	var wg sync.WaitGroup
	for i := range pool {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scored[i] = e.scorer.Score(ctx, &pool[i], profile, rc)
		}(i)
	}
	wg.Wait()

	return scored
}

// boostPopular multiplies the score of venues in the platform-wide popular
// set and records the boost as a reason. A popularity fetch failure degrades
// to no boost.
func (e *Engine) boostPopular(ctx context.Context, ranked []RankedVenue) []RankedVenue {
	popular, err := e.venues.ListPopular(ctx, e.cfg.Limits.PopularLimit)
	if err != nil {
		e.logger.Warn().Err(err).Msg("popularity fetch failed, skipping boost")
		return ranked
	}
	if len(popular) == 0 {
		return ranked
	}

	popularSet := make(map[string]struct{}, len(popular))
	for _, id := range popular {
		popularSet[id] = struct{}{}
	}

	for i := range ranked {
		if _, ok := popularSet[ranked[i].ID]; !ok {
			continue
		}
		ranked[i].RecommendationScore *= e.cfg.Bonuses.PopularityMultiplier
		ranked[i].RecommendationReasons = append(ranked[i].RecommendationReasons, Reason{
			Type:        ReasonPopularWithUsers,
			Weight:      e.cfg.Bonuses.PopularityReasonWeight,
			Description: "Popular with diners like you",
		})
	}
	return ranked
}

// profile returns a cached profile younger than the TTL, or rebuilds one.
// A nil rebuilt profile is terminal: there is nothing to personalize from.
func (e *Engine) profile(ctx context.Context, userID string) (*UserProfile, error) {
	e.mu.Lock()
	entry := e.profiles[userID]
	e.mu.Unlock()

	if entry != nil && e.now().Sub(entry.builtAt) < e.cfg.Profile.TTL {
		metrics.ProfileCache.WithLabelValues("hit").Inc()
		return entry.profile, nil
	}
	metrics.ProfileCache.WithLabelValues("miss").Inc()

	return e.rebuildProfile(ctx, userID)
}

// rebuildProfile builds and caches a fresh profile. Last writer wins on
// concurrent rebuilds; rebuilds are idempotent so that is harmless.
func (e *Engine) rebuildProfile(ctx context.Context, userID string) (*UserProfile, error) {
	profile, err := e.builder.Build(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNoProfile
	}

	e.mu.Lock()
	e.profiles[userID] = &profileEntry{profile: profile, builtAt: e.now()}
	e.mu.Unlock()

	return profile, nil
}

// Dismiss hides a venue from the user's subsequent rankings in this process.
// Dismissals are session-local and never persisted.
func (e *Engine) Dismiss(userID, venueID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	set := e.dismissed[userID]
	if set == nil {
		set = make(map[string]struct{})
		e.dismissed[userID] = set
	}
	set[venueID] = struct{}{}
}

// Refresh drops the user's cached profile and dismissals, forcing the next
// ranking to rebuild from history.
func (e *Engine) Refresh(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.profiles, userID)
	delete(e.dismissed, userID)
}

// withoutDismissed filters the user's dismissed venues out of the pool.
func (e *Engine) withoutDismissed(userID string, pool []Venue) []Venue {
	e.mu.Lock()
	set := e.dismissed[userID]
	e.mu.Unlock()

	if len(set) == 0 {
		return pool
	}

	kept := make([]Venue, 0, len(pool))
	for _, v := range pool {
		if _, hidden := set[v.ID]; !hidden {
			kept = append(kept, v)
		}
	}
	return kept
}

// Similar returns active venues sharing a venue's cuisine and price tier,
// excluding the venue itself, best-rated first.
func (e *Engine) Similar(ctx context.Context, venueID string, limit int) ([]Venue, error) {
	base, err := e.venues.Venue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	pool, err := e.venues.ListActive(ctx, e.cfg.Limits.PoolLimit)
	if err != nil {
		return nil, err
	}

	similar := make([]Venue, 0, limit)
	for _, v := range pool {
		if v.ID == venueID {
			continue
		}
		if v.CuisineType != base.CuisineType || v.PriceRange != base.PriceRange {
			continue
		}
		similar = append(similar, v)
	}

	sort.Slice(similar, func(i, j int) bool {
		if similar[i].AverageRating != similar[j].AverageRating {
			return similar[i].AverageRating > similar[j].AverageRating
		}
		return similar[i].ID < similar[j].ID
	})

	return truncate(similar, limit), nil
}

// occasionTags maps a booking occasion to the venue tags that suit it.
var occasionTags = map[string][]string{
	"birthday":    {"celebration", "lively", "groups"},
	"anniversary": {"romantic", "intimate", "fine-dining"},
	"business":    {"quiet", "professional", "private-dining"},
	"date":        {"romantic", "intimate", "wine-bar"},
	"family":      {"family-friendly", "casual", "groups"},
}

// ForOccasion returns active venues tagged for the given occasion, best-rated
// first. Unknown occasions yield an empty list.
func (e *Engine) ForOccasion(ctx context.Context, occasion string, limit int) ([]Venue, error) {
	tags, ok := occasionTags[occasion]
	if !ok {
		return []Venue{}, nil
	}

	pool, err := e.venues.ListActive(ctx, e.cfg.Limits.PoolLimit)
	if err != nil {
		return nil, err
	}

	matched := make([]Venue, 0, limit)
	for _, v := range pool {
		for _, tag := range tags {
			if v.HasTag(tag) || v.HasAmbiance(tag) {
				matched = append(matched, v)
				break
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].AverageRating != matched[j].AverageRating {
			return matched[i].AverageRating > matched[j].AverageRating
		}
		return matched[i].ID < matched[j].ID
	})

	return truncate(matched, limit), nil
}

// sortRanked orders by descending score with venue ID as the deterministic
// tiebreak, keeping output stable across runs with identical input.
func sortRanked(ranked []RankedVenue) {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].RecommendationScore != ranked[j].RecommendationScore {
			return ranked[i].RecommendationScore > ranked[j].RecommendationScore
		}
		return ranked[i].ID < ranked[j].ID
	})
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
