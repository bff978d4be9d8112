// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/plateworks/tablescout/internal/geo"
	"github.com/plateworks/tablescout/internal/hours"
)

// mockHoursStore serves one shared weekly schedule, with optional per-venue
// full-day closures and a forced error mode.
type mockHoursStore struct {
	shifts   []hours.Shift
	closures map[string]*hours.Closure
	err      error
}

func (m *mockHoursStore) RegularHours(_ context.Context, _ string, _ time.Weekday) ([]hours.Shift, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.shifts, nil
}

func (m *mockHoursStore) SpecialHours(_ context.Context, _, _ string) (*hours.SpecialHours, error) {
	if m.err != nil {
		return nil, m.err
	}
	return nil, nil
}

func (m *mockHoursStore) Closure(_ context.Context, venueID, _ string) (*hours.Closure, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.closures[venueID], nil
}

func dinnerContext() Context {
	return NewContext(time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC), ContextOverrides{})
}

func newTestScorer(store hours.Store) *Scorer {
	resolver := hours.NewResolver(store, zerolog.Nop())
	return NewScorer(resolver, DefaultConfig(), zerolog.Nop())
}

func dinnerOpenStore() *mockHoursStore {
	return &mockHoursStore{shifts: []hours.Shift{{Open: "17:00", Close: "23:00"}}}
}

func italianProfile() *UserProfile {
	return &UserProfile{
		CuisinePreferences: map[string]float64{"Italian": 0.8},
		PriceRangePref:     map[int]struct{}{2: {}, 3: {}},
		Location:           LocationPreferences{MaxDistanceKm: 10},
	}
}

func reasonTypes(reasons []Reason) map[ReasonType]float64 {
	out := make(map[ReasonType]float64, len(reasons))
	for _, r := range reasons {
		out[r.Type] = r.Weight
	}
	return out
}

func TestScoreDinnerScenario(t *testing.T) {
	// Italian venue, matching price tier, open for dinner, strong social
	// proof, no caller position: four factors contribute and score equals
	// confidence because no bonus applies.
	scorer := newTestScorer(dinnerOpenStore())
	venue := &Venue{
		ID:            "va",
		CuisineType:   "Italian",
		PriceRange:    2,
		AverageRating: 4.7,
		TotalReviews:  80,
		Status:        "active",
	}
	ctx := dinnerContext()

	sv := scorer.Score(context.Background(), venue, italianProfile(), &ctx)

	if math.Abs(sv.Score-0.64) > 1e-9 {
		t.Errorf("score = %f, want 0.64", sv.Score)
	}
	if math.Abs(sv.Confidence-0.64) > 1e-9 {
		t.Errorf("confidence = %f, want 0.64", sv.Confidence)
	}

	got := reasonTypes(sv.Reasons)
	want := map[ReasonType]float64{
		ReasonCuisinePreference: 0.24,
		ReasonPriceRange:        0.20,
		ReasonTimeBased:         0.10,
		ReasonSocialProof:       0.10,
	}
	for typ, weight := range want {
		if math.Abs(got[typ]-weight) > 1e-9 {
			t.Errorf("reason %s weight = %f, want %f", typ, got[typ], weight)
		}
	}
	if len(sv.Reasons) != len(want) {
		t.Errorf("reasons = %v, want exactly %d", sv.Reasons, len(want))
	}
}

func TestScoreClosedVenueLosesTimeFactor(t *testing.T) {
	// Identical venue behind a full-day closure loses exactly the
	// time-based 0.10.
	store := dinnerOpenStore()
	store.closures = map[string]*hours.Closure{
		"vb": {StartDate: "2026-03-10", EndDate: "2026-03-10"},
	}
	scorer := newTestScorer(store)
	profile := italianProfile()
	ctx := dinnerContext()

	venue := Venue{
		ID:            "va",
		CuisineType:   "Italian",
		PriceRange:    2,
		AverageRating: 4.7,
		TotalReviews:  80,
		Status:        "active",
	}
	open := scorer.Score(context.Background(), &venue, profile, &ctx)

	venue.ID = "vb"
	shut := scorer.Score(context.Background(), &venue, profile, &ctx)

	if diff := open.Score - shut.Score; math.Abs(diff-0.10) > 1e-9 {
		t.Errorf("score difference = %f, want 0.10", diff)
	}
	if _, ok := reasonTypes(shut.Reasons)[ReasonTimeBased]; ok {
		t.Error("closed venue must not carry a time_based reason")
	}
}

func TestScoreNoMatchingFactors(t *testing.T) {
	scorer := newTestScorer(&mockHoursStore{})
	venue := &Venue{ID: "vz", CuisineType: "Fusion", PriceRange: 4, Status: "active"}
	ctx := dinnerContext()

	sv := scorer.Score(context.Background(), venue, italianProfile(), &ctx)

	if sv.Score != 0 || sv.Confidence != 0 {
		t.Errorf("score/confidence = %f/%f, want 0/0", sv.Score, sv.Confidence)
	}
	if len(sv.Reasons) != 0 {
		t.Errorf("reasons = %v, want empty", sv.Reasons)
	}
}

func TestScoreProximity(t *testing.T) {
	scorer := newTestScorer(&mockHoursStore{})

	venue := &Venue{
		ID:          "vn",
		CuisineType: "Fusion",
		PriceRange:  4,
		Coordinates: geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060},
		Status:      "active",
	}
	ctx := dinnerContext()
	ctx.Location = &geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}

	sv := scorer.Score(context.Background(), venue, italianProfile(), &ctx)

	// Zero distance contributes the full proximity weight.
	if math.Abs(sv.Score-0.15) > 1e-9 {
		t.Errorf("score = %f, want 0.15", sv.Score)
	}
	if _, ok := reasonTypes(sv.Reasons)[ReasonLocationProximity]; !ok {
		t.Error("expected location_proximity reason")
	}
}

func TestScoreProximitySkippedBeyondTolerance(t *testing.T) {
	scorer := newTestScorer(&mockHoursStore{})

	venue := &Venue{
		ID:          "vfar",
		CuisineType: "Fusion",
		PriceRange:  4,
		Coordinates: geo.Coordinates{Latitude: 51.5074, Longitude: -0.1278},
		Status:      "active",
	}
	ctx := dinnerContext()
	ctx.Location = &geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}

	sv := scorer.Score(context.Background(), venue, italianProfile(), &ctx)
	if sv.Score != 0 {
		t.Errorf("score = %f, want 0 for venue beyond tolerance", sv.Score)
	}
}

func TestScoreNoLocationSkipsProximity(t *testing.T) {
	scorer := newTestScorer(&mockHoursStore{})

	venue := &Venue{
		ID:          "vn",
		CuisineType: "Fusion",
		PriceRange:  4,
		Coordinates: geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060},
		Status:      "active",
	}
	ctx := dinnerContext()

	sv := scorer.Score(context.Background(), venue, italianProfile(), &ctx)
	if sv.Score != 0 {
		t.Errorf("score = %f, want 0 without a caller position", sv.Score)
	}
}

func TestScoreDietaryMatch(t *testing.T) {
	scorer := newTestScorer(&mockHoursStore{})
	profile := italianProfile()
	profile.DietaryRestrictions = []string{"vegan", "gluten-free"}

	venue := &Venue{
		ID:             "vd",
		CuisineType:    "Fusion",
		PriceRange:     4,
		DietaryOptions: []string{"Vegan options", "Halal"},
		Status:         "active",
	}
	ctx := dinnerContext()

	sv := scorer.Score(context.Background(), venue, profile, &ctx)

	// One of two restrictions satisfied: 0.5 * 0.25.
	if math.Abs(sv.Score-0.125) > 1e-9 {
		t.Errorf("score = %f, want 0.125", sv.Score)
	}
	if math.Abs(sv.Confidence-0.125) > 1e-9 {
		t.Errorf("confidence = %f, want 0.125", sv.Confidence)
	}
}

func TestScoreBonusesRaiseScoreNotConfidence(t *testing.T) {
	scorer := newTestScorer(&mockHoursStore{})
	profile := italianProfile()

	venue := &Venue{
		ID:             "vf",
		CuisineType:    "Fusion",
		PriceRange:     4,
		AmbianceTags:   []string{"cozy"},
		OutdoorSeating: false,
		Featured:       true,
		Status:         "active",
	}
	ctx := dinnerContext()
	ctx.Weather = WeatherRainy

	sv := scorer.Score(context.Background(), venue, profile, &ctx)

	// Rainy cozy bonus plus trending bonus, no weighted factors.
	if math.Abs(sv.Score-0.10) > 1e-9 {
		t.Errorf("score = %f, want 0.10", sv.Score)
	}
	if sv.Confidence != 0 {
		t.Errorf("confidence = %f, want 0 (bonuses only)", sv.Confidence)
	}
}

func TestScoreBrunchBonus(t *testing.T) {
	store := &mockHoursStore{shifts: []hours.Shift{{Open: "08:00", Close: "14:00"}}}
	scorer := newTestScorer(store)
	profile := italianProfile()

	venue := &Venue{
		ID:          "vbr",
		CuisineType: "Fusion",
		PriceRange:  4,
		Tags:        []string{"brunch"},
		Status:      "active",
	}
	ctx := NewContext(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), ContextOverrides{})

	sv := scorer.Score(context.Background(), venue, profile, &ctx)

	// Time-based 0.10 plus the 0.05 brunch bonus; only 0.10 is weighted.
	if math.Abs(sv.Score-0.15) > 1e-9 {
		t.Errorf("score = %f, want 0.15", sv.Score)
	}
	if math.Abs(sv.Confidence-0.10) > 1e-9 {
		t.Errorf("confidence = %f, want 0.10", sv.Confidence)
	}
}

func TestScoreReasonsSortedByWeight(t *testing.T) {
	scorer := newTestScorer(dinnerOpenStore())
	venue := &Venue{
		ID:            "va",
		CuisineType:   "Italian",
		PriceRange:    2,
		AverageRating: 4.7,
		TotalReviews:  80,
		Status:        "active",
	}
	ctx := dinnerContext()

	sv := scorer.Score(context.Background(), venue, italianProfile(), &ctx)
	for i := 1; i < len(sv.Reasons); i++ {
		if sv.Reasons[i].Weight > sv.Reasons[i-1].Weight {
			t.Fatalf("reasons not sorted descending: %v", sv.Reasons)
		}
	}
}

func TestScoreConfidenceClamped(t *testing.T) {
	// Every weighted factor at full strength plus proximity at zero
	// distance exceeds 1.0 before clamping.
	scorer := newTestScorer(dinnerOpenStore())

	profile := italianProfile()
	profile.CuisinePreferences["Italian"] = 1.0
	profile.DietaryRestrictions = []string{"vegan"}

	venue := &Venue{
		ID:             "vmax",
		CuisineType:    "Italian",
		PriceRange:     2,
		DietaryOptions: []string{"vegan"},
		Coordinates:    geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060},
		AverageRating:  5,
		TotalReviews:   500,
		Status:         "active",
	}
	ctx := dinnerContext()
	ctx.Location = &geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}

	sv := scorer.Score(context.Background(), venue, profile, &ctx)
	if sv.Confidence > 1 {
		t.Errorf("confidence = %f, want clamped to 1", sv.Confidence)
	}
	if sv.Confidence != 1 {
		t.Errorf("confidence = %f, want exactly 1", sv.Confidence)
	}
}

func TestScoreHoursStoreFailureDropsTimeFactor(t *testing.T) {
	scorer := newTestScorer(&mockHoursStore{err: errors.New("down")})
	venue := &Venue{
		ID:            "va",
		CuisineType:   "Italian",
		PriceRange:    2,
		AverageRating: 4.7,
		TotalReviews:  80,
		Status:        "active",
	}
	ctx := dinnerContext()

	sv := scorer.Score(context.Background(), venue, italianProfile(), &ctx)

	// 0.24 + 0.20 + 0.10 with time-based failing closed.
	if math.Abs(sv.Score-0.54) > 1e-9 {
		t.Errorf("score = %f, want 0.54", sv.Score)
	}
	if _, ok := reasonTypes(sv.Reasons)[ReasonTimeBased]; ok {
		t.Error("time_based must not contribute when hours fail")
	}
}
