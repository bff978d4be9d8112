// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/plateworks/tablescout/internal/hours"
	"github.com/plateworks/tablescout/internal/recommend"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestVenueRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := recommend.Venue{
		ID:            "v1",
		Name:          "Trattoria Uno",
		CuisineType:   "Italian",
		PriceRange:    2,
		AverageRating: 4.6,
		TotalReviews:  88,
		Status:        "active",
	}
	if err := s.PutVenue(&want); err != nil {
		t.Fatalf("PutVenue: %v", err)
	}

	got, err := s.Venue(context.Background(), "v1")
	if err != nil {
		t.Fatalf("Venue: %v", err)
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("venue = %+v, want %+v", *got, want)
	}

	if _, err := s.Venue(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing venue")
	}
}

func TestListActiveFiltersStatus(t *testing.T) {
	s := newTestStore(t)
	venues := []recommend.Venue{
		{ID: "v1", Name: "Open", Status: "active"},
		{ID: "v2", Name: "Gone", Status: "closed"},
		{ID: "v3", Name: "Also open", Status: "active"},
	}
	for i := range venues {
		if err := s.PutVenue(&venues[i]); err != nil {
			t.Fatalf("PutVenue: %v", err)
		}
	}

	active, err := s.ListActive(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("len = %d, want 2", len(active))
	}
	for _, v := range active {
		if !v.Active() {
			t.Errorf("inactive venue %s in result", v.ID)
		}
	}
}

func TestListPopularOrdering(t *testing.T) {
	s := newTestStore(t)
	venues := []recommend.Venue{
		{ID: "v1", Featured: true, AverageRating: 4.5, TotalReviews: 50, Status: "active"},
		{ID: "v2", Featured: true, AverageRating: 4.8, TotalReviews: 200, Status: "active"},
		{ID: "v3", Featured: false, AverageRating: 4.9, TotalReviews: 500, Status: "active"}, // not featured
		{ID: "v4", Featured: true, AverageRating: 3.5, TotalReviews: 900, Status: "active"},  // rating too low
		{ID: "v5", Featured: true, AverageRating: 4.7, TotalReviews: 120, Status: "closed"},  // inactive
	}
	for i := range venues {
		if err := s.PutVenue(&venues[i]); err != nil {
			t.Fatalf("PutVenue: %v", err)
		}
	}

	popular, err := s.ListPopular(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPopular: %v", err)
	}
	want := []string{"v2", "v1"}
	if !reflect.DeepEqual(popular, want) {
		t.Errorf("popular = %v, want %v", popular, want)
	}
}

func TestRegularHoursRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := []hours.Shift{{Open: "11:00", Close: "15:00"}, {Open: "18:00", Close: "23:00"}}
	if err := s.PutRegularHours("v1", time.Tuesday, want); err != nil {
		t.Fatalf("PutRegularHours: %v", err)
	}

	got, err := s.RegularHours(context.Background(), "v1", time.Tuesday)
	if err != nil {
		t.Fatalf("RegularHours: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("shifts = %v, want %v", got, want)
	}

	// Other weekdays have no record and no error.
	none, err := s.RegularHours(context.Background(), "v1", time.Wednesday)
	if err != nil {
		t.Fatalf("RegularHours: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("shifts = %v, want empty", none)
	}
}

func TestSpecialHoursRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := hours.SpecialHours{Date: "2026-12-24", IsClosed: false, Open: "12:00", Close: "16:00", Reason: "holiday hours"}
	if err := s.PutSpecialHours("v1", &want); err != nil {
		t.Fatalf("PutSpecialHours: %v", err)
	}

	got, err := s.SpecialHours(context.Background(), "v1", "2026-12-24")
	if err != nil {
		t.Fatalf("SpecialHours: %v", err)
	}
	if got == nil || !reflect.DeepEqual(*got, want) {
		t.Errorf("special = %+v, want %+v", got, want)
	}

	missing, err := s.SpecialHours(context.Background(), "v1", "2026-12-25")
	if err != nil {
		t.Fatalf("SpecialHours: %v", err)
	}
	if missing != nil {
		t.Errorf("special = %+v, want nil", missing)
	}
}

func TestClosureLookup(t *testing.T) {
	s := newTestStore(t)
	partial := hours.Closure{StartDate: "2026-08-01", EndDate: "2026-08-31", StartTime: "14:00", EndTime: "17:00"}
	full := hours.Closure{StartDate: "2026-08-10", EndDate: "2026-08-12"}
	for _, c := range []hours.Closure{partial, full} {
		c := c
		if err := s.PutClosure("v1", &c); err != nil {
			t.Fatalf("PutClosure: %v", err)
		}
	}

	// Both cover Aug 11; the full-day closure wins.
	got, err := s.Closure(context.Background(), "v1", "2026-08-11")
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	if got == nil || !got.FullDay() {
		t.Errorf("closure = %+v, want full-day", got)
	}

	// Only the partial closure covers Aug 20.
	got, err = s.Closure(context.Background(), "v1", "2026-08-20")
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	if got == nil || got.FullDay() {
		t.Errorf("closure = %+v, want partial", got)
	}

	// Nothing covers September.
	got, err = s.Closure(context.Background(), "v1", "2026-09-05")
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	if got != nil {
		t.Errorf("closure = %+v, want nil", got)
	}
}

func TestCompletedBookingsMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	times := []time.Time{
		time.Date(2026, 1, 5, 19, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC),
	}
	for i, ts := range times {
		b := recommend.Booking{VenueID: "v1", CuisineType: "Italian", PriceRange: 2, BookingTime: ts}
		if err := s.AddBooking("u1", &b); err != nil {
			t.Fatalf("AddBooking %d: %v", i, err)
		}
	}

	bookings, err := s.CompletedBookings(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("CompletedBookings: %v", err)
	}
	if len(bookings) != 3 {
		t.Fatalf("len = %d, want 3", len(bookings))
	}
	for i := 1; i < len(bookings); i++ {
		if bookings[i].BookingTime.After(bookings[i-1].BookingTime) {
			t.Errorf("bookings not in reverse chronological order: %v", bookings)
		}
	}

	limited, err := s.CompletedBookings(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("CompletedBookings: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2", len(limited))
	}
	if !limited[0].BookingTime.Equal(times[1]) {
		t.Errorf("newest booking = %v, want %v", limited[0].BookingTime, times[1])
	}
}

func TestPositiveReviewsFilter(t *testing.T) {
	s := newTestStore(t)
	ratings := []float64{5, 3, 4, 2}
	for _, rating := range ratings {
		r := recommend.Review{VenueID: "v1", CuisineType: "Italian", Rating: rating}
		if err := s.AddReview("u1", &r); err != nil {
			t.Fatalf("AddReview: %v", err)
		}
	}

	reviews, err := s.PositiveReviews(context.Background(), "u1", 4)
	if err != nil {
		t.Fatalf("PositiveReviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("len = %d, want 2", len(reviews))
	}
	for _, r := range reviews {
		if r.Rating < 4 {
			t.Errorf("review rated %f below floor", r.Rating)
		}
	}
}

func TestDietaryRestrictionsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	none, err := s.DietaryRestrictions(context.Background(), "u1")
	if err != nil {
		t.Fatalf("DietaryRestrictions: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("restrictions = %v, want empty", none)
	}

	want := []string{"vegan", "gluten-free"}
	if err := s.SetDietaryRestrictions("u1", want); err != nil {
		t.Fatalf("SetDietaryRestrictions: %v", err)
	}

	got, err := s.DietaryRestrictions(context.Background(), "u1")
	if err != nil {
		t.Fatalf("DietaryRestrictions: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("restrictions = %v, want %v", got, want)
	}
}

func TestLoadSeed(t *testing.T) {
	s := newTestStore(t)

	seed := `{
		"venues": [
			{
				"id": "v1",
				"name": "Trattoria Uno",
				"cuisine_type": "Italian",
				"price_range": 2,
				"status": "active",
				"weekly_hours": {
					"2": [{"open": "11:00", "close": "15:00"}, {"open": "18:00", "close": "23:00"}]
				},
				"special_hours": [
					{"date": "2026-12-24", "is_closed": true, "reason": "holiday"}
				],
				"closures": [
					{"start_date": "2026-08-10", "end_date": "2026-08-12", "reason": "renovation"}
				]
			}
		]
	}`
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("writing seed: %v", err)
	}

	if err := s.LoadSeed(path); err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	venue, err := s.Venue(context.Background(), "v1")
	if err != nil {
		t.Fatalf("Venue: %v", err)
	}
	if venue.Name != "Trattoria Uno" {
		t.Errorf("name = %q", venue.Name)
	}

	shifts, err := s.RegularHours(context.Background(), "v1", time.Tuesday)
	if err != nil {
		t.Fatalf("RegularHours: %v", err)
	}
	if len(shifts) != 2 {
		t.Errorf("shifts = %v, want 2", shifts)
	}

	special, err := s.SpecialHours(context.Background(), "v1", "2026-12-24")
	if err != nil {
		t.Fatalf("SpecialHours: %v", err)
	}
	if special == nil || !special.IsClosed {
		t.Errorf("special = %+v, want closed", special)
	}

	closure, err := s.Closure(context.Background(), "v1", "2026-08-11")
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	if closure == nil {
		t.Error("expected closure covering 2026-08-11")
	}
}

func TestLoadSeedRejectsBadWeekday(t *testing.T) {
	s := newTestStore(t)
	seed := `{"venues": [{"id": "v1", "status": "active", "weekly_hours": {"monday": []}}]}`
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("writing seed: %v", err)
	}
	if err := s.LoadSeed(path); err == nil {
		t.Error("expected error for non-numeric weekday key")
	}
}
