// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

// Package hours resolves a venue's authoritative operating state for a
// calendar date from three layered sources: regular weekly shifts, dated
// special-hours overrides, and full or partial closure ranges.
//
// Precedence, highest to lowest:
//
//  1. A full-day closure covering the date closes the venue outright.
//  2. A special-hours entry for the date replaces the regular shifts
//     entirely, either closing the venue or substituting one override shift.
//  3. Otherwise the regular shifts for the date's weekday apply.
//  4. A time-bounded (partial) closure then removes any shift overlapping
//     the closure window.
//
// Every failure path resolves to closed. A venue whose hours cannot be
// determined must never be reported open.
package hours

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/plateworks/tablescout/internal/metrics"
)

// Store provides a venue's raw hours data. Implemented by the storage layer;
// kept as an interface here to avoid coupling resolution to any backend.
type Store interface {
	// RegularHours returns the weekly shifts for one weekday, in any order.
	RegularHours(ctx context.Context, venueID string, day time.Weekday) ([]Shift, error)

	// SpecialHours returns the dated override for a date key, or nil if none.
	SpecialHours(ctx context.Context, venueID, dateKey string) (*SpecialHours, error)

	// Closure returns a closure covering the date key, or nil if none.
	Closure(ctx context.Context, venueID, dateKey string) (*Closure, error)
}

// Resolver computes ResolvedHours for (venue, date) queries.
// It is stateless apart from its store and safe for concurrent use.
type Resolver struct {
	store  Store
	logger zerolog.Logger
}

// NewResolver creates a Resolver backed by the given store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResolver(store Store, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With().Str("component", "hours").Logger(),
	}
}

var closed = ResolvedHours{Shifts: []Shift{}, IsOpen: false}

// Resolve returns the authoritative open shifts for a venue on a date.
// It never returns an error: any store failure or malformed hours record
// resolves to closed.
func (r *Resolver) Resolve(ctx context.Context, venueID string, date time.Time) ResolvedHours {
	resolved := r.resolve(ctx, venueID, date)

	outcome := "closed"
	if resolved.IsOpen {
		outcome = "open"
	}
	metrics.HoursResolutions.WithLabelValues(outcome).Inc()

	return resolved
}

func (r *Resolver) resolve(ctx context.Context, venueID string, date time.Time) ResolvedHours {
	dateKey := date.Format(DateLayout)

	closure, err := r.store.Closure(ctx, venueID, dateKey)
	if err != nil {
		r.failClosed(venueID, dateKey, "closure lookup", err)
		return closed
	}
	if closure != nil && closure.FullDay() {
		return closed
	}

	shifts, ok := r.baseShifts(ctx, venueID, dateKey, date.Weekday())
	if !ok {
		return closed
	}

	if closure != nil {
		shifts, ok = filterPartialClosure(shifts, closure)
		if !ok {
			r.failClosed(venueID, dateKey, "partial closure filter", nil)
			return closed
		}
	}

	sortShifts(shifts)

	return ResolvedHours{Shifts: shifts, IsOpen: len(shifts) > 0}
}

// baseShifts produces the pre-closure shift list: the special-hours override
// when one exists for the date, else the weekday's regular shifts.
func (r *Resolver) baseShifts(ctx context.Context, venueID, dateKey string, day time.Weekday) ([]Shift, bool) {
	special, err := r.store.SpecialHours(ctx, venueID, dateKey)
	if err != nil {
		r.failClosed(venueID, dateKey, "special hours lookup", err)
		return nil, false
	}

	if special != nil {
		if special.IsClosed {
			return []Shift{}, true
		}
		override := Shift{Open: special.Open, Close: special.Close}
		if !shiftValid(override) {
			r.failClosed(venueID, dateKey, "special hours times", nil)
			return nil, false
		}
		return []Shift{override}, true
	}

	regular, err := r.store.RegularHours(ctx, venueID, day)
	if err != nil {
		r.failClosed(venueID, dateKey, "regular hours lookup", err)
		return nil, false
	}

	shifts := make([]Shift, 0, len(regular))
	for _, s := range regular {
		if !shiftValid(s) {
			r.failClosed(venueID, dateKey, "regular hours times", nil)
			return nil, false
		}
		shifts = append(shifts, s)
	}
	return shifts, true
}

// failClosed records why a resolution collapsed to closed.
func (r *Resolver) failClosed(venueID, dateKey, stage string, err error) {
	evt := r.logger.Warn().
		Str("venue_id", venueID).
		Str("date", dateKey).
		Str("stage", stage)
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Msg("hours resolution failed closed")
}

// shiftValid reports whether both shift times parse.
func shiftValid(s Shift) bool {
	if _, err := parseMinutes(s.Open); err != nil {
		return false
	}
	_, err := parseMinutes(s.Close)
	return err == nil
}

// filterPartialClosure drops any shift overlapping the closure window.
// A shift survives only when it ends at or before the window starts, or
// starts at or after the window ends. Returns false on malformed times.
func filterPartialClosure(shifts []Shift, c *Closure) ([]Shift, bool) {
	closureStart, err := parseMinutes(c.StartTime)
	if err != nil {
		return nil, false
	}
	closureEnd, err := parseMinutes(c.EndTime)
	if err != nil {
		return nil, false
	}

	kept := make([]Shift, 0, len(shifts))
	for _, s := range shifts {
		open, err := parseMinutes(s.Open)
		if err != nil {
			return nil, false
		}
		end, err := parseMinutes(s.Close)
		if err != nil {
			return nil, false
		}
		if end <= closureStart || open >= closureEnd {
			kept = append(kept, s)
		}
	}
	return kept, true
}

// sortShifts orders shifts by opening time.
func sortShifts(shifts []Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		a, errA := parseMinutes(shifts[i].Open)
		b, errB := parseMinutes(shifts[j].Open)
		if errA != nil || errB != nil {
			return shifts[i].Open < shifts[j].Open
		}
		return a < b
	})
}

// OpenDuring reports whether any shift serves the given meal period.
//
// A shift counts when its open interval reaches into the period's canonical
// window. Shifts closing after midnight (close hour before open hour) cover
// late night when they open at or before the window start or close at or
// after the window end. Malformed shift times never count.
func OpenDuring(shifts []Shift, period MealPeriod) bool {
	pr, ok := periodRanges[period]
	if !ok {
		return false
	}

	for _, s := range shifts {
		openH, err := parseHour(s.Open)
		if err != nil {
			continue
		}
		closeH, err := parseHour(s.Close)
		if err != nil {
			continue
		}
		if shiftCovers(openH, closeH, pr, period == PeriodLateNight) {
			return true
		}
	}
	return false
}

// shiftCovers tests one shift against one period window, in whole hours.
func shiftCovers(openH, closeH int, pr periodRange, periodWraps bool) bool {
	shiftWraps := closeH < openH

	if periodWraps {
		if shiftWraps {
			return openH <= pr.start || closeH >= pr.end
		}
		// Non-wrapping shift: serves late night either before midnight
		// (closes after 22:00) or after it (opens before 02:00).
		return closeH > pr.start || openH < pr.end
	}

	if shiftWraps {
		// Shift spans [openH, 24) then [0, closeH).
		return openH < pr.end || closeH > pr.start
	}

	return openH < pr.end && closeH > pr.start
}

// NextOpening scans up to seven days past from for the venue's next opening,
// honoring closures and special hours. Returns false when nothing is found.
func (r *Resolver) NextOpening(ctx context.Context, venueID string, from time.Time) (Opening, bool) {
	for i := 1; i <= 7; i++ {
		date := from.AddDate(0, 0, i)
		resolved := r.Resolve(ctx, venueID, date)
		if resolved.IsOpen {
			return Opening{Date: date, Time: resolved.Shifts[0].Open}, true
		}
	}
	return Opening{}, false
}

// WeeklySchedule returns the venue's regular shifts grouped by weekday,
// Monday through Sunday. Closures and special hours are not applied; this is
// the venue's published weekly pattern.
func (r *Resolver) WeeklySchedule(ctx context.Context, venueID string) ([]DaySchedule, error) {
	days := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}

	schedule := make([]DaySchedule, 0, len(days))
	for _, day := range days {
		shifts, err := r.store.RegularHours(ctx, venueID, day)
		if err != nil {
			return nil, err
		}

		valid := make([]Shift, 0, len(shifts))
		for _, s := range shifts {
			if shiftValid(s) {
				valid = append(valid, s)
			}
		}
		sortShifts(valid)

		schedule = append(schedule, DaySchedule{
			Day:    day,
			IsOpen: len(valid) > 0,
			Shifts: valid,
		})
	}
	return schedule, nil
}

// TimeSlots generates bookable start times across all resolved shifts.
// Slots step by slotMinutes and must leave mealMinutes before the shift
// closes. The result is deduplicated and sorted.
func TimeSlots(resolved ResolvedHours, slotMinutes, mealMinutes int) []string {
	if !resolved.IsOpen || slotMinutes <= 0 {
		return []string{}
	}

	seen := make(map[int]struct{})
	slots := make([]int, 0, 32)

	for _, s := range resolved.Shifts {
		open, err := parseMinutes(s.Open)
		if err != nil {
			continue
		}
		end, err := parseMinutes(s.Close)
		if err != nil {
			continue
		}
		for m := open; m+mealMinutes <= end; m += slotMinutes {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			slots = append(slots, m)
		}
	}

	sort.Ints(slots)

	out := make([]string, 0, len(slots))
	for _, m := range slots {
		out = append(out, minutesToTime(m))
	}
	return out
}

// minutesToTime converts minutes since midnight back to "HH:MM".
func minutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
