// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package hours

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date key format used by the hours store.
const DateLayout = "2006-01-02"

// MealPeriod identifies a canonical service window used for time-based scoring.
type MealPeriod string

const (
	PeriodBreakfast MealPeriod = "breakfast"
	PeriodLunch     MealPeriod = "lunch"
	PeriodDinner    MealPeriod = "dinner"
	PeriodLateNight MealPeriod = "late_night"
)

// periodRange is a canonical service window in whole hours.
// Late night wraps midnight: [22:00, 02:00).
type periodRange struct {
	start int
	end   int
}

var periodRanges = map[MealPeriod]periodRange{
	PeriodBreakfast: {start: 6, end: 11},
	PeriodLunch:     {start: 11, end: 15},
	PeriodDinner:    {start: 17, end: 22},
	PeriodLateNight: {start: 22, end: 2},
}

// PeriodForHour maps a wall-clock hour to the meal period it falls in.
func PeriodForHour(hour int) MealPeriod {
	switch {
	case hour < 11:
		return PeriodBreakfast
	case hour < 15:
		return PeriodLunch
	case hour < 22:
		return PeriodDinner
	default:
		return PeriodLateNight
	}
}

// Shift is a contiguous open interval [Open, Close) within one day of service.
// Times are "HH:MM" strings, matching the booking platform's hours records.
// A shift whose close time is earlier than its open time runs past midnight.
type Shift struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// SpecialHours overrides the regular weekly hours for a single calendar date.
// When present it fully supersedes the regular shifts for that date: either the
// venue is closed, or the single override shift is the whole day's service.
type SpecialHours struct {
	Date     string `json:"date"`
	IsClosed bool   `json:"is_closed"`
	Open     string `json:"open,omitempty"`
	Close    string `json:"close,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Closure is a date range during which a venue is fully or partially closed.
// Empty StartTime/EndTime means a full-day closure for every date in range;
// otherwise the closure removes the overlapping portion of the day's shifts.
type Closure struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Covers reports whether the closure applies to the given date key.
// Date keys are ISO dates, so lexical comparison is chronological.
func (c *Closure) Covers(dateKey string) bool {
	return c.StartDate <= dateKey && dateKey <= c.EndDate
}

// FullDay reports whether the closure removes the entire day rather than a
// time window within it.
func (c *Closure) FullDay() bool {
	return c.StartTime == "" || c.EndTime == ""
}

// ResolvedHours is the authoritative set of open shifts for one venue on one
// date. It is transient: recomputed per query and never cached across dates.
type ResolvedHours struct {
	Shifts []Shift `json:"shifts"`
	IsOpen bool    `json:"is_open"`
}

// Opening is the next date and time a venue opens.
type Opening struct {
	Date time.Time `json:"date"`
	Time string    `json:"time"`
}

// DaySchedule lists the regular shifts for one weekday.
type DaySchedule struct {
	Day    time.Weekday `json:"day"`
	IsOpen bool         `json:"is_open"`
	Shifts []Shift      `json:"shifts"`
}

// parseMinutes converts an "HH:MM" time string to minutes since midnight.
func parseMinutes(t string) (int, error) {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed time %q", t)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed time %q: %w", t, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed time %q: %w", t, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", t)
	}
	return h*60 + m, nil
}

// parseHour extracts the hour component of an "HH:MM" time string.
func parseHour(t string) (int, error) {
	mins, err := parseMinutes(t)
	if err != nil {
		return 0, err
	}
	return mins / 60, nil
}

// FormatShifts renders a shift list for display, e.g.
// "11:00 AM - 3:00 PM, 6:00 PM - 11:00 PM". Empty input renders "Closed".
func FormatShifts(shifts []Shift) string {
	if len(shifts) == 0 {
		return "Closed"
	}

	parts := make([]string, 0, len(shifts))
	for _, s := range shifts {
		parts = append(parts, formatTime(s.Open)+" - "+formatTime(s.Close))
	}
	return strings.Join(parts, ", ")
}

// formatTime converts "HH:MM" to a 12-hour display string. Malformed input is
// returned unchanged; display formatting must not invent hours.
func formatTime(t string) string {
	mins, err := parseMinutes(t)
	if err != nil {
		return t
	}

	h := mins / 60
	m := mins % 60

	period := "AM"
	if h >= 12 {
		period = "PM"
	}

	display := h % 12
	if display == 0 {
		display = 12
	}

	return fmt.Sprintf("%d:%02d %s", display, m, period)
}
