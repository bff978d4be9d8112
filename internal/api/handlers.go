// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/plateworks/tablescout/internal/hours"
	"github.com/plateworks/tablescout/internal/recommend"
)

// slotStepMinutes and mealDurationMinutes shape the bookable time slot grid:
// half-hour starts, with a full meal fitting before close.
const (
	slotStepMinutes     = 30
	mealDurationMinutes = 90
)

// Handler implements the HTTP endpoints.
type Handler struct {
	engine   *recommend.Engine
	resolver *hours.Resolver
	logger   zerolog.Logger
}

// NewHandler creates a Handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine *recommend.Engine, resolver *hours.Resolver, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		resolver: resolver,
		logger:   logger.With().Str("component", "handlers").Logger(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("encoding response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Recommendations ranks venues for a user. Optional lat/lon coordinates
// enable proximity scoring for the request.
//
// GET /api/v1/recommendations?user_id=u1&occasion=date&weather=rainy&party_size=2&lat=40.71&lon=-74.0
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	req, err := parseRecommendationsRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rc := recommend.NewContext(time.Now(), req.overrides())
	ranked, err := h.engine.Rank(r.Context(), req.UserID, rc)
	if err != nil {
		if errors.Is(err, recommend.ErrNoProfile) {
			h.writeError(w, http.StatusNotFound, "not enough history to personalize recommendations")
			return
		}
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("ranking failed")
		h.writeError(w, http.StatusInternalServerError, "unable to generate recommendations")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"recommendations": ranked})
}

// Refresh drops a user's cached profile so the next ranking rebuilds it.
//
// POST /api/v1/recommendations/refresh?user_id=u1
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	h.engine.Refresh(userID)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// Dismiss hides a venue from a user's rankings for this session.
//
// POST /api/v1/recommendations/{venueID}/dismiss?user_id=u1
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	venueID := chi.URLParam(r, "venueID")

	h.engine.Dismiss(userID, venueID)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// queryDate parses an optional date query parameter, defaulting to today.
func queryDate(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse(hours.DateLayout, raw)
}

type hoursResponse struct {
	Date    string        `json:"date"`
	IsOpen  bool          `json:"is_open"`
	Shifts  []hours.Shift `json:"shifts"`
	Display string        `json:"display"`

	NextOpen *hours.Opening `json:"next_open,omitempty"`
}

// VenueHours reports a venue's resolved hours for a date.
//
// GET /api/v1/venues/{venueID}/hours?date=2026-03-10
func (h *Handler) VenueHours(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")
	date, err := queryDate(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	resolved := h.resolver.Resolve(r.Context(), venueID, date)
	resp := hoursResponse{
		Date:    date.Format(hours.DateLayout),
		IsOpen:  resolved.IsOpen,
		Shifts:  resolved.Shifts,
		Display: hours.FormatShifts(resolved.Shifts),
	}
	if !resolved.IsOpen {
		if opening, ok := h.resolver.NextOpening(r.Context(), venueID, date); ok {
			resp.NextOpen = &opening
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type scheduleDay struct {
	Day     string        `json:"day"`
	IsOpen  bool          `json:"is_open"`
	Shifts  []hours.Shift `json:"shifts"`
	Display string        `json:"display"`
}

// VenueSchedule reports a venue's published weekly pattern.
//
// GET /api/v1/venues/{venueID}/schedule
func (h *Handler) VenueSchedule(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")

	schedule, err := h.resolver.WeeklySchedule(r.Context(), venueID)
	if err != nil {
		h.logger.Error().Err(err).Str("venue_id", venueID).Msg("schedule lookup failed")
		h.writeError(w, http.StatusInternalServerError, "unable to load schedule")
		return
	}

	days := make([]scheduleDay, 0, len(schedule))
	for _, d := range schedule {
		days = append(days, scheduleDay{
			Day:     d.Day.String(),
			IsOpen:  d.IsOpen,
			Shifts:  d.Shifts,
			Display: hours.FormatShifts(d.Shifts),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"schedule": days})
}

// VenueSlots lists bookable start times for a date.
//
// GET /api/v1/venues/{venueID}/slots?date=2026-03-10
func (h *Handler) VenueSlots(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")
	date, err := queryDate(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	resolved := h.resolver.Resolve(r.Context(), venueID, date)
	slots := hours.TimeSlots(resolved, slotStepMinutes, mealDurationMinutes)

	h.writeJSON(w, http.StatusOK, map[string]any{
		"date":  date.Format(hours.DateLayout),
		"slots": slots,
	})
}

// queryLimit parses an optional limit parameter with a default and ceiling.
func queryLimit(r *http.Request, def, ceiling int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

// SimilarVenues lists venues sharing a venue's cuisine and price tier.
//
// GET /api/v1/venues/{venueID}/similar?limit=5
func (h *Handler) SimilarVenues(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")

	similar, err := h.engine.Similar(r.Context(), venueID, queryLimit(r, 5, 20))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "venue not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"venues": similar})
}

// OccasionVenues lists venues suited to a booking occasion.
//
// GET /api/v1/occasions/{occasion}?limit=10
func (h *Handler) OccasionVenues(w http.ResponseWriter, r *http.Request) {
	occasion := chi.URLParam(r, "occasion")

	venues, err := h.engine.ForOccasion(r.Context(), occasion, queryLimit(r, 10, 50))
	if err != nil {
		h.logger.Error().Err(err).Str("occasion", occasion).Msg("occasion lookup failed")
		h.writeError(w, http.StatusInternalServerError, "unable to load venues")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"occasion": occasion, "venues": venues})
}
