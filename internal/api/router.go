// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

// Package api exposes the recommendation engine over HTTP using Chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterConfig controls cross-cutting HTTP behavior.
type RouterConfig struct {
	// RateLimit is the per-client request budget per minute. Zero disables
	// rate limiting.
	RateLimit int

	// CORSOrigins lists allowed cross-origin request origins.
	CORSOrigins []string
}

// Router assembles the HTTP surface over a Handler.
type Router struct {
	handler *Handler
	cfg     RouterConfig
	logger  zerolog.Logger
}

// NewRouter creates a router around the given handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(handler *Handler, cfg RouterConfig, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		cfg:     cfg,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// Setup wires all routes and middleware and returns the root handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(rt.logRequests)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/v1/health", rt.handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(rt.cfg.RateLimit, time.Minute))
		}

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", rt.handler.Recommendations)
			r.Post("/refresh", rt.handler.Refresh)
			r.Post("/{venueID}/dismiss", rt.handler.Dismiss)
		})

		r.Route("/venues/{venueID}", func(r chi.Router) {
			r.Get("/hours", rt.handler.VenueHours)
			r.Get("/schedule", rt.handler.VenueSchedule)
			r.Get("/slots", rt.handler.VenueSlots)
			r.Get("/similar", rt.handler.SimilarVenues)
		})

		r.Get("/occasions/{occasion}", rt.handler.OccasionVenues)
	})

	return r
}

// requestID tags every request with an X-Request-ID, preserving one supplied
// by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// logRequests emits one structured line per request.
func (rt *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rt.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", ww.Header().Get("X-Request-ID")).
			Msg("request")
	})
}
