// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

// Package metrics defines the Prometheus instruments exported by the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RankRequests counts ranking requests by outcome ("ok" or "error").
	RankRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablescout",
		Subsystem: "recommend",
		Name:      "rank_requests_total",
		Help:      "Ranking requests by outcome.",
	}, []string{"outcome"})

	// RankDuration observes end-to-end ranking latency.
	RankDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tablescout",
		Subsystem: "recommend",
		Name:      "rank_duration_seconds",
		Help:      "End-to-end ranking request latency.",
		Buckets:   prometheus.DefBuckets,
	})

	// CandidatesScored observes how many candidates each request scored.
	CandidatesScored = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tablescout",
		Subsystem: "recommend",
		Name:      "candidates_scored",
		Help:      "Candidates scored per ranking request.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
	})

	// ProfileCache counts profile cache lookups by result ("hit" or "miss").
	ProfileCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablescout",
		Subsystem: "recommend",
		Name:      "profile_cache_total",
		Help:      "Profile cache lookups by result.",
	}, []string{"result"})

	// HoursResolutions counts hours resolutions by outcome ("open" or
	// "closed").
	HoursResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablescout",
		Subsystem: "hours",
		Name:      "resolutions_total",
		Help:      "Hours resolutions by outcome.",
	}, []string{"outcome"})
)
