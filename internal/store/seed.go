// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

package store

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/plateworks/tablescout/internal/hours"
	"github.com/plateworks/tablescout/internal/recommend"
)

// SeedData is the on-disk seed file format: a venue catalog with schedules,
// loaded at startup to bootstrap fresh deployments.
type SeedData struct {
	Venues []SeedVenue `json:"venues"`
}

// SeedVenue is one venue plus its weekly schedule and exceptions. Weekday
// keys run 0 (Sunday) through 6 (Saturday), matching time.Weekday.
type SeedVenue struct {
	recommend.Venue
	WeeklyHours  map[string][]hours.Shift `json:"weekly_hours,omitempty"`
	SpecialHours []hours.SpecialHours     `json:"special_hours,omitempty"`
	Closures     []hours.Closure          `json:"closures,omitempty"`
}

// LoadSeed reads and applies a seed file. Existing records with the same
// keys are overwritten, so reseeding is idempotent.
func (s *Store) LoadSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	for i := range seed.Venues {
		sv := &seed.Venues[i]
		if err := s.PutVenue(&sv.Venue); err != nil {
			return err
		}

		for dayKey, shifts := range sv.WeeklyHours {
			day, err := parseWeekday(dayKey)
			if err != nil {
				return fmt.Errorf("venue %s: %w", sv.ID, err)
			}
			if err := s.PutRegularHours(sv.ID, day, shifts); err != nil {
				return err
			}
		}

		for j := range sv.SpecialHours {
			if err := s.PutSpecialHours(sv.ID, &sv.SpecialHours[j]); err != nil {
				return err
			}
		}
		for j := range sv.Closures {
			if err := s.PutClosure(sv.ID, &sv.Closures[j]); err != nil {
				return err
			}
		}
	}

	s.logger.Info().Int("venues", len(seed.Venues)).Str("path", path).Msg("seed loaded")
	return nil
}

func parseWeekday(key string) (time.Weekday, error) {
	if len(key) == 1 && key[0] >= '0' && key[0] <= '6' {
		return time.Weekday(key[0] - '0'), nil
	}
	return 0, fmt.Errorf("invalid weekday key %q", key)
}
